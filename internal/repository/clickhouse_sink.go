package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"SentiPull/internal/domain/models"
	pkgch "SentiPull/pkg/clickhouse"
	applogger "SentiPull/pkg/logger"
)

const clickhouseChunkSize = 2000

// execer is the subset of *sql.DB used for inserts.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ClickHouseSink inserts a run's rows into a ClickHouse table.
type ClickHouseSink struct {
	db    execer
	table string
	l     *applogger.Logger
}

func NewClickHouseSink(ch *pkgch.Client, table string) *ClickHouseSink {
	return newClickHouseSink(ch.DB(), table)
}

func newClickHouseSink(db execer, table string) *ClickHouseSink {
	if table == "" {
		table = "sentiment_rows"
	}
	return &ClickHouseSink{db: db, table: table, l: applogger.NewNop()}
}

// SetLogger injects a structured logger.
func (s *ClickHouseSink) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *ClickHouseSink) Name() string { return "clickhouse" }

// SchemaStatements returns the DDL for the sink table.
func (s *ClickHouseSink) SchemaStatements() []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            ts DateTime64(3, 'UTC'),
            run_id String,
            source LowCardinality(String),
            ticker LowCardinality(String),
            mentions UInt32,
            avg_sentiment Float64,
            weighted_sentiment Float64,
            sentiment_volatility Nullable(Float64),
            net_sentiment Float64,
            momentum Nullable(Float64),
            signal LowCardinality(String)
        ) ENGINE = MergeTree
        ORDER BY (ticker, ts)
    `, s.table)}
}

func (s *ClickHouseSink) Publish(ctx context.Context, rc models.RunContext, rows []models.ScoredRow, _ models.MarketSummary) error {
	if len(rows) == 0 {
		return nil
	}
	runID := rc.RunID()
	for start := 0; start < len(rows); start += clickhouseChunkSize {
		end := start + clickhouseChunkSize
		if end > len(rows) {
			end = len(rows)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*11)
		for _, r := range rows[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.Timestamp,
				runID,
				r.Source,
				r.Ticker,
				uint32(r.Mentions),
				r.AvgSentiment,
				r.WeightedSentiment,
				r.SentimentVolatility.Ptr(),
				r.NetSentiment,
				r.Momentum.Ptr(),
				string(r.Signal),
			)
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, run_id, source, ticker, mentions, avg_sentiment, weighted_sentiment, sentiment_volatility, net_sentiment, momentum, signal) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse insert error",
				applogger.String("table", s.table),
				applogger.Int("rows", end-start),
				applogger.Error(err),
			)
			return fmt.Errorf("clickhouse insert: %w", err)
		}
	}
	return nil
}

// Close is a no-op; the connection pool is owned by pkg/clickhouse.
func (s *ClickHouseSink) Close() error { return nil }
