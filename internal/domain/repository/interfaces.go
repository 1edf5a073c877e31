package repository

import (
	"context"

	"SentiPull/internal/domain/models"
)

// PostSource fetches raw posts for a named source (e.g. a subreddit).
type PostSource interface {
	Fetch(ctx context.Context, source string) ([]models.RawPost, error)
	// Label is the source name written to scored rows.
	Label(source string) string
}

// HistoryStore persists mention-count baselines between runs.
type HistoryStore interface {
	// Load returns an empty map when no baseline exists yet.
	Load(ctx context.Context) (map[string]models.HistoryBaseline, error)
	// Save replaces the stored baseline. A failed save leaves the previous one intact.
	Save(ctx context.Context, rc models.RunContext, baselines map[string]models.HistoryBaseline) error
}

// SnapshotWriter writes the durable tabular output of a run.
type SnapshotWriter interface {
	Write(ctx context.Context, rc models.RunContext, rows []models.ScoredRow, summary models.MarketSummary) error
}

// RowSink receives a copy of a run's rows. Sink failures are not fatal.
type RowSink interface {
	Name() string
	Publish(ctx context.Context, rc models.RunContext, rows []models.ScoredRow, summary models.MarketSummary) error
	Close() error
}

type Metrics interface {
	RecordPostsFetched(source string, n int)
	RecordRows(source string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordMarket(summary models.MarketSummary)
}
