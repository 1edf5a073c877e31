package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"SentiPull/internal/domain/models"
	"SentiPull/pkg/util"
)

var snapshotHeader = []string{
	"timestamp", "source", "Ticker", "Mentions", "Avg_Sentiment", "Weighted_Sentiment",
	"Sentiment_Volatility", "Net_Sentiment", "Momentum", "Signal",
}

// ErrNoSnapshot is returned by LatestSnapshot when the directory holds no snapshot yet.
var ErrNoSnapshot = errors.New("no snapshot found")

// CSVSnapshotWriter writes the ranked rows followed by a market summary block.
type CSVSnapshotWriter struct{}

func NewCSVSnapshotWriter() *CSVSnapshotWriter { return &CSVSnapshotWriter{} }

func (w *CSVSnapshotWriter) Write(ctx context.Context, rc models.RunContext, rows []models.ScoredRow, summary models.MarketSummary) error {
	err := writeFileAtomic(rc.SnapshotPath, func(out io.Writer) error {
		return EncodeSnapshot(out, rows, summary)
	})
	if err != nil {
		return &models.PersistenceError{Op: "write snapshot", Path: rc.SnapshotPath, Err: err}
	}
	return nil
}

// EncodeSnapshot renders rows and summary in the snapshot layout.
func EncodeSnapshot(out io.Writer, rows []models.ScoredRow, summary models.MarketSummary) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(snapshotHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Timestamp.UTC().Format(time.RFC3339Nano),
			r.Source,
			r.Ticker,
			strconv.Itoa(r.Mentions),
			formatFloat(r.AvgSentiment),
			formatFloat(r.WeightedSentiment),
			r.SentimentVolatility.String(),
			formatFloat(r.NetSentiment),
			r.Momentum.String(),
			string(r.Signal),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("\nMarket Summary:\n")
	fmt.Fprintf(&b, "LONG %%,%s\n", formatFloat(summary.LongPct))
	fmt.Fprintf(&b, "SHORT %%,%s\n", formatFloat(summary.ShortPct))
	fmt.Fprintf(&b, "NEUTRAL %%,%s\n", formatFloat(summary.NeutralPct))
	fmt.Fprintf(&b, "Average Sentiment,%s\n", formatFloat(summary.AvgSentiment))
	fmt.Fprintf(&b, "Weighted Market Sentiment,%s\n", formatFloat(summary.WeightedSentiment))
	fmt.Fprintf(&b, "Sentiment Volatility (avg),%s\n", summary.AvgVolatility.String())
	b.WriteString("Subreddit Activity:\n")
	sources := make([]string, 0, len(summary.SourceActivity))
	for s := range summary.SourceActivity {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	for _, s := range sources {
		fmt.Fprintf(&b, "  %s,%d\n", s, summary.SourceActivity[s])
	}
	fmt.Fprintf(&b, "Market Sentiment,%s\n", summary.Market)
	_, err := io.WriteString(out, b.String())
	return err
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ReadSnapshot parses the row section of a snapshot file.
func ReadSnapshot(path string) ([]models.ScoredRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return DecodeSnapshot(f)
}

// DecodeSnapshot reads rows up to the first blank line.
func DecodeSnapshot(in io.Reader) ([]models.ScoredRow, error) {
	var section bytes.Buffer
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		section.WriteString(line)
		section.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}

	cr := csv.NewReader(&section)
	cr.FieldsPerRecord = len(snapshotHeader)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse snapshot: missing header")
	}

	rows := make([]models.ScoredRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		r, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot row %d: %w", i+1, err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func parseRow(rec []string) (models.ScoredRow, error) {
	ts, ok := util.ParseTime(rec[0])
	if !ok {
		return models.ScoredRow{}, fmt.Errorf("bad timestamp %q", rec[0])
	}
	mentions, err := strconv.Atoi(rec[3])
	if err != nil {
		return models.ScoredRow{}, fmt.Errorf("bad mentions %q", rec[3])
	}
	var parseErr error
	num := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("bad number %q", s)
		}
		return v
	}
	null := func(s string) models.NullFloat {
		if s == "" {
			return models.NullFloat{}
		}
		return models.Float(num(s))
	}
	r := models.ScoredRow{
		Timestamp:           ts.UTC(),
		Source:              rec[1],
		Ticker:              rec[2],
		Mentions:            mentions,
		AvgSentiment:        num(rec[4]),
		WeightedSentiment:   num(rec[5]),
		SentimentVolatility: null(rec[6]),
		NetSentiment:        num(rec[7]),
		Momentum:            null(rec[8]),
		Signal:              models.Signal(rec[9]),
	}
	return r, parseErr
}

// LatestSnapshot returns the most recently modified snapshot file in dir.
func LatestSnapshot(dir string) (string, error) {
	pattern := filepath.Join(dir, models.SnapshotFilePrefix+"*"+models.SnapshotFileSuffix)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	var (
		latest  string
		latestT time.Time
	)
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil || fi.IsDir() {
			continue
		}
		// equal mtimes fall back to the name, which embeds the run timestamp
		if latest == "" || fi.ModTime().After(latestT) || (fi.ModTime().Equal(latestT) && m > latest) {
			latest, latestT = m, fi.ModTime()
		}
	}
	if latest == "" {
		return "", ErrNoSnapshot
	}
	return latest, nil
}
