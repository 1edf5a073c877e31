package repository

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SentiPull/internal/domain/models"
)

func sampleRows() []models.ScoredRow {
	return []models.ScoredRow{
		{
			Timestamp: testRunTime, Source: "r/stocks", Ticker: "$TSLA", Mentions: 3,
			AvgSentiment: 0.233, WeightedSentiment: 0.7, SentimentVolatility: models.Float(0.306),
			NetSentiment: 0.333, Momentum: models.Float(2.5), Signal: models.SignalNeutral,
		},
		{
			Timestamp: testRunTime, Source: "r/wallstreetbets", Ticker: "$GME", Mentions: 1,
			AvgSentiment: -0.5, WeightedSentiment: -0.5, NetSentiment: -1, Signal: models.SignalShort,
		},
	}
}

func sampleSummary() models.MarketSummary {
	return models.MarketSummary{
		Total: 2, LongPct: 0, ShortPct: 50, NeutralPct: 50,
		AvgSentiment: -0.134, WeightedSentiment: 0.1, AvgVolatility: models.Float(0.306),
		SourceActivity: map[string]int{"r/wallstreetbets": 1, "r/stocks": 1},
		Market:         models.MarketNeutral,
	}
}

func TestEncodeSnapshotLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeSnapshot(&buf, sampleRows(), sampleSummary()))

	want := strings.Join([]string{
		"timestamp,source,Ticker,Mentions,Avg_Sentiment,Weighted_Sentiment,Sentiment_Volatility,Net_Sentiment,Momentum,Signal",
		"2024-05-01T12:30:15Z,r/stocks,$TSLA,3,0.233,0.7,0.306,0.333,2.5,NEUTRAL",
		"2024-05-01T12:30:15Z,r/wallstreetbets,$GME,1,-0.5,-0.5,,-1,,SHORT",
		"",
		"Market Summary:",
		"LONG %,0",
		"SHORT %,50",
		"NEUTRAL %,50",
		"Average Sentiment,-0.134",
		"Weighted Market Sentiment,0.1",
		"Sentiment Volatility (avg),0.306",
		"Subreddit Activity:",
		"  r/stocks,1",
		"  r/wallstreetbets,1",
		"Market Sentiment,NEUTRAL",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rc := models.NewRunContext(testRunTime, dir)
	require.NoError(t, NewCSVSnapshotWriter().Write(context.Background(), rc, sampleRows(), sampleSummary()))

	rows, err := ReadSnapshot(rc.SnapshotPath)
	require.NoError(t, err)
	assert.Equal(t, sampleRows(), rows)
}

func TestReadSnapshotRejectsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	content := "timestamp,source,Ticker,Mentions,Avg_Sentiment,Weighted_Sentiment,Sentiment_Volatility,Net_Sentiment,Momentum,Signal\n" +
		"2024-05-01T12:30:15Z,r/stocks,$TSLA,many,0.1,0.1,,0,,NEUTRAL\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadSnapshot(path)
	assert.Error(t, err)
}

func TestLatestSnapshot(t *testing.T) {
	dir := t.TempDir()
	_, err := LatestSnapshot(dir)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	older := filepath.Join(dir, "sentiment_snapshot_20240101_000000.csv")
	newer := filepath.Join(dir, "sentiment_snapshot_20240102_000000.csv")
	other := filepath.Join(dir, "history_20240103_000000.json")
	for _, p := range []string{older, newer, other} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	now := time.Now()
	require.NoError(t, os.Chtimes(older, now, now))
	require.NoError(t, os.Chtimes(newer, now.Add(-time.Hour), now.Add(-time.Hour)))

	got, err := LatestSnapshot(dir)
	require.NoError(t, err)
	assert.Equal(t, older, got)
}
