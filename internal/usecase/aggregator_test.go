package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SentiPull/internal/domain/models"
)

// fixedScores returns a preset score per exact text.
type fixedScores map[string]float64

func (f fixedScores) Score(_ context.Context, text string) (float64, error) {
	s, ok := f[text]
	if !ok {
		return 0, errors.New("unknown text")
	}
	return s, nil
}

type panicScorer struct{}

func (panicScorer) Score(context.Context, string) (float64, error) { panic("scorer exploded") }

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func findRow(t *testing.T, rows []models.ScoredRow, ticker string) models.ScoredRow {
	t.Helper()
	for _, r := range rows {
		if r.Ticker == ticker {
			return r
		}
	}
	t.Fatalf("row for %s not found", ticker)
	return models.ScoredRow{}
}

func TestAggregateThreeMentions(t *testing.T) {
	scores := fixedScores{"$ABC one": 0.5, "$ABC two": 0.3, "$ABC three": -0.1}
	posts := []models.RawPost{
		{Text: "$ABC one", Upvotes: 10},
		{Text: "$ABC two", Upvotes: 0},
		{Text: "$ABC three", Upvotes: 5},
	}
	agg := NewAggregator(scores, nil, nil)
	rows := agg.Aggregate(context.Background(), posts, "r/test", nil, testNow)

	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "$ABC", r.Ticker)
	assert.Equal(t, "r/test", r.Source)
	assert.Equal(t, 3, r.Mentions)
	assert.Equal(t, 0.233, r.AvgSentiment)
	assert.Equal(t, 0.7, r.WeightedSentiment)
	assert.Equal(t, models.Float(0.306), r.SentimentVolatility)
	assert.Equal(t, 0.333, r.NetSentiment)
	assert.False(t, r.Momentum.Valid)
	assert.Equal(t, models.SignalNeutral, r.Signal)
	assert.Equal(t, testNow, r.Timestamp)
}

func TestAggregateVolatility(t *testing.T) {
	agg := NewAggregator(fixedScores{"$ONE": 0.4, "$TWO a": 0.2, "$TWO b": 0.6}, nil, nil)
	rows := agg.Aggregate(context.Background(), []models.RawPost{
		{Text: "$ONE"}, {Text: "$TWO a"}, {Text: "$TWO b"},
	}, "r/test", nil, testNow)

	require.Len(t, rows, 2)
	assert.False(t, findRow(t, rows, "$ONE").SentimentVolatility.Valid)
	assert.Equal(t, models.Float(0.283), findRow(t, rows, "$TWO").SentimentVolatility)
}

func TestAggregateNetSentimentBalanced(t *testing.T) {
	agg := NewAggregator(fixedScores{"$X a": 0.5, "$X b": -0.5, "$X c": 0.0}, nil, nil)
	rows := agg.Aggregate(context.Background(), []models.RawPost{
		{Text: "$X a"}, {Text: "$X b"}, {Text: "$X c"},
	}, "r/test", nil, testNow)

	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].NetSentiment)
}

func TestAggregateMomentum(t *testing.T) {
	posts := make([]models.RawPost, 0, 8)
	scores := fixedScores{}
	for i := 0; i < 8; i++ {
		text := "$MOM post " + string(rune('a'+i))
		scores[text] = 0.5
		posts = append(posts, models.RawPost{Text: text, Upvotes: 1})
	}
	agg := NewAggregator(scores, nil, nil)

	rows := agg.Aggregate(context.Background(), posts, "r/test", map[string]models.HistoryBaseline{
		"$MOM": {Mean: 3, Std: 2},
	}, testNow)
	require.Len(t, rows, 1)
	assert.Equal(t, models.Float(2.5), rows[0].Momentum)
	assert.Equal(t, models.SignalLong, rows[0].Signal)

	rows = agg.Aggregate(context.Background(), posts, "r/test", map[string]models.HistoryBaseline{
		"$MOM": {Mean: 3, Std: 0},
	}, testNow)
	assert.False(t, rows[0].Momentum.Valid)
	assert.Equal(t, models.SignalLong, rows[0].Signal)

	rows = agg.Aggregate(context.Background(), posts, "r/test", map[string]models.HistoryBaseline{
		"$MOM": {Mean: 10, Std: 2},
	}, testNow)
	assert.Equal(t, models.Float(-1), rows[0].Momentum)
	assert.Equal(t, models.SignalNeutral, rows[0].Signal)
}

func TestAggregateMultipleTickersPerPost(t *testing.T) {
	agg := NewAggregator(fixedScores{"$AAA and $BBB": 0.8, "$AAA again $aaa": -0.4}, nil, nil)
	rows := agg.Aggregate(context.Background(), []models.RawPost{
		{Text: "$AAA and $BBB", Upvotes: 3},
		{Text: "$AAA again $aaa", Upvotes: 2},
		{Text: "no tickers at all", Upvotes: 100},
	}, "r/test", nil, testNow)

	require.Len(t, rows, 2)
	assert.Equal(t, "$AAA", rows[0].Ticker)
	assert.Equal(t, "$BBB", rows[1].Ticker)
	a := rows[0]
	assert.Equal(t, 2, a.Mentions)
	assert.Equal(t, 0.2, a.AvgSentiment)
	// (0.8*5 + -0.4*5) / 5
	assert.Equal(t, 0.4, a.WeightedSentiment)
	assert.Equal(t, 1, rows[1].Mentions)
}

func TestAggregateRowCountMatchesDistinctTickers(t *testing.T) {
	agg := NewAggregator(fixedScores{"$A $B": 0.1, "$C": 0.1, "$A": 0.1}, nil, nil)
	rows := agg.Aggregate(context.Background(), []models.RawPost{
		{Text: "$A $B"}, {Text: "$C"}, {Text: "$A"},
	}, "r/test", nil, testNow)
	assert.Len(t, rows, 3)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.Mentions, 1)
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	scores := fixedScores{"$ABC up": 0.7, "$ABC down": -0.2, "$XYZ": 0.1}
	posts := []models.RawPost{{Text: "$ABC up", Upvotes: 4}, {Text: "$ABC down", Upvotes: 1}, {Text: "$XYZ"}}
	history := map[string]models.HistoryBaseline{"$ABC": {Mean: 1, Std: 0.5}}
	agg := NewAggregator(scores, nil, nil)

	first := agg.Aggregate(context.Background(), posts, "r/test", history, testNow)
	second := agg.Aggregate(context.Background(), posts, "r/test", history, testNow)
	assert.Equal(t, first, second)
}

func TestAggregateSkipsUnscorablePosts(t *testing.T) {
	scores := fixedScores{"$OK": 0.4, "$BAD range": 1.5}
	agg := NewAggregator(scores, nil, nil)
	rows := agg.Aggregate(context.Background(), []models.RawPost{
		{Text: "$OK"},
		{Text: "$MISSING"},
		{Text: "$BAD range"},
	}, "r/test", nil, testNow)

	require.Len(t, rows, 1)
	assert.Equal(t, "$OK", rows[0].Ticker)
}

func TestAggregateRecoversScorerPanic(t *testing.T) {
	agg := NewAggregator(panicScorer{}, nil, nil)
	rows := agg.Aggregate(context.Background(), []models.RawPost{{Text: "$ABC"}}, "r/test", nil, testNow)
	assert.Empty(t, rows)
}

func TestAggregateEmpty(t *testing.T) {
	agg := NewAggregator(fixedScores{}, nil, nil)
	assert.Empty(t, agg.Aggregate(context.Background(), nil, "r/test", nil, testNow))
}
