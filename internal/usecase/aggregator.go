package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"SentiPull/internal/domain/models"
	domrepo "SentiPull/internal/domain/repository"
	domsvc "SentiPull/internal/domain/service"
	"SentiPull/internal/services/features"
	"SentiPull/pkg/logger"
	"SentiPull/pkg/metrics"
)

const valuePrecision = 3

// Aggregator turns one source's posts into per-ticker scored rows.
type Aggregator struct {
	sentiment domsvc.SentimentProvider
	metrics   domrepo.Metrics
	logger    *logger.Logger
}

func NewAggregator(sentiment domsvc.SentimentProvider, m domrepo.Metrics, log *logger.Logger) *Aggregator {
	if m == nil {
		m = metrics.Noop{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Aggregator{sentiment: sentiment, metrics: m, logger: log}
}

type tickerAccumulator struct {
	mentions  int
	scores    []float64
	upvoteSum int
}

// Aggregate scores every post mentioning a ticker and rolls the scores up per ticker.
// Posts whose text cannot be scored are skipped. Rows come back in ticker order.
func (a *Aggregator) Aggregate(ctx context.Context, posts []models.RawPost, source string, history map[string]models.HistoryBaseline, now time.Time) []models.ScoredRow {
	acc := make(map[string]*tickerAccumulator)

	for _, p := range posts {
		tickers := features.ExtractTickers(p.Text)
		if len(tickers) == 0 {
			continue
		}
		score, err := a.score(ctx, p.Text)
		if err != nil {
			a.metrics.RecordError("sentiment")
			a.logger.Warn("skipping post: sentiment scoring failed",
				logger.String("source", source),
				logger.Error(err),
			)
			continue
		}
		upvotes := p.Upvotes
		if upvotes < 0 {
			upvotes = 0
		}
		for _, t := range tickers {
			ta, ok := acc[t]
			if !ok {
				ta = &tickerAccumulator{}
				acc[t] = ta
			}
			ta.mentions++
			ta.scores = append(ta.scores, score)
			ta.upvoteSum += upvotes
		}
	}

	if len(acc) == 0 {
		return nil
	}

	tickers := make([]string, 0, len(acc))
	for t := range acc {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	rows := make([]models.ScoredRow, 0, len(tickers))
	for _, t := range tickers {
		rows = append(rows, buildRow(t, acc[t], source, history, now))
	}
	return rows
}

func buildRow(ticker string, ta *tickerAccumulator, source string, history map[string]models.HistoryBaseline, now time.Time) models.ScoredRow {
	avg := features.Mean(ta.scores)

	var volatility models.NullFloat
	if sd, ok := features.SampleStdDev(ta.scores); ok {
		volatility = models.Float(sd)
	}

	// every score is weighted by the ticker's total upvotes
	denom := ta.upvoteSum
	if denom < 1 {
		denom = 1
	}
	weightedSum := 0.0
	for _, s := range ta.scores {
		weightedSum += s * float64(ta.upvoteSum)
	}
	weighted := weightedSum / float64(denom)

	var momentum models.NullFloat
	if h, ok := history[ticker]; ok && h.Std != 0 && !math.IsNaN(h.Std) && !math.IsNaN(h.Mean) {
		momentum = models.Float((float64(ta.mentions) - h.Mean) / h.Std)
	}

	signal := ClassifySignal(avg, momentum)

	return models.ScoredRow{
		Timestamp:           now,
		Source:              source,
		Ticker:              ticker,
		Mentions:            ta.mentions,
		AvgSentiment:        features.Round(avg, valuePrecision),
		WeightedSentiment:   features.Round(weighted, valuePrecision),
		SentimentVolatility: roundNull(volatility),
		NetSentiment:        features.Round(features.NetPolarity(ta.scores), valuePrecision),
		Momentum:            roundNull(momentum),
		Signal:              signal,
	}
}

func roundNull(n models.NullFloat) models.NullFloat {
	if !n.Valid {
		return n
	}
	return models.Float(features.Round(n.Float64, valuePrecision))
}

// score calls the provider and rejects panics, NaN and out-of-range results.
func (a *Aggregator) score(ctx context.Context, text string) (s float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sentiment provider panic: %v", r)
		}
	}()
	s, err = a.sentiment.Score(ctx, text)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(s) || s < -1 || s > 1 {
		return 0, fmt.Errorf("sentiment score out of range: %v", s)
	}
	return s, nil
}
