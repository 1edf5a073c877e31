package usecase

import (
	"SentiPull/internal/domain/models"
	"SentiPull/internal/services/features"
)

const (
	longThreshold     = 0.3
	shortThreshold    = -0.3
	momentumThreshold = 1.0

	bullishLongPct  = 50.0
	bullishAvg      = 0.2
	bearishShortPct = 40.0
	bearishAvg      = -0.2

	percentPrecision = 2
)

// ClassifySignal maps a row's average sentiment and momentum to a signal.
// A missing momentum does not block LONG.
func ClassifySignal(avg float64, momentum models.NullFloat) models.Signal {
	if avg > longThreshold && (!momentum.Valid || momentum.Float64 > momentumThreshold) {
		return models.SignalLong
	}
	if avg < shortThreshold {
		return models.SignalShort
	}
	return models.SignalNeutral
}

// Summarize computes the market-wide summary of a run. Empty input yields a NEUTRAL zero summary.
func Summarize(rows []models.ScoredRow) models.MarketSummary {
	sum := models.MarketSummary{
		SourceActivity: map[string]int{},
		Market:         models.MarketNeutral,
	}
	if len(rows) == 0 {
		return sum
	}

	var long, short, neutral int
	var avgSum, weightedSum, volSum float64
	volCount := 0
	for _, r := range rows {
		switch r.Signal {
		case models.SignalLong:
			long++
		case models.SignalShort:
			short++
		default:
			neutral++
		}
		avgSum += r.AvgSentiment
		weightedSum += r.WeightedSentiment
		if r.SentimentVolatility.Valid {
			volSum += r.SentimentVolatility.Float64
			volCount++
		}
		sum.SourceActivity[r.Source]++
	}

	n := float64(len(rows))
	sum.Total = len(rows)
	sum.LongPct = features.Round(float64(long)/n*100, percentPrecision)
	sum.ShortPct = features.Round(float64(short)/n*100, percentPrecision)
	sum.NeutralPct = features.Round(float64(neutral)/n*100, percentPrecision)
	sum.AvgSentiment = features.Round(avgSum/n, valuePrecision)
	sum.WeightedSentiment = features.Round(weightedSum/n, valuePrecision)
	// Stays null when no row has a volatility.
	if volCount > 0 {
		sum.AvgVolatility = models.Float(features.Round(volSum/float64(volCount), valuePrecision))
	}

	switch {
	case sum.LongPct > bullishLongPct && sum.AvgSentiment > bullishAvg:
		sum.Market = models.MarketBullish
	case sum.ShortPct > bearishShortPct && sum.AvgSentiment < bearishAvg:
		sum.Market = models.MarketBearish
	}
	return sum
}
