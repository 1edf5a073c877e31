package usecase

import (
	"SentiPull/internal/domain/models"
	"SentiPull/internal/services/features"
)

// DeriveBaselines groups rows by ticker across sources and returns the mean and
// sample standard deviation of their mention counts. A ticker seen once gets std 0.
func DeriveBaselines(rows []models.ScoredRow) map[string]models.HistoryBaseline {
	counts := make(map[string][]float64)
	for _, r := range rows {
		counts[r.Ticker] = append(counts[r.Ticker], float64(r.Mentions))
	}
	out := make(map[string]models.HistoryBaseline, len(counts))
	for ticker, xs := range counts {
		std, ok := features.SampleStdDev(xs)
		if !ok {
			std = 0
		}
		out[ticker] = models.HistoryBaseline{Mean: features.Mean(xs), Std: std}
	}
	return out
}
