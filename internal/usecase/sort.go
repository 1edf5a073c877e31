package usecase

import (
	"sort"

	"SentiPull/internal/domain/models"
)

// SortRows orders rows by momentum descending (missing momentum last), then by
// mentions descending. Ties keep their input order.
func SortRows(rows []models.ScoredRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Momentum.Valid != b.Momentum.Valid {
			return a.Momentum.Valid
		}
		if a.Momentum.Valid && a.Momentum.Float64 != b.Momentum.Float64 {
			return a.Momentum.Float64 > b.Momentum.Float64
		}
		return a.Mentions > b.Mentions
	})
}
