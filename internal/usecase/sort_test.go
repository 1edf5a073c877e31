package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"SentiPull/internal/domain/models"
)

func TestSortRows(t *testing.T) {
	rows := []models.ScoredRow{
		{Ticker: "$NULL_LOW", Mentions: 1},
		{Ticker: "$LOW", Mentions: 2, Momentum: models.Float(-1)},
		{Ticker: "$NULL_HIGH", Mentions: 9},
		{Ticker: "$HIGH", Mentions: 1, Momentum: models.Float(3)},
		{Ticker: "$TIE_A", Mentions: 5, Momentum: models.Float(0.5)},
		{Ticker: "$TIE_B", Mentions: 5, Momentum: models.Float(0.5)},
		{Ticker: "$TIE_C", Mentions: 7, Momentum: models.Float(0.5)},
	}
	SortRows(rows)

	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.Ticker
	}
	assert.Equal(t, []string{"$HIGH", "$TIE_C", "$TIE_A", "$TIE_B", "$LOW", "$NULL_HIGH", "$NULL_LOW"}, got)
}
