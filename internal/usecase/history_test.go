package usecase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SentiPull/internal/domain/models"
)

func TestDeriveBaselines(t *testing.T) {
	rows := []models.ScoredRow{
		{Source: "r/a", Ticker: "$X", Mentions: 4},
		{Source: "r/b", Ticker: "$X", Mentions: 6},
		{Source: "r/a", Ticker: "$Y", Mentions: 3},
	}
	b := DeriveBaselines(rows)

	require.Len(t, b, 2)
	assert.Equal(t, 5.0, b["$X"].Mean)
	assert.InDelta(t, math.Sqrt2, b["$X"].Std, 1e-12)
	assert.Equal(t, models.HistoryBaseline{Mean: 3, Std: 0}, b["$Y"])
}

func TestDeriveBaselinesEmpty(t *testing.T) {
	assert.Empty(t, DeriveBaselines(nil))
}
