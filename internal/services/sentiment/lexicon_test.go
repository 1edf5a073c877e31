package sentiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompoundPolarity(t *testing.T) {
	a := NewAnalyzer()

	assert.Greater(t, a.Compound("$TSLA looks great, very bullish"), 0.5)
	assert.Less(t, a.Compound("$GME is a scam, total crash incoming"), -0.5)
	assert.Equal(t, 0.0, a.Compound("$AAPL reports on thursday"))
	assert.Equal(t, 0.0, a.Compound(""))
}

func TestNegationFlipsSign(t *testing.T) {
	a := NewAnalyzer()
	pos := a.Compound("this is good")
	neg := a.Compound("this is not good")
	assert.Greater(t, pos, 0.0)
	assert.Less(t, neg, 0.0)
}

func TestBoosterAndEmphasis(t *testing.T) {
	a := NewAnalyzer()
	base := a.Compound("good")
	assert.Greater(t, a.Compound("very good"), base)
	assert.Greater(t, a.Compound("good!!"), base)
	assert.Less(t, a.Compound("slightly good"), base)
}

func TestCompoundBounded(t *testing.T) {
	a := NewAnalyzer()
	text := "great great great best best amazing love excellent!!!!!!!!"
	c := a.Compound(text)
	assert.LessOrEqual(t, c, 1.0)
	assert.Greater(t, c, 0.9)
}

func TestScoreHonorsContext(t *testing.T) {
	a := NewAnalyzer()
	ctx, cancel := context.WithCancel(context.Background())
	s, err := a.Score(ctx, "good")
	require.NoError(t, err)
	assert.Greater(t, s, 0.0)

	cancel()
	_, err = a.Score(ctx, "good")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithWords(t *testing.T) {
	a := NewAnalyzer().WithWords(map[string]float64{"Diamond": 2.5})
	assert.Greater(t, a.Compound("diamond hands"), 0.0)
}
