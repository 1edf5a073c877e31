package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTickers(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"two tickers", "$tsla to the moon, $AAPL flat", []string{"$TSLA", "$AAPL"}},
		{"no tickers", "no tickers here", nil},
		{"duplicates collapse", "$gme $GME $Gme", []string{"$GME"}},
		{"longest prefix of six letters", "$ABCDEF", []string{"$ABCDE"}},
		{"bare dollar", "costs $ 5 or $5", nil},
		{"empty", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractTickers(tc.text))
		})
	}
}

func TestExtractTickersIsDeterministic(t *testing.T) {
	text := "$NVDA $AMD $INTC $NVDA $AMD"
	first := ExtractTickers(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExtractTickers(text))
	}
	assert.Equal(t, []string{"$NVDA", "$AMD", "$INTC"}, first)
}
