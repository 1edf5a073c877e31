package sentiment

import (
	"context"
	"math"
	"strings"
	"unicode"
)

const (
	// normalizationAlpha approximates the maximum expected raw valence.
	normalizationAlpha = 15.0
	negationScalar     = -0.74
	boosterIncrement   = 0.293
	exclamationBoost   = 0.292
	maxExclamations    = 4
)

// Analyzer is a lexicon-based scorer producing a compound polarity in [-1, 1].
// It handles negation, intensity boosters and exclamation emphasis.
type Analyzer struct {
	lexicon  map[string]float64
	boosters map[string]float64
	negators map[string]struct{}
}

// NewAnalyzer creates an analyzer with the built-in market lexicon.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		lexicon:  buildLexicon(),
		boosters: buildBoosters(),
		negators: buildNegators(),
	}
}

// WithWords adds or overrides lexicon entries. Valences use a [-4, 4] scale.
func (a *Analyzer) WithWords(words map[string]float64) *Analyzer {
	for w, v := range words {
		a.lexicon[strings.ToLower(w)] = v
	}
	return a
}

// Score implements service.SentimentProvider.
func (a *Analyzer) Score(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return a.Compound(text), nil
}

// Compound returns the normalized polarity of text. Text without known words scores 0.
func (a *Analyzer) Compound(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	sum := 0.0
	matched := false
	for i, tok := range tokens {
		valence, ok := a.lexicon[tok]
		if !ok {
			continue
		}
		matched = true

		// look back up to three tokens for boosters and negations
		for j := 1; j <= 3 && i-j >= 0; j++ {
			prev := tokens[i-j]
			if b, ok := a.boosters[prev]; ok {
				scale := b / float64(j)
				if valence < 0 {
					valence -= scale
				} else {
					valence += scale
				}
			}
			if _, ok := a.negators[prev]; ok {
				valence *= negationScalar
			}
		}
		sum += valence
	}
	if !matched {
		return 0
	}

	if bangs := strings.Count(text, "!"); bangs > 0 && sum != 0 {
		if bangs > maxExclamations {
			bangs = maxExclamations
		}
		emphasis := float64(bangs) * exclamationBoost
		if sum > 0 {
			sum += emphasis
		} else {
			sum -= emphasis
		}
	}

	return normalize(sum)
}

func normalize(score float64) float64 {
	c := score / math.Sqrt(score*score+normalizationAlpha)
	switch {
	case c < -1:
		return -1
	case c > 1:
		return 1
	}
	return c
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func buildLexicon() map[string]float64 {
	return map[string]float64{
		// positive
		"good":       1.9,
		"great":      3.1,
		"excellent":  3.2,
		"amazing":    2.8,
		"love":       3.2,
		"like":       1.5,
		"win":        2.8,
		"winning":    2.4,
		"gain":       2.0,
		"gains":      2.0,
		"profit":     2.1,
		"profits":    2.1,
		"bullish":    2.6,
		"bull":       1.8,
		"moon":       2.0,
		"rocket":     2.0,
		"rally":      2.2,
		"surge":      2.0,
		"soar":       2.3,
		"breakout":   2.0,
		"beat":       1.6,
		"strong":     2.3,
		"buy":        1.2,
		"calls":      0.8,
		"undervalued": 1.8,
		"growth":     1.6,
		"upgrade":    1.8,
		"happy":      2.7,
		"nice":       1.8,
		"best":       3.2,
		"up":         0.8,
		"green":      1.2,
		"tendies":    2.0,
		"squeeze":    1.2,
		// negative
		"bad":        -2.5,
		"terrible":   -3.4,
		"awful":      -3.1,
		"hate":       -2.7,
		"loss":       -1.9,
		"losses":     -1.9,
		"lose":       -1.7,
		"losing":     -1.8,
		"bearish":    -2.6,
		"bear":       -1.5,
		"crash":      -2.7,
		"dump":       -2.0,
		"plunge":     -2.2,
		"drop":       -1.4,
		"fall":       -1.4,
		"weak":       -1.9,
		"sell":       -1.2,
		"puts":       -0.8,
		"overvalued": -1.8,
		"downgrade":  -1.8,
		"miss":       -1.3,
		"fraud":      -3.0,
		"scam":       -3.0,
		"bankrupt":   -3.0,
		"bubble":     -1.4,
		"fear":       -2.2,
		"panic":      -2.4,
		"worst":      -3.1,
		"down":       -0.8,
		"red":        -1.2,
		"bagholder":  -1.8,
		"rekt":       -2.4,
	}
}

func buildBoosters() map[string]float64 {
	return map[string]float64{
		"very":        boosterIncrement,
		"really":      boosterIncrement,
		"extremely":   boosterIncrement,
		"super":       boosterIncrement,
		"so":          boosterIncrement,
		"incredibly":  boosterIncrement,
		"totally":     boosterIncrement,
		"absolutely":  boosterIncrement,
		"hugely":      boosterIncrement,
		"slightly":    -boosterIncrement,
		"somewhat":    -boosterIncrement,
		"barely":      -boosterIncrement,
		"kinda":       -boosterIncrement,
	}
}

func buildNegators() map[string]struct{} {
	words := []string{
		"not", "no", "never", "isn't", "aren't", "wasn't", "don't", "doesn't",
		"didn't", "won't", "can't", "cannot", "nothing", "neither", "nor", "without",
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}
