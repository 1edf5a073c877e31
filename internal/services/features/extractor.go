package features

import (
	"regexp"
	"strings"
)

var tickerPattern = regexp.MustCompile(`\$[A-Z]{1,5}`)

// ExtractTickers returns the distinct cashtags in text, in first-seen order.
// Matching is case-insensitive: the text is upper-cased first, so "$tsla" yields "$TSLA".
func ExtractTickers(text string) []string {
	matches := tickerPattern.FindAllString(strings.ToUpper(text), -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
