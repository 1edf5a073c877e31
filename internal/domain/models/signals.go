package models

// MarketLabel is the overall market sentiment derived from all rows of a run.
type MarketLabel string

const (
	MarketBullish MarketLabel = "BULLISH"
	MarketBearish MarketLabel = "BEARISH"
	MarketNeutral MarketLabel = "NEUTRAL"
)

// MarketSummary aggregates every ScoredRow of a run.
// Percentages are meaningless when Total is 0.
type MarketSummary struct {
	Total             int            `json:"total"`
	LongPct           float64        `json:"long_pct"`
	ShortPct          float64        `json:"short_pct"`
	NeutralPct        float64        `json:"neutral_pct"`
	AvgSentiment      float64        `json:"average_sentiment"`
	WeightedSentiment float64        `json:"weighted_market_sentiment"`
	AvgVolatility     NullFloat      `json:"sentiment_volatility_avg"`
	SourceActivity    map[string]int `json:"source_activity"`
	Market            MarketLabel    `json:"market_sentiment"`
}
