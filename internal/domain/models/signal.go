package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// Signal is the trading-style label attached to a scored row.
type Signal string

const (
	SignalLong    Signal = "LONG"
	SignalShort   Signal = "SHORT"
	SignalNeutral Signal = "NEUTRAL"
)

// NullFloat is a float64 that may be absent. An absent value is not zero.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a present NullFloat.
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// Ptr returns nil when the value is absent; used for nullable database columns.
func (n NullFloat) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// String renders the value for tabular output. Absent values render as "".
func (n NullFloat) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

func (n *NullFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// ScoredRow is one source x ticker result of a run.
type ScoredRow struct {
	Timestamp           time.Time `json:"timestamp"`
	Source              string    `json:"source"`
	Ticker              string    `json:"ticker"`
	Mentions            int       `json:"mentions"`
	AvgSentiment        float64   `json:"avg_sentiment"`
	WeightedSentiment   float64   `json:"weighted_sentiment"`
	SentimentVolatility NullFloat `json:"sentiment_volatility"` // null for a single mention
	NetSentiment        float64   `json:"net_sentiment"`
	Momentum            NullFloat `json:"momentum"` // null without a usable baseline
	Signal              Signal    `json:"signal"`
}
