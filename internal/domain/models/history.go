package models

// HistoryBaseline is the mention-count baseline of one ticker from the previous run.
type HistoryBaseline struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}
