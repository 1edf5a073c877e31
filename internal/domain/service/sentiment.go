package service

import "context"

// SentimentProvider scores text into a compound polarity in [-1, 1].
type SentimentProvider interface {
	Score(ctx context.Context, text string) (float64, error)
}
