package features

import (
	"math"

	"github.com/shopspring/decimal"
)

// polarityThreshold separates positive/negative scores from neutral ones.
const polarityThreshold = 0.05

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStdDev returns the standard deviation with n-1 denominator.
// ok is false when fewer than two values are given.
func SampleStdDev(xs []float64) (float64, bool) {
	n := len(xs)
	if n < 2 {
		return 0, false
	}
	mean := Mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1)), true
}

// NetPolarity is (positives - negatives) / len(xs) using a ±0.05 band.
func NetPolarity(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	pos, neg := 0, 0
	for _, x := range xs {
		switch {
		case x > polarityThreshold:
			pos++
		case x < -polarityThreshold:
			neg++
		}
	}
	return float64(pos-neg) / float64(len(xs))
}

// Round rounds the exact binary value of x to places decimals, so 0.1235
// (stored as 0.12349999...) becomes 0.123. NaN and Inf are returned unchanged.
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloatWithExponent(x, -places).InexactFloat64()
}
