// Package patterns implements pivot extraction and chart-pattern
// recognition (spec §4.3): reversal, continuation and candlestick
// patterns, each with a confidence score and optional target/stop.
package patterns

import "github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"

// DefaultTolerance is the price tolerance epsilon used throughout pattern
// matching (spec §4.3 "Price tolerance"). Level analysis uses its own
// levels.Tolerance.
const DefaultTolerance = 0.02

// MinCandles is the minimum series length the recognizer requires (spec
// §4.3); below it, detection returns an empty result.
const MinCandles = 10

// ExtractPivots marks a Peak on bar i if high[i] is a strict local max of
// its immediate neighbors, a Trough symmetrically on lows (spec §4.3).
func ExtractPivots(candles []domain.Candle) []domain.PivotPoint {
	var out []domain.PivotPoint
	for i := 1; i < len(candles)-1; i++ {
		if candles[i].High > candles[i-1].High && candles[i].High > candles[i+1].High {
			out = append(out, domain.PivotPoint{
				Timestamp: candles[i].Timestamp,
				Price:     candles[i].High,
				Kind:      domain.PointPeak,
				Index:     i,
			})
		}
		if candles[i].Low < candles[i-1].Low && candles[i].Low < candles[i+1].Low {
			out = append(out, domain.PivotPoint{
				Timestamp: candles[i].Timestamp,
				Price:     candles[i].Low,
				Kind:      domain.PointTrough,
				Index:     i,
			})
		}
	}
	return out
}

// Peaks filters pivots down to Peak kind, in ascending index order.
func Peaks(pivots []domain.PivotPoint) []domain.PivotPoint {
	return filterKind(pivots, domain.PointPeak)
}

// Troughs filters pivots down to Trough kind, in ascending index order.
func Troughs(pivots []domain.PivotPoint) []domain.PivotPoint {
	return filterKind(pivots, domain.PointTrough)
}

func filterKind(pivots []domain.PivotPoint, kind domain.PointKind) []domain.PivotPoint {
	var out []domain.PivotPoint
	for _, p := range pivots {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// withinTolerance reports whether a and b are within eps of each other
// relative to their average magnitude.
func withinTolerance(a, b, eps float64) bool {
	ref := (a + b) / 2
	if ref == 0 {
		return a == b
	}
	return absf(a-b)/absf(ref) <= eps
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
