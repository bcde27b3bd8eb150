package patterns

import (
	"sort"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// Recognize runs the full pattern-detection pipeline over a candle series
// (spec §4.3): pivot extraction feeds the reversal and continuation
// detectors, the candlestick detector scans the raw series directly, and
// results are sorted by descending confidence. Series shorter than
// MinCandles yield no patterns.
func Recognize(candles []domain.Candle) []domain.ChartPattern {
	if len(candles) < MinCandles {
		return nil
	}

	pivots := ExtractPivots(candles)
	peaks := Peaks(pivots)
	troughs := Troughs(pivots)

	var out []domain.ChartPattern
	out = append(out, detectHeadAndShoulders(pivots)...)
	out = append(out, detectDoubleTriple(pivots)...)
	out = append(out, detectTriangles(peaks, troughs)...)
	out = append(out, detectWedges(peaks, troughs)...)
	out = append(out, detectRectangle(peaks, troughs)...)
	out = append(out, detectCandlesticks(candles)...)

	sort.Slice(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})

	return out
}
