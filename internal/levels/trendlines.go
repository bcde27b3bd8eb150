package levels

import (
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/patterns"
)

// minLineSupport is how many pivots of a line's sign must lie within ε
// of it for the line to be accepted (spec §4.4 "Dynamic levels").
const minLineSupport = 3

// TrendLines implements spec §4.4 "Dynamic levels (trend lines)":
// every peak-pair and trough-pair slope is a line candidate, accepted
// when ≥3 pivots of its sign lie within ε of it.
func TrendLines(candles []domain.Candle) []domain.TrendLine {
	pivots := patterns.ExtractPivots(candles)
	peaks := patterns.Peaks(pivots)
	troughs := patterns.Troughs(pivots)

	var out []domain.TrendLine
	out = append(out, candidateLines(peaks, domain.PointPeak)...)
	out = append(out, candidateLines(troughs, domain.PointTrough)...)
	return out
}

func candidateLines(pivots []domain.PivotPoint, kind domain.PointKind) []domain.TrendLine {
	var out []domain.TrendLine
	seen := make(map[domain.TrendLine]bool)

	for i := 0; i < len(pivots); i++ {
		for j := i + 1; j < len(pivots); j++ {
			a, b := pivots[i], pivots[j]
			if a.Index == b.Index {
				continue
			}
			slope := (b.Price - a.Price) / float64(b.Index-a.Index)
			intercept := a.Price - slope*float64(a.Index)

			support := 0
			for _, p := range pivots {
				line := slope*float64(p.Index) + intercept
				if line == 0 {
					continue
				}
				if absf(p.Price-line)/absf(line) <= Tolerance {
					support++
				}
			}
			if support < minLineSupport {
				continue
			}

			line := domain.TrendLine{Slope: slope, Intercept: intercept, Kind: kind}
			if !seen[line] {
				seen[line] = true
				out = append(out, line)
			}
		}
	}
	return out
}
