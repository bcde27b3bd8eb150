package patterns

import "github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"

// detectTriangles looks for ascending/descending/symmetrical triangles
// over the full peak and trough sequences, which need at least two
// pivots each (spec §4.3 "Continuation — Triangles").
func detectTriangles(peaks, troughs []domain.PivotPoint) []domain.ChartPattern {
	var out []domain.ChartPattern
	if len(peaks) < 2 || len(troughs) < 2 {
		return out
	}

	peakFlat := sequenceFlat(peaks)
	peakDesc := sequenceDescending(peaks)
	troughFlat := sequenceFlat(troughs)
	troughAsc := sequenceAscending(troughs)

	start, end := spanOf(peaks, troughs)

	if peakFlat && troughAsc {
		flatPrice := meanPrice(peaks)
		target := flatPrice * 1.05
		out = append(out, triangleResult(domain.PatternTriangleAscending, 0.7, start, end, peaks, troughs, target))
	}
	if troughFlat && peakDesc {
		flatPrice := meanPrice(troughs)
		target := flatPrice * 0.95
		out = append(out, triangleResult(domain.PatternTriangleDescending, 0.7, start, end, peaks, troughs, target))
	}
	if peakDesc && troughAsc {
		initialRange := peaks[0].Price - troughs[0].Price
		finalRange := peaks[len(peaks)-1].Price - troughs[len(troughs)-1].Price
		if initialRange > 0 && finalRange/initialRange <= 0.7 {
			mid := (peaks[len(peaks)-1].Price + troughs[len(troughs)-1].Price) / 2
			upTarget := mid + 0.5*initialRange
			out = append(out, triangleResult(domain.PatternTriangleSymmetrical, 0.65, start, end, peaks, troughs, upTarget))
		}
	}

	return out
}

func triangleResult(kind domain.PatternKind, confidence float64, start, end domain.PivotPoint, peaks, troughs []domain.PivotPoint, target float64) domain.ChartPattern {
	pts := append(append([]domain.PivotPoint{}, peaks...), troughs...)
	return domain.ChartPattern{
		Kind:        kind,
		Confidence:  confidence,
		Start:       start.Timestamp,
		End:         end.Timestamp,
		KeyPoints:   pts,
		Description: kind.String(),
		Target:      &target,
		Bullish:     kind.IsBullish(),
		Reversal:    kind.IsReversal(),
	}
}

// detectWedges looks for rising/falling wedges: both peak and trough
// sequences trend the same direction while the range narrows (spec §4.3).
func detectWedges(peaks, troughs []domain.PivotPoint) []domain.ChartPattern {
	var out []domain.ChartPattern
	if len(peaks) < 2 || len(troughs) < 2 {
		return out
	}

	start, end := spanOf(peaks, troughs)
	initialRange := peaks[0].Price - troughs[0].Price
	finalRange := peaks[len(peaks)-1].Price - troughs[len(troughs)-1].Price
	narrowing := initialRange > 0 && finalRange < initialRange

	if sequenceAscending(peaks) && sequenceAscending(troughs) && narrowing {
		target := troughs[len(troughs)-1].Price
		out = append(out, triangleResult(domain.PatternWedgeRising, 0.6, start, end, peaks, troughs, target))
	}
	if sequenceDescending(peaks) && sequenceDescending(troughs) && narrowing {
		target := peaks[len(peaks)-1].Price
		out = append(out, triangleResult(domain.PatternWedgeFalling, 0.6, start, end, peaks, troughs, target))
	}
	return out
}

// detectRectangle looks for >=3 peaks and >=3 troughs each within
// tolerance of their own mean (spec §4.3 "Rectangle").
func detectRectangle(peaks, troughs []domain.PivotPoint) []domain.ChartPattern {
	var out []domain.ChartPattern
	if len(peaks) < 3 || len(troughs) < 3 {
		return out
	}
	if !sequenceFlat(peaks) || !sequenceFlat(troughs) {
		return out
	}

	resistance := meanPrice(peaks)
	support := meanPrice(troughs)
	target := resistance + (resistance - support)
	start, end := spanOf(peaks, troughs)

	out = append(out, triangleResult(domain.PatternRectangle, 0.65, start, end, peaks, troughs, target))
	return out
}

func sequenceFlat(pivots []domain.PivotPoint) bool {
	mean := meanPrice(pivots)
	for _, p := range pivots {
		if mean == 0 || absf(p.Price-mean)/mean > DefaultTolerance {
			return false
		}
	}
	return true
}

func sequenceAscending(pivots []domain.PivotPoint) bool {
	for i := 1; i < len(pivots); i++ {
		if pivots[i].Price <= pivots[i-1].Price {
			return false
		}
	}
	return len(pivots) >= 2
}

func sequenceDescending(pivots []domain.PivotPoint) bool {
	for i := 1; i < len(pivots); i++ {
		if pivots[i].Price >= pivots[i-1].Price {
			return false
		}
	}
	return len(pivots) >= 2
}

func meanPrice(pivots []domain.PivotPoint) float64 {
	if len(pivots) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range pivots {
		sum += p.Price
	}
	return sum / float64(len(pivots))
}

func spanOf(peaks, troughs []domain.PivotPoint) (start, end domain.PivotPoint) {
	all := append(append([]domain.PivotPoint{}, peaks...), troughs...)
	start, end = all[0], all[0]
	for _, p := range all {
		if p.Index < start.Index {
			start = p
		}
		if p.Index > end.Index {
			end = p
		}
	}
	return
}
