package patterns

import (
	"strconv"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// detectHeadAndShoulders scans peak triples (head & shoulders) and
// trough triples (inverse head & shoulders) for the spec §4.3 structure:
// middle strictly more extreme than the two outer points, outer points
// within eps of each other, with >=2 opposite pivots between the two
// shoulders forming a neckline.
func detectHeadAndShoulders(pivots []domain.PivotPoint) []domain.ChartPattern {
	var out []domain.ChartPattern

	peaks := Peaks(pivots)
	out = append(out, scanHS(pivots, peaks, domain.PointTrough, domain.PatternHeadAndShoulders, false)...)

	troughs := Troughs(pivots)
	out = append(out, scanHS(pivots, troughs, domain.PointPeak, domain.PatternInverseHeadAndShoulders, true)...)

	return out
}

func scanHS(all, sameKind []domain.PivotPoint, necklineKind domain.PointKind, kind domain.PatternKind, inverse bool) []domain.ChartPattern {
	var out []domain.ChartPattern
	for i := 0; i+2 < len(sameKind); i++ {
		left, head, right := sameKind[i], sameKind[i+1], sameKind[i+2]

		moreExtreme := head.Price > left.Price && head.Price > right.Price
		if inverse {
			moreExtreme = head.Price < left.Price && head.Price < right.Price
		}
		if !moreExtreme {
			continue
		}
		if !withinTolerance(left.Price, right.Price, DefaultTolerance) {
			continue
		}

		var neckPivots []domain.PivotPoint
		for _, p := range all {
			if p.Kind == necklineKind && p.Index > left.Index && p.Index < right.Index {
				neckPivots = append(neckPivots, p)
			}
		}
		if len(neckPivots) < 2 {
			continue
		}

		neckline := 0.0
		for _, p := range neckPivots {
			neckline += p.Price
		}
		neckline /= float64(len(neckPivots))

		shoulderDiff := absf(left.Price-right.Price) / ((left.Price + right.Price) / 2)
		prominence := absf(head.Price-neckline) / neckline
		necklineConsistency := necklineConsistencyScore(neckPivots, neckline)

		confidence := 0.5 + (DefaultTolerance-shoulderDiff)*10 + prominence*5 + necklineConsistency*5
		confidence = clamp01(confidence)

		headHeight := absf(head.Price - neckline)
		var target float64
		if inverse {
			target = neckline + headHeight
		} else {
			target = neckline - headHeight
		}
		stop := head.Price

		out = append(out, domain.ChartPattern{
			Kind:        kind,
			Confidence:  confidence,
			Start:       left.Timestamp,
			End:         right.Timestamp,
			KeyPoints:   []domain.PivotPoint{left, head, right},
			Description: kind.String() + " with neckline at " + formatPrice(neckline),
			Target:      &target,
			Stop:        &stop,
			Bullish:     kind.IsBullish(),
			Reversal:    kind.IsReversal(),
		})
	}
	return out
}

func necklineConsistencyScore(neckPivots []domain.PivotPoint, neckline float64) float64 {
	if neckline == 0 {
		return 0
	}
	maxDev := 0.0
	for _, p := range neckPivots {
		dev := absf(p.Price-neckline) / neckline
		if dev > maxDev {
			maxDev = dev
		}
	}
	return 1 - maxDev
}

// detectDoubleTriple scans for double/triple top and bottom patterns
// (spec §4.3): N same-type pivots within eps, with >=N-1 intermediate
// opposite pivots.
func detectDoubleTriple(pivots []domain.PivotPoint) []domain.ChartPattern {
	var out []domain.ChartPattern
	out = append(out, scanMultiple(pivots, Peaks(pivots), domain.PointTrough, 2, domain.PatternDoubleTop)...)
	out = append(out, scanMultiple(pivots, Peaks(pivots), domain.PointTrough, 3, domain.PatternTripleTop)...)
	out = append(out, scanMultiple(pivots, Troughs(pivots), domain.PointPeak, 2, domain.PatternDoubleBottom)...)
	out = append(out, scanMultiple(pivots, Troughs(pivots), domain.PointPeak, 3, domain.PatternTripleBottom)...)
	return out
}

func scanMultiple(all, sameKind []domain.PivotPoint, oppositeKind domain.PointKind, count int, kind domain.PatternKind) []domain.ChartPattern {
	var out []domain.ChartPattern
	for i := 0; i+count <= len(sameKind); i++ {
		group := sameKind[i : i+count]

		within := true
		mean := 0.0
		for _, p := range group {
			mean += p.Price
		}
		mean /= float64(len(group))
		variance := 0.0
		for _, p := range group {
			d := absf(p.Price-mean) / mean
			if d > DefaultTolerance {
				within = false
			}
			variance += d
		}
		variance /= float64(len(group))
		if !within {
			continue
		}

		needed := count - 1
		intermediates := 0
		for _, p := range all {
			if p.Kind == oppositeKind && p.Index > group[0].Index && p.Index < group[len(group)-1].Index {
				intermediates++
			}
		}
		if intermediates < needed {
			continue
		}

		height := 0.0
		for _, p := range all {
			if p.Kind == oppositeKind && p.Index > group[0].Index && p.Index < group[len(group)-1].Index {
				height = absf(mean - p.Price)
				break
			}
		}

		bullish := kind.IsBullish()
		var target float64
		if bullish {
			target = mean + height
		} else {
			target = mean - height
		}
		depth := height / mean
		confidence := clamp01(0.5 + (DefaultTolerance-variance)*15 + depth*5)

		pts := append([]domain.PivotPoint{}, group...)
		out = append(out, domain.ChartPattern{
			Kind:        kind,
			Confidence:  confidence,
			Start:       group[0].Timestamp,
			End:         group[len(group)-1].Timestamp,
			KeyPoints:   pts,
			Description: kind.String(),
			Target:      &target,
			Bullish:     bullish,
			Reversal:    kind.IsReversal(),
		})
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
