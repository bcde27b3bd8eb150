package levels

import (
	"sort"
	"time"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/patterns"
)

// PivotLevels implements the pivot-based method (spec §4.4 "1."): local
// highs/lows are grouped within ε, and groups backed by ≥2 pivots become
// candidate levels — peaks classify as resistance, troughs as support.
func PivotLevels(candles []domain.Candle, currentPrice float64, now time.Time) []domain.Level {
	pivots := patterns.ExtractPivots(candles)

	var out []domain.Level
	out = append(out, pivotGroupLevels(candles, patterns.Peaks(pivots), domain.LevelResistance, now)...)
	out = append(out, pivotGroupLevels(candles, patterns.Troughs(pivots), domain.LevelSupport, now)...)
	return out
}

func pivotGroupLevels(candles []domain.Candle, pivots []domain.PivotPoint, kind domain.LevelKind, now time.Time) []domain.Level {
	if len(pivots) == 0 {
		return nil
	}
	prices := make([]float64, len(pivots))
	for i, p := range pivots {
		prices[i] = p.Price
	}
	sort.Float64s(prices)

	groups := clusterPrices(prices, Tolerance)

	var out []domain.Level
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		mean := 0.0
		for _, p := range group {
			mean += p
		}
		mean /= float64(len(group))

		lvl := buildLevel(candles, mean, kind, now, 0)
		out = append(out, lvl)
	}
	return out
}

// clusterPrices groups sorted prices greedily: a price joins the running
// group if it lies within eps of the group's running mean, else it
// starts a new group.
func clusterPrices(sorted []float64, eps float64) [][]float64 {
	if len(sorted) == 0 {
		return nil
	}
	var groups [][]float64
	current := []float64{sorted[0]}
	mean := sorted[0]

	for _, p := range sorted[1:] {
		ref := mean
		within := ref != 0 && absf(p-ref)/absf(ref) <= eps
		if within {
			current = append(current, p)
			sum := 0.0
			for _, v := range current {
				sum += v
			}
			mean = sum / float64(len(current))
			continue
		}
		groups = append(groups, current)
		current = []float64{p}
		mean = p
	}
	groups = append(groups, current)
	return groups
}
