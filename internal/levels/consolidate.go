package levels

import (
	"sort"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// Consolidate implements spec §4.4 "Consolidation": sort the unioned
// levels by price, merge groups within ε, and reduce each group to a
// single level (mean price, strongest member's kind, summed touches,
// most-recent last-touch, active if any member is active).
func Consolidate(levels []domain.Level) []domain.Level {
	if len(levels) == 0 {
		return nil
	}
	sorted := append([]domain.Level{}, levels...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })

	var groups [][]domain.Level
	current := []domain.Level{sorted[0]}
	mean := sorted[0].Price

	for _, lvl := range sorted[1:] {
		within := mean != 0 && absf(lvl.Price-mean)/absf(mean) <= Tolerance
		if within {
			current = append(current, lvl)
			sum := 0.0
			for _, m := range current {
				sum += m.Price
			}
			mean = sum / float64(len(current))
			continue
		}
		groups = append(groups, current)
		current = []domain.Level{lvl}
		mean = lvl.Price
	}
	groups = append(groups, current)

	out := make([]domain.Level, 0, len(groups))
	for _, group := range groups {
		out = append(out, mergeGroup(group))
	}
	return out
}

func mergeGroup(group []domain.Level) domain.Level {
	sum := 0.0
	maxStrength := 0.0
	touches := 0
	active := false
	last := group[0].LastTouch
	kind := group[0].Kind

	for _, lvl := range group {
		sum += lvl.Price
		if lvl.Strength > maxStrength {
			maxStrength = lvl.Strength
			kind = lvl.Kind
		}
		touches += lvl.Touches
		if lvl.Active {
			active = true
		}
		if lvl.LastTouch.After(last) {
			last = lvl.LastTouch
		}
	}

	strength := clamp01(maxStrength + float64(len(group)-1)*0.1)

	return domain.Level{
		Price:     sum / float64(len(group)),
		Strength:  strength,
		Kind:      kind,
		Touches:   touches,
		LastTouch: last,
		Active:    active,
	}
}
