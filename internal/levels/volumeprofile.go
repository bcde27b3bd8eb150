package levels

import (
	"sort"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// volumeProfileBins is the fixed bin count for the volume-profile method
// (spec §4.4 "2.").
const volumeProfileBins = 50

// topVolumeBins is how many of the highest-volume bins are considered
// for level derivation.
const topVolumeBins = 10

// VolumeProfile implements the volume-profile method (spec §4.4 "2."):
// bucket the price range into 50 equal-width bins, accumulate volume at
// each candle's typical price, and derive a level at the center of each
// of the top-10 bins that has ≥2 touches over the series.
func VolumeProfile(candles []domain.Candle, currentPrice float64) []domain.Level {
	min, max := seriesMinMax(candles)
	if max <= min {
		return nil
	}
	width := (max - min) / volumeProfileBins

	volumes := make([]float64, volumeProfileBins)
	total := 0.0
	for _, c := range candles {
		typical := (c.High + c.Low + c.Close) / 3
		idx := int((typical - min) / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= volumeProfileBins {
			idx = volumeProfileBins - 1
		}
		volumes[idx] += c.Volume
		total += c.Volume
	}
	if total == 0 {
		return nil
	}

	type bin struct {
		index  int
		volume float64
	}
	bins := make([]bin, volumeProfileBins)
	for i, v := range volumes {
		bins[i] = bin{i, v}
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].volume > bins[j].volume })
	if len(bins) > topVolumeBins {
		bins = bins[:topVolumeBins]
	}

	var out []domain.Level
	for _, b := range bins {
		if b.volume == 0 {
			continue
		}
		center := min + width*(float64(b.index)+0.5)
		touches, last := touchCount(candles, center)
		if touches < 2 {
			continue
		}
		share := b.volume / total
		strength := clamp01(10 * share)
		out = append(out, domain.Level{
			Price:     center,
			Strength:  strength,
			Kind:      levelKindFor(center, currentPrice),
			Touches:   touches,
			LastTouch: last,
			Active:    isActive(center, currentPrice),
		})
	}
	return out
}
