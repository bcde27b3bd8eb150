package levels

import (
	"math"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

const psychologicalBaseStrength = 0.4

// psychologicalStep chooses the round-number grid step by current-price
// magnitude (spec §4.4 "4.").
func psychologicalStep(currentPrice float64) float64 {
	switch {
	case currentPrice < 1:
		return 0.1
	case currentPrice < 10:
		return 1
	case currentPrice < 100:
		return 10
	case currentPrice < 1000:
		return 100
	case currentPrice < 10000:
		return 1000
	default:
		return 10000
	}
}

// Psychological implements the round-number method (spec §4.4 "4."):
// gridpoints within the series range are kept if touched at least once.
func Psychological(candles []domain.Candle, currentPrice float64) []domain.Level {
	min, max := seriesMinMax(candles)
	step := psychologicalStep(currentPrice)

	start := math.Floor(min/step) * step

	var out []domain.Level
	for price := start; price <= max; price += step {
		if price < min {
			continue
		}
		touches, last := touchCount(candles, price)
		if touches < 1 {
			continue
		}
		out = append(out, domain.Level{
			Price:     price,
			Strength:  clamp01(psychologicalBaseStrength + touchCountBonus(touches)),
			Kind:      levelKindFor(price, currentPrice),
			Touches:   touches,
			LastTouch: last,
			Active:    isActive(price, currentPrice),
		})
	}
	return out
}
