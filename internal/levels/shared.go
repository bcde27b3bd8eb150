// Package levels implements support/resistance level analysis (spec
// §4.4): pivot-based, volume-profile, Fibonacci and psychological
// methods, unioned and consolidated, plus dynamic trend lines.
package levels

import (
	"time"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// Tolerance is the price grouping/touch epsilon used across every level
// method (spec §4.4 "ε = 2%").
const Tolerance = 0.02

// MinCandles is the minimum series length required to run level analysis
// (spec §4.4).
const MinCandles = 20

// touchCount scans the full candle series for bars that touch price
// within tolerance p·ε (spec §4.4 "Touch test"): a bar touches if its
// high or low lies within tolerance of price, or its (low, high) range
// spans price outright.
func touchCount(candles []domain.Candle, price float64) (int, time.Time) {
	tol := absf(price) * Tolerance
	count := 0
	var last time.Time
	for _, c := range candles {
		touched := (c.Low <= price && price <= c.High) ||
			absf(c.High-price) <= tol ||
			absf(c.Low-price) <= tol
		if touched {
			count++
			if c.Timestamp.After(last) {
				last = c.Timestamp
			}
		}
	}
	return count, last
}

// strengthFromTouches implements the pivot-based strength score (spec
// §4.4 "Strength score"): a flat base for meeting the ≥2-touch retention
// floor, plus recency and touch-count bonuses, clamped to 1.
func strengthFromTouches(touches int, lastTouch, now time.Time) float64 {
	strength := 0.3

	age := now.Sub(lastTouch)
	switch {
	case age <= 7*24*time.Hour:
		strength += 0.3
	case age <= 30*24*time.Hour:
		strength += 0.2
	case age <= 90*24*time.Hour:
		strength += 0.1
	}

	switch {
	case touches >= 5:
		strength += 0.2
	case touches >= 3:
		strength += 0.1
	}

	return clamp01(strength)
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

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func seriesMinMax(candles []domain.Candle) (min, max float64) {
	min, max = candles[0].Low, candles[0].High
	for _, c := range candles[1:] {
		if c.Low < min {
			min = c.Low
		}
		if c.High > max {
			max = c.High
		}
	}
	return
}

func levelKindFor(price, currentPrice float64) domain.LevelKind {
	if price <= currentPrice {
		return domain.LevelSupport
	}
	return domain.LevelResistance
}

func isActive(price, currentPrice float64) bool {
	if currentPrice == 0 {
		return false
	}
	return absf(price-currentPrice)/absf(currentPrice) <= 0.10
}

func buildLevel(candles []domain.Candle, price float64, kind domain.LevelKind, now time.Time, base float64) domain.Level {
	touches, last := touchCount(candles, price)
	strength := strengthFromTouches(touches, last, now)
	if base > 0 {
		strength = clamp01(base + touchCountBonus(touches))
	}
	return domain.Level{
		Price:     price,
		Strength:  strength,
		Kind:      kind,
		Touches:   touches,
		LastTouch: last,
		Active:    false,
	}
}

func touchCountBonus(touches int) float64 {
	switch {
	case touches >= 5:
		return 0.2
	case touches >= 3:
		return 0.1
	default:
		return 0
	}
}
