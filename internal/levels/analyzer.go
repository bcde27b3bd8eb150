package levels

import (
	"time"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// Result is the combined output of level analysis: consolidated static
// levels plus the dynamic trend lines detected over the same series.
type Result struct {
	Levels     []domain.Level
	TrendLines []domain.TrendLine
}

// Analyze runs all four level methods (spec §4.4), unions and
// consolidates their output, and adds dynamic trend lines. Series
// shorter than MinCandles return ErrInsufficientData.
func Analyze(candles []domain.Candle, currentPrice float64, now time.Time) (Result, error) {
	if len(candles) < MinCandles {
		return Result{}, domain.NewError(domain.ErrInsufficientData, "levels.Analyze", "need at least 20 candles", nil)
	}

	var raw []domain.Level
	raw = append(raw, PivotLevels(candles, currentPrice, now)...)
	raw = append(raw, VolumeProfile(candles, currentPrice)...)
	raw = append(raw, Fibonacci(candles, currentPrice)...)
	raw = append(raw, Psychological(candles, currentPrice)...)

	consolidated := Consolidate(raw)
	for i := range consolidated {
		consolidated[i].Active = isActive(consolidated[i].Price, currentPrice)
	}

	return Result{
		Levels:     consolidated,
		TrendLines: TrendLines(candles),
	}, nil
}

// NearestSupport returns the highest level at or below price, whatever
// its Kind, used by the signal aggregator (spec §4.5) for stop/target
// placement.
func NearestSupport(levels []domain.Level, price float64) (domain.Level, bool) {
	return nearest(levels, price, true)
}

// NearestResistance returns the lowest level at or above price.
func NearestResistance(levels []domain.Level, price float64) (domain.Level, bool) {
	return nearest(levels, price, false)
}

func nearest(levels []domain.Level, price float64, below bool) (domain.Level, bool) {
	var best domain.Level
	found := false
	for _, lvl := range levels {
		if below && lvl.Price > price {
			continue
		}
		if !below && lvl.Price < price {
			continue
		}
		if !found {
			best, found = lvl, true
			continue
		}
		if below && lvl.Price > best.Price {
			best = lvl
		}
		if !below && lvl.Price < best.Price {
			best = lvl
		}
	}
	return best, found
}
