// Package indicators implements the rolling-window technical indicator
// engine: one IndicatorValue emitted per bar once warm-up is satisfied.
package indicators

import (
	"strconv"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// sma is the arithmetic mean of the last `period` values in closes ending
// at index i (inclusive).
func sma(closes []float64, i, period int) float64 {
	sum := 0.0
	for j := i - period + 1; j <= i; j++ {
		sum += closes[j]
	}
	return sum / float64(period)
}

// SMA computes the simple moving average series for the given period.
// Emits len(candles)-period+1 values for len(candles) >= period, zero
// otherwise (spec testable property 3).
func SMA(candles []domain.Candle, period int) []domain.IndicatorValue {
	closes := domain.Closes(candles)
	if len(closes) < period {
		return nil
	}

	out := make([]domain.IndicatorValue, 0, len(closes)-period+1)
	var prev float64
	havePrev := false

	for i := period - 1; i < len(closes); i++ {
		val := sma(closes, i, period)
		verdict := domain.Hold
		if havePrev {
			rising := val > prev
			falling := val < prev
			if closes[i] > val && rising {
				verdict = domain.Buy
			} else if closes[i] < val && falling {
				verdict = domain.Sell
			}
		}
		out = append(out, domain.IndicatorValue{
			Name:      smaName(period),
			Value:     val,
			Verdict:   verdict,
			Timestamp: candles[i].Timestamp,
			Params:    map[string]float64{"period": float64(period)},
		})
		prev = val
		havePrev = true
	}
	return out
}

func smaName(period int) string {
	return "SMA_" + strconv.Itoa(period)
}
