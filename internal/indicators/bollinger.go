package indicators

import (
	"math"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// Bollinger computes Bollinger Bands for period/k (defaults 20, 2.0 per
// spec §4.2): middle = SMA(period), sigma from population variance,
// bands = middle +/- k*sigma, %B = (close-lower)/(upper-lower).
func Bollinger(candles []domain.Candle, period int, k float64) []domain.IndicatorValue {
	closes := domain.Closes(candles)
	if len(closes) < period {
		return nil
	}

	out := make([]domain.IndicatorValue, 0, len(closes)-period+1)
	for i := period - 1; i < len(closes); i++ {
		middle := sma(closes, i, period)

		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - middle
			variance += d * d
		}
		variance /= float64(period)
		sigma := math.Sqrt(variance)

		upper := middle + k*sigma
		lower := middle - k*sigma
		bandwidth := upper - lower

		var percentB float64
		if bandwidth != 0 {
			percentB = (closes[i] - lower) / bandwidth
		}

		verdict := domain.Hold
		switch {
		case percentB >= 1:
			verdict = domain.Sell
		case percentB <= 0:
			verdict = domain.Buy
		}

		out = append(out, domain.IndicatorValue{
			Name:      "BOLLINGER",
			Value:     middle,
			Verdict:   verdict,
			Timestamp: candles[i].Timestamp,
			Params: map[string]float64{
				"upper":     upper,
				"lower":     lower,
				"bandwidth": bandwidth,
				"percent_b": percentB,
			},
		})
	}
	return out
}
