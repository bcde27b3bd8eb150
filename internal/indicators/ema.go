package indicators

import (
	"strconv"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// emaSeries computes the EMA(period) series over closes, seeded by
// SMA(period) at the first emission (spec §4.2). Returns a slice aligned
// to closes[period-1:] — emaSeries[0] corresponds to closes[period-1].
func emaSeries(closes []float64, period int) []float64 {
	if len(closes) < period {
		return nil
	}
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(closes)-period+1)
	out[0] = sma(closes, period-1, period)
	for i := period; i < len(closes); i++ {
		out[i-period+1] = closes[i]*alpha + out[i-period]*(1-alpha)
	}
	return out
}

// EMA computes the exponential moving average series for the given
// period, with the same rising/falling verdict rule as SMA.
func EMA(candles []domain.Candle, period int) []domain.IndicatorValue {
	closes := domain.Closes(candles)
	series := emaSeries(closes, period)
	if series == nil {
		return nil
	}

	out := make([]domain.IndicatorValue, 0, len(series))
	var prev float64
	for idx, val := range series {
		barIndex := idx + period - 1
		verdict := domain.Hold
		if idx > 0 {
			rising := val > prev
			falling := val < prev
			if closes[barIndex] > val && rising {
				verdict = domain.Buy
			} else if closes[barIndex] < val && falling {
				verdict = domain.Sell
			}
		}
		out = append(out, domain.IndicatorValue{
			Name:      "EMA_" + strconv.Itoa(period),
			Value:     val,
			Verdict:   verdict,
			Timestamp: candles[barIndex].Timestamp,
			Params:    map[string]float64{"period": float64(period)},
		})
		prev = val
	}
	return out
}
