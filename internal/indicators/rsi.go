package indicators

import (
	"strconv"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// DefaultRSIPeriod is the conventional RSI lookback (spec §4.2).
const DefaultRSIPeriod = 14

// RSI computes the Relative Strength Index series for the given period.
//
// Deliberately uses simple rolling averages for avgGain/avgLoss, not
// Wilder's recursive smoothing — this is the engine's documented,
// intentional contract (spec §4.2, §9 open question), not an
// approximation of Wilder's method.
func RSI(candles []domain.Candle, period int) []domain.IndicatorValue {
	closes := domain.Closes(candles)
	if len(closes) < period+1 {
		return nil
	}

	deltas := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		deltas[i-1] = closes[i] - closes[i-1]
	}

	out := make([]domain.IndicatorValue, 0, len(deltas)-period+1)
	for i := period - 1; i < len(deltas); i++ {
		var avgGain, avgLoss float64
		for j := i - period + 1; j <= i; j++ {
			if deltas[j] > 0 {
				avgGain += deltas[j]
			} else {
				avgLoss += -deltas[j]
			}
		}
		avgGain /= float64(period)
		avgLoss /= float64(period)

		var rsi float64
		if avgLoss == 0 {
			rsi = 100
		} else {
			rs := avgGain / avgLoss
			rsi = 100 - 100/(1+rs)
		}

		verdict := domain.Hold
		switch {
		case rsi >= 70:
			verdict = domain.Sell
		case rsi <= 30:
			verdict = domain.Buy
		}

		barIndex := i + 1 // deltas[i] is closes[barIndex]-closes[barIndex-1]
		out = append(out, domain.IndicatorValue{
			Name:      "RSI_" + strconv.Itoa(period),
			Value:     rsi,
			Verdict:   verdict,
			Timestamp: candles[barIndex].Timestamp,
			Params:    map[string]float64{"period": float64(period)},
		})
	}
	return out
}
