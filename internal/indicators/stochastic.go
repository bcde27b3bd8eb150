package indicators

import "github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"

// Stochastic computes %K/%D over lookback k and smoothing d (defaults
// 14, 3 per spec §4.2). Emits the %K value; %D is carried in Params.
func Stochastic(candles []domain.Candle, k, d int) []domain.IndicatorValue {
	if len(candles) < k {
		return nil
	}

	percentK := make([]float64, len(candles)-k+1)
	for i := k - 1; i < len(candles); i++ {
		hi, lo := highLow(candles, i-k+1, i)
		rng := hi - lo
		if rng == 0 {
			percentK[i-k+1] = 50
			continue
		}
		percentK[i-k+1] = 100 * (candles[i].Close - lo) / rng
	}

	if len(percentK) < d {
		return nil
	}

	out := make([]domain.IndicatorValue, 0, len(percentK)-d+1)

	for i := d - 1; i < len(percentK); i++ {
		sum := 0.0
		for j := i - d + 1; j <= i; j++ {
			sum += percentK[j]
		}
		dVal := sum / float64(d)
		kVal := percentK[i]

		verdict := domain.Hold
		switch {
		case kVal >= 80 && dVal >= 80:
			verdict = domain.Sell
		case kVal <= 20 && dVal <= 20:
			verdict = domain.Buy
		case kVal > dVal && kVal < 80:
			verdict = domain.Buy
		case kVal < dVal && kVal > 20:
			verdict = domain.Sell
		}

		barIndex := i + k - 1
		out = append(out, domain.IndicatorValue{
			Name:      "STOCH",
			Value:     kVal,
			Verdict:   verdict,
			Timestamp: candles[barIndex].Timestamp,
			Params:    map[string]float64{"k": kVal, "d": dVal},
		})
	}
	return out
}

func highLow(candles []domain.Candle, from, to int) (hi, lo float64) {
	hi, lo = candles[from].High, candles[from].Low
	for i := from + 1; i <= to; i++ {
		if candles[i].High > hi {
			hi = candles[i].High
		}
		if candles[i].Low < lo {
			lo = candles[i].Low
		}
	}
	return
}
