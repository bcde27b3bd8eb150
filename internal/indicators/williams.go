package indicators

import "github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"

// WilliamsR computes Williams %R for the given period (default 14 per
// spec §4.2): -100*(highN-close)/(highN-lowN), -50 if range is 0.
func WilliamsR(candles []domain.Candle, period int) []domain.IndicatorValue {
	if len(candles) < period {
		return nil
	}

	out := make([]domain.IndicatorValue, 0, len(candles)-period+1)
	for i := period - 1; i < len(candles); i++ {
		hi, lo := highLow(candles, i-period+1, i)
		rng := hi - lo

		var value float64
		if rng == 0 {
			value = -50
		} else {
			value = -100 * (hi - candles[i].Close) / rng
		}

		verdict := domain.Hold
		switch {
		case value >= -20:
			verdict = domain.Sell
		case value <= -80:
			verdict = domain.Buy
		}

		out = append(out, domain.IndicatorValue{
			Name:      "WILLIAMS_R",
			Value:     value,
			Verdict:   verdict,
			Timestamp: candles[i].Timestamp,
			Params:    map[string]float64{"period": float64(period)},
		})
	}
	return out
}
