package indicators

import "github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"

// OBV computes the running On-Balance-Volume series (spec §4.2): add
// volume on up-close bars, subtract on down-close, unchanged on equal
// close. Emits from the second bar onward (the first bar has no prior
// close to compare against).
func OBV(candles []domain.Candle) []domain.IndicatorValue {
	if len(candles) < 2 {
		return nil
	}

	out := make([]domain.IndicatorValue, 0, len(candles)-1)
	running := 0.0
	var prevOBV float64
	havePrev := false

	for i := 1; i < len(candles); i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			running += candles[i].Volume
		case candles[i].Close < candles[i-1].Close:
			running -= candles[i].Volume
		}

		verdict := domain.Hold
		if havePrev {
			if running > prevOBV {
				verdict = domain.Buy
			} else if running < prevOBV {
				verdict = domain.Sell
			}
		}

		out = append(out, domain.IndicatorValue{
			Name:      "OBV",
			Value:     running,
			Verdict:   verdict,
			Timestamp: candles[i].Timestamp,
		})
		prevOBV = running
		havePrev = true
	}
	return out
}
