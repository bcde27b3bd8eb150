package indicators

import "github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"

// MACD computes the MACD line, signal line and histogram for fast/slow/
// signal periods (defaults 12, 26, 9 per spec §4.2). The signal line is
// an EMA of the MACD line seeded by a plain SMA of its first `signal`
// values.
func MACD(candles []domain.Candle, fast, slow, signal int) []domain.IndicatorValue {
	closes := domain.Closes(candles)

	emaFast := emaSeries(closes, fast) // aligned to closes[fast-1:]
	emaSlow := emaSeries(closes, slow) // aligned to closes[slow-1:]
	if emaFast == nil || emaSlow == nil {
		return nil
	}

	// Align both EMA series to the slow EMA's start (closes[slow-1]).
	offset := slow - fast
	macdLine := make([]float64, len(emaSlow))
	for i := range emaSlow {
		macdLine[i] = emaFast[i+offset] - emaSlow[i]
	}

	if len(macdLine) < signal {
		return nil
	}

	signalLine := make([]float64, len(macdLine)-signal+1)
	seed := 0.0
	for i := 0; i < signal; i++ {
		seed += macdLine[i]
	}
	signalLine[0] = seed / float64(signal)
	alpha := 2.0 / float64(signal+1)
	for i := signal; i < len(macdLine); i++ {
		signalLine[i-signal+1] = macdLine[i]*alpha + signalLine[i-signal]*(1-alpha)
	}

	out := make([]domain.IndicatorValue, 0, len(signalLine))
	for i, sig := range signalLine {
		macdVal := macdLine[i+signal-1]
		hist := macdVal - sig

		verdict := domain.Hold
		if macdVal > sig && hist > 0 {
			verdict = domain.Buy
		} else if macdVal < sig && hist < 0 {
			verdict = domain.Sell
		}

		barIndex := (slow - 1) + i + signal - 1
		out = append(out, domain.IndicatorValue{
			Name:      "MACD",
			Value:     macdVal,
			Verdict:   verdict,
			Timestamp: candles[barIndex].Timestamp,
			Params: map[string]float64{
				"signal":    sig,
				"histogram": hist,
			},
		})
	}
	return out
}
