package levels

import "github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"

// fibonacciRatios is the retracement ladder (spec §4.4 "3.").
var fibonacciRatios = []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1}

const fibonacciBaseStrength = 0.5

// Fibonacci implements the Fibonacci method (spec §4.4 "3."): levels at
// fixed ratios between the series min and max, kept only if touched at
// least once.
func Fibonacci(candles []domain.Candle, currentPrice float64) []domain.Level {
	min, max := seriesMinMax(candles)
	span := max - min

	var out []domain.Level
	for _, ratio := range fibonacciRatios {
		price := max - span*ratio
		touches, last := touchCount(candles, price)
		if touches < 1 {
			continue
		}
		out = append(out, domain.Level{
			Price:     price,
			Strength:  clamp01(fibonacciBaseStrength + touchCountBonus(touches)),
			Kind:      domain.LevelFibonacci,
			Touches:   touches,
			LastTouch: last,
			Active:    isActive(price, currentPrice),
		})
	}
	return out
}
