package patterns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

func candlesFromCloses(closes []float64) []domain.Candle {
	out := make([]domain.Candle, len(closes))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = domain.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return out
}

func TestRecognizeBelowMinCandles(t *testing.T) {
	candles := candlesFromCloses([]float64{100, 101, 102})
	assert.Nil(t, Recognize(candles))
}

// E2 — symmetric head-and-shoulders.
func TestE2HeadAndShoulders(t *testing.T) {
	closes := []float64{100, 105, 110, 108, 105, 110, 115, 120, 118, 115, 110, 108, 112, 110, 108, 105, 102, 100, 98, 95}
	candles := candlesFromCloses(closes)

	results := Recognize(candles)
	require.NotEmpty(t, results)

	var found *domain.ChartPattern
	for i := range results {
		if results[i].Kind == domain.PatternHeadAndShoulders {
			found = &results[i]
			break
		}
	}
	require.NotNil(t, found, "expected a head-and-shoulders detection")
	assert.GreaterOrEqual(t, found.Confidence, 0.5)
	require.NotNil(t, found.Target)
	require.NotNil(t, found.Stop)

	// KeyPoints are {left, head, right}; the neckline sits below the head
	// for a standard (non-inverse) pattern, and the target projects even
	// further below it.
	assert.Less(t, *found.Target, found.KeyPoints[1].Price)
}

// E6 — rectangle over 10 bars, peaks [101, 100.5, 101.2], troughs
// [90, 90.3, 89.8], target ≈ 101 + (101-90) = 112.
func TestE6Rectangle(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	highs := []float64{98, 101, 92, 100.5, 93, 101.2, 94, 92, 90, 88}
	lows := []float64{80, 95, 90, 95, 90.3, 95, 89.8, 92, 82, 80}

	candles := make([]domain.Candle, len(highs))
	for i := range highs {
		mid := (highs[i] + lows[i]) / 2
		candles[i] = domain.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      mid,
			High:      highs[i],
			Low:       lows[i],
			Close:     mid,
			Volume:    1000,
		}
	}

	results := Recognize(candles)
	require.NotEmpty(t, results)

	var found *domain.ChartPattern
	for i := range results {
		if results[i].Kind == domain.PatternRectangle {
			found = &results[i]
			break
		}
	}
	require.NotNil(t, found, "expected a rectangle detection")
	assert.InDelta(t, 0.65, found.Confidence, 1e-9)
	require.NotNil(t, found.Target)
	assert.InDelta(t, 112.0, *found.Target, 1.0)
}

// E5 — a bearish bar (open=110, close=100) immediately followed by a
// bullish bar (open=99, close=111) that fully engulfs it.
func TestE5BullishEngulfing(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	filler := []float64{50, 51, 50, 51, 50, 51, 50, 51}
	candles := make([]domain.Candle, 0, len(filler)+2)
	for i, c := range filler {
		candles = append(candles, domain.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1.5,
			Low:       c - 1.5,
			Close:     c + 1,
			Volume:    1000,
		})
	}
	idx := len(candles)
	candles = append(candles,
		domain.Candle{Timestamp: base.AddDate(0, 0, idx), Open: 110, High: 111, Low: 99, Close: 100, Volume: 1000},
		domain.Candle{Timestamp: base.AddDate(0, 0, idx+1), Open: 99, High: 112, Low: 98, Close: 111, Volume: 1000},
	)

	results := Recognize(candles)
	require.NotEmpty(t, results)

	var found *domain.ChartPattern
	for i := range results {
		if results[i].Kind == domain.PatternEngulfingBullish {
			found = &results[i]
			break
		}
	}
	require.NotNil(t, found, "expected a bullish engulfing detection")
	assert.True(t, found.Bullish)
	assert.InDelta(t, 0.7, found.Confidence, 1e-9)
}

// Property: every detected pattern's confidence lies within [0,1].
func TestPatternConfidenceBounds(t *testing.T) {
	series := [][]float64{
		{100, 105, 110, 108, 105, 110, 115, 120, 118, 115, 110, 108, 112, 110, 108, 105, 102, 100, 98, 95},
		{100, 102, 104, 103, 101, 99, 97, 98, 100, 102, 104, 106, 108, 107, 105, 103, 101, 99, 97, 95},
		{50, 52, 51, 53, 52, 54, 53, 55, 54, 56, 55, 57, 56, 58, 57, 59, 58, 60, 59, 61},
	}
	for _, closes := range series {
		candles := candlesFromCloses(closes)
		for _, p := range Recognize(candles) {
			assert.GreaterOrEqual(t, p.Confidence, 0.0)
			assert.LessOrEqual(t, p.Confidence, 1.0)
		}
	}
}

func TestRecognizeSortedByConfidenceDescending(t *testing.T) {
	closes := []float64{100, 105, 110, 108, 105, 110, 115, 120, 118, 115, 110, 108, 112, 110, 108, 105, 102, 100, 98, 95}
	results := Recognize(candlesFromCloses(closes))
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Confidence, results[i].Confidence)
	}
}
