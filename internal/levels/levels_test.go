package levels

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
			Volume:    1000 + float64(i),
		}
	}
	return out
}

func TestAnalyzeInsufficientData(t *testing.T) {
	candles := candlesFromCloses([]float64{100, 101, 102})
	_, err := Analyze(candles, 101, time.Now())
	require.Error(t, err)
	domErr, ok := err.(*domain.Error)
	require.True(t, ok)
	assert.Equal(t, domain.ErrInsufficientData, domErr.Kind)
}

func TestAnalyzeConfidenceAndStrengthBounds(t *testing.T) {
	closes := []float64{
		100, 102, 98, 103, 97, 104, 96, 105, 95, 106,
		94, 107, 93, 108, 92, 109, 91, 110, 90, 111,
		89, 112, 88, 113, 87,
	}
	candles := candlesFromCloses(closes)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	result, err := Analyze(candles, 100, now)
	require.NoError(t, err)

	for _, lvl := range result.Levels {
		assert.GreaterOrEqual(t, lvl.Strength, 0.0)
		assert.LessOrEqual(t, lvl.Strength, 1.0)
		assert.GreaterOrEqual(t, lvl.Touches, 1)
	}
}

func TestConsolidateMergesNearbyLevels(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	levels := []domain.Level{
		{Price: 100.0, Strength: 0.4, Kind: domain.LevelSupport, Touches: 2, LastTouch: base},
		{Price: 100.5, Strength: 0.6, Kind: domain.LevelPivot, Touches: 3, LastTouch: base.AddDate(0, 0, 1)},
		{Price: 200.0, Strength: 0.5, Kind: domain.LevelResistance, Touches: 1, LastTouch: base},
	}
	merged := Consolidate(levels)
	require.Len(t, merged, 2)

	assert.InDelta(t, 100.25, merged[0].Price, 1e-9)
	assert.Equal(t, 5, merged[0].Touches)
	assert.InDelta(t, 0.7, merged[0].Strength, 1e-9) // 0.6 max + 1*0.1

	assert.InDelta(t, 200.0, merged[1].Price, 1e-9)
}

func TestPsychologicalStepByMagnitude(t *testing.T) {
	assert.Equal(t, 0.1, psychologicalStep(0.5))
	assert.Equal(t, 1.0, psychologicalStep(5))
	assert.Equal(t, 10.0, psychologicalStep(50))
	assert.Equal(t, 100.0, psychologicalStep(500))
	assert.Equal(t, 1000.0, psychologicalStep(5000))
	assert.Equal(t, 10000.0, psychologicalStep(50000))
}

func TestFibonacciRatiosSpanMinMax(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	candles := candlesFromCloses(closes)
	levels := Fibonacci(candles, 110)
	for _, lvl := range levels {
		assert.GreaterOrEqual(t, lvl.Price, 99.0)
		assert.LessOrEqual(t, lvl.Price, 125.0)
		assert.Equal(t, domain.LevelFibonacci, lvl.Kind)
	}
}

func TestNearestSupportResistance(t *testing.T) {
	levels := []domain.Level{
		{Price: 90, Kind: domain.LevelSupport},
		{Price: 95, Kind: domain.LevelSupport},
		{Price: 110, Kind: domain.LevelResistance},
		{Price: 120, Kind: domain.LevelResistance},
	}
	support, ok := NearestSupport(levels, 100)
	require.True(t, ok)
	assert.Equal(t, 95.0, support.Price)

	resistance, ok := NearestResistance(levels, 100)
	require.True(t, ok)
	assert.Equal(t, 110.0, resistance.Price)
}
