package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandleSemantics(t *testing.T) {
	cases := []struct {
		name string
		c    Candle
	}{
		{"bullish", Candle{Open: 100, High: 110, Low: 95, Close: 108}},
		{"bearish", Candle{Open: 108, High: 110, Low: 95, Close: 100}},
		{"doji", Candle{Open: 100, High: 101, Low: 99, Close: 100.05}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := tc.c
			assert.InDelta(t, abs(c.Close-c.Open), c.Body(), 1e-9)
			assert.InDelta(t, c.High-max(c.Open, c.Close), c.UpperShadow(), 1e-9)
			assert.InDelta(t, min(c.Open, c.Close)-c.Low, c.LowerShadow(), 1e-9)
			assert.Equal(t, c.Close > c.Open, c.Bullish())
			wantDoji := c.Body() <= 0.1*(c.High-c.Low)
			assert.Equal(t, wantDoji, c.Doji())
		})
	}
}

func TestChange24hAbsFromPct(t *testing.T) {
	// 10% gain on a 110 current price implies prior price ~100, abs
	// change ~10.
	got := Change24hAbsFromPct(110, 10)
	assert.InDelta(t, 10.0, got, 1e-9)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
