package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

func makeCandles(closes []float64) []domain.Candle {
	out := make([]domain.Candle, len(closes))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = domain.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000 + float64(i),
		}
	}
	return out
}

func ascendingCloses(n int, start float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

func flatCloses(n int, value float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// E1 — ascending-trend series of 30 daily candles, closes 100..129.
func TestE1AscendingTrend(t *testing.T) {
	candles := makeCandles(ascendingCloses(30, 100))

	smaVals := SMA(candles, 5)
	require.NotEmpty(t, smaVals)
	last := smaVals[len(smaVals)-1]
	// mean of closes[25..29] = mean(125..129) = 127
	assert.InDelta(t, 127.0, last.Value, 1e-9)

	rsiVals := RSI(candles, 14)
	require.NotEmpty(t, rsiVals)
	assert.Greater(t, rsiVals[len(rsiVals)-1].Value, 50.0)

	// Trend-following indicators (SMA/EMA/OBV) agree on Buy for a
	// strictly ascending series; the composite score is the signed
	// average across the whole bag, oscillators included.
	smaVerdict := smaVals[len(smaVals)-1].Verdict
	assert.Equal(t, domain.Buy, smaVerdict)
	obvVals := OBV(candles)
	require.NotEmpty(t, obvVals)
	assert.Equal(t, domain.Buy, obvVals[len(obvVals)-1].Verdict)
}

// E3 — constant-volume flat series, all closes = 100 over 30 bars.
func TestE3FlatSeries(t *testing.T) {
	candles := makeCandles(flatCloses(30, 100))

	rsiVals := RSI(candles, 14)
	require.NotEmpty(t, rsiVals)
	for _, v := range rsiVals {
		assert.Equal(t, 100.0, v.Value) // avgLoss == 0 => 100
	}

	smaVals := SMA(candles, 5)
	for _, v := range smaVals {
		assert.Equal(t, domain.Hold, v.Verdict)
	}
}

func TestRSIRangeBound(t *testing.T) {
	candles := makeCandles([]float64{100, 105, 98, 110, 90, 120, 80, 130, 70, 140, 60, 150, 50, 160, 40, 170})
	vals := RSI(candles, 14)
	for _, v := range vals {
		assert.GreaterOrEqual(t, v.Value, 0.0)
		assert.LessOrEqual(t, v.Value, 100.0)
	}
}

func TestMovingAverageWarmup(t *testing.T) {
	candles := makeCandles(ascendingCloses(10, 1))
	assert.Len(t, SMA(candles, 5), 10-5+1)
	assert.Len(t, EMA(candles, 5), 10-5+1)
	assert.Nil(t, SMA(candles, 11))
	assert.Nil(t, EMA(candles, 11))
}

func TestCompositeThreshold(t *testing.T) {
	bag := func(buys, holds, sells int) []domain.IndicatorValue {
		var out []domain.IndicatorValue
		for i := 0; i < buys; i++ {
			out = append(out, domain.IndicatorValue{Verdict: domain.Buy})
		}
		for i := 0; i < holds; i++ {
			out = append(out, domain.IndicatorValue{Verdict: domain.Hold})
		}
		for i := 0; i < sells; i++ {
			out = append(out, domain.IndicatorValue{Verdict: domain.Sell})
		}
		return out
	}

	verdict, conf := Composite(bag(8, 2, 0))
	assert.Equal(t, domain.Buy, verdict)
	assert.InDelta(t, 0.4, conf, 1e-9) // score=8/10=0.8, conf=min(0.4,1)

	verdict, conf = Composite(bag(0, 2, 8))
	assert.Equal(t, domain.Sell, verdict)
	assert.InDelta(t, 0.4, conf, 1e-9)

	verdict, conf = Composite(bag(5, 0, 5))
	assert.Equal(t, domain.Hold, verdict)
	assert.Equal(t, 0.0, conf)
}

func TestStochasticRangeZero(t *testing.T) {
	candles := makeCandles(flatCloses(20, 50))
	for i := range candles {
		candles[i].High = 50
		candles[i].Low = 50
	}
	vals := Stochastic(candles, 14, 3)
	require.NotEmpty(t, vals)
	for _, v := range vals {
		assert.Equal(t, 50.0, v.Value)
	}
}

func TestWilliamsRRangeZero(t *testing.T) {
	candles := makeCandles(flatCloses(20, 50))
	for i := range candles {
		candles[i].High = 50
		candles[i].Low = 50
	}
	vals := WilliamsR(candles, 14)
	require.NotEmpty(t, vals)
	for _, v := range vals {
		assert.Equal(t, -50.0, v.Value)
	}
}

func TestMACDWarmup(t *testing.T) {
	short := makeCandles(ascendingCloses(30, 100))
	assert.Nil(t, MACD(short, 12, 26, 9))

	long := makeCandles(ascendingCloses(50, 100))
	vals := MACD(long, 12, 26, 9)
	require.NotEmpty(t, vals)
	last := vals[len(vals)-1]
	hist := last.Params["histogram"]
	if last.Value > last.Params["signal"] && hist > 0 {
		assert.Equal(t, domain.Buy, last.Verdict)
	}
}

func TestBollingerBandwidthNonNegative(t *testing.T) {
	candles := makeCandles(ascendingCloses(40, 100))
	vals := Bollinger(candles, 20, 2.0)
	require.NotEmpty(t, vals)
	for _, v := range vals {
		assert.GreaterOrEqual(t, v.Params["bandwidth"], 0.0)
	}
}

func TestOBVDirection(t *testing.T) {
	candles := makeCandles([]float64{100, 105, 103, 110})
	vals := OBV(candles)
	require.Len(t, vals, 3)
	assert.Equal(t, candles[1].Volume, vals[0].Value) // up bar adds volume
	assert.Equal(t, vals[0].Value-candles[2].Volume, vals[1].Value)
}
