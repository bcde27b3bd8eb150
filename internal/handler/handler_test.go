package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/config"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/metrics"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/provider"
)

func newTestHandler(t *testing.T, primaryMux, secondaryMux *http.ServeMux) *Handler {
	t.Helper()
	primarySrv := httptest.NewServer(primaryMux)
	t.Cleanup(primarySrv.Close)
	secondarySrv := httptest.NewServer(secondaryMux)
	t.Cleanup(secondarySrv.Close)

	primary := provider.NewPrimary(provider.Config{BaseURL: primarySrv.URL})
	secondary := provider.NewSecondary(provider.Config{BaseURL: secondarySrv.URL})
	p := provider.NewWithSources(primary, secondary)

	return New(p, metrics.NewCollector(), config.Defaults())
}

func ascendingCandlesJSON(n int, base float64) string {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		c := base + float64(i)
		ts := start.AddDate(0, 0, i).Format(time.RFC3339)
		out += fmt.Sprintf(`{"time_open":"%s","open":%f,"high":%f,"low":%f,"close":%f,"volume":1000}`,
			ts, c, c+1, c-1, c)
	}
	out += "]"
	return out
}

// E4: a free-tier upstream returns 402 for historical candles, so the
// indicator tool fails with a payment-required message, but the price
// tool still succeeds.
func TestE4HandlerPaymentRequiredBlocksIndicatorsNotPrice(t *testing.T) {
	primaryMux := http.NewServeMux()
	primaryMux.HandleFunc("/tickers/btc-bitcoin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTC","rank":1,"quotes":{"USD":{"price":65000,"volume_24h":1000000,"percent_change_24h":2.5}}}`))
	})
	primaryMux.HandleFunc("/coins/btc-bitcoin/ohlcv/historical", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	})
	h := newTestHandler(t, primaryMux, http.NewServeMux())

	priceResult, err := h.GetCryptoPrice(context.Background(), "BTC")
	require.NoError(t, err)
	snap, ok := priceResult.(domain.PriceSnapshot)
	require.True(t, ok)
	assert.Equal(t, 65000.0, snap.Price)

	indicatorResult, err := h.GetTechnicalIndicators(context.Background(), "BTC", domain.Timeframe4h, nil)
	require.NoError(t, err)
	errMap, ok := indicatorResult.(map[string]interface{})
	require.True(t, ok, "expected an error map, got %#v", indicatorResult)
	msg, _ := errMap["error"].(string)
	assert.Contains(t, msg, "payment")
}

func TestGetFullAnalysisCachesWithinTTL(t *testing.T) {
	primaryMux := http.NewServeMux()
	calls := 0
	primaryMux.HandleFunc("/tickers/btc-bitcoin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTC","rank":1,"quotes":{"USD":{"price":65000,"volume_24h":1000000,"percent_change_24h":2.5}}}`))
	})
	primaryMux.HandleFunc("/coins/btc-bitcoin/ohlcv/historical", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(ascendingCandlesJSON(30, 100)))
	})
	h := newTestHandler(t, primaryMux, http.NewServeMux())

	ctx := context.Background()
	first, err := h.GetFullAnalysis(ctx, "BTC", domain.TimeframeDaily, domain.RiskModerate)
	require.NoError(t, err)
	_, ok := first.(FullAnalysisResult)
	require.True(t, ok)

	second, err := h.GetFullAnalysis(ctx, "BTC", domain.TimeframeDaily, domain.RiskModerate)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "expected the candle endpoint to be hit only once due to caching")
}

func TestMultiTimeframeAnalysisDegradesGracefully(t *testing.T) {
	primaryMux := http.NewServeMux()
	primaryMux.HandleFunc("/tickers/btc-bitcoin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTC","rank":1,"quotes":{"USD":{"price":65000,"volume_24h":1000000,"percent_change_24h":2.5}}}`))
	})
	primaryMux.HandleFunc("/coins/btc-bitcoin/ohlcv/historical", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") == "4h" {
			w.WriteHeader(http.StatusPaymentRequired)
			return
		}
		w.Write([]byte(ascendingCandlesJSON(30, 100)))
	})
	h := newTestHandler(t, primaryMux, http.NewServeMux())

	result, err := h.MultiTimeframeAnalysis(context.Background(), "BTC")
	require.NoError(t, err)
	mtf, ok := result.(MultiTimeframeResult)
	require.True(t, ok)

	_, has4h := mtf.Timeframes["4h"]
	assert.False(t, has4h, "4h should be omitted since its candle fetch failed")
	_, hasDaily := mtf.Timeframes["daily"]
	assert.True(t, hasDaily)
}
