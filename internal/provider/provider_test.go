package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

func newTestPrimary(t *testing.T, mux *http.ServeMux) (*Primary, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(mux)
	p := NewPrimary(Config{BaseURL: srv.URL})
	return p, srv
}

func newTestSecondary(t *testing.T, mux *http.ServeMux) (*Secondary, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(mux)
	s := NewSecondary(Config{BaseURL: srv.URL})
	return s, srv
}

// E4: a free-tier upstream returns 402 for the historical-candle
// endpoint, but the ticker (price) endpoint still succeeds — the
// indicator tool fails with PaymentRequired while the price tool keeps
// working.
func TestE4PaymentRequiredBlocksCandlesNotSnapshot(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tickers/btc-bitcoin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTC","rank":1,"quotes":{"USD":{"price":65000,"volume_24h":1000000,"market_cap":0,"percent_change_24h":2.5}}}`))
	})
	mux.HandleFunc("/coins/btc-bitcoin/ohlcv/historical", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	})
	primary, srv := newTestPrimary(t, mux)
	defer srv.Close()

	snap, err := primary.Snapshot(context.Background(), "btc-bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "BTC", snap.Symbol)
	assert.Equal(t, 65000.0, snap.Price)

	_, err = primary.Candles(context.Background(), "btc-bitcoin", domain.TimeframeDaily, 30)
	require.Error(t, err)
	domErr, ok := err.(*domain.Error)
	require.True(t, ok)
	assert.Equal(t, domain.ErrPaymentRequired, domErr.Kind)
}

func TestProviderFallsBackToSecondaryOnResolveFailure(t *testing.T) {
	primaryMux := http.NewServeMux()
	primaryMux.HandleFunc("/coins", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	primary, primarySrv := newTestPrimary(t, primaryMux)
	defer primarySrv.Close()

	secondaryMux := http.NewServeMux()
	secondaryMux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":[{"chainId":"solana","dexId":"raydium","baseToken":{"address":"abc123","symbol":"ZZZ"},"priceUsd":"1.23","volume":{"h24":5000},"priceChange":{"h24":3.1},"liquidity":{"usd":20000}}]}`))
	})
	secondary, secondarySrv := newTestSecondary(t, secondaryMux)
	defer secondarySrv.Close()

	p := &Provider{
		primary:       primary,
		secondary:     secondary,
		idCache:       NewTTLCache[resolution](0),
		snapshotCache: NewTTLCache[domain.PriceSnapshot](SnapshotTTL),
		candleCache:   NewTTLCache[[]domain.Candle](CandleTTL),
	}

	res, err := p.resolve(context.Background(), "ZZZ")
	require.NoError(t, err)
	assert.Equal(t, "secondary", res.source)
	assert.Equal(t, "solana:abc123", res.id)
}

func TestProviderCandlesFailInsufficientDataWhenSecondaryOnly(t *testing.T) {
	primaryMux := http.NewServeMux()
	primaryMux.HandleFunc("/coins", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	primary, primarySrv := newTestPrimary(t, primaryMux)
	defer primarySrv.Close()

	secondaryMux := http.NewServeMux()
	secondaryMux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":[{"chainId":"solana","dexId":"raydium","baseToken":{"address":"abc123","symbol":"ZZZ"},"priceUsd":"1.23","volume":{"h24":5000},"priceChange":{"h24":3.1},"liquidity":{"usd":20000}}]}`))
	})
	secondary, secondarySrv := newTestSecondary(t, secondaryMux)
	defer secondarySrv.Close()

	p := &Provider{
		primary:       primary,
		secondary:     secondary,
		idCache:       NewTTLCache[resolution](0),
		snapshotCache: NewTTLCache[domain.PriceSnapshot](SnapshotTTL),
		candleCache:   NewTTLCache[[]domain.Candle](CandleTTL),
	}

	_, err := p.Candles(context.Background(), "ZZZ", domain.TimeframeDaily, 30)
	require.Error(t, err)
	domErr, ok := err.(*domain.Error)
	require.True(t, ok)
	assert.Equal(t, domain.ErrInsufficientData, domErr.Kind)
}

func TestProviderSnapshotFallsBackWhenPrimaryFetchFails(t *testing.T) {
	primaryMux := http.NewServeMux()
	primaryMux.HandleFunc("/tickers/btc-bitcoin", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	primary, primarySrv := newTestPrimary(t, primaryMux)
	defer primarySrv.Close()

	secondaryMux := http.NewServeMux()
	btcPairs := `{"pairs":[{"chainId":"ethereum","dexId":"uniswap","baseToken":{"address":"0xabc","symbol":"BTC"},"priceUsd":"64950.5","volume":{"h24":900000},"priceChange":{"h24":1.1},"liquidity":{"usd":300000}}]}`
	secondaryMux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(btcPairs))
	})
	secondaryMux.HandleFunc("/tokens/0xabc", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(btcPairs))
	})
	secondary, secondarySrv := newTestSecondary(t, secondaryMux)
	defer secondarySrv.Close()

	p := &Provider{
		primary:       primary,
		secondary:     secondary,
		idCache:       NewTTLCache[resolution](0),
		snapshotCache: NewTTLCache[domain.PriceSnapshot](SnapshotTTL),
		candleCache:   NewTTLCache[[]domain.Candle](CandleTTL),
	}
	p.idCache.Set("BTC", resolution{id: "btc-bitcoin", source: "primary"})

	snap, err := p.Snapshot(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, "secondary", snap.Source)
	assert.Equal(t, 64950.5, snap.Price)
}

func TestProviderHealthReportsClosedCircuits(t *testing.T) {
	p := New(Config{}, Config{})
	h := p.Health()
	assert.Equal(t, "closed", h.PrimaryState)
	assert.Equal(t, "closed", h.SecondaryState)
}
