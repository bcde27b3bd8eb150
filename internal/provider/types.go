// Package provider implements the data provider (spec §4.1): symbol
// resolution, snapshot and candle fetching across a primary and
// secondary upstream, TTL caching with request coalescing, a circuit
// breaker per source, and per-host rate limiting.
package provider

import (
	"context"
	"time"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// QuoteSource is an upstream data source capable of resolving a ticker
// and fetching a snapshot or candle history for it (spec §4.1).
type QuoteSource interface {
	Name() string
	Resolve(ctx context.Context, symbol string) (string, error)
	Snapshot(ctx context.Context, upstreamID string) (domain.PriceSnapshot, error)
	Candles(ctx context.Context, upstreamID string, tf domain.Timeframe, periods int) ([]domain.Candle, error)
}

// Config holds per-source tunables (spec §4.1, §5 "per-fetch timeout").
type Config struct {
	BaseURL        string
	APIKey         string
	HTTPTimeout    time.Duration
	RequestsPerSec float64
	Burst          int
}

// DefaultHTTPTimeout is the recommended per-fetch timeout (spec §5).
const DefaultHTTPTimeout = 30 * time.Second

const (
	// SnapshotTTL is the price-snapshot cache lifetime (spec §4.1).
	SnapshotTTL = 60 * time.Second
	// CandleTTL is the historical-candle cache lifetime (spec §4.1).
	CandleTTL = 300 * time.Second
)
