package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// resolution records which source resolved a symbol, since candles are
// primary-only regardless of which source answered the lookup (spec
// §4.1 "Fallback policy").
type resolution struct {
	id     string
	source string
}

// Provider composes the primary and secondary sources behind the
// fallback policy and TTL caches of spec §4.1.
type Provider struct {
	primary   *Primary
	secondary *Secondary

	idCache       *TTLCache[resolution]
	snapshotCache *TTLCache[domain.PriceSnapshot]
	candleCache   *TTLCache[[]domain.Candle]
}

// New builds a Provider with the primary configured from primaryCfg and
// the secondary from secondaryCfg (the two upstreams have distinct base
// URLs and rate budgets).
func New(primaryCfg, secondaryCfg Config) *Provider {
	return NewWithSources(NewPrimary(primaryCfg), NewSecondary(secondaryCfg))
}

// NewWithSources builds a Provider from already-constructed sources —
// used by tests that point each source at its own httptest server.
func NewWithSources(primary *Primary, secondary *Secondary) *Provider {
	return &Provider{
		primary:       primary,
		secondary:     secondary,
		idCache:       NewTTLCache[resolution](0),
		snapshotCache: NewTTLCache[domain.PriceSnapshot](SnapshotTTL),
		candleCache:   NewTTLCache[[]domain.Candle](CandleTTL),
	}
}

func (p *Provider) resolve(ctx context.Context, symbol string) (resolution, error) {
	key := strings.ToUpper(symbol)
	return p.idCache.GetOrFetch(ctx, key, func(ctx context.Context) (resolution, error) {
		if id, err := p.primary.Resolve(ctx, symbol); err == nil {
			return resolution{id: id, source: p.primary.Name()}, nil
		}
		id, err := p.secondary.Resolve(ctx, symbol)
		if err != nil {
			return resolution{}, domain.NewError(domain.ErrInvalidSymbol, "provider.resolve", "no upstream id for "+symbol, err)
		}
		return resolution{id: id, source: p.secondary.Name()}, nil
	})
}

// Snapshot resolves symbol and fetches its current price (spec §4.1,
// §3 PriceSnapshot), transparently falling back to the secondary if the
// primary resolved but its fetch itself fails.
func (p *Provider) Snapshot(ctx context.Context, symbol string) (domain.PriceSnapshot, error) {
	res, err := p.resolve(ctx, symbol)
	if err != nil {
		return domain.PriceSnapshot{}, err
	}

	cacheKey := res.source + ":" + res.id
	return p.snapshotCache.GetOrFetch(ctx, cacheKey, func(ctx context.Context) (domain.PriceSnapshot, error) {
		if res.source == p.primary.Name() {
			snap, primaryErr := p.primary.Snapshot(ctx, res.id)
			if primaryErr == nil {
				return snap, nil
			}
			id, resolveErr := p.secondary.Resolve(ctx, symbol)
			if resolveErr != nil {
				return domain.PriceSnapshot{}, primaryErr
			}
			return p.secondary.Snapshot(ctx, id)
		}
		return p.secondary.Snapshot(ctx, res.id)
	})
}

// Candles resolves symbol and fetches its historical OHLCV window (spec
// §4.1). Symbols resolved only via the secondary have no candle history
// — the operation fails with InsufficientData, matching the "no
// fallback for historical candles" policy.
func (p *Provider) Candles(ctx context.Context, symbol string, tf domain.Timeframe, periods int) ([]domain.Candle, error) {
	res, err := p.resolve(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if res.source != p.primary.Name() {
		return nil, domain.NewError(domain.ErrInsufficientData, "provider.Candles", "no historical candles available for "+symbol, nil)
	}

	cacheKey := fmt.Sprintf("%s:%s:%d", res.id, tf.String(), periods)
	return p.candleCache.GetOrFetch(ctx, cacheKey, func(ctx context.Context) ([]domain.Candle, error) {
		return p.primary.Candles(ctx, res.id, tf, periods)
	})
}

// Secondary exposes the richer DEX-graph methods (spec §4.1, §6) to
// callers that need them directly rather than through the QuoteSource
// fallback path.
func (p *Provider) DEX() *Secondary { return p.secondary }

// Health is an internal introspection snapshot (not a §6 tool): circuit
// state per source. No tool or log path in the engine reports it.
type Health struct {
	PrimaryState   string `json:"primary_state"`
	SecondaryState string `json:"secondary_state"`
}

// Health reports each source's circuit-breaker state.
func (p *Provider) Health() Health {
	return Health{
		PrimaryState:   circuitStateString(p.primary.breaker.State()),
		SecondaryState: circuitStateString(p.secondary.breaker.State()),
	}
}

func circuitStateString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
