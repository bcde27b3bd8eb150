package provider

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// TokenMatch is a token found by a search (spec §6 "search_tokens_by_network",
// "search_tokens_advanced").
type TokenMatch struct {
	Symbol          string  `json:"symbol"`
	Address         string  `json:"address"`
	Network         string  `json:"network"`
	PriceUSD        float64 `json:"price_usd"`
	LiquidityUSD    float64 `json:"liquidity_usd"`
	Volume24hUSD    float64 `json:"volume_24h_usd"`
}

// Pool is a single liquidity pool (spec §6 "get_network_pools",
// "get_pool_analytics").
type Pool struct {
	Address      string  `json:"address"`
	DexID        string  `json:"dex_id"`
	BaseSymbol   string  `json:"base_symbol"`
	QuoteSymbol  string  `json:"quote_symbol"`
	PriceUSD     float64 `json:"price_usd"`
	LiquidityUSD float64 `json:"liquidity_usd"`
	Volume24hUSD float64 `json:"volume_24h_usd"`
}

// DexPrice is one DEX's quote for a symbol (spec §6 "compare_dex_prices").
type DexPrice struct {
	DexID    string  `json:"dex_id"`
	PriceUSD float64 `json:"price_usd"`
}

// PoolOHLCVPoint is one bar of a pool's OHLCV history (spec §6
// "get_pool_ohlcv").
type PoolOHLCVPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// TokenLiquidity fetches all pools for a symbol on network and sums
// their liquidity (spec §6 "get_token_liquidity").
func (s *Secondary) TokenLiquidity(ctx context.Context, symbol, network string) (totalUSD float64, pools []Pool, err error) {
	pairs, err := s.search(ctx, symbol)
	if err != nil {
		return 0, nil, err
	}
	for _, p := range pairs {
		if network != "" && p.ChainID != network {
			continue
		}
		if !strings.EqualFold(p.BaseToken.Symbol, symbol) {
			continue
		}
		price, _ := strconv.ParseFloat(p.PriceUSD, 64)
		pools = append(pools, Pool{
			Address:      p.BaseToken.Address,
			DexID:        p.DexID,
			BaseSymbol:   p.BaseToken.Symbol,
			PriceUSD:     price,
			LiquidityUSD: p.Liquidity.USD,
			Volume24hUSD: p.Volume.H24,
		})
		totalUSD += p.Liquidity.USD
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].LiquidityUSD > pools[j].LiquidityUSD })
	return totalUSD, pools, nil
}

// SearchTokensByNetwork searches for query on a given network and
// aggregates liquidity per matching token (spec §6
// "search_tokens_by_network").
func (s *Secondary) SearchTokensByNetwork(ctx context.Context, network, query string, limit int) ([]TokenMatch, error) {
	pairs, err := s.search(ctx, query)
	if err != nil {
		return nil, err
	}
	byToken := make(map[string]*TokenMatch)
	for _, p := range pairs {
		if network != "" && p.ChainID != network {
			continue
		}
		key := p.ChainID + ":" + p.BaseToken.Address
		price, _ := strconv.ParseFloat(p.PriceUSD, 64)
		m, ok := byToken[key]
		if !ok {
			m = &TokenMatch{
				Symbol:  strings.ToUpper(p.BaseToken.Symbol),
				Address: p.BaseToken.Address,
				Network: p.ChainID,
			}
			byToken[key] = m
		}
		m.PriceUSD = price
		m.LiquidityUSD += p.Liquidity.USD
		m.Volume24hUSD += p.Volume.H24
	}

	out := make([]TokenMatch, 0, len(byToken))
	for _, m := range byToken {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LiquidityUSD > out[j].LiquidityUSD })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CompareDEXPrices returns every DEX's quote for symbol on network,
// sorted ascending (spec §6 "compare_dex_prices").
func (s *Secondary) CompareDEXPrices(ctx context.Context, symbol, network string) ([]DexPrice, error) {
	pairs, err := s.search(ctx, symbol)
	if err != nil {
		return nil, err
	}
	var out []DexPrice
	for _, p := range pairs {
		if p.ChainID != network || !strings.EqualFold(p.BaseToken.Symbol, symbol) {
			continue
		}
		price, err := strconv.ParseFloat(p.PriceUSD, 64)
		if err != nil {
			continue
		}
		out = append(out, DexPrice{DexID: p.DexID, PriceUSD: price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriceUSD < out[j].PriceUSD })
	return out, nil
}

// DEXPriceSpread reports best/worst/average/spread across a set of
// per-DEX quotes (spec §6 "compare_dex_prices").
func DEXPriceSpread(prices []DexPrice) (best, worst, average, spread float64) {
	if len(prices) == 0 {
		return 0, 0, 0, 0
	}
	best, worst = prices[0].PriceUSD, prices[0].PriceUSD
	sum := 0.0
	for _, p := range prices {
		if p.PriceUSD < best {
			best = p.PriceUSD
		}
		if p.PriceUSD > worst {
			worst = p.PriceUSD
		}
		sum += p.PriceUSD
	}
	average = sum / float64(len(prices))
	if best != 0 {
		spread = (worst - best) / best
	}
	return
}

// NetworkPools lists the top pools on network sorted by sortBy
// ("liquidity" or "volume") (spec §6 "get_network_pools").
func (s *Secondary) NetworkPools(ctx context.Context, network, sortBy string, limit int) ([]Pool, error) {
	pairs, err := s.search(ctx, network)
	if err != nil {
		return nil, err
	}
	var pools []Pool
	for _, p := range pairs {
		if p.ChainID != network {
			continue
		}
		price, _ := strconv.ParseFloat(p.PriceUSD, 64)
		pools = append(pools, Pool{
			Address:      p.BaseToken.Address,
			DexID:        p.DexID,
			BaseSymbol:   p.BaseToken.Symbol,
			PriceUSD:     price,
			LiquidityUSD: p.Liquidity.USD,
			Volume24hUSD: p.Volume.H24,
		})
	}
	sort.Slice(pools, func(i, j int) bool {
		if sortBy == "volume" {
			return pools[i].Volume24hUSD > pools[j].Volume24hUSD
		}
		return pools[i].LiquidityUSD > pools[j].LiquidityUSD
	})
	if limit > 0 && len(pools) > limit {
		pools = pools[:limit]
	}
	return pools, nil
}

// PoolDetail fetches full detail for a single pool (spec §6
// "get_pool_analytics").
func (s *Secondary) PoolDetail(ctx context.Context, network, poolAddress string) (Pool, error) {
	var resp dexSearchResponse
	if err := s.getJSON(ctx, "/pairs/"+url.PathEscape(network)+"/"+url.PathEscape(poolAddress), &resp); err != nil {
		return Pool{}, err
	}
	if len(resp.Pairs) == 0 {
		return Pool{}, domain.NewError(domain.ErrInvalidSymbol, "secondary.PoolDetail", "pool not found", nil)
	}
	p := resp.Pairs[0]
	price, _ := strconv.ParseFloat(p.PriceUSD, 64)
	return Pool{
		Address:      poolAddress,
		DexID:        p.DexID,
		BaseSymbol:   p.BaseToken.Symbol,
		PriceUSD:     price,
		LiquidityUSD: p.Liquidity.USD,
		Volume24hUSD: p.Volume.H24,
	}, nil
}

// PoolOHLCV is the deprecated global OHLCV-by-pool endpoint: the
// aggregator retired it network-wide, so this always fails fast rather
// than attempting a request that is guaranteed to 404 (spec §4.1 "the
// secondary exposes richer token-graph data ... through dedicated
// tools").
func (s *Secondary) PoolOHLCV(ctx context.Context, network, poolAddress, start, end, interval string) ([]PoolOHLCVPoint, error) {
	return nil, domain.NewError(domain.ErrInsufficientData, "secondary.PoolOHLCV", "pool OHLCV endpoint is no longer offered by this aggregator", nil)
}

// DexListing is one DEX on a network (spec §6 "get_dex_info").
type DexListing struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DexesForNetwork lists the distinct DEX ids observed on network (spec
// §6 "get_dex_info").
func (s *Secondary) DexesForNetwork(ctx context.Context, network string) ([]DexListing, error) {
	pairs, err := s.search(ctx, network)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []DexListing
	for _, p := range pairs {
		if p.ChainID != network || seen[p.DexID] {
			continue
		}
		seen[p.DexID] = true
		out = append(out, DexListing{ID: p.DexID, Name: p.DexID})
	}
	return out, nil
}

// AvailableNetworks lists the networks this source knows about (spec §6
// "get_available_networks"). The aggregator chain-id set is static.
func (s *Secondary) AvailableNetworks(ctx context.Context) []string {
	return []string{"ethereum", "bsc", "polygon", "arbitrum", "optimism", "base", "avalanche", "solana"}
}

// SearchTokensAdvanced searches globally and filters by minimum
// liquidity/volume, sorted by liquidity (spec §6
// "search_tokens_advanced").
func (s *Secondary) SearchTokensAdvanced(ctx context.Context, query string, minLiquidity, minVolume float64, limit int) ([]TokenMatch, error) {
	all, err := s.SearchTokensByNetwork(ctx, "", query, 0)
	if err != nil {
		return nil, err
	}
	var out []TokenMatch
	for _, m := range all {
		if m.LiquidityUSD < minLiquidity || m.Volume24hUSD < minVolume {
			continue
		}
		out = append(out, m)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
