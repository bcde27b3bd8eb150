package rpc

import (
	"context"
	"encoding/json"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/handler"
)

// toolFunc dispatches a tool call's raw arguments to the handler and
// returns the payload to be wrapped as a text tool result.
type toolFunc func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error)

type toolEntry struct {
	spec ToolSpec
	fn   toolFunc
}

func schema(properties map[string]interface{}, required ...string) map[string]interface{} {
	s := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func stringProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

func numberProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": desc}
}

func arrayOfStringsProp(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": desc,
	}
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

// registry builds the full §6 tool surface.
func registry() map[string]toolEntry {
	entries := []toolEntry{
		{
			spec: ToolSpec{
				Name:        "get_crypto_price",
				Description: "Get the current price snapshot for a cryptocurrency symbol.",
				InputSchema: schema(map[string]interface{}{"symbol": stringProp("ticker symbol, e.g. BTC")}, "symbol"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Symbol string `json:"symbol"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.GetCryptoPrice(ctx, p.Symbol)
			},
		},
		{
			spec: ToolSpec{
				Name:        "get_technical_indicators",
				Description: "Get the latest values of the requested technical indicators.",
				InputSchema: schema(map[string]interface{}{
					"symbol":     stringProp("ticker symbol"),
					"timeframe":  stringProp("4h|daily|weekly|monthly"),
					"indicators": arrayOfStringsProp("indicator names, e.g. [\"RSI\",\"MACD\"]"),
				}, "symbol"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Symbol     string   `json:"symbol"`
					Timeframe  string   `json:"timeframe"`
					Indicators []string `json:"indicators"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.GetTechnicalIndicators(ctx, p.Symbol, domain.ParseTimeframe(p.Timeframe), p.Indicators)
			},
		},
		{
			spec: ToolSpec{
				Name:        "detect_chart_patterns",
				Description: "Detect chart patterns (reversal, continuation, candlestick) in a symbol's price history.",
				InputSchema: schema(map[string]interface{}{
					"symbol":    stringProp("ticker symbol"),
					"timeframe": stringProp("4h|daily|weekly|monthly"),
				}, "symbol"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Symbol    string `json:"symbol"`
					Timeframe string `json:"timeframe"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.DetectChartPatterns(ctx, p.Symbol, domain.ParseTimeframe(p.Timeframe))
			},
		},
		{
			spec: ToolSpec{
				Name:        "get_support_resistance",
				Description: "Get support and resistance levels and dynamic trend lines for a symbol.",
				InputSchema: schema(map[string]interface{}{
					"symbol":    stringProp("ticker symbol"),
					"timeframe": stringProp("4h|daily|weekly|monthly"),
				}, "symbol"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Symbol    string `json:"symbol"`
					Timeframe string `json:"timeframe"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.GetSupportResistance(ctx, p.Symbol, domain.ParseTimeframe(p.Timeframe))
			},
		},
		{
			spec: ToolSpec{
				Name:        "get_trading_signals",
				Description: "Get the composite trading signal (buy/sell/hold) with stop, target and rationale.",
				InputSchema: schema(map[string]interface{}{
					"symbol":     stringProp("ticker symbol"),
					"risk_level": stringProp("conservative|moderate|aggressive"),
					"timeframe":  stringProp("4h|daily|weekly|monthly"),
				}, "symbol"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Symbol    string `json:"symbol"`
					RiskLevel string `json:"risk_level"`
					Timeframe string `json:"timeframe"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.GetTradingSignals(ctx, p.Symbol, domain.ParseTimeframe(p.Timeframe), domain.ParseRiskLevel(p.RiskLevel))
			},
		},
		{
			spec: ToolSpec{
				Name:        "get_full_analysis",
				Description: "Get the combined indicators, patterns, levels, signal, summary and recommendations for a symbol.",
				InputSchema: schema(map[string]interface{}{
					"symbol":     stringProp("ticker symbol"),
					"timeframe":  stringProp("4h|daily|weekly|monthly"),
					"risk_level": stringProp("conservative|moderate|aggressive"),
				}, "symbol"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Symbol    string `json:"symbol"`
					Timeframe string `json:"timeframe"`
					RiskLevel string `json:"risk_level"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.GetFullAnalysis(ctx, p.Symbol, domain.ParseTimeframe(p.Timeframe), domain.ParseRiskLevel(p.RiskLevel))
			},
		},
		{
			spec: ToolSpec{
				Name:        "multi_timeframe_analysis",
				Description: "Run full analysis across all supported timeframes concurrently, with per-timeframe graceful degradation.",
				InputSchema: schema(map[string]interface{}{"symbol": stringProp("ticker symbol")}, "symbol"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Symbol string `json:"symbol"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.MultiTimeframeAnalysis(ctx, p.Symbol)
			},
		},
		{
			spec: ToolSpec{
				Name:        "get_token_liquidity",
				Description: "Get total DEX liquidity and top pools for a token symbol on a network.",
				InputSchema: schema(map[string]interface{}{
					"symbol":  stringProp("token symbol"),
					"network": stringProp("network id, e.g. ethereum"),
				}, "symbol"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Symbol  string `json:"symbol"`
					Network string `json:"network"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.GetTokenLiquidity(ctx, p.Symbol, p.Network)
			},
		},
		{
			spec: ToolSpec{
				Name:        "search_tokens_by_network",
				Description: "Search for tokens on a network with aggregated liquidity.",
				InputSchema: schema(map[string]interface{}{
					"network": stringProp("network id"),
					"query":   stringProp("search query"),
					"limit":   numberProp("max results"),
				}, "network"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Network string `json:"network"`
					Query   string `json:"query"`
					Limit   int    `json:"limit"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.SearchTokensByNetwork(ctx, p.Network, p.Query, p.Limit)
			},
		},
		{
			spec: ToolSpec{
				Name:        "compare_dex_prices",
				Description: "Compare a symbol's price across DEXes on a network: best/worst/average/spread.",
				InputSchema: schema(map[string]interface{}{
					"symbol":  stringProp("token symbol"),
					"network": stringProp("network id"),
				}, "symbol", "network"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Symbol  string `json:"symbol"`
					Network string `json:"network"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.CompareDEXPrices(ctx, p.Symbol, p.Network)
			},
		},
		{
			spec: ToolSpec{
				Name:        "get_network_pools",
				Description: "List top liquidity pools on a network, sorted by liquidity or volume.",
				InputSchema: schema(map[string]interface{}{
					"network": stringProp("network id"),
					"sort_by": stringProp("liquidity|volume"),
					"limit":   numberProp("max results"),
				}, "network"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Network string `json:"network"`
					SortBy  string `json:"sort_by"`
					Limit   int    `json:"limit"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.GetNetworkPools(ctx, p.Network, p.SortBy, p.Limit)
			},
		},
		{
			spec: ToolSpec{
				Name:        "get_dex_info",
				Description: "List the DEXes observed on a network.",
				InputSchema: schema(map[string]interface{}{"network": stringProp("network id")}, "network"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Network string `json:"network"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.GetDexInfo(ctx, p.Network)
			},
		},
		{
			spec: ToolSpec{
				Name:        "get_pool_analytics",
				Description: "Get full detail for a single liquidity pool.",
				InputSchema: schema(map[string]interface{}{
					"network":      stringProp("network id"),
					"pool_address": stringProp("pool address"),
				}, "network", "pool_address"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Network     string `json:"network"`
					PoolAddress string `json:"pool_address"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.GetPoolAnalytics(ctx, p.Network, p.PoolAddress)
			},
		},
		{
			spec: ToolSpec{
				Name:        "get_pool_ohlcv",
				Description: "Get OHLCV history and statistics for a single pool.",
				InputSchema: schema(map[string]interface{}{
					"network":      stringProp("network id"),
					"pool_address": stringProp("pool address"),
					"start_date":   stringProp("RFC3339 start"),
					"end_date":     stringProp("RFC3339 end"),
					"interval":     stringProp("bucket interval"),
				}, "network", "pool_address", "start_date"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Network     string `json:"network"`
					PoolAddress string `json:"pool_address"`
					StartDate   string `json:"start_date"`
					EndDate     string `json:"end_date"`
					Interval    string `json:"interval"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.GetPoolOHLCV(ctx, p.Network, p.PoolAddress, p.StartDate, p.EndDate, p.Interval)
			},
		},
		{
			spec: ToolSpec{
				Name:        "get_available_networks",
				Description: "List the networks the DEX data source covers.",
				InputSchema: schema(map[string]interface{}{}),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				return h.GetAvailableNetworks(ctx)
			},
		},
		{
			spec: ToolSpec{
				Name:        "search_tokens_advanced",
				Description: "Search tokens globally, filtered by minimum liquidity and volume, sorted by liquidity.",
				InputSchema: schema(map[string]interface{}{
					"query":         stringProp("search query"),
					"min_liquidity": numberProp("minimum liquidity USD"),
					"min_volume":    numberProp("minimum 24h volume USD"),
					"limit":         numberProp("max results"),
				}, "query"),
			},
			fn: func(ctx context.Context, h *handler.Handler, args json.RawMessage) (interface{}, error) {
				var p struct {
					Query        string  `json:"query"`
					MinLiquidity float64 `json:"min_liquidity"`
					MinVolume    float64 `json:"min_volume"`
					Limit        int     `json:"limit"`
				}
				if err := decodeArgs(args, &p); err != nil {
					return nil, err
				}
				return h.SearchTokensAdvanced(ctx, p.Query, p.MinLiquidity, p.MinVolume, p.Limit)
			},
		},
	}

	out := make(map[string]toolEntry, len(entries))
	for _, e := range entries {
		out[e.spec.Name] = e
	}
	return out
}

func toolSpecs(reg map[string]toolEntry) []ToolSpec {
	out := make([]ToolSpec, 0, len(reg))
	for _, e := range reg {
		out = append(out, e.spec)
	}
	return out
}
