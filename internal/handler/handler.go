// Package handler implements the tool orchestration of spec §4.6: it
// maps each §6 tool call onto one or more analytics pipelines over a
// provider-fetched candle snapshot, with a full-analysis cache and a
// concurrent, gracefully-degrading multi-timeframe fan-out.
package handler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/config"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/indicators"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/levels"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/metrics"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/patterns"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/provider"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/signal"
)

// defaultPeriods is how many recent bars the handler requests from the
// provider for any single-timeframe analysis call.
const defaultPeriods = 200

// Handler wires the provider and every analytics package behind the §6
// tool surface, owning the full-analysis cache (spec §3 "Ownership").
type Handler struct {
	provider *provider.Provider
	metrics  *metrics.Collector
	cfg      config.Config

	fullAnalysisCache *provider.TTLCache[FullAnalysisResult]
}

// New builds a Handler from a provider, collector and config.
func New(p *provider.Provider, m *metrics.Collector, cfg config.Config) *Handler {
	return &Handler{
		provider:          p,
		metrics:           m,
		cfg:               cfg,
		fullAnalysisCache: provider.NewTTLCache[FullAnalysisResult](cfg.FullAnalysisTTL()),
	}
}

// errorMap converts any error into the §7 `{error: <message>}` tool
// payload. PaymentRequired carries the literal substring "payment" so
// the free-tier downgrade is unambiguous to the caller (spec §6 E4).
func errorMap(err error) map[string]interface{} {
	var domErr *domain.Error
	if errors.As(err, &domErr) {
		if domErr.Kind == domain.ErrPaymentRequired {
			return map[string]interface{}{"error": fmt.Sprintf("payment required: %s", domErr.Msg)}
		}
		return map[string]interface{}{"error": fmt.Sprintf("%s: %s", domErr.Kind.String(), domErr.Msg)}
	}
	return map[string]interface{}{"error": err.Error()}
}

func (h *Handler) fetchCandles(ctx context.Context, symbol string, tf domain.Timeframe) ([]domain.Candle, error) {
	return h.provider.Candles(ctx, symbol, tf, defaultPeriods)
}

// GetCryptoPrice implements the get_crypto_price tool.
func (h *Handler) GetCryptoPrice(ctx context.Context, symbol string) (interface{}, error) {
	snap, err := h.provider.Snapshot(ctx, symbol)
	if err != nil {
		return errorMap(err), nil
	}
	return snap, nil
}

// GetTechnicalIndicators implements the get_technical_indicators tool.
func (h *Handler) GetTechnicalIndicators(ctx context.Context, symbol string, tf domain.Timeframe, names []string) (interface{}, error) {
	candles, err := h.fetchCandles(ctx, symbol, tf)
	if err != nil {
		return errorMap(err), nil
	}

	series := indicators.Compute(candles, names)
	ordered := orderedNames(names)
	latest := make([]domain.IndicatorValue, 0, len(ordered))
	for _, name := range ordered {
		s := series[name]
		if len(s) == 0 {
			continue
		}
		latest = append(latest, s[len(s)-1])
	}

	return IndicatorsResult{
		Symbol:     strings.ToUpper(symbol),
		Timeframe:  tf.String(),
		DataPoints: len(candles),
		Indicators: latest,
	}, nil
}

func orderedNames(names []string) []string {
	if len(names) == 0 {
		return indicators.AllNames()
	}
	return names
}

// DetectChartPatterns implements the detect_chart_patterns tool.
func (h *Handler) DetectChartPatterns(ctx context.Context, symbol string, tf domain.Timeframe) (interface{}, error) {
	candles, err := h.fetchCandles(ctx, symbol, tf)
	if err != nil {
		return errorMap(err), nil
	}
	return PatternsResult{
		Symbol:    strings.ToUpper(symbol),
		Timeframe: tf.String(),
		Patterns:  patterns.Recognize(candles),
	}, nil
}

// GetSupportResistance implements the get_support_resistance tool.
func (h *Handler) GetSupportResistance(ctx context.Context, symbol string, tf domain.Timeframe) (interface{}, error) {
	candles, err := h.fetchCandles(ctx, symbol, tf)
	if err != nil {
		return errorMap(err), nil
	}
	snap, err := h.provider.Snapshot(ctx, symbol)
	if err != nil {
		return errorMap(err), nil
	}

	result, err := levels.Analyze(candles, snap.Price, time.Now())
	if err != nil {
		return errorMap(err), nil
	}

	var support, resistance []domain.Level
	for _, l := range result.Levels {
		if l.Kind == domain.LevelResistance || (l.Price > snap.Price) {
			resistance = append(resistance, l)
		} else {
			support = append(support, l)
		}
	}

	out := LevelsResult{
		Symbol:     strings.ToUpper(symbol),
		Timeframe:  tf.String(),
		Support:    support,
		Resistance: resistance,
		TrendLines: result.TrendLines,
	}
	if nearest, ok := levels.NearestSupport(result.Levels, snap.Price); ok {
		out.NearestSupport = &nearest
	}
	if nearest, ok := levels.NearestResistance(result.Levels, snap.Price); ok {
		out.NearestResistance = &nearest
	}
	return out, nil
}

// runAnalytics fetches candles and the price snapshot, then computes the
// indicator composite, patterns, levels and aggregate signal in one pass
// — the shared core of get_trading_signals, get_full_analysis and each
// timeframe slice of multi_timeframe_analysis (spec §4.6, §5 "parallel
// fan-out within a tool call").
func (h *Handler) runAnalytics(ctx context.Context, symbol string, tf domain.Timeframe, risk domain.RiskLevel) (
	snap domain.PriceSnapshot,
	indicatorSeries map[string][]domain.IndicatorValue,
	patternList []domain.ChartPattern,
	levelResult levels.Result,
	sig domain.Signal,
	err error,
) {
	candles, err := h.fetchCandles(ctx, symbol, tf)
	if err != nil {
		return
	}
	snap, err = h.provider.Snapshot(ctx, symbol)
	if err != nil {
		return
	}

	var wg sync.WaitGroup
	var levelErr error
	wg.Add(3)
	go func() {
		defer wg.Done()
		indicatorSeries = indicators.Compute(candles, nil)
	}()
	go func() {
		defer wg.Done()
		patternList = patterns.Recognize(candles)
	}()
	go func() {
		defer wg.Done()
		levelResult, levelErr = levels.Analyze(candles, snap.Price, time.Now())
	}()
	wg.Wait()
	if levelErr != nil {
		err = levelErr
		return
	}

	indicatorVerdict, _ := indicators.Composite(indicators.Latest(valuesOf(indicatorSeries)...))
	rsiValue := latestValue(indicatorSeries["RSI"])

	sig = signal.Aggregate(snap.Price, indicatorVerdict, rsiValue, patternList, levelResult.Levels, risk)
	return
}

func valuesOf(series map[string][]domain.IndicatorValue) [][]domain.IndicatorValue {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([][]domain.IndicatorValue, 0, len(names))
	for _, name := range names {
		out = append(out, series[name])
	}
	return out
}

func latestValue(values []domain.IndicatorValue) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1].Value
}

// GetTradingSignals implements the get_trading_signals tool.
func (h *Handler) GetTradingSignals(ctx context.Context, symbol string, tf domain.Timeframe, risk domain.RiskLevel) (interface{}, error) {
	_, _, _, _, sig, err := h.runAnalytics(ctx, symbol, tf, risk)
	if err != nil {
		return errorMap(err), nil
	}
	return SignalResult{
		Symbol:    strings.ToUpper(symbol),
		Timeframe: tf.String(),
		RiskLevel: risk.String(),
		Signal:    sig,
	}, nil
}

// GetFullAnalysis implements the get_full_analysis tool, memoizing by
// (symbol, timeframe, risk) for the configured TTL (spec §3 "Ownership",
// §4.6).
func (h *Handler) GetFullAnalysis(ctx context.Context, symbol string, tf domain.Timeframe, risk domain.RiskLevel) (interface{}, error) {
	key := fmt.Sprintf("%s:%s:%s", strings.ToUpper(symbol), tf.String(), risk.String())

	if _, hit := h.fullAnalysisCache.Get(key); hit {
		h.metrics.RecordCacheHit("full_analysis")
	} else {
		h.metrics.RecordCacheMiss("full_analysis")
	}

	result, err := h.fullAnalysisCache.GetOrFetch(ctx, key, func(ctx context.Context) (FullAnalysisResult, error) {
		snap, indicatorSeries, patternList, levelResult, sig, err := h.runAnalytics(ctx, symbol, tf, risk)
		if err != nil {
			return FullAnalysisResult{}, err
		}

		latest := indicators.Latest(valuesOf(indicatorSeries)...)
		var support, resistance []domain.Level
		for _, l := range levelResult.Levels {
			if l.Price > snap.Price {
				resistance = append(resistance, l)
			} else {
				support = append(support, l)
			}
		}

		return FullAnalysisResult{
			Symbol:          strings.ToUpper(symbol),
			Timeframe:       tf.String(),
			RiskLevel:       risk.String(),
			Snapshot:        snap,
			Indicators:      latest,
			Patterns:        patternList,
			Support:         support,
			Resistance:      resistance,
			TrendLines:      levelResult.TrendLines,
			Signal:          sig,
			Summary:         summarize(symbol, tf, sig),
			Recommendations: recommend(sig),
		}, nil
	})
	if err != nil {
		return errorMap(err), nil
	}
	return result, nil
}

func summarize(symbol string, tf domain.Timeframe, sig domain.Signal) string {
	return fmt.Sprintf("%s on the %s timeframe: %s at %.0f%% confidence. %s",
		strings.ToUpper(symbol), tf.String(), sig.Verdict.String(), sig.Confidence*100, sig.Reasoning)
}

func recommend(sig domain.Signal) []string {
	switch {
	case sig.Verdict.IsBuy():
		out := []string{"consider a long entry near the current price"}
		if sig.Stop != nil {
			out = append(out, fmt.Sprintf("protective stop near %.2f", *sig.Stop))
		}
		if sig.TakeProfit != nil {
			out = append(out, fmt.Sprintf("take-profit target near %.2f", *sig.TakeProfit))
		}
		return out
	case sig.Verdict.IsSell():
		out := []string{"consider reducing exposure or a short entry"}
		if sig.Stop != nil {
			out = append(out, fmt.Sprintf("protective stop near %.2f", *sig.Stop))
		}
		if sig.TakeProfit != nil {
			out = append(out, fmt.Sprintf("take-profit target near %.2f", *sig.TakeProfit))
		}
		return out
	default:
		return []string{"no strong directional edge; wait for confirmation"}
	}
}

func trendLabel(verdict domain.TradingSignal) string {
	switch {
	case verdict.IsBuy():
		return "bullish"
	case verdict.IsSell():
		return "bearish"
	default:
		return "neutral"
	}
}

// MultiTimeframeAnalysis implements multi_timeframe_analysis: all four
// timeframes run concurrently; a failing timeframe is simply omitted
// from the result rather than failing the call (spec §4.6, §7).
func (h *Handler) MultiTimeframeAnalysis(ctx context.Context, symbol string) (interface{}, error) {
	risk := domain.RiskModerate
	timeframes := domain.AllTimeframes()

	type outcome struct {
		tf     domain.Timeframe
		result TimeframeAnalysis
		err    error
	}
	results := make([]outcome, len(timeframes))

	var wg sync.WaitGroup
	wg.Add(len(timeframes))
	for i, tf := range timeframes {
		i, tf := i, tf
		go func() {
			defer wg.Done()
			_, indicatorSeries, patternList, levelResult, sig, err := h.runAnalytics(ctx, symbol, tf, risk)
			if err != nil {
				results[i] = outcome{tf: tf, err: err}
				return
			}
			results[i] = outcome{
				tf: tf,
				result: TimeframeAnalysis{
					Trend:         trendLabel(sig.Verdict),
					OverallSignal: sig.Verdict.String(),
					Confidence:    sig.Confidence,
					Indicators:    indicators.Latest(valuesOf(indicatorSeries)...),
					Patterns:      patternList,
					Levels:        levelResult.Levels,
				},
			}
		}()
	}
	wg.Wait()

	out := MultiTimeframeResult{
		Symbol:     strings.ToUpper(symbol),
		Timeframes: make(map[string]TimeframeAnalysis),
	}
	bullish, bearish, ok := 0, 0, 0
	for _, o := range results {
		if o.err != nil {
			continue
		}
		ok++
		out.Timeframes[o.tf.String()] = o.result
		switch o.result.Trend {
		case "bullish":
			bullish++
		case "bearish":
			bearish++
		}
	}
	out.Summary = multiTimeframeSummary(strings.ToUpper(symbol), ok, bullish, bearish)
	return out, nil
}

func multiTimeframeSummary(symbol string, ok, bullish, bearish int) string {
	if ok == 0 {
		return fmt.Sprintf("%s: no timeframe produced a usable analysis", symbol)
	}
	switch {
	case bullish > ok/2:
		return fmt.Sprintf("%s: %d of %d timeframes lean bullish", symbol, bullish, ok)
	case bearish > ok/2:
		return fmt.Sprintf("%s: %d of %d timeframes lean bearish", symbol, bearish, ok)
	default:
		return fmt.Sprintf("%s: mixed signal across %d timeframes", symbol, ok)
	}
}

// GetTokenLiquidity implements the get_token_liquidity tool.
func (h *Handler) GetTokenLiquidity(ctx context.Context, symbol, network string) (interface{}, error) {
	total, pools, err := h.provider.DEX().TokenLiquidity(ctx, symbol, network)
	if err != nil {
		return errorMap(err), nil
	}
	top := pools
	if len(top) > 10 {
		top = top[:10]
	}
	return TokenLiquidityResult{
		Symbol:    strings.ToUpper(symbol),
		Network:   network,
		TotalUSD:  total,
		PoolCount: len(pools),
		TopPools:  top,
	}, nil
}

// SearchTokensByNetwork implements the search_tokens_by_network tool.
func (h *Handler) SearchTokensByNetwork(ctx context.Context, network, query string, limit int) (interface{}, error) {
	tokens, err := h.provider.DEX().SearchTokensByNetwork(ctx, network, query, limit)
	if err != nil {
		return errorMap(err), nil
	}
	return tokens, nil
}

// CompareDEXPrices implements the compare_dex_prices tool.
func (h *Handler) CompareDEXPrices(ctx context.Context, symbol, network string) (interface{}, error) {
	prices, err := h.provider.DEX().CompareDEXPrices(ctx, symbol, network)
	if err != nil {
		return errorMap(err), nil
	}
	best, worst, avg, spread := provider.DEXPriceSpread(prices)
	return DexPriceComparisonResult{
		Symbol:  strings.ToUpper(symbol),
		Network: network,
		Prices:  prices,
		Best:    best,
		Worst:   worst,
		Average: avg,
		Spread:  spread,
	}, nil
}

// GetNetworkPools implements the get_network_pools tool.
func (h *Handler) GetNetworkPools(ctx context.Context, network, sortBy string, limit int) (interface{}, error) {
	pools, err := h.provider.DEX().NetworkPools(ctx, network, sortBy, limit)
	if err != nil {
		return errorMap(err), nil
	}
	return pools, nil
}

// GetDexInfo implements the get_dex_info tool.
func (h *Handler) GetDexInfo(ctx context.Context, network string) (interface{}, error) {
	dexes, err := h.provider.DEX().DexesForNetwork(ctx, network)
	if err != nil {
		return errorMap(err), nil
	}
	return dexes, nil
}

// GetPoolAnalytics implements the get_pool_analytics tool.
func (h *Handler) GetPoolAnalytics(ctx context.Context, network, poolAddress string) (interface{}, error) {
	pool, err := h.provider.DEX().PoolDetail(ctx, network, poolAddress)
	if err != nil {
		return errorMap(err), nil
	}
	return pool, nil
}

// GetPoolOHLCV implements the get_pool_ohlcv tool.
func (h *Handler) GetPoolOHLCV(ctx context.Context, network, poolAddress, start, end, interval string) (interface{}, error) {
	points, err := h.provider.DEX().PoolOHLCV(ctx, network, poolAddress, start, end, interval)
	if err != nil {
		return errorMap(err), nil
	}
	result := PoolOHLCVResult{Network: network, PoolAddress: poolAddress, Candles: points}
	for i, p := range points {
		if i == 0 || p.High > result.High {
			result.High = p.High
		}
		if i == 0 || p.Low < result.Low {
			result.Low = p.Low
		}
		result.Volume += p.Volume
	}
	return result, nil
}

// GetAvailableNetworks implements the get_available_networks tool.
func (h *Handler) GetAvailableNetworks(ctx context.Context) (interface{}, error) {
	return h.provider.DEX().AvailableNetworks(ctx), nil
}

// SearchTokensAdvanced implements the search_tokens_advanced tool.
func (h *Handler) SearchTokensAdvanced(ctx context.Context, query string, minLiquidity, minVolume float64, limit int) (interface{}, error) {
	tokens, err := h.provider.DEX().SearchTokensAdvanced(ctx, query, minLiquidity, minVolume, limit)
	if err != nil {
		return errorMap(err), nil
	}
	return tokens, nil
}
