package handler

import "github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
import "github.com/M-Pineapple/CryptoAnalysisMCP/internal/provider"

// IndicatorsResult is the get_technical_indicators payload (spec §6).
type IndicatorsResult struct {
	Symbol     string                  `json:"symbol"`
	Timeframe  string                  `json:"timeframe"`
	DataPoints int                     `json:"data_points"`
	Indicators []domain.IndicatorValue `json:"indicators"`
}

// PatternsResult is the detect_chart_patterns payload.
type PatternsResult struct {
	Symbol    string                `json:"symbol"`
	Timeframe string                `json:"timeframe"`
	Patterns  []domain.ChartPattern `json:"patterns"`
}

// LevelsResult is the get_support_resistance payload.
type LevelsResult struct {
	Symbol            string             `json:"symbol"`
	Timeframe         string             `json:"timeframe"`
	Support           []domain.Level     `json:"support"`
	Resistance        []domain.Level     `json:"resistance"`
	NearestSupport    *domain.Level      `json:"nearest_support,omitempty"`
	NearestResistance *domain.Level      `json:"nearest_resistance,omitempty"`
	TrendLines        []domain.TrendLine `json:"trend_lines"`
}

// SignalResult is the get_trading_signals payload.
type SignalResult struct {
	Symbol    string        `json:"symbol"`
	Timeframe string        `json:"timeframe"`
	RiskLevel string        `json:"risk_level"`
	Signal    domain.Signal `json:"signal"`
}

// FullAnalysisResult is the get_full_analysis payload: every analytics
// pipeline over one candle fetch, plus a textual summary (spec §4.6).
type FullAnalysisResult struct {
	Symbol          string                  `json:"symbol"`
	Timeframe       string                  `json:"timeframe"`
	RiskLevel       string                  `json:"risk_level"`
	Snapshot        domain.PriceSnapshot    `json:"snapshot"`
	Indicators      []domain.IndicatorValue `json:"indicators"`
	Patterns        []domain.ChartPattern   `json:"patterns"`
	Support         []domain.Level          `json:"support"`
	Resistance      []domain.Level          `json:"resistance"`
	TrendLines      []domain.TrendLine      `json:"trend_lines"`
	Signal          domain.Signal           `json:"signal"`
	Summary         string                  `json:"summary"`
	Recommendations []string                `json:"recommendations"`
}

// TimeframeAnalysis is one timeframe's slice of a multi-timeframe result.
type TimeframeAnalysis struct {
	Trend         string                  `json:"trend"`
	OverallSignal string                  `json:"overall_signal"`
	Confidence    float64                 `json:"confidence"`
	Indicators    []domain.IndicatorValue `json:"indicators"`
	Patterns      []domain.ChartPattern   `json:"patterns"`
	Levels        []domain.Level          `json:"levels"`
}

// MultiTimeframeResult is the multi_timeframe_analysis payload. Timeframes
// that failed are simply absent from the map (spec §7).
type MultiTimeframeResult struct {
	Symbol     string                       `json:"symbol"`
	Timeframes map[string]TimeframeAnalysis `json:"timeframes"`
	Summary    string                       `json:"summary"`
}

// TokenLiquidityResult is the get_token_liquidity payload.
type TokenLiquidityResult struct {
	Symbol         string          `json:"symbol"`
	Network        string          `json:"network"`
	TotalUSD       float64         `json:"total_liquidity_usd"`
	PoolCount      int             `json:"pool_count"`
	TopPools       []provider.Pool `json:"top_pools"`
}

// DexPriceComparisonResult is the compare_dex_prices payload.
type DexPriceComparisonResult struct {
	Symbol  string              `json:"symbol"`
	Network string              `json:"network"`
	Prices  []provider.DexPrice `json:"prices"`
	Best    float64             `json:"best"`
	Worst   float64             `json:"worst"`
	Average float64             `json:"average"`
	Spread  float64             `json:"spread"`
}

// PoolOHLCVResult is the get_pool_ohlcv payload, with basic series
// statistics alongside the raw candles.
type PoolOHLCVResult struct {
	Network     string                    `json:"network"`
	PoolAddress string                    `json:"pool_address"`
	Candles     []provider.PoolOHLCVPoint `json:"candles"`
	High        float64                   `json:"high"`
	Low         float64                   `json:"low"`
	Volume      float64                   `json:"volume"`
}
