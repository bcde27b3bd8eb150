package domain

import "time"

// IndicatorValue is one bar's emission from the indicator engine (spec §3,
// §4.2) — one per bar once warm-up is satisfied.
type IndicatorValue struct {
	Name      string             `json:"name"` // e.g. "RSI_14"
	Value     float64            `json:"value"`
	Verdict   TradingSignal      `json:"verdict"`
	Timestamp time.Time          `json:"timestamp"`
	Params    map[string]float64 `json:"params,omitempty"`
}
