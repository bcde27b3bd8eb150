package domain

// SignalBreakdown reports what each contributor voted, for the
// aggregator's rationale (spec §4.5).
type SignalBreakdown struct {
	Indicator TradingSignal            `json:"indicator"`
	Level     TradingSignal            `json:"level"`
	Patterns  map[string]TradingSignal `json:"patterns,omitempty"`
}

// Signal is the aggregator's composite output (spec §3, §4.5). Stop and
// TakeProfit are only set for directional (Buy/Sell) verdicts.
type Signal struct {
	Verdict    TradingSignal    `json:"verdict"`
	Confidence float64          `json:"confidence"` // [0,1]
	Entry      float64          `json:"entry"`
	Stop       *float64         `json:"stop,omitempty"`
	TakeProfit *float64         `json:"take_profit,omitempty"`
	Reasoning  string           `json:"reasoning"`
	Breakdown  SignalBreakdown  `json:"breakdown"`
}
