package domain

// TradingSignal is the closed set of per-indicator / per-pattern / primary
// verdicts (spec §3, §4.2, §4.5).
type TradingSignal int

const (
	StrongSell TradingSignal = iota - 2
	Sell
	Hold
	Buy
	StrongBuy
)

// Numeric maps a verdict to its signed weight for composite scoring
// (spec §4.2, testable property 5).
func (v TradingSignal) Numeric() int {
	return int(v)
}

func (v TradingSignal) String() string {
	switch v {
	case StrongBuy:
		return "StrongBuy"
	case Buy:
		return "Buy"
	case Hold:
		return "Hold"
	case Sell:
		return "Sell"
	case StrongSell:
		return "StrongSell"
	default:
		return "Hold"
	}
}

// IsBuy reports whether the verdict counts toward the Buy side of a
// Buy/Sell ratio (Buy or StrongBuy).
func (v TradingSignal) IsBuy() bool {
	return v == Buy || v == StrongBuy
}

// IsSell reports whether the verdict counts toward the Sell side of a
// Buy/Sell ratio (Sell or StrongSell).
func (v TradingSignal) IsSell() bool {
	return v == Sell || v == StrongSell
}
