// Package signal implements the signal aggregator (spec §4.5): it
// combines the indicator composite verdict, level proximity, and
// qualifying chart patterns into one directional call with stop/target.
package signal

import (
	"fmt"
	"strings"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/levels"
)

// levelProximity is the ε used for Buy/Sell-by-proximity level verdicts
// and for the rationale's "near a level" clause (spec §4.5).
const levelProximity = 0.02
const rationaleProximity = 0.03

// agreementThreshold is the B/T or S/T ratio required for a directional
// verdict (spec §4.5).
const agreementThreshold = 0.6

// Aggregate implements spec §4.5: qualifying patterns (confidence ≥ the
// risk level's threshold) are folded into a signal bag alongside the
// indicator composite and level-proximity verdicts, and the majority
// side (if it clears the agreement threshold) becomes the call.
func Aggregate(
	price float64,
	indicatorVerdict domain.TradingSignal,
	rsiValue float64,
	patterns []domain.ChartPattern,
	levelList []domain.Level,
	risk domain.RiskLevel,
) domain.Signal {
	qualifying := qualifyingPatterns(patterns, risk)

	levelVerdict := levelVerdictFor(price, levelList)

	bag := []domain.TradingSignal{indicatorVerdict, levelVerdict}
	patternBreakdown := make(map[string]domain.TradingSignal, len(qualifying))
	for _, p := range qualifying {
		v := domain.Sell
		if p.Bullish {
			v = domain.Buy
		}
		bag = append(bag, v)
		patternBreakdown[p.Kind.String()] = v
	}

	verdict, confidence := finalVerdict(bag)

	support, hasSupport := levels.NearestSupport(levelList, price)
	resistance, hasResistance := levels.NearestResistance(levelList, price)

	signal := domain.Signal{
		Verdict:    verdict,
		Confidence: confidence,
		Entry:      price,
		Reasoning:  rationale(rsiValue, qualifying, price, levelList),
		Breakdown: domain.SignalBreakdown{
			Indicator: indicatorVerdict,
			Level:     levelVerdict,
			Patterns:  patternBreakdown,
		},
	}

	switch {
	case verdict.IsBuy():
		stop := 0.95 * price
		if hasSupport {
			stop = 0.98 * support.Price
		}
		target := 1.10 * price
		if hasResistance {
			target = 0.98 * resistance.Price
		}
		signal.Stop = &stop
		signal.TakeProfit = &target
	case verdict.IsSell():
		stop := 1.05 * price
		if hasResistance {
			stop = 1.02 * resistance.Price
		}
		target := 0.90 * price
		if hasSupport {
			target = 1.02 * support.Price
		}
		signal.Stop = &stop
		signal.TakeProfit = &target
	}

	return signal
}

func qualifyingPatterns(patterns []domain.ChartPattern, risk domain.RiskLevel) []domain.ChartPattern {
	threshold := risk.Threshold()
	var out []domain.ChartPattern
	for _, p := range patterns {
		if p.Confidence >= threshold {
			out = append(out, p)
		}
	}
	return out
}

func levelVerdictFor(price float64, levelList []domain.Level) domain.TradingSignal {
	if support, ok := levels.NearestSupport(levelList, price); ok && withinPct(price, support.Price, levelProximity) {
		return domain.Buy
	}
	if resistance, ok := levels.NearestResistance(levelList, price); ok && withinPct(price, resistance.Price, levelProximity) {
		return domain.Sell
	}
	return domain.Hold
}

func withinPct(price, level, pct float64) bool {
	if price == 0 {
		return false
	}
	return absf(price-level)/absf(price) <= pct
}

func finalVerdict(bag []domain.TradingSignal) (domain.TradingSignal, float64) {
	total := len(bag)
	if total == 0 {
		return domain.Hold, 0.5
	}
	buys, sells := 0, 0
	for _, v := range bag {
		if v.IsBuy() {
			buys++
		}
		if v.IsSell() {
			sells++
		}
	}
	buyRatio := float64(buys) / float64(total)
	sellRatio := float64(sells) / float64(total)

	if buyRatio >= agreementThreshold {
		return domain.Buy, buyRatio
	}
	if sellRatio >= agreementThreshold {
		return domain.Sell, sellRatio
	}
	return domain.Hold, 0.5
}

func rationale(rsiValue float64, qualifying []domain.ChartPattern, price float64, levelList []domain.Level) string {
	var parts []string

	switch {
	case rsiValue >= 70:
		parts = append(parts, fmt.Sprintf("RSI overbought at %.1f", rsiValue))
	case rsiValue <= 30 && rsiValue > 0:
		parts = append(parts, fmt.Sprintf("RSI oversold at %.1f", rsiValue))
	}

	if len(qualifying) > 0 {
		names := make([]string, len(qualifying))
		for i, p := range qualifying {
			names[i] = p.Kind.String()
		}
		parts = append(parts, "patterns: "+strings.Join(names, ", "))
	}

	for _, lvl := range levelList {
		if withinPct(price, lvl.Price, rationaleProximity) {
			parts = append(parts, fmt.Sprintf("near %s level at %.2f", lvl.Kind.String(), lvl.Price))
			break
		}
	}

	if len(parts) == 0 {
		return "no strong confirming signals"
	}
	return strings.Join(parts, "; ")
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
