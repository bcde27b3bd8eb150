package indicators

import (
	"math"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// Composite folds a set of IndicatorValues into a single weighted
// verdict (spec §4.2): score = sum(count(v)*numeric(v)) / N; Buy if
// score >= 0.5, Sell if score <= -0.5, else Hold. Confidence =
// min(|score|/2, 1).
func Composite(values []domain.IndicatorValue) (domain.TradingSignal, float64) {
	if len(values) == 0 {
		return domain.Hold, 0.5
	}

	sum := 0
	for _, v := range values {
		sum += v.Verdict.Numeric()
	}
	score := float64(sum) / float64(len(values))

	verdict := domain.Hold
	switch {
	case score >= 0.5:
		verdict = domain.Buy
	case score <= -0.5:
		verdict = domain.Sell
	}

	confidence := math.Min(math.Abs(score)/2, 1)
	return verdict, confidence
}

// Latest returns the single newest emission from each named indicator
// series passed in, preserving caller order — used by the tool handler
// to report "latest per-indicator values" (spec §6 get_technical_indicators).
func Latest(series ...[]domain.IndicatorValue) []domain.IndicatorValue {
	out := make([]domain.IndicatorValue, 0, len(series))
	for _, s := range series {
		if len(s) == 0 {
			continue
		}
		out = append(out, s[len(s)-1])
	}
	return out
}
