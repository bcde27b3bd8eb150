package indicators

import "github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"

// Defaults for indicators whose period/args aren't otherwise specified
// (spec §4.2).
const (
	DefaultSMAPeriod         = 20
	DefaultEMAPeriod         = 20
	DefaultStochK            = 14
	DefaultStochD            = 3
	DefaultMACDFast          = 12
	DefaultMACDSlow          = 26
	DefaultMACDSignal        = 9
	DefaultBollingerPeriod   = 20
	DefaultBollingerK        = 2.0
	DefaultWilliamsRPeriod   = 14
)

// allNames is the recognized indicator-name vocabulary for
// get_technical_indicators' `indicators[]` argument (spec §6).
var allNames = []string{"SMA", "EMA", "RSI", "STOCH", "MACD", "BOLLINGER", "WILLIAMS_R", "OBV"}

// AllNames returns the recognized indicator name vocabulary.
func AllNames() []string {
	out := make([]string, len(allNames))
	copy(out, allNames)
	return out
}

// Compute runs the named indicator(s) over the candle series. An empty or
// nil `names` runs every indicator. Returns one series per requested
// indicator, keyed by its canonical name (e.g. "SMA", "RSI").
func Compute(candles []domain.Candle, names []string) map[string][]domain.IndicatorValue {
	if len(names) == 0 {
		names = allNames
	}

	out := make(map[string][]domain.IndicatorValue, len(names))
	for _, name := range names {
		switch name {
		case "SMA":
			out["SMA"] = SMA(candles, DefaultSMAPeriod)
		case "EMA":
			out["EMA"] = EMA(candles, DefaultEMAPeriod)
		case "RSI":
			out["RSI"] = RSI(candles, DefaultRSIPeriod)
		case "STOCH":
			out["STOCH"] = Stochastic(candles, DefaultStochK, DefaultStochD)
		case "MACD":
			out["MACD"] = MACD(candles, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
		case "BOLLINGER":
			out["BOLLINGER"] = Bollinger(candles, DefaultBollingerPeriod, DefaultBollingerK)
		case "WILLIAMS_R":
			out["WILLIAMS_R"] = WilliamsR(candles, DefaultWilliamsRPeriod)
		case "OBV":
			out["OBV"] = OBV(candles)
		}
	}
	return out
}
