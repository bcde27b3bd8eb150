package patterns

import "github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"

// detectCandlesticks scans the full candle series for single/double/
// triple-bar candlestick formations (spec §4.3 "Candlestick").
func detectCandlesticks(candles []domain.Candle) []domain.ChartPattern {
	var out []domain.ChartPattern

	for i, c := range candles {
		body := c.Body()
		if body == 0 {
			continue
		}

		if c.LowerShadow() >= 2*body && c.UpperShadow() <= 0.1*body {
			out = append(out, singleBarPattern(domain.PatternHammer, c, i, "hammer: long lower shadow, small upper shadow"))
		}
		if c.UpperShadow() >= 2*body && c.LowerShadow() <= 0.1*body {
			out = append(out, singleBarPattern(domain.PatternShootingStar, c, i, "shooting star: long upper shadow, small lower shadow"))
		}
		if c.Doji() {
			out = append(out, singleBarPattern(domain.PatternDoji, c, i, "doji: body within 10% of range"))
		}
	}

	for i := 1; i < len(candles); i++ {
		prev, cur := candles[i-1], candles[i]
		if prev.Body() == 0 {
			continue
		}

		if prev.Close < prev.Open && cur.Close > cur.Open &&
			cur.Open <= prev.Close && cur.Close >= prev.Open {
			out = append(out, twoBarPattern(domain.PatternEngulfingBullish, prev, cur, i, "bullish engulfing"))
		}
		if prev.Close > prev.Open && cur.Close < cur.Open &&
			cur.Open >= prev.Close && cur.Close <= prev.Open {
			out = append(out, twoBarPattern(domain.PatternEngulfingBearish, prev, cur, i, "bearish engulfing"))
		}
	}

	for i := 2; i < len(candles); i++ {
		first, mid, third := candles[i-2], candles[i-1], candles[i]
		firstBody := first.Body()
		if firstBody == 0 {
			continue
		}
		midBody := mid.Body()
		firstMid := (first.Open + first.Close) / 2

		if first.Close < first.Open && midBody <= 0.3*firstBody &&
			third.Close > third.Open && third.Close > firstMid {
			out = append(out, threeBarPattern(domain.PatternMorningStar, first, third, i, "morning star"))
		}
		if first.Close > first.Open && midBody <= 0.3*firstBody &&
			third.Close < third.Open && third.Close < firstMid {
			out = append(out, threeBarPattern(domain.PatternEveningStar, first, third, i, "evening star"))
		}
	}

	return out
}

func singleBarPattern(kind domain.PatternKind, c domain.Candle, idx int, desc string) domain.ChartPattern {
	return domain.ChartPattern{
		Kind:        kind,
		Confidence:  singleBarConfidence(kind),
		Start:       c.Timestamp,
		End:         c.Timestamp,
		KeyPoints:   []domain.PivotPoint{{Timestamp: c.Timestamp, Price: c.Close, Index: idx}},
		Description: desc,
		Bullish:     kind.IsBullish(),
		Reversal:    kind.IsReversal(),
	}
}

func singleBarConfidence(kind domain.PatternKind) float64 {
	if kind == domain.PatternDoji {
		return 0.5
	}
	return 0.6
}

func twoBarPattern(kind domain.PatternKind, prev, cur domain.Candle, idx int, desc string) domain.ChartPattern {
	return domain.ChartPattern{
		Kind:       kind,
		Confidence: 0.7,
		Start:      prev.Timestamp,
		End:        cur.Timestamp,
		KeyPoints: []domain.PivotPoint{
			{Timestamp: prev.Timestamp, Price: prev.Close, Index: idx - 1},
			{Timestamp: cur.Timestamp, Price: cur.Close, Index: idx},
		},
		Description: desc,
		Bullish:     kind.IsBullish(),
		Reversal:    kind.IsReversal(),
	}
}

func threeBarPattern(kind domain.PatternKind, first, third domain.Candle, idx int, desc string) domain.ChartPattern {
	return domain.ChartPattern{
		Kind:       kind,
		Confidence: 0.8,
		Start:      first.Timestamp,
		End:        third.Timestamp,
		KeyPoints: []domain.PivotPoint{
			{Timestamp: first.Timestamp, Price: first.Close, Index: idx - 2},
			{Timestamp: third.Timestamp, Price: third.Close, Index: idx},
		},
		Description: desc,
		Bullish:     kind.IsBullish(),
		Reversal:    kind.IsReversal(),
	}
}
