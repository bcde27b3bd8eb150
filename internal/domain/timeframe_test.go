package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeframeMinutes(t *testing.T) {
	assert.Equal(t, 240, Timeframe4h.Minutes())
	assert.Equal(t, 1440, TimeframeDaily.Minutes())
	assert.Equal(t, 10080, TimeframeWeekly.Minutes())
	assert.Equal(t, 43200, TimeframeMonthly.Minutes())
}

func TestParseTimeframe(t *testing.T) {
	assert.Equal(t, Timeframe4h, ParseTimeframe("4h"))
	assert.Equal(t, TimeframeDaily, ParseTimeframe("1d"))
	assert.Equal(t, TimeframeDaily, ParseTimeframe("daily"))
	assert.Equal(t, TimeframeWeekly, ParseTimeframe("weekly"))
	assert.Equal(t, TimeframeWeekly, ParseTimeframe("1w"))
	assert.Equal(t, TimeframeMonthly, ParseTimeframe("monthly"))
	assert.Equal(t, TimeframeMonthly, ParseTimeframe("1M"))
	assert.Equal(t, TimeframeDaily, ParseTimeframe(""))
}

func TestVerdictNumeric(t *testing.T) {
	assert.Equal(t, 2, StrongBuy.Numeric())
	assert.Equal(t, 1, Buy.Numeric())
	assert.Equal(t, 0, Hold.Numeric())
	assert.Equal(t, -1, Sell.Numeric())
	assert.Equal(t, -2, StrongSell.Numeric())
}

func TestRiskThreshold(t *testing.T) {
	assert.Equal(t, 0.8, RiskConservative.Threshold())
	assert.Equal(t, 0.6, RiskModerate.Threshold())
	assert.Equal(t, 0.4, RiskAggressive.Threshold())
}
