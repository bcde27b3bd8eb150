package domain

import "time"

// PriceSnapshot is a point-in-time price quote for a symbol (spec §3).
// Fields the secondary source cannot supply are left at their zero value
// (price and timestamp are always set).
type PriceSnapshot struct {
	Symbol            string             `json:"symbol"`
	Price             float64            `json:"price"`
	Change24hAbs      float64            `json:"change_24h_abs"`
	Change24hPct      float64            `json:"change_24h_pct"`
	Volume24h         float64            `json:"volume_24h"`
	MarketCap         *float64           `json:"market_cap,omitempty"`
	Rank              *int               `json:"rank,omitempty"`
	PercentChanges     map[string]float64 `json:"percent_changes,omitempty"` // keys: 15m,30m,1h,6h,12h,24h,7d,30d,1y
	ATHPrice          *float64           `json:"ath_price,omitempty"`
	ATHDate           *time.Time         `json:"ath_date,omitempty"`
	Source            string             `json:"source"`
	Timestamp         time.Time          `json:"timestamp"`
}

// Change24hAbsFromPct derives the absolute 24h change the way CoinPaprika's
// payload does: price - price/(1+pct/100). Documented open question in
// spec §9 — kept as specified, numerically equivalent to the standard
// formula modulo rounding.
func Change24hAbsFromPct(price, pct float64) float64 {
	return price - price/(1+pct/100)
}
