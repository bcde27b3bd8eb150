package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// wellKnownIDs seeds the static ticker → upstream-id map for common
// symbols (spec §4.1 "Primary source"), in the market-data aggregator's
// own "<symbol>-<slug>" id format.
var wellKnownIDs = map[string]string{
	"BTC":  "btc-bitcoin",
	"ETH":  "eth-ethereum",
	"USDT": "usdt-tether",
	"BNB":  "bnb-binance-coin",
	"SOL":  "sol-solana",
	"XRP":  "xrp-xrp",
	"ADA":  "ada-cardano",
	"DOGE": "doge-dogecoin",
}

// Primary implements QuoteSource against a CoinPaprika-shaped aggregator
// API: a coin search endpoint for dynamic resolution, a ticker endpoint
// for snapshots, and a paid-tier OHLCV-historical endpoint for candles
// (spec §4.1).
type Primary struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *hostLimiter
	baseURL string
	apiKey  string
	idCache *TTLCache[string]
}

// NewPrimary builds the primary source with its own circuit breaker and
// host rate limiter (spec §4.1, §5).
func NewPrimary(cfg Config) *Primary {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.coinpaprika.com/v1"
	}
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = DefaultHTTPTimeout
	}
	rps := cfg.RequestsPerSec
	if rps == 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst == 0 {
		burst = 20
	}
	return &Primary{
		client:  &http.Client{Timeout: timeout},
		breaker: newBreaker("primary"),
		limiter: newHostLimiter(rps, burst),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		idCache: NewTTLCache[string](0),
	}
}

func (p *Primary) Name() string { return "primary" }

type paprikaCoin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Resolve maps a ticker to the primary's upstream id: static well-known
// table first, then a coin-list search, cached unboundedly thereafter
// (spec §4.1 "Primary source").
func (p *Primary) Resolve(ctx context.Context, symbol string) (string, error) {
	symbol = strings.ToUpper(symbol)
	if id, ok := wellKnownIDs[symbol]; ok {
		return id, nil
	}
	return p.idCache.GetOrFetch(ctx, symbol, func(ctx context.Context) (string, error) {
		var coins []paprikaCoin
		if err := p.getJSON(ctx, "/coins", &coins); err != nil {
			return "", err
		}
		for _, c := range coins {
			if strings.EqualFold(c.Symbol, symbol) {
				return c.ID, nil
			}
		}
		return "", domain.NewError(domain.ErrInvalidSymbol, "primary.Resolve", "no upstream id for "+symbol, nil)
	})
}

type paprikaTicker struct {
	Symbol string `json:"symbol"`
	Rank   int    `json:"rank"`
	Quotes struct {
		USD struct {
			Price             float64 `json:"price"`
			Volume24h         float64 `json:"volume_24h"`
			MarketCap         float64 `json:"market_cap"`
			PercentChange15m  float64 `json:"percent_change_15m"`
			PercentChange30m  float64 `json:"percent_change_30m"`
			PercentChange1h   float64 `json:"percent_change_1h"`
			PercentChange6h   float64 `json:"percent_change_6h"`
			PercentChange12h  float64 `json:"percent_change_12h"`
			PercentChange24h  float64 `json:"percent_change_24h"`
			PercentChange7d   float64 `json:"percent_change_7d"`
			PercentChange30d  float64 `json:"percent_change_30d"`
			PercentChange1y   float64 `json:"percent_change_1y"`
			ATHPrice          float64 `json:"ath_price"`
			ATHDate           string  `json:"ath_date"`
		} `json:"USD"`
	} `json:"quotes"`
}

// Snapshot fetches the current ticker and maps it to a PriceSnapshot
// (spec §3, §4.1). The 24h absolute change is derived CoinPaprika-style:
// price − price/(1+pct/100).
func (p *Primary) Snapshot(ctx context.Context, upstreamID string) (domain.PriceSnapshot, error) {
	var t paprikaTicker
	if err := p.getJSON(ctx, "/tickers/"+url.PathEscape(upstreamID), &t); err != nil {
		return domain.PriceSnapshot{}, err
	}
	usd := t.Quotes.USD

	snapshot := domain.PriceSnapshot{
		Symbol:       strings.ToUpper(t.Symbol),
		Price:        usd.Price,
		Change24hPct: usd.PercentChange24h,
		Change24hAbs: domain.Change24hAbsFromPct(usd.Price, usd.PercentChange24h),
		Volume24h:    usd.Volume24h,
		PercentChanges: map[string]float64{
			"15m": usd.PercentChange15m,
			"30m": usd.PercentChange30m,
			"1h":  usd.PercentChange1h,
			"6h":  usd.PercentChange6h,
			"12h": usd.PercentChange12h,
			"24h": usd.PercentChange24h,
			"7d":  usd.PercentChange7d,
			"30d": usd.PercentChange30d,
			"1y":  usd.PercentChange1y,
		},
		Source:    "primary",
		Timestamp: time.Now(),
	}
	if t.Rank > 0 {
		rank := t.Rank
		snapshot.Rank = &rank
	}
	if usd.MarketCap > 0 {
		mc := usd.MarketCap
		snapshot.MarketCap = &mc
	}
	if usd.ATHPrice > 0 {
		ath := usd.ATHPrice
		snapshot.ATHPrice = &ath
		if parsed, err := time.Parse(time.RFC3339, usd.ATHDate); err == nil {
			snapshot.ATHDate = &parsed
		}
	}
	return snapshot, nil
}

type paprikaCandle struct {
	TimeOpen  string  `json:"time_open"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// timeframeInterval maps a Timeframe to the primary's interval string
// (spec §4.1 "interval string mapped from Timeframe").
func timeframeInterval(tf domain.Timeframe) string {
	switch tf {
	case domain.Timeframe4h:
		return "4h"
	case domain.TimeframeDaily:
		return "1d"
	case domain.TimeframeWeekly:
		return "7d"
	case domain.TimeframeMonthly:
		return "30d"
	default:
		return "1d"
	}
}

// Candles fetches the OHLCV-historical window, a paid-tier endpoint:
// the upstream returns 402 for callers without access, which maps to
// PaymentRequired and is never retried (spec §4.1, §5).
func (p *Primary) Candles(ctx context.Context, upstreamID string, tf domain.Timeframe, periods int) ([]domain.Candle, error) {
	end := time.Now().UTC()
	start := end.Add(-time.Duration(periods) * time.Duration(tf.Minutes()) * time.Minute)

	path := fmt.Sprintf("/coins/%s/ohlcv/historical?start=%s&end=%s&interval=%s&limit=%d",
		url.PathEscape(upstreamID),
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
		timeframeInterval(tf),
		periods,
	)

	var raw []paprikaCandle
	if err := p.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}

	out := make([]domain.Candle, 0, len(raw))
	for _, c := range raw {
		ts, err := time.Parse(time.RFC3339, c.TimeOpen)
		if err != nil {
			return nil, domain.NewError(domain.ErrDataParsing, "primary.Candles", "malformed candle timestamp", err)
		}
		out = append(out, domain.Candle{
			Timestamp: ts,
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		})
	}
	return out, nil
}

func (p *Primary) getJSON(ctx context.Context, path string, v interface{}) error {
	if err := p.limiter.Wait(ctx, p.baseURL); err != nil {
		return domain.NewError(domain.ErrNetworkError, "primary.getJSON", "rate limiter wait failed", err)
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
		if err != nil {
			return nil, domain.NewError(domain.ErrNetworkError, "primary.getJSON", "request build failed", err)
		}
		if p.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+p.apiKey)
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return nil, domain.NewError(domain.ErrNetworkError, "primary.getJSON", "transport error", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusPaymentRequired {
			return nil, domain.NewError(domain.ErrPaymentRequired, "primary.getJSON", "endpoint requires a higher tier", nil)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, domain.NewError(domain.ErrNetworkError, "primary.getJSON", fmt.Sprintf("upstream status %d", resp.StatusCode), nil)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, domain.NewError(domain.ErrNetworkError, "primary.getJSON", "body read failed", err)
		}
		if err := json.Unmarshal(body, v); err != nil {
			return nil, domain.NewError(domain.ErrDataParsing, "primary.getJSON", "malformed payload", err)
		}
		return nil, nil
	})
	return err
}
