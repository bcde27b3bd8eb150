package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/domain"
)

// Secondary implements QuoteSource against a DEX aggregator (spec §4.1
// "Secondary source"): consulted when the primary fails to resolve a
// symbol, and exposes richer token-graph data through its own methods
// for the dedicated DEX tools.
type Secondary struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *hostLimiter
	baseURL string
}

// NewSecondary builds the secondary source with its own circuit breaker
// and host rate limiter (spec §4.1, §5).
func NewSecondary(cfg Config) *Secondary {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.dexscreener.com/latest/dex"
	}
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = DefaultHTTPTimeout
	}
	rps := cfg.RequestsPerSec
	if rps == 0 {
		rps = 5
	}
	burst := cfg.Burst
	if burst == 0 {
		burst = 10
	}
	return &Secondary{
		client:  &http.Client{Timeout: timeout},
		breaker: newBreaker("secondary"),
		limiter: newHostLimiter(rps, burst),
		baseURL: cfg.BaseURL,
	}
}

func (s *Secondary) Name() string { return "secondary" }

type dexPair struct {
	ChainID   string `json:"chainId"`
	DexID     string `json:"dexId"`
	BaseToken struct {
		Address string `json:"address"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUSD   string `json:"priceUsd"`
	Volume     struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
}

type dexSearchResponse struct {
	Pairs []dexPair `json:"pairs"`
}

// Resolve searches the aggregator's global token search for a pair
// whose base token matches symbol and returns "<chainId>:<base-token
// address>" as the upstream id (spec §4.1 "token lookup by symbol
// (global search)").
func (s *Secondary) Resolve(ctx context.Context, symbol string) (string, error) {
	pairs, err := s.search(ctx, symbol)
	if err != nil {
		return "", err
	}
	for _, p := range pairs {
		if strings.EqualFold(p.BaseToken.Symbol, symbol) {
			return p.ChainID + ":" + p.BaseToken.Address, nil
		}
	}
	return "", domain.NewError(domain.ErrInvalidSymbol, "secondary.Resolve", "no pair found for "+symbol, nil)
}

// Snapshot maps the best-liquidity matching pair into a PriceSnapshot,
// leaving fields the aggregator cannot supply (rank, ATH, market cap)
// absent (spec §4.1 "Fallback policy").
func (s *Secondary) Snapshot(ctx context.Context, upstreamID string) (domain.PriceSnapshot, error) {
	network, address, ok := splitUpstreamID(upstreamID)
	if !ok {
		return domain.PriceSnapshot{}, domain.NewError(domain.ErrInvalidSymbol, "secondary.Snapshot", "malformed upstream id", nil)
	}

	var resp dexSearchResponse
	if err := s.getJSON(ctx, "/tokens/"+url.PathEscape(address), &resp); err != nil {
		return domain.PriceSnapshot{}, err
	}

	var best *dexPair
	for i := range resp.Pairs {
		p := &resp.Pairs[i]
		if p.ChainID != network {
			continue
		}
		if best == nil || p.Liquidity.USD > best.Liquidity.USD {
			best = p
		}
	}
	if best == nil {
		return domain.PriceSnapshot{}, domain.NewError(domain.ErrInvalidSymbol, "secondary.Snapshot", "no pair on network "+network, nil)
	}

	price, err := strconv.ParseFloat(best.PriceUSD, 64)
	if err != nil {
		return domain.PriceSnapshot{}, domain.NewError(domain.ErrDataParsing, "secondary.Snapshot", "malformed price", err)
	}

	return domain.PriceSnapshot{
		Symbol:       strings.ToUpper(best.BaseToken.Symbol),
		Price:        price,
		Change24hPct: best.PriceChange.H24,
		Change24hAbs: domain.Change24hAbsFromPct(price, best.PriceChange.H24),
		Volume24h:    best.Volume.H24,
		Source:       "secondary",
		Timestamp:    time.Now(),
	}, nil
}

// Candles always fails: per-pool OHLCV exists for the DEX tools, but
// the core indicator/pattern pipeline requires the primary's candle
// history — the aggregator is never a fallback for it (spec §4.1
// "Fallback policy").
func (s *Secondary) Candles(ctx context.Context, upstreamID string, tf domain.Timeframe, periods int) ([]domain.Candle, error) {
	return nil, domain.NewError(domain.ErrInsufficientData, "secondary.Candles", "historical candles are primary-only", nil)
}

func (s *Secondary) search(ctx context.Context, query string) ([]dexPair, error) {
	var resp dexSearchResponse
	if err := s.getJSON(ctx, "/search?q="+url.QueryEscape(query), &resp); err != nil {
		return nil, err
	}
	return resp.Pairs, nil
}

func splitUpstreamID(id string) (network, address string, ok bool) {
	parts := strings.SplitN(id, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (s *Secondary) getJSON(ctx context.Context, path string, v interface{}) error {
	if err := s.limiter.Wait(ctx, s.baseURL); err != nil {
		return domain.NewError(domain.ErrNetworkError, "secondary.getJSON", "rate limiter wait failed", err)
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
		if err != nil {
			return nil, domain.NewError(domain.ErrNetworkError, "secondary.getJSON", "request build failed", err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, domain.NewError(domain.ErrNetworkError, "secondary.getJSON", "transport error", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusPaymentRequired {
			return nil, domain.NewError(domain.ErrPaymentRequired, "secondary.getJSON", "endpoint requires a higher tier", nil)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, domain.NewError(domain.ErrNetworkError, "secondary.getJSON", fmt.Sprintf("upstream status %d", resp.StatusCode), nil)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, domain.NewError(domain.ErrNetworkError, "secondary.getJSON", "body read failed", err)
		}
		if err := json.Unmarshal(body, v); err != nil {
			return nil, domain.NewError(domain.ErrDataParsing, "secondary.getJSON", "malformed payload", err)
		}
		return nil, nil
	})
	return err
}
