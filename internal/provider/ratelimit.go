package provider

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// hostLimiter hands out a token-bucket rate.Limiter per host, lazily
// created on first use (spec §4.1 "Backpressure" — per-source upstream
// limits, not a global one).
type hostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

func newHostLimiter(rps float64, burst int) *hostLimiter {
	return &hostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (h *hostLimiter) get(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(h.rps), h.burst)
		h.limiters[host] = l
	}
	return l
}

// Wait blocks until a request to host is permitted or ctx is cancelled.
func (h *hostLimiter) Wait(ctx context.Context, host string) error {
	return h.get(host).Wait(ctx)
}
