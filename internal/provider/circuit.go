package provider

import (
	"time"

	"github.com/sony/gobreaker"
)

// newBreaker wires a per-source circuit breaker (spec §4.1, §5): it
// opens after 5 consecutive failures, stays open for 30s, and requires
// 3 successes in half-open to close again.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}
