// Package metrics wires an in-process Prometheus registry for the engine
// (domain stack §B): cache hit/miss counters, per-host circuit-breaker
// gauges, and a tool-call counter/histogram by tool name and outcome.
// Nothing here is exported over HTTP. The engine records tool calls
// (package rpc) and full-analysis cache hits/misses (package handler);
// the provider's caches and circuit breakers do not report here, and
// SetCircuitState has no caller in the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// Collector aggregates the engine's operational metrics.
type Collector struct {
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	CircuitState *prometheus.GaugeVec

	ToolCalls   *prometheus.CounterVec
	ToolLatency *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewCollector builds a Collector registered against its own private
// registry, so repeated construction in tests never collides with
// prometheus's global DefaultRegisterer.
func NewCollector() *Collector {
	c := &Collector{
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taserver_cache_hits_total",
				Help: "Total cache hits by cache name",
			},
			[]string{"cache"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taserver_cache_misses_total",
				Help: "Total cache misses by cache name",
			},
			[]string{"cache"},
		),
		CircuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "taserver_circuit_state",
				Help: "Circuit breaker state by host (0=closed, 1=half-open, 2=open)",
			},
			[]string{"host"},
		),
		ToolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taserver_tool_calls_total",
				Help: "Total tool calls by tool name and outcome",
			},
			[]string{"tool", "outcome"},
		),
		ToolLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taserver_tool_latency_seconds",
				Help:    "Tool call latency in seconds by tool name",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"tool"},
		),
	}

	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(c.CacheHits, c.CacheMisses, c.CircuitState, c.ToolCalls, c.ToolLatency)
	return c
}

// RecordCacheHit increments the hit counter for cache.
func (c *Collector) RecordCacheHit(cache string) {
	c.CacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss increments the miss counter for cache.
func (c *Collector) RecordCacheMiss(cache string) {
	c.CacheMisses.WithLabelValues(cache).Inc()
}

// SetCircuitState records a host's circuit-breaker state (0/1/2).
func (c *Collector) SetCircuitState(host string, value float64) {
	c.CircuitState.WithLabelValues(host).Set(value)
}

// RecordToolCall records a completed tool call's outcome and latency.
func (c *Collector) RecordToolCall(tool, outcome string, seconds float64) {
	c.ToolCalls.WithLabelValues(tool, outcome).Inc()
	c.ToolLatency.WithLabelValues(tool).Observe(seconds)
}

// CacheHitRate returns hits/(hits+misses) for cache, or 0 if unseen.
func (c *Collector) CacheHitRate(cache string) float64 {
	hits := counterValue(c.CacheHits, cache)
	misses := counterValue(c.CacheMisses, cache)
	total := hits + misses
	if total == 0 {
		return 0
	}
	return hits / total
}

func counterValue(vec *prometheus.CounterVec, label string) float64 {
	counter, err := vec.GetMetricWithLabelValues(label)
	if err != nil {
		return 0
	}
	m := &io_prometheus_client.Metric{}
	if err := counter.Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
