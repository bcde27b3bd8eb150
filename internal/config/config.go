// Package config loads the engine's runtime configuration (ambient
// stack §A.3), grounded on the teacher's internal/config/providers.go:
// environment variables for secrets and endpoints, with an optional
// YAML override file for cache TTLs, rate limits and circuit-breaker
// thresholds. Defaults match spec §4.1/§4.6 when no file is present.
// Of the cache TTLs only the full-analysis TTL reaches the engine, and
// the circuit-breaker values are parsed and validated but not applied
// (see CacheConfig and CircuitConfig).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the engine's full runtime configuration.
type Config struct {
	Debug bool

	PrimaryAPIKey   string
	PrimaryBaseURL  string
	SecondaryBaseURL string

	Cache    CacheConfig    `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Circuit  CircuitConfig  `yaml:"circuit"`
}

// CacheConfig holds per-cache TTLs in seconds (spec §4.1, §4.6). Only
// FullAnalysisTTLSecs is read by the engine (the handler's cache); the
// provider's snapshot and candle caches use the fixed provider.SnapshotTTL
// and provider.CandleTTL and do not read SnapshotTTLSecs or CandleTTLSecs.
type CacheConfig struct {
	SnapshotTTLSecs     int `yaml:"snapshot_ttl_secs"`
	CandleTTLSecs       int `yaml:"candle_ttl_secs"`
	FullAnalysisTTLSecs int `yaml:"full_analysis_ttl_secs"`
}

// RateLimitConfig holds per-source token-bucket tunables (spec §5).
type RateLimitConfig struct {
	PrimaryRPS     float64 `yaml:"primary_rps"`
	PrimaryBurst   int     `yaml:"primary_burst"`
	SecondaryRPS   float64 `yaml:"secondary_rps"`
	SecondaryBurst int     `yaml:"secondary_burst"`
}

// CircuitConfig holds circuit-breaker tunables shared by both sources
// (spec §5; the teacher's config.CircuitConfig names the same fields).
// The breakers built in package provider use fixed settings equal to
// these defaults and do not read this struct.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold"`
	Timeout          int `yaml:"timeout_secs"`
	HalfOpenRequests int `yaml:"half_open_requests"`
}

// Defaults returns the configuration used when no YAML override file is
// present (spec §4.1 TTLs: 60s/300s; §4.6: 120s; §5: 5 consecutive
// failures trips, 30s timeout, 3 half-open probes).
func Defaults() Config {
	return Config{
		PrimaryBaseURL:   "https://api.coinpaprika.com/v1",
		SecondaryBaseURL: "https://api.dexscreener.com/latest/dex",
		Cache: CacheConfig{
			SnapshotTTLSecs:     60,
			CandleTTLSecs:       300,
			FullAnalysisTTLSecs: 120,
		},
		RateLimit: RateLimitConfig{
			PrimaryRPS:     10,
			PrimaryBurst:   20,
			SecondaryRPS:   5,
			SecondaryBurst: 10,
		},
		Circuit: CircuitConfig{
			FailureThreshold: 5,
			Timeout:          30,
			HalfOpenRequests: 3,
		},
	}
}

// Load builds a Config from environment variables, then applies a YAML
// override file if yamlPath is non-empty and exists.
func Load(yamlPath string) (Config, error) {
	cfg := Defaults()

	cfg.Debug = os.Getenv("TASERVER_DEBUG") == "1"
	cfg.PrimaryAPIKey = os.Getenv("TASERVER_PRIMARY_API_KEY")
	if v := os.Getenv("TASERVER_PRIMARY_BASE_URL"); v != "" {
		cfg.PrimaryBaseURL = v
	}
	if v := os.Getenv("TASERVER_SECONDARY_BASE_URL"); v != "" {
		cfg.SecondaryBaseURL = v
	}

	if yamlPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate ensures tunables are internally consistent (same discipline
// as the teacher's ProvidersConfig.Validate).
func (c Config) Validate() error {
	if c.Cache.SnapshotTTLSecs < 0 || c.Cache.CandleTTLSecs < 0 || c.Cache.FullAnalysisTTLSecs < 0 {
		return fmt.Errorf("cache TTLs cannot be negative")
	}
	if c.RateLimit.PrimaryRPS <= 0 || c.RateLimit.SecondaryRPS <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.RateLimit.PrimaryBurst < int(c.RateLimit.PrimaryRPS) || c.RateLimit.SecondaryBurst < int(c.RateLimit.SecondaryRPS) {
		return fmt.Errorf("burst must be >= rps")
	}
	if c.Circuit.FailureThreshold <= 0 {
		return fmt.Errorf("circuit failure_threshold must be positive")
	}
	if c.Circuit.Timeout <= 0 {
		return fmt.Errorf("circuit timeout_secs must be positive")
	}
	return nil
}

// SnapshotTTL returns the snapshot cache lifetime as a Duration.
func (c Config) SnapshotTTL() time.Duration { return time.Duration(c.Cache.SnapshotTTLSecs) * time.Second }

// CandleTTL returns the candle cache lifetime as a Duration.
func (c Config) CandleTTL() time.Duration { return time.Duration(c.Cache.CandleTTLSecs) * time.Second }

// FullAnalysisTTL returns the full-analysis cache lifetime as a Duration.
func (c Config) FullAnalysisTTL() time.Duration {
	return time.Duration(c.Cache.FullAnalysisTTLSecs) * time.Second
}
