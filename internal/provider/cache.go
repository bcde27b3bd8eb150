package provider

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ttlEntry is one cached value with its storage time (spec §3 "caches own
// snapshots with their fetch/computation timestamp").
type ttlEntry[T any] struct {
	value    T
	storedAt time.Time
}

// TTLCache is an in-process, per-key cache with a fixed TTL and
// request-coalesced fetch-on-miss (spec §4.1 "Caches", §5 "Shared
// resources" — concurrent calls for the same key share one in-flight
// fetch).
type TTLCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]ttlEntry[T]
	ttl     time.Duration
	group   singleflight.Group
}

// NewTTLCache builds a cache with the given TTL. A zero TTL means
// entries never expire (used for the unbounded upstream-id cache).
func NewTTLCache[T any](ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{
		entries: make(map[string]ttlEntry[T]),
		ttl:     ttl,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *TTLCache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if c.ttl > 0 && time.Since(e.storedAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, stamped with the current time.
func (c *TTLCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ttlEntry[T]{value: value, storedAt: time.Now()}
}

// GetOrFetch returns the cached value for key, or calls fetch once per
// key across concurrent callers (request coalescing) and caches the
// result on success.
func (c *TTLCache[T]) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}
