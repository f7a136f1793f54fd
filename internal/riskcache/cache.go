// Package riskcache provides fingerprint-keyed, TTL-based memoization for
// the risk-analysis pathway.
package riskcache

import (
	"sync"
	"time"
)

// Cache is the injectable cache abstraction. Tests substitute a fake clock
// through NewWithClock.
//
// Concurrent misses on the same key are not coalesced: both callers proceed
// to recompute and both call Set, with the later write winning. This mirrors
// the source behavior; de-duplication would need an in-flight request map.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Has(key string) bool
	Clear()
}

type entry struct {
	data      interface{}
	timestamp time.Time
	ttl       time.Duration
}

// TTLCache implements Cache with lazy expiry: an expired entry is evicted on
// the read that observes it, there is no background sweep.
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// New creates a TTLCache using the wall clock.
func New() *TTLCache {
	return NewWithClock(time.Now)
}

// NewWithClock creates a TTLCache with a custom clock for tests.
func NewWithClock(now func() time.Time) *TTLCache {
	return &TTLCache{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Get returns the value for key if present and not expired. An expired entry
// is evicted and reported as absent.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.timestamp) > e.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.data, true
}

// Set stores value under key with the given ttl, replacing any prior entry.
func (c *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{data: value, timestamp: c.now(), ttl: ttl}
}

// Has reports whether key is present and not expired, without touching the value.
func (c *TTLCache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Clear removes all entries.
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, expired or not.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
