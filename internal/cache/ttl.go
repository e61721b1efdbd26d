package cache

import (
	"context"
	"sync"
	"time"
)

type ttlEntry[T any] struct {
	data      T
	timestamp time.Time
	ttl       time.Duration
}

func (e ttlEntry[T]) expired(now time.Time) bool {
	return now.Sub(e.timestamp) > e.ttl
}

// TTLCache is a process-local key/value store with per-entry expiry.
// Reads evict lazily; Run sweeps periodically until its context is cancelled.
type TTLCache[T any] struct {
	mu            sync.RWMutex
	entries       map[string]ttlEntry[T]
	sweepInterval time.Duration
	now           func() time.Time
}

// NewTTLCache creates a TTLCache whose janitor runs every sweepInterval.
func NewTTLCache[T any](sweepInterval time.Duration) *TTLCache[T] {
	if sweepInterval <= 0 {
		sweepInterval = 10 * time.Minute
	}
	return &TTLCache[T]{
		entries:       make(map[string]ttlEntry[T]),
		sweepInterval: sweepInterval,
		now:           time.Now,
	}
}

// Get returns the value and true while the entry is fresh.
func (c *TTLCache[T]) Get(key string) (T, bool) {
	var zero T
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if e.expired(now) {
		c.mu.Lock()
		if cur, still := c.entries[key]; still && cur.expired(now) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.data, true
}

func (c *TTLCache[T]) Set(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = ttlEntry[T]{data: value, timestamp: c.now(), ttl: ttl}
	c.mu.Unlock()
}

func (c *TTLCache[T]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Sweep removes every expired entry and returns how many were removed.
func (c *TTLCache[T]) Sweep() int {
	now := c.now()
	removed := 0

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len counts stored entries, including ones not yet swept.
func (c *TTLCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Run blocks, sweeping on every tick, until ctx is done.
func (c *TTLCache[T]) Run(ctx context.Context) {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}
