package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// entry stores one cached value with expiry. Entries are immutable once
// written; a refetch inserts a replacement.
type entry struct {
	expiresAt time.Time
	value     any
}

// Cache memoizes successful fetches per key for a TTL. Expiry is
// checked at read time, there is no background eviction. Failures are
// never stored, so a transient error does not poison later calls.
type Cache struct {
	TTL      time.Duration
	MaxItems int

	mu    sync.RWMutex
	items map[string]entry
}

func New(ttl time.Duration, maxItems int) *Cache {
	return &Cache{TTL: ttl, MaxItems: maxItems, items: make(map[string]entry)}
}

// Key canonicalizes an (endpoint, symbol, params) tuple into a cache
// key. Params must already be in a stable order.
func Key(endpoint, symbol string, params ...string) string {
	parts := append([]string{endpoint, symbol}, params...)
	return strings.Join(parts, ":")
}

// GetOrFetch returns the live cached value for key, or invokes fetch
// and stores its result on success. Concurrent misses for the same key
// may each invoke fetch; the last successful write wins, which is safe
// because entries are immutable snapshots of the same upstream data.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	if c == nil || c.TTL <= 0 {
		return fetch(ctx)
	}

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(e.expiresAt) {
		return e.value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.items[key] = entry{expiresAt: time.Now().Add(c.TTL), value: value}
	if c.MaxItems > 0 && len(c.items) > c.MaxItems {
		c.evictLocked()
	}
	c.mu.Unlock()
	return value, nil
}

// Invalidate drops a single key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// InvalidatePrefix drops every key under a tag such as an endpoint name
// or an "endpoint:symbol" pair.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}

// evictLocked drops expired entries first, then arbitrary ones until
// the cache fits. Caller holds the write lock.
func (c *Cache) evictLocked() {
	now := time.Now()
	for k, v := range c.items {
		if now.After(v.expiresAt) {
			delete(c.items, k)
		}
		if len(c.items) <= c.MaxItems {
			return
		}
	}
	for k := range c.items {
		if len(c.items) <= c.MaxItems {
			return
		}
		delete(c.items, k)
	}
}

// GetOrFetch is the typed wrapper around Cache.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	value, err := c.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}
