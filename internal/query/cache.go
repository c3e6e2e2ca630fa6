package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies one cached query result.
type Key string

// Cache keys for the backend queries kosh tracks.
const (
	KeySyncStatus   Key = "sync/status"
	KeySyncHistory  Key = "sync/history"
	KeyAccounts     Key = "accounts"
	KeyTransactions Key = "transactions"
	KeyHoldings     Key = "wealth/holdings"
	KeyGoals        Key = "goals"
)

const defaultTTL = 15 * time.Second

// Cache holds per-key query results with a freshness window. A result is
// served from cache until its TTL elapses or it is explicitly invalidated;
// concurrent fetches for the same key collapse into a single backend call.
type Cache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[Key]entry
	group   singleflight.Group

	// Injection points for deterministic tests.
	now       func() time.Time
	afterFunc func(time.Duration, func()) *time.Timer
}

type entry struct {
	value     any
	fetchedAt time.Time
	stale     bool
}

// NewCache builds a Cache. A non-positive ttl selects the default.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{
		ttl:       ttl,
		entries:   make(map[Key]entry),
		now:       time.Now,
		afterFunc: time.AfterFunc,
	}
}

// Get returns the cached value for key when fresh, otherwise fetches it.
// Only one fetch per key runs at a time; late arrivals share its result.
func (c *Cache) Get(ctx context.Context, key Key, fetch func(context.Context) (any, error)) (any, error) {
	if value, ok := c.fresh(key); ok {
		return value, nil
	}
	value, err, _ := c.group.Do(string(key), func() (any, error) {
		// A concurrent caller may have refilled the entry while this
		// call waited on the flight group.
		if value, ok := c.fresh(key); ok {
			return value, nil
		}
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.put(key, value)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Peek returns the cached value for key even when stale, for views that
// prefer showing old data over nothing while a refetch is in flight.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Invalidate marks the given keys stale so the next Get refetches them.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if e, ok := c.entries[key]; ok {
			e.stale = true
			c.entries[key] = e
		}
	}
}

// InvalidateAfter marks the given keys stale once delay has elapsed. Used
// after triggering the backend's asynchronous sync job, to give it time to
// make initial progress before dependent views refetch.
func (c *Cache) InvalidateAfter(delay time.Duration, keys ...Key) {
	if delay <= 0 {
		c.Invalidate(keys...)
		return
	}
	c.afterFunc(delay, func() {
		c.Invalidate(keys...)
	})
}

func (c *Cache) fresh(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.stale {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) put(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, fetchedAt: c.now()}
}

// GetAs is a typed wrapper around Cache.Get.
func GetAs[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	value, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("cache entry %s holds %T", key, value)
	}
	return typed, nil
}
