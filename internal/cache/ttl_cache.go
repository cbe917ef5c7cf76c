// Package cache implements the read-through combatant cache: values are
// loaded from a backing store on miss and served from memory until their
// TTL elapses. There is no background janitor; expiry is checked on read.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry stores a cached value and its absolute expiration timestamp.
// Entries are replaced whole on refresh, never patched.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a map-backed read-through cache with one TTL for every key.
// It is safe for concurrent use. Size is unbounded.
type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]entry[V]
	// gen is bumped by InvalidateAll so loads started before a wipe do not
	// repopulate the map afterwards.
	gen uint64

	ttl     time.Duration
	now     func() time.Time
	load    Loader[K, V]
	metrics Metrics
	flights singleflight.Group
}

// New constructs a TTLCache that refreshes through load.
func New[K comparable, V any](load Loader[K, V], opts Options) *TTLCache[K, V] {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = NoopMetrics{}
	}
	return &TTLCache[K, V]{
		items:   make(map[K]entry[V]),
		ttl:     opts.TTL,
		now:     opts.Now,
		load:    load,
		metrics: opts.Metrics,
	}
}

// TTL returns the configured time-to-live.
func (c *TTLCache[K, V]) TTL() time.Duration { return c.ttl }

// Get returns the value for key. A live entry (now < expiresAt) is returned
// without calling the Loader. Otherwise the Loader runs once, concurrent
// callers for the same key share its result, and the entry is overwritten
// with a fresh expiry. Loader errors are propagated and nothing is cached.
// The shared load is detached from ctx cancellation so one caller going
// away does not fail the others waiting on the same key.
func (c *TTLCache[K, V]) Get(ctx context.Context, key K) (V, error) {
	if v, ok := c.lookup(key); ok {
		c.metrics.Hit()
		return v, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	res, err, _ := c.flights.Do(fmt.Sprint(key), func() (any, error) {
		// Another flight may have filled the entry between lookup and Do.
		if v, ok := c.lookup(key); ok {
			c.metrics.Hit()
			return v, nil
		}
		c.metrics.Miss()

		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		v, err := c.load(loadCtx, key)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.items[key] = entry[V]{value: v, expiresAt: c.now().Add(c.ttl)}
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}

func (c *TTLCache[K, V]) lookup(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	e, ok := c.items[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return zero, false
	}
	return e.value, true
}

// Invalidate drops the entry for key, if any.
func (c *TTLCache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	_, ok := c.items[key]
	delete(c.items, key)
	c.mu.Unlock()
	if ok {
		c.metrics.Invalidate(1)
	}
}

// InvalidateAll clears every entry. Calling it on an empty cache is a no-op.
func (c *TTLCache[K, V]) InvalidateAll() {
	c.mu.Lock()
	n := len(c.items)
	c.items = make(map[K]entry[V])
	c.gen++
	c.mu.Unlock()
	if n > 0 {
		c.metrics.Invalidate(n)
	}
}

// Len counts only non-expired entries.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	nowTs := c.now()
	count := 0
	for _, e := range c.items {
		if nowTs.Before(e.expiresAt) {
			count++
		}
	}
	return count
}
