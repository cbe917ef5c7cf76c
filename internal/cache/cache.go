package cache

import (
	"context"
	"time"
)

// Loader fetches the authoritative value for key when the cache cannot serve it.
// Errors are returned to the caller unchanged and never cached.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Metrics observes cache behaviour. Implementations must be goroutine-safe.
type Metrics interface {
	// Hit records a lookup served from a live entry.
	Hit()
	// Miss records a lookup that went to the Loader (cold or expired).
	Miss()
	// Invalidate records an explicit removal; n is the number of entries dropped.
	Invalidate(n int)
}

// NoopMetrics is the default Metrics when no backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()           {}
func (NoopMetrics) Miss()          {}
func (NoopMetrics) Invalidate(int) {}

var _ Metrics = NoopMetrics{}

// Options controls construction of a TTLCache.
type Options struct {
	// TTL is how long a loaded value stays fresh. Zero means DefaultTTL.
	TTL time.Duration

	// Now is the clock; nil means time.Now. Tests inject a fake clock here.
	Now func() time.Time

	// Metrics receives hit/miss/invalidate events; nil means NoopMetrics.
	Metrics Metrics
}

// DefaultTTL applies when Options.TTL is zero.
const DefaultTTL = 60 * time.Second
