// Package random provides the uniform draws that decide bouts.
package random

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
)

// Sentinel errors for randomness providers.
var (
	// ErrTransport wraps timeouts, connection failures and non-2xx responses.
	ErrTransport = errors.New("random source transport failure")

	// ErrMalformed means the upstream payload is not a decimal in [0, 1].
	ErrMalformed = errors.New("random source returned malformed value")
)

// Source returns values uniformly distributed in [0, 1].
type Source interface {
	Next(ctx context.Context) (float64, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (float64, error)

func (f SourceFunc) Next(ctx context.Context) (float64, error) { return f(ctx) }

// Local draws from an in-process PRNG. It never fails and is meant for
// offline runs where random.org is unreachable.
type Local struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocal seeds a PCG generator.
func NewLocal(seed uint64) *Local {
	return &Local{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *Local) Next(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64(), nil
}
