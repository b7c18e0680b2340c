// Package rng provides the random sources consumed by the synthesis core.
//
// Nothing in amplify draws from the global generator. Every operation that
// needs randomness takes a [Source] argument, so callers decide between a
// seeded, reproducible generator ([New]) and a generator that may be shared
// between goroutines ([NewLocked]).
//
// A *rand.Rand from math/rand/v2 satisfies [Source] directly:
//
//	src := rng.New(42)
//	out, err := synth.Expand(t, 1000, src, nil)
//
// *rand.Rand is not safe for concurrent use. Give each goroutine its own
// generator, or wrap one in [Locked].
package rng

import (
	"math/rand/v2"
	"sync"
)

// Source is the subset of *rand.Rand used by the core.
type Source interface {
	// Float64 returns a pseudo-random number in [0.0, 1.0).
	Float64() float64
	// IntN returns a pseudo-random number in [0, n). It panics if n <= 0.
	IntN(n int) int
	// NormFloat64 returns a standard normal variate (mean 0, stddev 1).
	NormFloat64() float64
	// Uint64 returns a pseudo-random 64-bit value.
	Uint64() uint64
}

// New returns a PCG-backed generator seeded with seed.
// Two generators built from the same seed produce identical streams.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// FreshSeed returns a non-zero seed drawn from the runtime's auto-seeded generator.
func FreshSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}

// Uniform returns a value drawn uniformly from [lo, hi).
// When lo == hi it returns lo without consuming randomness.
func Uniform(src Source, lo, hi float64) float64 {
	if lo == hi {
		return lo
	}
	return lo + src.Float64()*(hi-lo)
}

// Bernoulli reports true with probability p.
// One value is always drawn so the stream position does not depend on p.
func Bernoulli(src Source, p float64) bool {
	return src.Float64() < p
}

// Locked serialises access to an underlying generator.
type Locked struct {
	mu  sync.Mutex
	src *rand.Rand
}

// NewLocked returns a mutex-guarded PCG generator seeded with seed.
func NewLocked(seed uint64) *Locked {
	return &Locked{src: New(seed)}
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

func (l *Locked) NormFloat64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.NormFloat64()
}

func (l *Locked) Uint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Uint64()
}

var (
	_ Source = (*rand.Rand)(nil)
	_ Source = (*Locked)(nil)
)
