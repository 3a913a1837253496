// Package rng provides the seedable random source used by the simulator.
//
// A Source is a root seed. Every consumer draws from its own Stream, so a
// student's draws never depend on how many other students ran before it or
// on which goroutine it ran.
package rng

import (
	"math"
	"math/rand/v2"
)

// SetupStream is the stream id reserved for curriculum setup.
const SetupStream uint64 = 0

// Rand is the draw interface the simulator depends on.
type Rand interface {
	// UniformInt returns an int in [low, high).
	UniformInt(low, high int) int
	// Bernoulli returns 1 with probability p, else 0.
	Bernoulli(p float64) int
	// Normal returns a draw from Normal(mean, std).
	Normal(mean, std float64) float64
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
}

// Source is a root seed that hands out independent streams.
type Source struct {
	seed uint64
}

// New creates a Source for seed.
func New(seed uint64) Source {
	return Source{seed: seed}
}

// Stream returns the deterministic stream with the given id.
func (s Source) Stream(id uint64) *Stream {
	return &Stream{r: rand.New(rand.NewPCG(s.seed, mix(id)))}
}

// Stream is a single PCG-backed random stream. Not safe for concurrent use.
type Stream struct {
	r *rand.Rand
}

func (st *Stream) UniformInt(low, high int) int {
	if high <= low {
		return low
	}
	return low + st.r.IntN(high-low)
}

func (st *Stream) Bernoulli(p float64) int {
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	}
	if st.r.Float64() < p {
		return 1
	}
	return 0
}

func (st *Stream) Normal(mean, std float64) float64 {
	return mean + std*st.r.NormFloat64()
}

func (st *Stream) Float64() float64 {
	return st.r.Float64()
}

// mix spreads small stream ids across the 64-bit space (splitmix64 finalizer).
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// IsProbability reports whether p is a finite value in [0, 1].
func IsProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}
