// Package rng provides a deterministic, checkpointable pseudo-random source.
//
// Every stochastic component in the engine (synthetic stroke generation,
// projection layout, k-means seeding) draws from a Source so that identical
// seeds reproduce identical results. math/rand is deliberately not used: its
// generators cannot export and re-import their state, which checkpointing
// requires.
package rng

import "math"

// splitmix64 mixing constants.
const (
	gamma = 0x9E3779B97F4A7C15
	mix1  = 0xBF58476D1CE4E5B9
	mix2  = 0x94D049BB133111EB
)

// Source is a deterministic pseudo-random generator. It is not safe for
// concurrent use; give each goroutine its own Source (see Derive).
type Source struct {
	state uint64
	seed  uint32

	// Box-Muller produces values in pairs; the spare is kept for the next
	// Gaussian call and must survive checkpointing.
	gaussSpare    float64
	hasGaussSpare bool
}

// State is an exported checkpoint of a Source. Restoring a State resumes the
// output sequence exactly where it left off.
type State struct {
	State         uint64  `json:"state"`
	Seed          uint32  `json:"seed"`
	GaussSpare    float64 `json:"gauss_spare"`
	HasGaussSpare bool    `json:"has_gauss_spare"`
}

// New creates a Source from a 32-bit seed.
func New(seed uint32) *Source {
	return &Source{state: uint64(seed), seed: seed}
}

// next advances the generator one step (splitmix64).
func (s *Source) next() uint64 {
	s.state += gamma
	z := s.state
	z ^= z >> 30
	z *= mix1
	z ^= z >> 27
	z *= mix2
	z ^= z >> 31
	return z
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() uint32 { return s.seed }

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	// Top 53 bits give a uniform double in [0,1).
	return float64(s.next()>>11) / (1 << 53)
}

// Float64Range returns a uniform value in [lo, hi).
func (s *Source) Float64Range(lo, hi float64) float64 {
	return lo + s.Float64()*(hi-lo)
}

// IntN returns a uniform integer in [0, n). It panics if n <= 0.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		panic("rng: IntN called with non-positive n")
	}
	return int(s.next() % uint64(n))
}

// IntRange returns a uniform integer in [lo, hi).
func (s *Source) IntRange(lo, hi int) int {
	return lo + s.IntN(hi-lo)
}

// Bool returns true with probability p.
func (s *Source) Bool(p float64) bool {
	return s.Float64() < p
}

// Shuffle performs a Fisher-Yates shuffle over n elements using swap.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.IntN(i + 1)
		swap(i, j)
	}
}

// NormFloat64 returns a Gaussian sample with the given mean and standard
// deviation, using the Box-Muller transform.
func (s *Source) NormFloat64(mean, stddev float64) float64 {
	if s.hasGaussSpare {
		s.hasGaussSpare = false
		return mean + stddev*s.gaussSpare
	}
	var u, v, r2 float64
	for {
		u = 2*s.Float64() - 1
		v = 2*s.Float64() - 1
		r2 = u*u + v*v
		if r2 > 0 && r2 < 1 {
			break
		}
	}
	f := math.Sqrt(-2 * math.Log(r2) / r2)
	s.gaussSpare = v * f
	s.hasGaussSpare = true
	return mean + stddev*u*f
}

// Export captures the current generator state.
func (s *Source) Export() State {
	return State{
		State:         s.state,
		Seed:          s.seed,
		GaussSpare:    s.gaussSpare,
		HasGaussSpare: s.hasGaussSpare,
	}
}

// Restore resets the generator to a previously exported state.
func (s *Source) Restore(st State) {
	s.state = st.State
	s.seed = st.Seed
	s.gaussSpare = st.GaussSpare
	s.hasGaussSpare = st.HasGaussSpare
}

// Clone returns an independent copy. Advancing the clone does not affect the
// original.
func (s *Source) Clone() *Source {
	c := *s
	return &c
}

// Derive returns an independent sub-stream keyed by offset. Identical
// (seed, offset) pairs always yield the same stream.
func (s *Source) Derive(offset uint32) *Source {
	// Mix the offset through one splitmix step so adjacent offsets do not
	// produce correlated streams.
	z := (uint64(s.seed) << 32) | uint64(offset)
	z ^= z >> 30
	z *= mix1
	z ^= z >> 27
	z *= mix2
	z ^= z >> 31
	return &Source{state: z, seed: s.seed}
}
