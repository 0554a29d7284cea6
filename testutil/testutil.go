package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/tsbatch/internal/bitset"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Mask returns a validity mask for n rows with each bit set with
// probability density. A density of 1 or more sets every bit.
func (r *RNG) Mask(n int, density float64) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	mask := make([]byte, (n+7)/8)
	for i := range n {
		if r.rand.Float64() < density {
			mask[i/8] |= 1 << (i % 8)
		}
	}
	return mask
}

// Float64s returns n values in range [-1000, 1000).
func (r *RNG) Float64s(n int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, n)
	for i := range out {
		out[i] = r.rand.Float64()*2000 - 1000
	}
	return out
}

// Int64s returns n values in range [-limit, limit).
func (r *RNG) Int64s(n int, limit int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, n)
	for i := range out {
		out[i] = r.rand.Int63n(2*limit) - limit
	}
	return out
}

// Uint64s returns n pseudo-random values.
func (r *RNG) Uint64s(n int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint64, n)
	for i := range out {
		out[i] = r.rand.Uint64()
	}
	return out
}

// Bools returns n pseudo-random booleans.
func (r *RNG) Bools(n int) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]bool, n)
	for i := range out {
		out[i] = r.rand.Intn(2) == 1
	}
	return out
}

// Strings returns n values drawn from cardinality distinct strings.
func (r *RNG) Strings(n, cardinality int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("v%03d", r.rand.Intn(cardinality))
	}
	return out
}

// Timestamps returns n ascending timestamps starting at start.
func (r *RNG) Timestamps(n int, start int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, n)
	ts := start
	for i := range out {
		ts += 1 + r.rand.Int63n(1000)
		out[i] = ts
	}
	return out
}

// CountSet returns the number of bits set in the first n bits of mask.
func CountSet(mask []byte, n int) int {
	return bitset.CountSet(mask, n)
}
