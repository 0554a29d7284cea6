package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	rng := NewRNG(4711)

	m := rng.Mask(20, 0.5)
	assert.Len(t, m, 3)
	assert.Zero(t, m[2]&0xf0, "bits beyond n must stay unset")

	assert.Equal(t, 20, CountSet(rng.Mask(20, 1), 20))
	assert.Equal(t, 0, CountSet(rng.Mask(20, 0), 20))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	first := rng.Float64s(8)

	rng.Reset()

	assert.Equal(t, first, rng.Float64s(8))
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestStrings(t *testing.T) {
	rng := NewRNG(4711)

	seen := map[string]struct{}{}
	for _, s := range rng.Strings(200, 3) {
		seen[s] = struct{}{}
	}
	assert.LessOrEqual(t, len(seen), 3)
}

func TestTimestamps(t *testing.T) {
	rng := NewRNG(4711)

	ts := rng.Timestamps(50, 100)
	assert.Len(t, ts, 50)
	for i := 1; i < len(ts); i++ {
		assert.Greater(t, ts[i], ts[i-1])
	}
	assert.Greater(t, ts[0], int64(100))
}

func TestRanges(t *testing.T) {
	rng := NewRNG(4711)

	for _, v := range rng.Float64s(100) {
		assert.GreaterOrEqual(t, v, -1000.0)
		assert.Less(t, v, 1000.0)
	}
	for _, v := range rng.Int64s(100, 5) {
		assert.GreaterOrEqual(t, v, int64(-5))
		assert.Less(t, v, int64(5))
	}
	assert.Len(t, rng.Bools(7), 7)
	assert.Len(t, rng.Uint64s(7), 7)
}
