// Package testutil provides testing utilities for tsbatch.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded generator for validity masks and column values.
//
//	rng := testutil.NewRNG(seed)
//	valid := rng.Mask(rows, 0.8)     // ~80% of rows set
//	values := rng.Float64s(testutil.CountSet(valid, rows))
//	hosts := rng.Strings(n, 4)       // values drawn from 4 distinct strings
package testutil
