// Package statistics provides running per-column aggregates.
//
// A StatValues accumulates the minimum, maximum, non-null count and null
// count of the values folded into it. Two aggregates of the same type can be
// merged with UpdateFrom, which is how per-write accumulators are folded into
// a column's cumulative statistics at commit time.
package statistics

import (
	"cmp"
	"fmt"
	"math"
)

// Value is the set of types statistics can be computed for.
type Value interface {
	float64 | int64 | uint64 | bool | string
}

// StatValues is a running aggregate over values of type T.
type StatValues[T Value] struct {
	// Min is nil until a comparable value has been seen.
	Min *T `json:"min,omitempty"`
	// Max is nil until a comparable value has been seen.
	Max *T `json:"max,omitempty"`
	// Count is the number of non-null values seen.
	Count uint64 `json:"count"`
	// NullCount is the number of null values seen.
	NullCount uint64 `json:"null_count"`
	// DistinctCount is the number of distinct values including null, or 0
	// when unknown. It is only maintained for tag columns.
	DistinctCount uint64 `json:"distinct_count,omitempty"`
}

// NewStatValues returns an empty aggregate.
func NewStatValues[T Value]() StatValues[T] {
	return StatValues[T]{}
}

// TotalCount returns the number of rows seen, null or not.
func (s *StatValues[T]) TotalCount() uint64 {
	return s.Count + s.NullCount
}

// Update folds a non-null value into the aggregate.
//
// NaN floats are counted but never become the minimum or maximum.
func (s *StatValues[T]) Update(v T) {
	s.Count++
	if isNaN(v) {
		return
	}
	if s.Min == nil || compare(v, *s.Min) < 0 {
		s.Min = ptr(v)
	}
	if s.Max == nil || compare(v, *s.Max) > 0 {
		s.Max = ptr(v)
	}
}

// UpdateForNulls records n null values.
func (s *StatValues[T]) UpdateForNulls(n uint64) {
	s.NullCount += n
}

// UpdateFrom merges other into s.
//
// The distinct count cannot be derived from two aggregates and is reset to
// unknown; owners that can compute it (tag columns) set it afterwards.
func (s *StatValues[T]) UpdateFrom(other *StatValues[T]) {
	s.Count += other.Count
	s.NullCount += other.NullCount
	if other.Min != nil && (s.Min == nil || compare(*other.Min, *s.Min) < 0) {
		s.Min = ptr(*other.Min)
	}
	if other.Max != nil && (s.Max == nil || compare(*other.Max, *s.Max) > 0) {
		s.Max = ptr(*other.Max)
	}
	s.DistinctCount = 0
}

// Clone returns a deep copy of s.
func (s *StatValues[T]) Clone() StatValues[T] {
	c := *s
	if s.Min != nil {
		c.Min = ptr(*s.Min)
	}
	if s.Max != nil {
		c.Max = ptr(*s.Max)
	}
	return c
}

func ptr[T any](v T) *T { return &v }

func isNaN[T Value](v T) bool {
	f, ok := any(v).(float64)
	return ok && math.IsNaN(f)
}

func compare[T Value](a, b T) int {
	switch x := any(a).(type) {
	case float64:
		return cmp.Compare(x, any(b).(float64))
	case int64:
		return cmp.Compare(x, any(b).(int64))
	case uint64:
		return cmp.Compare(x, any(b).(uint64))
	case string:
		return cmp.Compare(x, any(b).(string))
	case bool:
		y := any(b).(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	}
	panic(fmt.Sprintf("statistics: unsupported type %T", a))
}
