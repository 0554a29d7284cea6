package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatValuesUpdate(t *testing.T) {
	s := NewStatValues[int64]()
	assert.Nil(t, s.Min)
	assert.Nil(t, s.Max)

	for _, v := range []int64{5, -3, 12, 0} {
		s.Update(v)
	}
	s.UpdateForNulls(2)

	require.NotNil(t, s.Min)
	require.NotNil(t, s.Max)
	assert.Equal(t, int64(-3), *s.Min)
	assert.Equal(t, int64(12), *s.Max)
	assert.Equal(t, uint64(4), s.Count)
	assert.Equal(t, uint64(2), s.NullCount)
	assert.Equal(t, uint64(6), s.TotalCount())
}

func TestStatValuesNaN(t *testing.T) {
	s := NewStatValues[float64]()
	s.Update(math.NaN())
	assert.Nil(t, s.Min)
	assert.Equal(t, uint64(1), s.Count)

	s.Update(1.5)
	s.Update(math.NaN())
	s.Update(-2)
	assert.Equal(t, -2.0, *s.Min)
	assert.Equal(t, 1.5, *s.Max)
	assert.Equal(t, uint64(4), s.Count)
}

func TestStatValuesBool(t *testing.T) {
	s := NewStatValues[bool]()
	s.Update(true)
	assert.True(t, *s.Min)
	assert.True(t, *s.Max)

	s.Update(false)
	assert.False(t, *s.Min)
	assert.True(t, *s.Max)
}

func TestStatValuesString(t *testing.T) {
	s := NewStatValues[string]()
	for _, v := range []string{"m", "a", "z", ""} {
		s.Update(v)
	}
	assert.Equal(t, "", *s.Min)
	assert.Equal(t, "z", *s.Max)
}

func TestStatValuesUpdateFrom(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []uint64
		nullsA   uint64
		nullsB   uint64
		min, max *uint64
		count    uint64
	}{
		{"BothEmpty", nil, nil, 1, 2, nil, nil, 0},
		{"LeftEmpty", nil, []uint64{4, 9}, 0, 0, ptr(uint64(4)), ptr(uint64(9)), 2},
		{"RightEmpty", []uint64{7}, nil, 0, 3, ptr(uint64(7)), ptr(uint64(7)), 1},
		{"Overlap", []uint64{3, 10}, []uint64{1, 5}, 0, 0, ptr(uint64(1)), ptr(uint64(10)), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewStatValues[uint64]()
			for _, v := range tt.a {
				a.Update(v)
			}
			a.UpdateForNulls(tt.nullsA)
			a.DistinctCount = 42

			b := NewStatValues[uint64]()
			for _, v := range tt.b {
				b.Update(v)
			}
			b.UpdateForNulls(tt.nullsB)

			a.UpdateFrom(&b)
			assert.Equal(t, tt.min, a.Min)
			assert.Equal(t, tt.max, a.Max)
			assert.Equal(t, tt.count, a.Count)
			assert.Equal(t, tt.nullsA+tt.nullsB, a.NullCount)
			assert.Zero(t, a.DistinctCount)
		})
	}
}

func TestStatValuesCloneIsIndependent(t *testing.T) {
	s := NewStatValues[int64]()
	s.Update(1)
	c := s.Clone()
	c.Update(-10)

	assert.Equal(t, int64(1), *s.Min)
	assert.Equal(t, int64(-10), *c.Min)
}

func TestStatisticsVariants(t *testing.T) {
	f := &F64{}
	f.Update(1)
	f.UpdateForNulls(2)

	var s Statistics = f
	assert.Equal(t, "f64", s.TypeName())
	assert.Equal(t, uint64(3), s.TotalCount())
	assert.Equal(t, uint64(2), s.Nulls())

	names := map[string]Statistics{
		"i64":    &I64{},
		"u64":    &U64{},
		"bool":   &Bool{},
		"string": &String{},
	}
	for name, st := range names {
		assert.Equal(t, name, st.TypeName())
	}
}
