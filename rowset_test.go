package tsbatch

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumn_ValidAndNullRows(t *testing.T) {
	b := New()
	require.NoError(t, b.Write(5, func(w *Writer) error {
		return w.WriteI64("v", []byte{0b10110}, slices.Values([]int64{1, 2, 3}))
	}))

	col, _ := b.Column("v")
	assert.Equal(t, []uint32{1, 2, 4}, col.ValidRows().ToArray())
	assert.Equal(t, []uint32{0, 3}, col.NullRows().ToArray())
}

func TestColumn_TagRows(t *testing.T) {
	b := New()
	require.NoError(t, b.Write(5, func(w *Writer) error {
		return w.WriteTag("host", []byte{0b11101}, slices.Values([]string{"a", "b", "a", "c"}))
	}))

	col, _ := b.Column("host")
	assert.Equal(t, []uint32{0, 3}, col.TagRows("a").ToArray())
	assert.Equal(t, []uint32{2}, col.TagRows("b").ToArray())
	assert.True(t, col.TagRows("missing").IsEmpty())

	postings := col.TagPostings()
	require.Len(t, postings, 3)
	assert.Equal(t, uint64(2), postings["a"].GetCardinality())
	assert.Equal(t, []uint32{4}, postings["c"].ToArray())

	// Non-tag columns have no postings.
	require.NoError(t, b.Write(1, func(w *Writer) error {
		return w.WriteF64("f", nil, slices.Values([]float64{1}))
	}))
	f, _ := b.Column("f")
	assert.Nil(t, f.TagPostings())
	assert.True(t, f.TagRows("a").IsEmpty())
}
