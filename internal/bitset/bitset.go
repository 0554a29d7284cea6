package bitset

import (
	"bytes"
	"iter"

	"github.com/bits-and-blooms/bitset"
)

// Bitmap is an append-only bitmap with an explicit length.
//
// Bits at positions >= Len are always unset.
type Bitmap struct {
	bits *bitset.BitSet
	len  int
}

// New creates an empty Bitmap.
func New() *Bitmap {
	return &Bitmap{bits: bitset.New(0)}
}

// FromBytes creates a Bitmap of n bits taken from a packed mask.
func FromBytes(n int, mask []byte) *Bitmap {
	b := New()
	b.AppendBits(n, mask)
	return b
}

// Len returns the number of bits.
func (b *Bitmap) Len() int {
	return b.len
}

// Count returns the number of set bits.
func (b *Bitmap) Count() int {
	return int(b.bits.Count())
}

// AppendSet appends n set bits.
func (b *Bitmap) AppendSet(n int) {
	for i := 0; i < n; i++ {
		b.bits.Set(uint(b.len + i))
	}
	b.len += n
}

// AppendUnset appends n unset bits.
func (b *Bitmap) AppendUnset(n int) {
	b.len += n
}

// AppendBits appends n bits copied from a packed mask.
//
// Bits the mask is too short to hold are appended unset.
func (b *Bitmap) AppendBits(n int, mask []byte) {
	for i := range SetPositions(mask, n) {
		b.bits.Set(uint(b.len + i))
	}
	b.len += n
}

// Set sets bit i. i must be less than Len.
func (b *Bitmap) Set(i int) {
	if i < 0 || i >= b.len {
		panic("bitset: index out of range")
	}
	b.bits.Set(uint(i))
}

// Test reports whether bit i is set.
func (b *Bitmap) Test(i int) bool {
	if i < 0 || i >= b.len {
		return false
	}
	return b.bits.Test(uint(i))
}

// Truncate shortens the Bitmap to n bits. It is a no-op if n >= Len.
func (b *Bitmap) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n >= b.len {
		return
	}
	if n == 0 {
		b.bits.ClearAll()
	} else {
		for i, ok := b.bits.NextSet(uint(n)); ok; i, ok = b.bits.NextSet(i + 1) {
			b.bits.Clear(i)
		}
	}
	b.len = n
}

// SetPositions returns the positions of all set bits in increasing order.
func (b *Bitmap) SetPositions() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, ok := b.bits.NextSet(0); ok && int(i) < b.len; i, ok = b.bits.NextSet(i + 1) {
			if !yield(int(i)) {
				return
			}
		}
	}
}

// Bytes returns the bitmap packed into ceil(Len/8) bytes.
func (b *Bitmap) Bytes() []byte {
	out := make([]byte, (b.len+7)/8)
	for i := range b.SetPositions() {
		out[i/8] |= 1 << (i % 8)
	}
	return out
}

// Equal reports whether b and other hold the same bits.
func (b *Bitmap) Equal(other *Bitmap) bool {
	return b.len == other.len && bytes.Equal(b.Bytes(), other.Bytes())
}

// Clone returns a deep copy of the Bitmap.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{bits: b.bits.Clone(), len: b.len}
}

// SetPositions returns the positions below limit of the set bits of a packed
// mask, in increasing order.
func SetPositions(mask []byte, limit int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for byteIdx, v := range mask {
			if v == 0 {
				continue
			}
			for bit := 0; bit < 8; bit++ {
				if v&(1<<bit) == 0 {
					continue
				}
				pos := byteIdx*8 + bit
				if pos >= limit {
					return
				}
				if !yield(pos) {
					return
				}
			}
		}
	}
}

// CountSet returns the number of set bits below limit in a packed mask.
func CountSet(mask []byte, limit int) int {
	n := 0
	for range SetPositions(mask, limit) {
		n++
	}
	return n
}
