package tsbatch

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/tsbatch/dictionary"
)

// ValidRows returns the rows of the column holding a non-null value.
func (c *Column) ValidRows() *roaring.Bitmap {
	rb := roaring.New()
	for i := range c.valid.SetPositions() {
		rb.Add(uint32(i))
	}
	return rb
}

// NullRows returns the rows of the column holding null.
func (c *Column) NullRows() *roaring.Bitmap {
	rb := roaring.New()
	rb.AddRange(0, uint64(c.valid.Len()))
	rb.AndNot(c.ValidRows())
	return rb
}

// TagRows returns the rows of a tag column equal to value.
//
// It returns an empty bitmap for values the dictionary does not hold and for
// columns that are not tags.
func (c *Column) TagRows(value string) *roaring.Bitmap {
	rb := roaring.New()
	d, ok := c.data.(*TagData)
	if !ok {
		return rb
	}
	code, ok := d.dict.Lookup(value)
	if !ok {
		return rb
	}
	for i, cc := range d.codes {
		if cc == code {
			rb.Add(uint32(i))
		}
	}
	return rb
}

// TagPostings returns, for every dictionary entry of a tag column, the rows
// holding it. It returns nil for columns that are not tags.
func (c *Column) TagPostings() map[string]*roaring.Bitmap {
	d, ok := c.data.(*TagData)
	if !ok {
		return nil
	}
	postings := make([]*roaring.Bitmap, d.dict.Len())
	for i := range postings {
		postings[i] = roaring.New()
	}
	for i, code := range d.codes {
		if code != dictionary.InvalidCode {
			postings[code].Add(uint32(i))
		}
	}
	out := make(map[string]*roaring.Bitmap, len(postings))
	for code, v := range d.dict.Values() {
		out[v] = postings[code]
	}
	return out
}
