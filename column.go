package tsbatch

import (
	"fmt"
	"slices"

	"github.com/hupe1980/tsbatch/dictionary"
	"github.com/hupe1980/tsbatch/internal/bitset"
	"github.com/hupe1980/tsbatch/schema"
	"github.com/hupe1980/tsbatch/statistics"
)

// ColumnData is the value store of a column. The concrete type is one of
// *F64Data, *I64Data, *U64Data, *BoolData, *StringData or *TagData and is
// fixed by the column's type when the column is created.
type ColumnData interface {
	// Len returns the number of slots in the store.
	Len() int

	// truncate shortens the store to n slots.
	truncate(n int)
	// pushNulls appends n null slots and records them in the statistics.
	pushNulls(n int)
	// statistics returns a copy of the cumulative statistics.
	statistics() statistics.Statistics
}

// F64Data stores a float64 field.
type F64Data struct {
	values []float64
	stats  statistics.StatValues[float64]
}

// I64Data stores an int64 field or the timestamp column.
type I64Data struct {
	values []int64
	stats  statistics.StatValues[int64]
}

// U64Data stores a uint64 field.
type U64Data struct {
	values []uint64
	stats  statistics.StatValues[uint64]
}

// BoolData stores a boolean field as a bitmap.
type BoolData struct {
	values *bitset.Bitmap
	stats  statistics.StatValues[bool]
}

// StringData stores a string field.
type StringData struct {
	values []string
	stats  statistics.StatValues[string]
}

// TagData stores a tag as dictionary codes. Null rows hold dictionary.InvalidCode.
//
// Outside of a transaction every dictionary entry is referenced by some row,
// so truncating to the highest live code drops exactly the unreferenced tail.
type TagData struct {
	codes []int32
	dict  *dictionary.Dictionary
	stats statistics.StatValues[string]
}

// Values returns the stored values. Null rows hold the zero value.
func (d *F64Data) Values() []float64 { return d.values }

// Values returns the stored values. Null rows hold the zero value.
func (d *I64Data) Values() []int64 { return d.values }

// Values returns the stored values. Null rows hold the zero value.
func (d *U64Data) Values() []uint64 { return d.values }

// Value returns the value of row i. Null rows are false.
func (d *BoolData) Value(i int) bool { return d.values.Test(i) }

// Values returns the stored values. Null rows hold the empty string.
func (d *StringData) Values() []string { return d.values }

// Codes returns the dictionary codes per row.
func (d *TagData) Codes() []int32 { return d.codes }

// Dictionary returns the dictionary owned by the column.
func (d *TagData) Dictionary() *dictionary.Dictionary { return d.dict }

// Value returns the string of row i, or false for a null row.
func (d *TagData) Value(i int) (string, bool) {
	if i < 0 || i >= len(d.codes) {
		return "", false
	}
	return d.dict.Value(d.codes[i])
}

func (d *F64Data) Len() int    { return len(d.values) }
func (d *I64Data) Len() int    { return len(d.values) }
func (d *U64Data) Len() int    { return len(d.values) }
func (d *BoolData) Len() int   { return d.values.Len() }
func (d *StringData) Len() int { return len(d.values) }
func (d *TagData) Len() int    { return len(d.codes) }

func (d *F64Data) truncate(n int)    { d.values = truncateSlice(d.values, n) }
func (d *I64Data) truncate(n int)    { d.values = truncateSlice(d.values, n) }
func (d *U64Data) truncate(n int)    { d.values = truncateSlice(d.values, n) }
func (d *BoolData) truncate(n int)   { d.values.Truncate(n) }
func (d *StringData) truncate(n int) { d.values = truncateSlice(d.values, n) }

// truncate drops rows past n and every dictionary entry no retained row
// references any more.
func (d *TagData) truncate(n int) {
	d.codes = truncateSlice(d.codes, n)
	maxCode := dictionary.InvalidCode
	for _, c := range d.codes {
		maxCode = max(maxCode, c)
	}
	if len(d.codes) == 0 {
		d.dict.Clear()
		return
	}
	d.dict.Truncate(maxCode)
}

func (d *F64Data) pushNulls(n int) {
	d.values = growSlice(d.values, n, 0)
	d.stats.UpdateForNulls(uint64(n))
}

func (d *I64Data) pushNulls(n int) {
	d.values = growSlice(d.values, n, 0)
	d.stats.UpdateForNulls(uint64(n))
}

func (d *U64Data) pushNulls(n int) {
	d.values = growSlice(d.values, n, 0)
	d.stats.UpdateForNulls(uint64(n))
}

func (d *BoolData) pushNulls(n int) {
	d.values.AppendUnset(n)
	d.stats.UpdateForNulls(uint64(n))
}

func (d *StringData) pushNulls(n int) {
	d.values = growSlice(d.values, n, "")
	d.stats.UpdateForNulls(uint64(n))
}

func (d *TagData) pushNulls(n int) {
	d.codes = growSlice(d.codes, n, dictionary.InvalidCode)
	d.stats.UpdateForNulls(uint64(n))
	d.updateDistinctCount()
}

// updateDistinctCount derives the distinct count from the dictionary size,
// counting null as one more value when the column holds any.
func (d *TagData) updateDistinctCount() {
	d.stats.DistinctCount = uint64(d.dict.Len())
	if d.stats.NullCount > 0 {
		d.stats.DistinctCount++
	}
}

func (d *F64Data) statistics() statistics.Statistics {
	return &statistics.F64{StatValues: d.stats.Clone()}
}

func (d *I64Data) statistics() statistics.Statistics {
	return &statistics.I64{StatValues: d.stats.Clone()}
}

func (d *U64Data) statistics() statistics.Statistics {
	return &statistics.U64{StatValues: d.stats.Clone()}
}

func (d *BoolData) statistics() statistics.Statistics {
	return &statistics.Bool{StatValues: d.stats.Clone()}
}

func (d *StringData) statistics() statistics.Statistics {
	return &statistics.String{StatValues: d.stats.Clone()}
}

func (d *TagData) statistics() statistics.Statistics {
	return &statistics.String{StatValues: d.stats.Clone()}
}

// Column is a named, typed value store plus its validity bitmap.
type Column struct {
	typ   schema.ColumnType
	valid *bitset.Bitmap
	data  ColumnData
}

// newColumn creates a column of the given type holding rows null rows.
func newColumn(rows int, typ schema.ColumnType) *Column {
	var data ColumnData
	switch {
	case typ.IsTag():
		data = &TagData{dict: dictionary.New()}
	case typ.IsTimestamp():
		data = &I64Data{}
	default:
		switch typ.Field {
		case schema.FieldFloat:
			data = &F64Data{}
		case schema.FieldInteger:
			data = &I64Data{}
		case schema.FieldUInteger:
			data = &U64Data{}
		case schema.FieldBoolean:
			data = &BoolData{values: bitset.New()}
		case schema.FieldString:
			data = &StringData{}
		default:
			panic(fmt.Sprintf("tsbatch: unsupported column type %s", typ))
		}
	}

	c := &Column{
		typ:   typ,
		valid: bitset.New(),
		data:  data,
	}
	if rows > 0 {
		c.valid.AppendUnset(rows)
		data.pushNulls(rows)
	}
	return c
}

// Type returns the semantic type of the column.
func (c *Column) Type() schema.ColumnType {
	return c.typ
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	return c.valid.Len()
}

// IsValid reports whether row i holds a non-null value.
func (c *Column) IsValid(i int) bool {
	return c.valid.Test(i)
}

// ValidMask returns the validity bitmap packed least significant bit first.
func (c *Column) ValidMask() []byte {
	return c.valid.Bytes()
}

// NullCount returns the number of null rows.
func (c *Column) NullCount() int {
	return c.valid.Len() - c.valid.Count()
}

// Data returns the value store of the column.
func (c *Column) Data() ColumnData {
	return c.data
}

// Stats returns a copy of the cumulative statistics of the column.
func (c *Column) Stats() statistics.Statistics {
	return c.data.statistics()
}

// Dictionary returns the dictionary of a tag column, or nil for other types.
func (c *Column) Dictionary() *dictionary.Dictionary {
	if d, ok := c.data.(*TagData); ok {
		return d.dict
	}
	return nil
}

// truncate shrinks the column to n rows.
func (c *Column) truncate(n int) {
	c.valid.Truncate(n)
	c.data.truncate(n)
}

// pushNullsToLen pads the column with null rows up to n rows.
//
// Slots a failed write left in the value store past the validity length are
// discarded first.
func (c *Column) pushNullsToLen(n int) {
	rows := c.valid.Len()
	if c.data.Len() != rows {
		c.data.truncate(rows)
	}
	if n <= rows {
		return
	}
	c.valid.AppendUnset(n - rows)
	c.data.pushNulls(n - rows)
}

// mergeStatistics folds a committed write's statistics into the cumulative
// statistics. A variant mismatch is an internal invariant violation.
func (c *Column) mergeStatistics(s statistics.Statistics) {
	ok := false
	switch d := c.data.(type) {
	case *F64Data:
		var n *statistics.F64
		if n, ok = s.(*statistics.F64); ok {
			d.stats.UpdateFrom(&n.StatValues)
		}
	case *I64Data:
		var n *statistics.I64
		if n, ok = s.(*statistics.I64); ok {
			d.stats.UpdateFrom(&n.StatValues)
		}
	case *U64Data:
		var n *statistics.U64
		if n, ok = s.(*statistics.U64); ok {
			d.stats.UpdateFrom(&n.StatValues)
		}
	case *BoolData:
		var n *statistics.Bool
		if n, ok = s.(*statistics.Bool); ok {
			d.stats.UpdateFrom(&n.StatValues)
		}
	case *StringData:
		var n *statistics.String
		if n, ok = s.(*statistics.String); ok {
			d.stats.UpdateFrom(&n.StatValues)
		}
	case *TagData:
		var n *statistics.String
		if n, ok = s.(*statistics.String); ok {
			d.stats.UpdateFrom(&n.StatValues)
			d.updateDistinctCount()
		}
	}
	if !ok {
		panic(fmt.Sprintf("tsbatch: column %s cannot merge %s statistics", c.typ, s.TypeName()))
	}
}

func truncateSlice[T any](s []T, n int) []T {
	if n >= len(s) {
		return s
	}
	clear(s[n:])
	return s[:n]
}

func growSlice[T any](s []T, n int, fill T) []T {
	s = slices.Grow(s, n)
	for i := 0; i < n; i++ {
		s = append(s, fill)
	}
	return s
}
