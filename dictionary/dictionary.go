// Package dictionary provides the append-only string interning table used by
// tag columns.
//
// Codes are dense and assigned in order of first insertion, starting at 0.
// The only way to shrink a Dictionary is Truncate or Clear; codes are never
// recycled through a free list.
package dictionary

// InvalidCode is the code stored for null rows in a tag column.
const InvalidCode int32 = -1

// Dictionary maps strings to small integer codes and back.
//
// A Dictionary is not safe for concurrent use.
type Dictionary struct {
	values []string
	codes  map[string]int32
}

// New creates an empty Dictionary.
func New() *Dictionary {
	return &Dictionary{
		codes: make(map[string]int32),
	}
}

// LookupValueOrInsert returns the code of value, inserting it with the next
// free code if it is not present yet.
func (d *Dictionary) LookupValueOrInsert(value string) int32 {
	if code, ok := d.codes[value]; ok {
		return code
	}
	code := int32(len(d.values))
	d.values = append(d.values, value)
	d.codes[value] = code
	return code
}

// Lookup returns the code of value if it is present.
func (d *Dictionary) Lookup(value string) (int32, bool) {
	code, ok := d.codes[value]
	return code, ok
}

// Value returns the string stored under code.
func (d *Dictionary) Value(code int32) (string, bool) {
	if code < 0 || int(code) >= len(d.values) {
		return "", false
	}
	return d.values[code], true
}

// Values returns the entries in code order. The returned slice must not be modified.
func (d *Dictionary) Values() []string {
	return d.values
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.values)
}

// Truncate discards every entry whose code is greater than maxCode.
//
// A negative maxCode is equivalent to Clear.
func (d *Dictionary) Truncate(maxCode int32) {
	if maxCode < 0 {
		d.Clear()
		return
	}
	keep := int(maxCode) + 1
	if keep >= len(d.values) {
		return
	}
	for _, v := range d.values[keep:] {
		delete(d.codes, v)
	}
	clear(d.values[keep:])
	d.values = d.values[:keep]
}

// Clear removes all entries.
func (d *Dictionary) Clear() {
	clear(d.codes)
	clear(d.values)
	d.values = d.values[:0]
}

// Clone returns a deep copy of the Dictionary.
func (d *Dictionary) Clone() *Dictionary {
	c := &Dictionary{
		values: make([]string, len(d.values)),
		codes:  make(map[string]int32, len(d.codes)),
	}
	copy(c.values, d.values)
	for k, v := range d.codes {
		c.codes[k] = v
	}
	return c
}

// FromValues rebuilds a Dictionary from entries in code order.
//
// It returns false if values contains duplicates.
func FromValues(values []string) (*Dictionary, bool) {
	d := New()
	for _, v := range values {
		if _, ok := d.codes[v]; ok {
			return nil, false
		}
		d.LookupValueOrInsert(v)
	}
	return d, true
}
