package tsbatch

import (
	"fmt"
	"iter"

	"github.com/hupe1980/tsbatch/internal/bitset"
)

// WriteBatch writes every column of src into this transaction.
//
// src must hold exactly as many rows as the Writer appends and must not be
// the batch being written. Tag columns are re-coded into the destination
// dictionaries through WriteTagDict, so only values src rows reference are
// interned.
func (w *Writer) WriteBatch(src *Batch) error {
	if src == w.batch {
		panic("tsbatch: cannot write a batch into itself")
	}
	if src.Rows() != w.toInsert {
		return fmt.Errorf("%w: source has %d rows, writer appends %d", ErrRowCountMismatch, src.Rows(), w.toInsert)
	}

	for name, col := range src.Columns() {
		var err error
		mask := col.valid.Bytes()
		switch d := col.data.(type) {
		case *F64Data:
			err = w.WriteF64(name, mask, validValues(col.valid, d.values))
		case *I64Data:
			if col.typ.IsTimestamp() {
				err = w.writeTime(name, mask, validValues(col.valid, d.values))
			} else {
				err = w.WriteI64(name, mask, validValues(col.valid, d.values))
			}
		case *U64Data:
			err = w.WriteU64(name, mask, validValues(col.valid, d.values))
		case *BoolData:
			err = w.WriteBool(name, mask, func(yield func(bool) bool) {
				for i := range col.valid.SetPositions() {
					if !yield(d.Value(i)) {
						return
					}
				}
			})
		case *StringData:
			err = w.WriteString(name, mask, validValues(col.valid, d.values))
		case *TagData:
			keys := func(yield func(int) bool) {
				for i := range col.valid.SetPositions() {
					if !yield(int(d.codes[i])) {
						return
					}
				}
			}
			err = w.WriteTagDict(name, mask, keys, d.dict.Values())
		}
		if err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
	}
	return nil
}

// validValues yields values at the rows set in valid.
func validValues[T any](valid *bitset.Bitmap, values []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range valid.SetPositions() {
			if !yield(values[i]) {
				return
			}
		}
	}
}
