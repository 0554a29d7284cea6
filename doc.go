// Package tsbatch provides an in-memory, column-oriented batch with
// all-or-nothing row appends, as used by the write path of a time-series
// storage engine.
//
// # Columns
//
// A Batch is an ordered set of named columns that all hold the same number of
// rows. Every column has a semantic type (see package schema):
//
//   - Field columns hold float64, int64, uint64, boolean or string values
//   - Tag columns hold strings interned in a per-column dictionary
//   - The timestamp column holds non-null int64 nanoseconds
//
// Columns are created on first write. A row that received no value for a
// column is null in that column.
//
// # Transactions
//
// Rows are appended through a Writer. A Writer appends a fixed number of
// rows, each column is written at most once, and the append becomes
// visible only on Commit:
//
//	err := b.Write(3, func(w *tsbatch.Writer) error {
//	    if err := w.WriteTag("host", nil, slices.Values([]string{"a", "b", "a"})); err != nil {
//	        return err
//	    }
//	    // rows 0 and 2 have a value, row 1 is null
//	    if err := w.WriteF64("usage", []byte{0b101}, slices.Values([]float64{0.5, 0.7})); err != nil {
//	        return err
//	    }
//	    return w.WriteTime("time", slices.Values([]int64{10, 20, 30}))
//	})
//
// If the function returns an error or panics, the Writer rolls back: every
// column, the row count and every tag dictionary return to their state
// before the transaction. Statistics are only merged into the columns on
// commit.
//
// Callers managing the Writer themselves defer Rollback, which is a no-op
// once the Writer has been committed:
//
//	w := b.NewWriter(n)
//	defer w.Rollback()
//	// ... writes ...
//	w.Commit()
//
// # Concurrency
//
// A Batch is not safe for concurrent use. At most one Writer may be live on a
// Batch; starting a second one panics.
//
// # Export
//
// Committed batches can be exported to Apache Arrow with Batch.ToArrow and
// frozen into a compressed snapshot with package snapshot.
package tsbatch
