package tsbatch

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/hupe1980/tsbatch/dictionary"
	"github.com/hupe1980/tsbatch/internal/bitset"
	"github.com/hupe1980/tsbatch/schema"
	"github.com/hupe1980/tsbatch/statistics"
)

// pendingStats is the statistics of one column write, merged at commit.
type pendingStats struct {
	column int
	stats  statistics.Statistics
}

// Writer appends a fixed number of rows to a Batch as one transaction.
//
// Each column may be written at most once. Columns that are not written
// receive null rows at commit. If the Writer is finished with Rollback
// instead of Commit, the Batch is restored to the state it had when the
// Writer was created, including tag dictionaries. Use it as
//
//	w := b.NewWriter(n)
//	defer w.Rollback()
//	if err := w.WriteF64("value", nil, values); err != nil {
//		return err
//	}
//	w.Commit()
//
// or let Batch.Write manage the lifecycle.
//
// A Writer that is neither committed nor rolled back keeps the Batch locked:
// every later NewWriter panics and columns may differ in length. Always pair
// NewWriter with a deferred Rollback.
type Writer struct {
	batch *Batch

	// statistics of each written column; merging is deferred to commit
	statistics []pendingStats

	initialRows int
	toInsert    int

	committed bool
	finished  bool
	started   time.Time
}

// NewWriter starts a transaction appending rows rows to b.
//
// It panics if another Writer is live on b or if b violates its row count
// invariant.
func (b *Batch) NewWriter(rows int) *Writer {
	if rows < 0 {
		panic(fmt.Sprintf("tsbatch: negative row count %d", rows))
	}
	if b.writer != nil {
		panic("tsbatch: batch already has a live writer")
	}
	b.checkInvariants()

	w := &Writer{
		batch:       b,
		initialRows: b.rowCount,
		toInsert:    rows,
		started:     time.Now(),
	}
	b.writer = w
	return w
}

// Rows returns the number of rows this Writer appends.
func (w *Writer) Rows() int {
	return w.toInsert
}

// WriteF64 writes the float64 field column name.
//
// For each set bit in valid a value from values is stored at the
// corresponding row, the other rows are null. A nil valid mask writes all
// rows. It panics if the column was already written by this Writer.
func (w *Writer) WriteF64(name string, valid []byte, values iter.Seq[float64]) error {
	idx, col, err := w.columnMut(name, schema.Field(schema.FieldFloat))
	if err != nil {
		return err
	}
	data := col.data.(*F64Data)

	stats := &statistics.F64{}
	data.values, err = fillValues(data.values, w.initialRows, w.toInsert, valid, values, &stats.StatValues)
	if err != nil {
		return w.writeFailed(name, err)
	}
	w.finishWrite(idx, col, valid, stats)
	return nil
}

// WriteI64 writes the int64 field column name. See WriteF64.
func (w *Writer) WriteI64(name string, valid []byte, values iter.Seq[int64]) error {
	idx, col, err := w.columnMut(name, schema.Field(schema.FieldInteger))
	if err != nil {
		return err
	}
	data := col.data.(*I64Data)

	stats := &statistics.I64{}
	data.values, err = fillValues(data.values, w.initialRows, w.toInsert, valid, values, &stats.StatValues)
	if err != nil {
		return w.writeFailed(name, err)
	}
	w.finishWrite(idx, col, valid, stats)
	return nil
}

// WriteU64 writes the uint64 field column name. See WriteF64.
func (w *Writer) WriteU64(name string, valid []byte, values iter.Seq[uint64]) error {
	idx, col, err := w.columnMut(name, schema.Field(schema.FieldUInteger))
	if err != nil {
		return err
	}
	data := col.data.(*U64Data)

	stats := &statistics.U64{}
	data.values, err = fillValues(data.values, w.initialRows, w.toInsert, valid, values, &stats.StatValues)
	if err != nil {
		return w.writeFailed(name, err)
	}
	w.finishWrite(idx, col, valid, stats)
	return nil
}

// WriteBool writes the boolean field column name. See WriteF64.
func (w *Writer) WriteBool(name string, valid []byte, values iter.Seq[bool]) error {
	idx, col, err := w.columnMut(name, schema.Field(schema.FieldBoolean))
	if err != nil {
		return err
	}
	data := col.data.(*BoolData)

	stats := &statistics.Bool{}
	data.values.AppendUnset(w.toInsert)

	next, stop := iter.Pull(values)
	defer stop()
	for i := range setPositions(valid, w.toInsert) {
		v, ok := next()
		if !ok {
			return w.writeFailed(name, ErrInsufficientValues)
		}
		if v {
			data.values.Set(w.initialRows + i)
		}
		stats.Update(v)
	}

	w.finishWrite(idx, col, valid, stats)
	return nil
}

// WriteString writes the string field column name. See WriteF64.
func (w *Writer) WriteString(name string, valid []byte, values iter.Seq[string]) error {
	idx, col, err := w.columnMut(name, schema.Field(schema.FieldString))
	if err != nil {
		return err
	}
	data := col.data.(*StringData)

	stats := &statistics.String{}
	data.values, err = fillValues(data.values, w.initialRows, w.toInsert, valid, values, &stats.StatValues)
	if err != nil {
		return w.writeFailed(name, err)
	}
	w.finishWrite(idx, col, valid, stats)
	return nil
}

// WriteTag writes the tag column name, interning every value in the
// column's dictionary. See WriteF64.
func (w *Writer) WriteTag(name string, valid []byte, values iter.Seq[string]) error {
	idx, col, err := w.columnMut(name, schema.Tag)
	if err != nil {
		return err
	}
	data := col.data.(*TagData)

	stats := &statistics.String{}
	data.codes = growSlice(data.codes, w.toInsert, dictionary.InvalidCode)

	next, stop := iter.Pull(values)
	defer stop()
	for i := range setPositions(valid, w.toInsert) {
		v, ok := next()
		if !ok {
			return w.writeFailed(name, ErrInsufficientValues)
		}
		data.codes[w.initialRows+i] = data.dict.LookupValueOrInsert(v)
		stats.Update(v)
	}

	w.finishWrite(idx, col, valid, stats)
	return nil
}

// WriteTagDict writes the tag column name from keys into a local value
// table. Each key indexes values.
//
// A value is interned in the column's dictionary the first time a key
// referencing it is consumed, so table entries that no key references never
// reach the dictionary. It returns an *ErrKeyNotFound for keys outside of
// values.
func (w *Writer) WriteTagDict(name string, valid []byte, keys iter.Seq[int], values []string) error {
	idx, col, err := w.columnMut(name, schema.Tag)
	if err != nil {
		return err
	}
	data := col.data.(*TagData)

	type mapping struct {
		code     int32
		resolved bool
	}
	mappings := make([]mapping, len(values))

	stats := &statistics.String{}
	data.codes = growSlice(data.codes, w.toInsert, dictionary.InvalidCode)

	next, stop := iter.Pull(keys)
	defer stop()
	for i := range setPositions(valid, w.toInsert) {
		key, ok := next()
		if !ok {
			return w.writeFailed(name, ErrInsufficientValues)
		}
		if key < 0 || key >= len(mappings) {
			return w.writeFailed(name, &ErrKeyNotFound{Key: key})
		}
		m := &mappings[key]
		if !m.resolved {
			m.code = data.dict.LookupValueOrInsert(values[key])
			m.resolved = true
		}
		data.codes[w.initialRows+i] = m.code
		stats.Update(values[key])
	}

	w.finishWrite(idx, col, valid, stats)
	return nil
}

// WriteTime writes the timestamp column name. Every row must receive a value.
func (w *Writer) WriteTime(name string, values iter.Seq[int64]) error {
	return w.writeTime(name, nil, values)
}

// writeTime writes the timestamp column. A non-nil valid mask is only used
// when copying a column that holds rows padded with nulls.
func (w *Writer) writeTime(name string, valid []byte, values iter.Seq[int64]) error {
	idx, col, err := w.columnMut(name, schema.Timestamp)
	if err != nil {
		return err
	}
	data := col.data.(*I64Data)

	stats := &statistics.I64{}
	data.values, err = fillValues(data.values, w.initialRows, w.toInsert, valid, values, &stats.StatValues)
	if err != nil {
		return w.writeFailed(name, err)
	}
	w.finishWrite(idx, col, valid, stats)
	return nil
}

// columnMut resolves the column to write, creating it with initialRows null
// rows if it does not exist.
func (w *Writer) columnMut(name string, typ schema.ColumnType) (int, *Column, error) {
	w.checkLive()

	b := w.batch
	idx, ok := b.columnNames[name]
	if !ok {
		idx = b.addColumn(name, w.initialRows, typ)
	}
	col := b.columns[idx]

	if col.typ != typ {
		return 0, nil, w.writeFailed(name, &ErrTypeMismatch{Existing: col.typ, Inserted: typ})
	}

	if col.valid.Len() != w.initialRows {
		panic(fmt.Sprintf("tsbatch: expected %d rows in column %q got %d when performing write of %d rows",
			w.initialRows, name, col.valid.Len(), w.toInsert))
	}

	// A failed write may have left slots behind; start from a clean store.
	if col.data.Len() != w.initialRows {
		col.data.truncate(w.initialRows)
	}

	return idx, col, nil
}

// finishWrite appends the validity bits of a successful write and records
// its statistics.
func (w *Writer) finishWrite(idx int, col *Column, valid []byte, stats statistics.Statistics) {
	if valid == nil {
		col.valid.AppendSet(w.toInsert)
	} else {
		col.valid.AppendBits(w.toInsert, valid)
	}
	stats.UpdateForNulls(uint64(w.toInsert) - stats.TotalCount())
	w.statistics = append(w.statistics, pendingStats{column: idx, stats: stats})
}

func (w *Writer) writeFailed(name string, err error) error {
	w.batch.metrics.RecordWriteError(err)
	w.batch.logger.LogWrite(context.Background(), name, w.toInsert, err)
	return err
}

// Commit merges the statistics of all writes, pads unwritten columns with
// null rows and publishes the new row count. The Writer must not be used
// afterwards.
func (w *Writer) Commit() {
	w.checkLive()

	b := w.batch
	finalRows := w.initialRows + w.toInsert

	slices.SortFunc(w.statistics, func(x, y pendingStats) int {
		return x.column - y.column
	})
	pending := w.statistics

	for idx, col := range b.columns {
		// A column either received a write and has statistics, or not.
		if col.valid.Len() == w.initialRows {
			col.pushNullsToLen(finalRows)
			continue
		}
		if col.valid.Len() != finalRows {
			panic(fmt.Sprintf("tsbatch: expected %d rows in column %q got %d when performing write of %d rows",
				finalRows, b.names[idx], col.valid.Len(), w.toInsert))
		}
		for len(pending) > 0 && pending[0].column < idx {
			pending = pending[1:]
		}
		if len(pending) == 0 || pending[0].column != idx {
			panic(fmt.Sprintf("tsbatch: no statistics for written column %q", b.names[idx]))
		}
		col.mergeStatistics(pending[0].stats)
		pending = pending[1:]
	}

	b.rowCount = finalRows
	w.committed = true
	w.finish()

	b.logger.LogCommit(context.Background(), w.initialRows, w.toInsert, len(w.statistics))
	b.metrics.RecordCommit(w.toInsert, len(w.statistics), time.Since(w.started))
}

// Rollback abandons the transaction, truncating every column back to the
// row count the batch had when the Writer was created and dropping
// dictionary entries only the discarded rows referenced.
//
// Columns created by this Writer stay registered with zero new rows.
// Rollback is a no-op after Commit or a previous Rollback, so it is safe to
// defer unconditionally.
func (w *Writer) Rollback() {
	if w.finished {
		return
	}

	b := w.batch
	for _, col := range b.columns {
		col.truncate(w.initialRows)
	}
	w.finish()

	b.logger.LogRollback(context.Background(), w.initialRows, w.toInsert, len(w.statistics))
	b.metrics.RecordRollback(w.toInsert, time.Since(w.started))
}

// Committed reports whether the Writer was committed.
func (w *Writer) Committed() bool {
	return w.committed
}

func (w *Writer) finish() {
	w.finished = true
	w.batch.writer = nil
}

func (w *Writer) checkLive() {
	if w.finished {
		panic("tsbatch: writer used after commit or rollback")
	}
}

// fillValues grows dst by toInsert zero slots and stores the next value of
// values at every row selected by valid.
func fillValues[T statistics.Value](
	dst []T,
	initialRows, toInsert int,
	valid []byte,
	values iter.Seq[T],
	stats *statistics.StatValues[T],
) ([]T, error) {
	var zero T
	dst = growSlice(dst, toInsert, zero)

	next, stop := iter.Pull(values)
	defer stop()
	for i := range setPositions(valid, toInsert) {
		v, ok := next()
		if !ok {
			return dst, ErrInsufficientValues
		}
		dst[initialRows+i] = v
		stats.Update(v)
	}
	return dst, nil
}

// setPositions yields the rows selected by a valid mask, or every row below
// n for a nil mask.
func setPositions(valid []byte, n int) iter.Seq[int] {
	if valid == nil {
		return func(yield func(int) bool) {
			for i := 0; i < n; i++ {
				if !yield(i) {
					return
				}
			}
		}
	}
	return bitset.SetPositions(valid, n)
}
