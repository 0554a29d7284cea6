package tsbatch

import (
	"fmt"
	"iter"

	"github.com/hupe1980/tsbatch/schema"
)

// Batch is an in-memory, column-oriented table.
//
// Outside of a transaction every column holds exactly Rows() rows. Columns
// are only ever added, and only through a Writer.
//
// A Batch is not safe for concurrent use. While a Writer is live, the Writer
// has exclusive access to the Batch.
type Batch struct {
	columnNames map[string]int
	names       []string
	columns     []*Column
	rowCount    int

	// writer is the live transaction, if any.
	writer *Writer

	logger  *Logger
	metrics MetricsCollector
}

// New creates an empty Batch.
func New(optFns ...Option) *Batch {
	o := applyOptions(optFns)
	return &Batch{
		columnNames: make(map[string]int),
		logger:      o.logger,
		metrics:     o.metricsCollector,
	}
}

// Rows returns the number of committed rows.
func (b *Batch) Rows() int {
	return b.rowCount
}

// NumColumns returns the number of columns.
func (b *Batch) NumColumns() int {
	return len(b.columns)
}

// ColumnNames returns the column names in position order.
func (b *Batch) ColumnNames() []string {
	names := make([]string, len(b.names))
	copy(names, b.names)
	return names
}

// Column returns the column registered under name.
func (b *Batch) Column(name string) (*Column, error) {
	idx, ok := b.columnNames[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return b.columns[idx], nil
}

// Columns iterates over the columns in position order.
func (b *Batch) Columns() iter.Seq2[string, *Column] {
	return func(yield func(string, *Column) bool) {
		for i, c := range b.columns {
			if !yield(b.names[i], c) {
				return
			}
		}
	}
}

// Schema returns the column types keyed by column name.
func (b *Batch) Schema() map[string]schema.ColumnType {
	s := make(map[string]schema.ColumnType, len(b.columns))
	for i, c := range b.columns {
		s[b.names[i]] = c.typ
	}
	return s
}

// InTransaction reports whether a Writer is currently live on the batch.
func (b *Batch) InTransaction() bool {
	return b.writer != nil
}

// Write appends rows rows in a single transaction.
//
// fn receives the Writer and performs the column writes. The transaction is
// committed if fn returns nil and rolled back if fn returns an error or
// panics; a panic is propagated after the rollback.
func (b *Batch) Write(rows int, fn func(w *Writer) error) error {
	w := b.NewWriter(rows)
	defer w.Rollback()

	if err := fn(w); err != nil {
		return err
	}
	w.Commit()
	return nil
}

// ExtendFrom appends all rows of src to b in a single transaction.
func (b *Batch) ExtendFrom(src *Batch) error {
	return b.Write(src.Rows(), func(w *Writer) error {
		return w.WriteBatch(src)
	})
}

// addColumn registers a new column holding rows null rows.
func (b *Batch) addColumn(name string, rows int, typ schema.ColumnType) int {
	idx := len(b.columns)
	b.columnNames[name] = idx
	b.names = append(b.names, name)
	b.columns = append(b.columns, newColumn(rows, typ))
	return idx
}

// checkInvariants panics if a column disagrees with the row count.
func (b *Batch) checkInvariants() {
	for i, c := range b.columns {
		if c.valid.Len() != b.rowCount || c.data.Len() != b.rowCount {
			panic(fmt.Sprintf("tsbatch: column %q holds %d rows (%d values), batch has %d",
				b.names[i], c.valid.Len(), c.data.Len(), b.rowCount))
		}
	}
}
