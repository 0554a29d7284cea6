package tsbatch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tsbatch/schema"
)

var (
	// ErrInsufficientValues is returned when a value sequence yields fewer
	// items than the rows the valid mask (or the dense range) requires.
	ErrInsufficientValues = errors.New("incorrect number of values provided")

	// ErrColumnNotFound is returned when a named column does not exist.
	ErrColumnNotFound = errors.New("column not found")

	// ErrRowCountMismatch is returned when a source batch does not hold
	// exactly the number of rows a writer appends.
	ErrRowCountMismatch = errors.New("row count mismatch")
)

// ErrTypeMismatch indicates a write to an existing column under a different
// column type. The column is not modified.
type ErrTypeMismatch struct {
	Existing schema.ColumnType
	Inserted schema.ColumnType
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("unable to insert %s type into a column of %s", e.Inserted, e.Existing)
}

// ErrKeyNotFound indicates a dictionary-coded write referencing a key outside
// of its local value table.
type ErrKeyNotFound struct {
	Key int
}

func (e *ErrKeyNotFound) Error() string {
	return fmt.Sprintf("key not found in dictionary: %d", e.Key)
}
