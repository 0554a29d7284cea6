package snapshot

import (
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"slices"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/tsbatch"
	"github.com/hupe1980/tsbatch/schema"
)

// Codec serializes the header and the column blocks of a snapshot.
//
// The codec name is stored in the preamble. Decode always uses the codec a
// snapshot was written with, so snapshots written with either built-in codec
// stay readable when the configured codec changes.
type Codec struct {
	name      string
	marshal   func(v any) ([]byte, error)
	unmarshal func(data []byte, v any) error
}

var (
	// CodecJSON encodes blocks with encoding/json.
	CodecJSON = Codec{name: "json", marshal: json.Marshal, unmarshal: json.Unmarshal}

	// CodecGoJSON encodes blocks with github.com/goccy/go-json. Its output is
	// byte-compatible with CodecJSON. It is the default codec.
	CodecGoJSON = Codec{name: "go-json", marshal: gojson.Marshal, unmarshal: gojson.Unmarshal}
)

var codecs = [...]Codec{CodecJSON, CodecGoJSON}

// Name returns the name recorded in snapshots written with c.
func (c Codec) Name() string { return c.name }

func (c Codec) String() string { return c.name }

func codecByName(name string) (Codec, bool) {
	for _, c := range codecs {
		if c.name == name {
			return c, true
		}
	}
	return Codec{}, false
}

type header struct {
	Rows    int            `json:"rows"`
	Columns []columnHeader `json:"columns"`
}

type columnHeader struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	NullCount int    `json:"null_count"`
}

// columnBlock holds the values of the valid rows of one column. Valid is
// omitted when no row is null. Floats are stored as their IEEE 754 bits.
type columnBlock struct {
	Valid []byte   `json:"valid,omitempty"`
	F64   []uint64 `json:"f64,omitempty"`
	I64   []int64  `json:"i64,omitempty"`
	U64   []uint64 `json:"u64,omitempty"`
	Bool  []bool   `json:"bool,omitempty"`
	Str   []string `json:"str,omitempty"`
	Keys  []int32  `json:"keys,omitempty"`
	Dict  []string `json:"dict,omitempty"`
}

func (c Codec) encodeHeader(h *header) ([]byte, error) {
	return c.marshal(h)
}

// decodeHeader parses a header block and the column types it lists.
func (c Codec) decodeHeader(data []byte) (*header, []schema.ColumnType, error) {
	var h header
	if err := c.unmarshal(data, &h); err != nil {
		return nil, nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	if h.Rows < 0 {
		return nil, nil, fmt.Errorf("%w: negative row count %d", ErrCorrupt, h.Rows)
	}

	seen := make(map[string]struct{}, len(h.Columns))
	types := make([]schema.ColumnType, len(h.Columns))
	for i, ch := range h.Columns {
		if _, dup := seen[ch.Name]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate column %q", ErrCorrupt, ch.Name)
		}
		seen[ch.Name] = struct{}{}

		if ch.NullCount < 0 || ch.NullCount > h.Rows {
			return nil, nil, fmt.Errorf("%w: column %q: null count %d out of range", ErrCorrupt, ch.Name, ch.NullCount)
		}
		typ, err := schema.Parse(ch.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: column %q: %v", ErrCorrupt, ch.Name, err)
		}
		types[i] = typ
	}
	return &h, types, nil
}

// encodeColumn serializes the valid rows of col.
func (c Codec) encodeColumn(col *tsbatch.Column) ([]byte, error) {
	var blk columnBlock
	if col.NullCount() > 0 {
		blk.Valid = col.ValidMask()
	}

	switch d := col.Data().(type) {
	case *tsbatch.F64Data:
		for v := range validValues(col, d.Values()) {
			blk.F64 = append(blk.F64, math.Float64bits(v))
		}
	case *tsbatch.I64Data:
		blk.I64 = slices.Collect(validValues(col, d.Values()))
	case *tsbatch.U64Data:
		blk.U64 = slices.Collect(validValues(col, d.Values()))
	case *tsbatch.BoolData:
		for i := range col.Len() {
			if col.IsValid(i) {
				blk.Bool = append(blk.Bool, d.Value(i))
			}
		}
	case *tsbatch.StringData:
		blk.Str = slices.Collect(validValues(col, d.Values()))
	case *tsbatch.TagData:
		blk.Keys = slices.Collect(validValues(col, d.Codes()))
		blk.Dict = d.Dictionary().Values()
	}
	return c.marshal(&blk)
}

// decodeColumn parses the block of column i of h and checks it against the
// header.
func (c Codec) decodeColumn(data []byte, h *header, i int, typ schema.ColumnType) (columnBlock, error) {
	ch := h.Columns[i]

	var blk columnBlock
	if err := c.unmarshal(data, &blk); err != nil {
		return columnBlock{}, fmt.Errorf("%w: column %q: %v", ErrCorrupt, ch.Name, err)
	}
	if blk.Valid != nil && len(blk.Valid) < (h.Rows+7)/8 {
		return columnBlock{}, fmt.Errorf("%w: column %q: short validity mask", ErrCorrupt, ch.Name)
	}
	if n, want := blk.valueCount(typ), h.Rows-ch.NullCount; n != want {
		return columnBlock{}, fmt.Errorf("%w: column %q holds %d values, want %d", ErrCorrupt, ch.Name, n, want)
	}
	return blk, nil
}

func (blk *columnBlock) valueCount(typ schema.ColumnType) int {
	switch {
	case typ.IsTag():
		return len(blk.Keys)
	case typ.IsTimestamp():
		return len(blk.I64)
	}
	switch typ.Field {
	case schema.FieldFloat:
		return len(blk.F64)
	case schema.FieldInteger:
		return len(blk.I64)
	case schema.FieldUInteger:
		return len(blk.U64)
	case schema.FieldBoolean:
		return len(blk.Bool)
	default:
		return len(blk.Str)
	}
}

// validValues yields the values at the valid rows of col.
func validValues[T any](col *tsbatch.Column, values []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i, v := range values {
			if col.IsValid(i) && !yield(v) {
				return
			}
		}
	}
}
