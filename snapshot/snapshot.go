// Package snapshot serializes a tsbatch.Batch into a self-describing,
// compressed byte stream and restores it.
//
// A snapshot starts with a preamble
//
//	magic "TSBS" | version uint8 | compression uint8 | codec name length uint8 | codec name
//
// followed by a header block listing the row count and the schema, and one
// block per column holding its validity mask and the values of its valid
// rows. Blocks are encoded with the named codec and compressed
// independently.
//
// Decode rebuilds the batch through a single write transaction, so a
// restored batch carries the same values, dictionaries and statistics as
// the batch it was taken from.
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/tsbatch"
	"github.com/hupe1980/tsbatch/schema"
)

const version = 1

var magic = [4]byte{'T', 'S', 'B', 'S'}

var (
	// ErrCorrupt is returned when a snapshot is truncated or inconsistent.
	ErrCorrupt = errors.New("snapshot: corrupt data")

	// ErrIncompatibleFormat is returned for data that is not a snapshot or
	// uses an unknown version, compression or codec.
	ErrIncompatibleFormat = errors.New("snapshot: incompatible format")

	// ErrTransactionActive is returned when encoding a batch with a live writer.
	ErrTransactionActive = errors.New("snapshot: batch has a live writer")

	// ErrNullTimestamp is returned when encoding a batch whose timestamp
	// column holds null rows.
	ErrNullTimestamp = errors.New("snapshot: timestamp column holds nulls")
)

// Encode writes a snapshot of b to w.
//
// Columns are encoded in parallel. b must not be written to until Encode
// returns.
func Encode(ctx context.Context, w io.Writer, b *tsbatch.Batch, optFns ...Option) error {
	o := applyOptions(optFns)
	if !o.compression.valid() {
		return fmt.Errorf("%w: unknown compression %s", ErrIncompatibleFormat, o.compression)
	}
	if b.InTransaction() {
		return ErrTransactionActive
	}

	h := header{Rows: b.Rows()}
	cols := make([]*tsbatch.Column, 0, b.NumColumns())
	for name, col := range b.Columns() {
		if col.Type().IsTimestamp() && col.NullCount() > 0 {
			return fmt.Errorf("%w: column %q", ErrNullTimestamp, name)
		}
		h.Columns = append(h.Columns, columnHeader{
			Name:      name,
			Type:      col.Type().String(),
			NullCount: col.NullCount(),
		})
		cols = append(cols, col)
	}

	blocks := make([][]byte, len(cols))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, col := range cols {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := o.codec.encodeColumn(col)
			if err != nil {
				return fmt.Errorf("snapshot: encode column %q: %w", h.Columns[i].Name, err)
			}
			blocks[i], err = compressBlock(raw, o.compression)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	raw, err := o.codec.encodeHeader(&h)
	if err != nil {
		return fmt.Errorf("snapshot: encode header: %w", err)
	}
	hdr, err := compressBlock(raw, o.compression)
	if err != nil {
		return err
	}

	var pre bytes.Buffer
	pre.Write(magic[:])
	pre.WriteByte(version)
	pre.WriteByte(byte(o.compression))
	pre.WriteByte(byte(len(o.codec.name)))
	pre.WriteString(o.codec.name)
	pre.Write(hdr)

	if _, err := w.Write(pre.Bytes()); err != nil {
		return err
	}
	for _, blk := range blocks {
		if _, err := w.Write(blk); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a snapshot from r and rebuilds the batch it was taken from.
func Decode(ctx context.Context, r io.Reader, optFns ...Option) (*tsbatch.Batch, error) {
	o := applyOptions(optFns)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if len(data) < len(magic)+3 || !bytes.Equal(data[:len(magic)], magic[:]) {
		return nil, fmt.Errorf("%w: missing magic", ErrIncompatibleFormat)
	}
	pos := len(magic)
	if v := data[pos]; v != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrIncompatibleFormat, v)
	}
	compression := Compression(data[pos+1])
	if !compression.valid() {
		return nil, fmt.Errorf("%w: unknown compression %s", ErrIncompatibleFormat, compression)
	}
	nameLen := int(data[pos+2])
	pos += 3
	if pos+nameLen > len(data) {
		return nil, fmt.Errorf("%w: truncated preamble", ErrCorrupt)
	}
	name := string(data[pos : pos+nameLen])
	c, ok := codecByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown codec %q", ErrIncompatibleFormat, name)
	}

	br := &blockReader{data: data, offset: pos + nameLen, compression: compression}

	raw, err := br.next()
	if err != nil {
		return nil, err
	}
	h, types, err := c.decodeHeader(raw)
	if err != nil {
		return nil, err
	}

	raws := make([][]byte, len(h.Columns))
	for i := range raws {
		if raws[i], err = br.next(); err != nil {
			return nil, err
		}
	}
	if br.offset != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(data)-br.offset)
	}

	blocks := make([]columnBlock, len(h.Columns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i := range blocks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var err error
			blocks[i], err = c.decodeColumn(raws[i], h, i, types[i])
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := tsbatch.New(o.batchOptions...)
	err = b.Write(h.Rows, func(w *tsbatch.Writer) error {
		for i, ch := range h.Columns {
			if err := replay(w, ch.Name, types[i], &blocks[i]); err != nil {
				return fmt.Errorf("%w: column %q: %v", ErrCorrupt, ch.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ch := range h.Columns {
		col, err := b.Column(ch.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if col.NullCount() != ch.NullCount {
			return nil, fmt.Errorf("%w: column %q has %d nulls, header records %d",
				ErrCorrupt, ch.Name, col.NullCount(), ch.NullCount)
		}
	}
	return b, nil
}

// replay writes one decoded column into the restoring transaction.
func replay(w *tsbatch.Writer, name string, typ schema.ColumnType, blk *columnBlock) error {
	switch typ {
	case schema.Tag:
		keys := func(yield func(int) bool) {
			for _, k := range blk.Keys {
				if !yield(int(k)) {
					return
				}
			}
		}
		return w.WriteTagDict(name, blk.Valid, keys, blk.Dict)
	case schema.Timestamp:
		if blk.Valid != nil {
			return ErrNullTimestamp
		}
		return w.WriteTime(name, slices.Values(blk.I64))
	case schema.Field(schema.FieldFloat):
		floats := func(yield func(float64) bool) {
			for _, bits := range blk.F64 {
				if !yield(math.Float64frombits(bits)) {
					return
				}
			}
		}
		return w.WriteF64(name, blk.Valid, floats)
	case schema.Field(schema.FieldInteger):
		return w.WriteI64(name, blk.Valid, slices.Values(blk.I64))
	case schema.Field(schema.FieldUInteger):
		return w.WriteU64(name, blk.Valid, slices.Values(blk.U64))
	case schema.Field(schema.FieldBoolean):
		return w.WriteBool(name, blk.Valid, slices.Values(blk.Bool))
	case schema.Field(schema.FieldString):
		return w.WriteString(name, blk.Valid, slices.Values(blk.Str))
	default:
		return fmt.Errorf("unsupported column type %s", typ)
	}
}
