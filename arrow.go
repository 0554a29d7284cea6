package tsbatch

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ColumnTypeMetadataKey is the Arrow field metadata key holding the column type.
const ColumnTypeMetadataKey = "tsbatch.column_type"

// tagType is the Arrow type of tag columns.
var tagType = &arrow.DictionaryType{
	IndexType: arrow.PrimitiveTypes.Int32,
	ValueType: arrow.BinaryTypes.String,
}

// ToArrow exports the committed rows of the batch as an Arrow record.
//
// Tags become dictionary arrays sharing the column dictionary, the timestamp
// column becomes a nanosecond timestamp array. The caller must Release the
// returned record.
func (b *Batch) ToArrow(mem memory.Allocator) (arrow.Record, error) {
	if b.writer != nil {
		return nil, fmt.Errorf("tsbatch: cannot export a batch with a live writer")
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	fields := make([]arrow.Field, 0, len(b.columns))
	cols := make([]arrow.Array, 0, len(b.columns))
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	for i, col := range b.columns {
		arr, err := col.toArrow(mem)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", b.names[i], err)
		}
		cols = append(cols, arr)
		fields = append(fields, arrow.Field{
			Name:     b.names[i],
			Type:     arr.DataType(),
			Nullable: !col.typ.IsTimestamp(),
			Metadata: arrow.NewMetadata([]string{ColumnTypeMetadataKey}, []string{col.typ.String()}),
		})
	}

	return array.NewRecord(arrow.NewSchema(fields, nil), cols, int64(b.rowCount)), nil
}

func (c *Column) toArrow(mem memory.Allocator) (arrow.Array, error) {
	valid := make([]bool, c.valid.Len())
	for i := range c.valid.SetPositions() {
		valid[i] = true
	}

	switch d := c.data.(type) {
	case *F64Data:
		bld := array.NewFloat64Builder(mem)
		defer bld.Release()
		bld.AppendValues(d.values, valid)
		return bld.NewArray(), nil

	case *I64Data:
		if c.typ.IsTimestamp() {
			bld := array.NewTimestampBuilder(mem, &arrow.TimestampType{Unit: arrow.Nanosecond})
			defer bld.Release()
			ts := make([]arrow.Timestamp, len(d.values))
			for i, v := range d.values {
				ts[i] = arrow.Timestamp(v)
			}
			bld.AppendValues(ts, valid)
			return bld.NewArray(), nil
		}
		bld := array.NewInt64Builder(mem)
		defer bld.Release()
		bld.AppendValues(d.values, valid)
		return bld.NewArray(), nil

	case *U64Data:
		bld := array.NewUint64Builder(mem)
		defer bld.Release()
		bld.AppendValues(d.values, valid)
		return bld.NewArray(), nil

	case *BoolData:
		bld := array.NewBooleanBuilder(mem)
		defer bld.Release()
		values := make([]bool, d.Len())
		for i := range values {
			values[i] = d.Value(i)
		}
		bld.AppendValues(values, valid)
		return bld.NewArray(), nil

	case *StringData:
		bld := array.NewStringBuilder(mem)
		defer bld.Release()
		bld.AppendValues(d.values, valid)
		return bld.NewArray(), nil

	case *TagData:
		idxBld := array.NewInt32Builder(mem)
		defer idxBld.Release()
		codes := make([]int32, len(d.codes))
		for i, code := range d.codes {
			if valid[i] {
				codes[i] = code
			}
		}
		idxBld.AppendValues(codes, valid)
		indices := idxBld.NewArray()
		defer indices.Release()

		dictBld := array.NewStringBuilder(mem)
		defer dictBld.Release()
		dictBld.AppendValues(d.dict.Values(), nil)
		dict := dictBld.NewArray()
		defer dict.Release()

		return array.NewDictionaryArray(tagType, indices, dict), nil
	}

	return nil, fmt.Errorf("unsupported column data %T", c.data)
}
