package snapshot

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tsbatch/schema"
)

func TestCodecByName(t *testing.T) {
	for _, want := range []Codec{CodecJSON, CodecGoJSON} {
		c, ok := codecByName(want.Name())
		require.True(t, ok)
		assert.Equal(t, want.Name(), c.Name())
	}

	_, ok := codecByName("gob")
	assert.False(t, ok)
}

func TestWithCodec_ZeroValue(t *testing.T) {
	o := applyOptions([]Option{WithCodec(Codec{})})
	assert.Equal(t, CodecGoJSON.Name(), o.codec.Name())
}

func TestCodec_ColumnsAreInterchangeable(t *testing.T) {
	b := newTestBatch(t)
	h := &header{Rows: b.Rows()}
	for name, col := range b.Columns() {
		h.Columns = append(h.Columns, columnHeader{Name: name, Type: col.Type().String(), NullCount: col.NullCount()})
	}

	for _, enc := range []Codec{CodecJSON, CodecGoJSON} {
		for _, dec := range []Codec{CodecJSON, CodecGoJSON} {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				for i, ch := range h.Columns {
					col, err := b.Column(ch.Name)
					require.NoError(t, err)

					data, err := enc.encodeColumn(col)
					require.NoError(t, err)

					blk, err := dec.decodeColumn(data, h, i, col.Type())
					require.NoError(t, err, ch.Name)
					assert.Equal(t, col.Len()-col.NullCount(), blk.valueCount(col.Type()), ch.Name)
				}
			})
		}
	}
}

func TestCodec_DecodeHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"negative rows", `{"rows":-1,"columns":[]}`},
		{"duplicate column", `{"rows":1,"columns":[{"name":"a","type":"Tag"},{"name":"a","type":"Tag"}]}`},
		{"null count above rows", `{"rows":1,"columns":[{"name":"a","type":"Tag","null_count":2}]}`},
		{"negative null count", `{"rows":1,"columns":[{"name":"a","type":"Tag","null_count":-1}]}`},
		{"unknown type", `{"rows":1,"columns":[{"name":"a","type":"decimal"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := CodecGoJSON.decodeHeader([]byte(tt.data))
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestCodec_DecodeColumnErrors(t *testing.T) {
	h := &header{Rows: 9, Columns: []columnHeader{{Name: "n", NullCount: 1}}}
	typ := schema.Field(schema.FieldInteger)

	tests := []struct {
		name string
		data string
	}{
		{"not json", `[`},
		{"short mask", `{"valid":"/w==","i64":[1,2,3,4,5,6,7,8]}`},
		{"value count", `{"valid":"/wA=","i64":[1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CodecJSON.decodeColumn([]byte(tt.data), h, 0, typ)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestDecode_UsesRecordedCodec(t *testing.T) {
	b := newTestBatch(t)
	for _, c := range []Codec{CodecJSON, CodecGoJSON} {
		data := encode(t, b, WithCodec(c), WithCompression(CompressionNone))

		// Decode options never override the recorded codec.
		got, err := Decode(context.Background(), bytes.NewReader(data), WithCodec(CodecJSON))
		require.NoError(t, err)
		assert.Equal(t, b.Rows(), got.Rows())
	}
}
