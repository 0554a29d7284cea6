package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"runtime"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tsbatch"
	"github.com/hupe1980/tsbatch/testutil"
)

// newTestBatch builds a batch with every column type, null rows, a NaN and
// a column created after the first transaction.
func newTestBatch(t *testing.T) *tsbatch.Batch {
	t.Helper()

	b := tsbatch.New()
	require.NoError(t, b.Write(3, func(w *tsbatch.Writer) error {
		if err := w.WriteTag("host", []byte{0b101}, slices.Values([]string{"a", "b"})); err != nil {
			return err
		}
		if err := w.WriteF64("usage", nil, slices.Values([]float64{1.5, math.NaN(), -2})); err != nil {
			return err
		}
		if err := w.WriteBool("up", []byte{0b011}, slices.Values([]bool{true, false})); err != nil {
			return err
		}
		return w.WriteTime("time", slices.Values([]int64{10, 20, 30}))
	}))
	require.NoError(t, b.Write(2, func(w *tsbatch.Writer) error {
		if err := w.WriteTag("host", nil, slices.Values([]string{"c", "a"})); err != nil {
			return err
		}
		if err := w.WriteI64("count", []byte{0b10}, slices.Values([]int64{-7})); err != nil {
			return err
		}
		if err := w.WriteU64("bytes", nil, slices.Values([]uint64{1 << 40, 3})); err != nil {
			return err
		}
		if err := w.WriteString("msg", []byte{0b01}, slices.Values([]string{"hello"})); err != nil {
			return err
		}
		return w.WriteTime("time", slices.Values([]int64{40, 50}))
	}))
	return b
}

func encode(t *testing.T, b *tsbatch.Batch, opts ...Option) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(context.Background(), &buf, b, opts...))
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		compression Compression
		codec       Codec
	}{
		{"none/json", CompressionNone, CodecJSON},
		{"lz4/go-json", CompressionLZ4, CodecGoJSON},
		{"zstd/go-json", CompressionZSTD, CodecGoJSON},
		{"zstd/json", CompressionZSTD, CodecJSON},
	}

	src := newTestBatch(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []Option{WithCompression(tt.compression), WithCodec(tt.codec), WithConcurrency(2)}
			data := encode(t, src, opts...)

			got, err := Decode(context.Background(), bytes.NewReader(data))
			require.NoError(t, err)

			assert.Equal(t, src.Rows(), got.Rows())
			assert.Equal(t, src.ColumnNames(), got.ColumnNames())
			assert.Equal(t, src.Schema(), got.Schema())

			for name, want := range src.Columns() {
				col, err := got.Column(name)
				require.NoError(t, err)
				assert.Equal(t, want.ValidMask(), col.ValidMask(), name)
				assert.Equal(t, want.Stats(), col.Stats(), name)
			}

			assert.Equal(t, data, encode(t, got, opts...))
		})
	}
}

func TestRoundTrip_Values(t *testing.T) {
	got, err := Decode(context.Background(), bytes.NewReader(encode(t, newTestBatch(t))))
	require.NoError(t, err)

	host, err := got.Column("host")
	require.NoError(t, err)
	var hosts []string
	for i := range host.Len() {
		v, _ := host.Data().(*tsbatch.TagData).Value(i)
		hosts = append(hosts, v)
	}
	assert.Equal(t, []string{"a", "", "b", "c", "a"}, hosts)
	assert.Equal(t, []string{"a", "b", "c"}, host.Dictionary().Values())

	usage, err := got.Column("usage")
	require.NoError(t, err)
	values := usage.Data().(*tsbatch.F64Data).Values()
	assert.Equal(t, 1.5, values[0])
	assert.True(t, math.IsNaN(values[1]))
	assert.Equal(t, 5, usage.Len())
	assert.Equal(t, 2, usage.NullCount())

	count, err := got.Column("count")
	require.NoError(t, err)
	assert.Equal(t, []byte{0b10000}, count.ValidMask())
	assert.Equal(t, int64(-7), count.Data().(*tsbatch.I64Data).Values()[4])
}

func TestRoundTrip_Empty(t *testing.T) {
	got, err := Decode(context.Background(), bytes.NewReader(encode(t, tsbatch.New())))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Rows())
	assert.Equal(t, 0, got.NumColumns())
}

func TestRoundTrip_ColumnsWithoutRows(t *testing.T) {
	b := tsbatch.New()
	w := b.NewWriter(2)
	require.NoError(t, w.WriteF64("usage", nil, slices.Values([]float64{1, 2})))
	w.Rollback()

	got, err := Decode(context.Background(), bytes.NewReader(encode(t, b)))
	require.NoError(t, err)
	assert.Equal(t, []string{"usage"}, got.ColumnNames())
	assert.Equal(t, 0, got.Rows())
}

func TestEncode_SnapshotIsUnaffectedByRollback(t *testing.T) {
	b := newTestBatch(t)
	before := encode(t, b)

	w := b.NewWriter(2)
	require.NoError(t, w.WriteTag("host", nil, slices.Values([]string{"new", "a"})))
	require.NoError(t, w.WriteString("extra", nil, slices.Values([]string{"x", "y"})))
	require.ErrorIs(t, w.WriteF64("usage", nil, slices.Values([]float64{1})), tsbatch.ErrInsufficientValues)
	w.Rollback()

	// the rolled back transaction left "extra" registered with null rows
	decoded, err := Decode(context.Background(), bytes.NewReader(encode(t, b)))
	require.NoError(t, err)
	assert.Equal(t, b.ColumnNames(), decoded.ColumnNames())

	reference, err := Decode(context.Background(), bytes.NewReader(before))
	require.NoError(t, err)
	for name, want := range reference.Columns() {
		col, err := decoded.Column(name)
		require.NoError(t, err)
		assert.Equal(t, want.ValidMask(), col.ValidMask(), name)
		assert.Equal(t, want.Stats(), col.Stats(), name)
	}
}

func TestEncode_LiveWriter(t *testing.T) {
	b := tsbatch.New()
	w := b.NewWriter(1)
	defer w.Rollback()

	err := Encode(context.Background(), &bytes.Buffer{}, b)
	assert.ErrorIs(t, err, ErrTransactionActive)
}

func TestEncode_NullTimestamp(t *testing.T) {
	b := tsbatch.New()
	require.NoError(t, b.Write(1, func(w *tsbatch.Writer) error {
		return w.WriteI64("count", nil, slices.Values([]int64{1}))
	}))
	require.NoError(t, b.Write(1, func(w *tsbatch.Writer) error {
		return w.WriteTime("time", slices.Values([]int64{1}))
	}))

	err := Encode(context.Background(), &bytes.Buffer{}, b)
	assert.ErrorIs(t, err, ErrNullTimestamp)
}

func TestEncode_UnknownCompression(t *testing.T) {
	err := Encode(context.Background(), &bytes.Buffer{}, tsbatch.New(), WithCompression(Compression(9)))
	assert.ErrorIs(t, err, ErrIncompatibleFormat)
}

func TestEncode_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Encode(ctx, &bytes.Buffer{}, newTestBatch(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecode_Errors(t *testing.T) {
	valid := encode(t, newTestBatch(t), WithCodec(CodecJSON), WithCompression(CompressionNone))

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"empty", func([]byte) []byte { return nil }, ErrIncompatibleFormat},
		{"bad magic", func(b []byte) []byte { b[0] = 'X'; return b }, ErrIncompatibleFormat},
		{"bad version", func(b []byte) []byte { b[4] = 99; return b }, ErrIncompatibleFormat},
		{"bad compression", func(b []byte) []byte { b[5] = 7; return b }, ErrIncompatibleFormat},
		{"unknown codec", func(b []byte) []byte { b[8] = 'z'; return b }, ErrIncompatibleFormat},
		{"truncated", func(b []byte) []byte { return b[:len(b)-1] }, ErrCorrupt},
		{"trailing bytes", func(b []byte) []byte { return append(b, 0) }, ErrCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(context.Background(), bytes.NewReader(tt.mutate(bytes.Clone(valid))))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecode_OversizedBlock(t *testing.T) {
	tests := []struct {
		name         string
		compression  Compression
		uncompressed uint32
		compressed   uint32
	}{
		{"lz4 ratio", CompressionLZ4, 0xF0000000, 1},
		{"lz4 below block limit", CompressionLZ4, 1 << 20, 1},
		{"zstd", CompressionZSTD, 0xF0000000, 1},
		{"zstd below block limit", CompressionZSTD, 1 << 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data []byte
			data = append(data, magic[:]...)
			data = append(data, version, byte(tt.compression), byte(len("go-json")))
			data = append(data, "go-json"...)
			data = binary.LittleEndian.AppendUint32(data, tt.uncompressed)
			data = binary.LittleEndian.AppendUint32(data, tt.compressed)
			data = append(data, 0xff)

			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err := Decode(context.Background(), bytes.NewReader(data))
			runtime.ReadMemStats(&after)

			assert.ErrorIs(t, err, ErrCorrupt)
			assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(64<<20))
		})
	}
}

func TestCompressBlock(t *testing.T) {
	compressible := bytes.Repeat([]byte("tsbatch"), 512)
	random := []byte{0x1f, 0x8b, 0x08}

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			var data []byte
			for _, payload := range [][]byte{compressible, random, {}} {
				blk, err := compressBlock(payload, c)
				require.NoError(t, err)
				data = append(data, blk...)
			}
			if c != CompressionNone {
				assert.Less(t, len(data), len(compressible))
			}

			r := &blockReader{data: data, compression: c}
			for _, want := range [][]byte{compressible, random, {}} {
				got, err := r.next()
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
			_, err := r.next()
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestRoundTrip_Random(t *testing.T) {
	rng := testutil.NewRNG(7)
	b := tsbatch.New()

	for range 20 {
		rows := rng.Intn(64)
		require.NoError(t, b.Write(rows, func(w *tsbatch.Writer) error {
			valid := rng.Mask(rows, 0.6)
			set := testutil.CountSet(valid, rows)
			if err := w.WriteTag("region", valid, slices.Values(rng.Strings(set, 5))); err != nil {
				return err
			}
			valid = rng.Mask(rows, 0.9)
			set = testutil.CountSet(valid, rows)
			if err := w.WriteF64("load", valid, slices.Values(rng.Float64s(set))); err != nil {
				return err
			}
			return w.WriteTime("time", slices.Values(rng.Timestamps(rows, 0)))
		}))
	}

	data := encode(t, b)
	got, err := Decode(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)

	for name, want := range b.Columns() {
		col, err := got.Column(name)
		require.NoError(t, err)
		assert.Equal(t, want.ValidMask(), col.ValidMask(), name)
		assert.Equal(t, want.Stats(), col.Stats(), name)
	}
	assert.Equal(t, data, encode(t, got))
}
