package snapshot

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block compression of a snapshot.
type Compression uint8

const (
	// CompressionNone stores blocks as they are.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression.
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression.
	CompressionZSTD Compression = 2
)

// String returns the name of the compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool {
	return c <= CompressionZSTD
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxBlockSize))
	return dec
}

// Block layout: [UncompressedSize uint32][CompressedSize uint32][Data...]
// A CompressedSize of 0 marks a block stored uncompressed.
const blockHeaderSize = 8

// maxBlockSize bounds the decompressed size of a single block.
const maxBlockSize = 1 << 30

// lz4MaxRatio is the largest expansion an LZ4 block can encode.
const lz4MaxRatio = 255

// compressBlock frames data as a block, compressing it unless that does not
// shrink it by at least 10%.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
		copy(out[blockHeaderSize:], data)
		return out, nil
	}

	out := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	copy(out[blockHeaderSize:], compressed)
	return out, nil
}

// blockReader reads consecutive blocks from a snapshot body.
type blockReader struct {
	data        []byte
	offset      int
	compression Compression
}

// next returns the decompressed payload of the next block.
func (r *blockReader) next() ([]byte, error) {
	if r.offset+blockHeaderSize > len(r.data) {
		return nil, fmt.Errorf("%w: block header at offset %d beyond data", ErrCorrupt, r.offset)
	}

	uncompressedSize := int(binary.LittleEndian.Uint32(r.data[r.offset:]))
	compressedSize := int(binary.LittleEndian.Uint32(r.data[r.offset+4:]))
	start := r.offset + blockHeaderSize

	if compressedSize == 0 {
		if start+uncompressedSize > len(r.data) {
			return nil, fmt.Errorf("%w: block at offset %d extends beyond data", ErrCorrupt, r.offset)
		}
		r.offset = start + uncompressedSize
		return r.data[start:r.offset], nil
	}

	if start+compressedSize > len(r.data) {
		return nil, fmt.Errorf("%w: compressed block at offset %d extends beyond data", ErrCorrupt, r.offset)
	}
	if uncompressedSize > maxBlockSize {
		return nil, fmt.Errorf("%w: block at offset %d claims %d bytes", ErrCorrupt, r.offset, uncompressedSize)
	}
	compressed := r.data[start : start+compressedSize]

	var result []byte
	switch r.compression {
	case CompressionLZ4:
		if uncompressedSize > compressedSize*lz4MaxRatio {
			return nil, fmt.Errorf("%w: block at offset %d claims %d bytes from %d", ErrCorrupt, r.offset, uncompressedSize, compressedSize)
		}
		result = make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(compressed, result)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		result = result[:n]
	case CompressionZSTD:
		// The output grows with the decoded frame, not with the claimed size.
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(compressed, nil)
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		result = decoded
	default:
		return nil, fmt.Errorf("%w: compressed block in a snapshot without compression", ErrCorrupt)
	}

	if len(result) != uncompressedSize {
		return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
	}
	r.offset = start + compressedSize
	return result, nil
}
