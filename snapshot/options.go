package snapshot

import (
	"runtime"

	"github.com/hupe1980/tsbatch"
)

type options struct {
	compression  Compression
	codec        Codec
	concurrency  int
	batchOptions []tsbatch.Option
}

// Option configures Encode and Decode.
type Option func(*options)

// WithCompression sets the block compression of written snapshots.
// The default is CompressionZSTD.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCodec sets the codec of written snapshots. The zero Codec selects
// CodecGoJSON.
func WithCodec(c Codec) Option {
	return func(o *options) {
		if c.name == "" {
			c = CodecGoJSON
		}
		o.codec = c
	}
}

// WithConcurrency limits the number of columns encoded or decoded in
// parallel. Values below 1 select GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithBatchOptions sets the options of the batch built by Decode.
func WithBatchOptions(opts ...tsbatch.Option) Option {
	return func(o *options) {
		o.batchOptions = append(o.batchOptions, opts...)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		compression: CompressionZSTD,
		codec:       CodecGoJSON,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = runtime.GOMAXPROCS(0)
	}
	return o
}
