package codec

import (
	"github.com/rs/zerolog"

	"github.com/wzqhbustb/colfile/storage/arrow"
)

type options struct {
	maxDepth int
	level    int // 0 disables compression
	logger   zerolog.Logger
}

func defaultOptions() options {
	return options{
		maxDepth: arrow.DefaultMaxNestingDepth,
		logger:   zerolog.Nop(),
	}
}

// Option configures an Encoder or Decoder.
type Option func(*options)

// WithMaxNestingDepth bounds List/FixedSizeList nesting accepted by the
// encoder and decoder. Values <= 0 select the default of 32.
func WithMaxNestingDepth(depth int) Option {
	return func(o *options) {
		if depth <= 0 {
			depth = arrow.DefaultMaxNestingDepth
		}
		o.maxDepth = depth
	}
}

// WithCompression stores the data block as a zstd frame at level 1..9.
// Level 0 writes it uncompressed. Decoding handles both regardless.
func WithCompression(level int) Option {
	return func(o *options) {
		if level < 0 {
			level = 0
		}
		o.level = level
	}
}

// WithLogger receives encode summaries and decode state transitions.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
