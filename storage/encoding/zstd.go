package encoding

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// DefaultZstdLevel is used when compression is requested without a level.
const DefaultZstdLevel = 3

type ZstdEncoder struct {
	level       int
	encoderPool *sync.Pool
}

// NewZstdEncoder maps level 1..9 onto the zstd speed presets. Out-of-range
// levels are clamped.
func NewZstdEncoder(level int) *ZstdEncoder {
	if level < 1 {
		level = 1
	}
	if level > 9 {
		level = 9
	}

	pool := &sync.Pool{
		New: func() interface{} {
			var encoderLevel zstd.EncoderLevel
			switch {
			case level <= 3:
				encoderLevel = zstd.SpeedFastest
			case level <= 6:
				encoderLevel = zstd.SpeedDefault
			case level <= 8:
				encoderLevel = zstd.SpeedBetterCompression
			default:
				encoderLevel = zstd.SpeedBestCompression
			}
			// Single-threaded with empty frames kept, so output depends only
			// on input and level.
			enc, _ := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(encoderLevel),
				zstd.WithEncoderConcurrency(1),
				zstd.WithZeroFrames(true))
			return enc
		},
	}

	return &ZstdEncoder{level: level, encoderPool: pool}
}

func (e *ZstdEncoder) Name() string { return "zstd" }

// Level returns the clamped level.
func (e *ZstdEncoder) Level() int { return e.level }

func (e *ZstdEncoder) Encode(src []byte) []byte {
	encoder := e.encoderPool.Get().(*zstd.Encoder)
	defer e.encoderPool.Put(encoder)

	return encoder.EncodeAll(src, make([]byte, 0, len(src)/2+64))
}
