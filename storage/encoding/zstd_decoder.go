package encoding

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// MaxDecodedSize bounds the declared size of a compressed data block.
const MaxDecodedSize = 1 << 32

type ZstdDecoder struct {
	decoderPool *sync.Pool
}

func NewZstdDecoder() *ZstdDecoder {
	pool := &sync.Pool{
		New: func() interface{} {
			dec, err := zstd.NewReader(nil,
				zstd.WithDecoderConcurrency(1),
				zstd.WithDecoderMaxMemory(MaxDecodedSize))
			if err != nil {
				return err
			}
			return dec
		},
	}

	return &ZstdDecoder{decoderPool: pool}
}

// Decode decompresses data, which must expand to exactly rawLen bytes.
// rawLen is checked before anything is allocated.
func (d *ZstdDecoder) Decode(data []byte, rawLen uint64) ([]byte, error) {
	if rawLen > MaxDecodedSize {
		return nil, SizeError("zstd", rawLen, -1)
	}

	// Get decoder from pool
	decoderRaw := d.decoderPool.Get()
	if err, ok := decoderRaw.(error); ok {
		return nil, DecodeError("zstd", len(data), err)
	}
	decoder := decoderRaw.(*zstd.Decoder)
	defer d.decoderPool.Put(decoder)

	// Cap the initial allocation by the input size; a lying prefix must not
	// reserve gigabytes up front.
	capHint := rawLen
	if limit := uint64(len(data)) * 32; capHint > limit {
		capHint = limit
	}
	decompressed, err := decoder.DecodeAll(data, make([]byte, 0, capHint))
	if err != nil {
		return nil, DecodeError("zstd", len(data), err)
	}
	if uint64(len(decompressed)) != rawLen {
		return nil, SizeError("zstd", rawLen, len(decompressed))
	}
	return decompressed, nil
}
