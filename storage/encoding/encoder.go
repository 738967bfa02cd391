package encoding

// Encoder compresses a whole data block.
type Encoder interface {
	// Encode compresses src. The output is deterministic for a given input
	// and level.
	Encode(src []byte) []byte

	// Name identifies the codec in errors and logs.
	Name() string
}

// Decoder reverses an Encoder.
type Decoder interface {
	// Decode decompresses data, which must expand to exactly rawLen bytes.
	Decode(data []byte, rawLen uint64) ([]byte, error)
}
