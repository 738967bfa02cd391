package encoding

import (
	"bytes"
	"testing"

	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

func sampleBlock() []byte {
	var buf bytes.Buffer
	for i := 0; i < 1000; i++ {
		buf.WriteByte(byte(i % 7))
		buf.WriteString("value")
	}
	return buf.Bytes()
}

func TestZstdRoundtrip(t *testing.T) {
	data := sampleBlock()
	decoder := NewZstdDecoder()

	for _, level := range []int{0, 1, 3, 5, 7, 9, 42} {
		encoder := NewZstdEncoder(level)
		compressed := encoder.Encode(data)
		if len(compressed) >= len(data) {
			t.Errorf("level %d: expected compression, %d >= %d", level, len(compressed), len(data))
		}

		decoded, err := decoder.Decode(compressed, uint64(len(data)))
		if err != nil {
			t.Fatalf("level %d: decode failed: %v", level, err)
		}
		if !bytes.Equal(decoded, data) {
			t.Errorf("level %d: roundtrip mismatch", level)
		}
	}
}

func TestZstdLevelClamp(t *testing.T) {
	if NewZstdEncoder(-3).Level() != 1 || NewZstdEncoder(99).Level() != 9 {
		t.Error("levels should be clamped to 1..9")
	}
	if NewZstdEncoder(4).Name() != "zstd" {
		t.Error("unexpected codec name")
	}
}

func TestZstdDeterministic(t *testing.T) {
	data := sampleBlock()
	a := NewZstdEncoder(3).Encode(data)
	b := NewZstdEncoder(3).Encode(data)
	if !bytes.Equal(a, b) {
		t.Error("same input and level should give identical frames")
	}
}

func TestZstdEmptyInput(t *testing.T) {
	compressed := NewZstdEncoder(3).Encode(nil)
	if len(compressed) == 0 {
		t.Fatal("empty input should still produce a frame")
	}
	decoded, err := NewZstdDecoder().Decode(compressed, 0)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("expected empty output, got %d bytes", len(decoded))
	}
}

func TestZstdDecodeErrors(t *testing.T) {
	data := sampleBlock()
	compressed := NewZstdEncoder(3).Encode(data)
	decoder := NewZstdDecoder()

	_, err := decoder.Decode(compressed, uint64(len(data))+1)
	if !lerrors.Is(err, lerrors.ErrCorruptedFile) {
		t.Errorf("wrong declared size: expected CorruptedFile, got %v", err)
	}

	_, err = decoder.Decode(compressed, MaxDecodedSize+1)
	if !lerrors.Is(err, lerrors.ErrCorruptedFile) {
		t.Errorf("oversized declaration: expected CorruptedFile, got %v", err)
	}

	_, err = decoder.Decode([]byte("definitely not zstd"), 10)
	if !lerrors.Is(err, lerrors.ErrCompressionFailed) {
		t.Errorf("garbage frame: expected CompressionFailed, got %v", err)
	}
}
