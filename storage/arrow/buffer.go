package arrow

import (
	"encoding/binary"
	"math"
)

// Buffer is a contiguous little-endian byte region holding fixed-width values
// or a variable-length payload.
type Buffer struct {
	buf []byte
}

// NewBuffer creates a zeroed buffer of size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{
		buf: make([]byte, size),
	}
}

// NewBufferBytes wraps data without copying.
func NewBufferBytes(data []byte) *Buffer {
	return &Buffer{buf: data}
}

// Bytes returns the underlying byte slice.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the buffer length in bytes.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Slot returns the width bytes of slot i.
func (b *Buffer) Slot(i, width int) []byte {
	return b.buf[i*width : (i+1)*width]
}

// Splice replaces bytes [at, at+remove) with src and returns the new length.
func (b *Buffer) Splice(at, remove int, src []byte) int {
	if at+remove == len(b.buf) {
		b.buf = append(b.buf[:at], src...)
		return len(b.buf)
	}
	out := make([]byte, 0, len(b.buf)-remove+len(src))
	out = append(out, b.buf[:at]...)
	out = append(out, src...)
	out = append(out, b.buf[at+remove:]...)
	b.buf = out
	return len(out)
}

// --- Typed slot access ---

func (b *Buffer) PutUint8(i int, v uint8)   { b.buf[i] = v }
func (b *Buffer) Uint8(i int) uint8         { return b.buf[i] }
func (b *Buffer) PutUint16(i int, v uint16) { binary.LittleEndian.PutUint16(b.buf[i*2:], v) }
func (b *Buffer) Uint16(i int) uint16       { return binary.LittleEndian.Uint16(b.buf[i*2:]) }
func (b *Buffer) PutUint32(i int, v uint32) { binary.LittleEndian.PutUint32(b.buf[i*4:], v) }
func (b *Buffer) Uint32(i int) uint32       { return binary.LittleEndian.Uint32(b.buf[i*4:]) }
func (b *Buffer) PutUint64(i int, v uint64) { binary.LittleEndian.PutUint64(b.buf[i*8:], v) }
func (b *Buffer) Uint64(i int) uint64       { return binary.LittleEndian.Uint64(b.buf[i*8:]) }

func (b *Buffer) PutFloat32(i int, v float32) { b.PutUint32(i, math.Float32bits(v)) }
func (b *Buffer) Float32(i int) float32       { return math.Float32frombits(b.Uint32(i)) }
func (b *Buffer) PutFloat64(i int, v float64) { b.PutUint64(i, math.Float64bits(v)) }
func (b *Buffer) Float64(i int) float64       { return math.Float64frombits(b.Uint64(i)) }

// ZeroSlot clears the width bytes of slot i.
func (b *Buffer) ZeroSlot(i, width int) {
	clear(b.buf[i*width : (i+1)*width])
}
