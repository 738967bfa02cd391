package arrow

import "math/bits"

// Bitmap is a packed LSB-first bit vector. It backs validity (bit=1 means the
// row is present) and Boolean values. Bits past Len are always zero.
type Bitmap struct {
	buf    []byte
	length int // number of bits
}

// BitmapBytes is the byte size of a bitmap holding n bits.
func BitmapBytes(n int) int {
	return (n + 7) / 8
}

// NewBitmap creates a bitmap of length bits, all zero.
func NewBitmap(length int) *Bitmap {
	return &Bitmap{
		buf:    make([]byte, BitmapBytes(length)),
		length: length,
	}
}

// NewBitmapFromBytes copies data into a bitmap of length bits. Bits past
// length are cleared.
func NewBitmapFromBytes(data []byte, length int) *Bitmap {
	bm := NewBitmap(length)
	copy(bm.buf, data)
	bm.clearTail()
	return bm
}

// Len returns the number of bits.
func (b *Bitmap) Len() int {
	return b.length
}

// Bytes returns the underlying byte buffer.
func (b *Bitmap) Bytes() []byte {
	return b.buf
}

// Set sets the bit at index i to 1.
func (b *Bitmap) Set(i int) {
	if i < 0 || i >= b.length {
		panic("bitmap index out of range")
	}
	b.buf[i/8] |= 1 << (i % 8)
}

// Clear sets the bit at index i to 0.
func (b *Bitmap) Clear(i int) {
	if i < 0 || i >= b.length {
		panic("bitmap index out of range")
	}
	b.buf[i/8] &^= 1 << (i % 8)
}

// SetTo sets bit i to v.
func (b *Bitmap) SetTo(i int, v bool) {
	if v {
		b.Set(i)
	} else {
		b.Clear(i)
	}
}

// IsSet returns true if bit at index i is 1.
func (b *Bitmap) IsSet(i int) bool {
	if i < 0 || i >= b.length {
		panic("bitmap index out of range")
	}
	return (b.buf[i/8] & (1 << (i % 8))) != 0
}

// SetAll sets all bits to 1.
func (b *Bitmap) SetAll() {
	for i := range b.buf {
		b.buf[i] = 0xFF
	}
	b.clearTail()
}

// ClearAll sets all bits to 0.
func (b *Bitmap) ClearAll() {
	for i := range b.buf {
		b.buf[i] = 0
	}
}

// CountSet returns the number of bits set to 1.
func (b *Bitmap) CountSet() int {
	count := 0
	fullBytes := b.length / 8

	for i := 0; i < fullBytes; i++ {
		count += bits.OnesCount8(b.buf[i])
	}

	remainder := b.length % 8
	if remainder > 0 {
		mask := byte((1 << remainder) - 1)
		count += bits.OnesCount8(b.buf[fullBytes] & mask)
	}
	return count
}

// Resize changes the length. Bits added at the end are zero.
func (b *Bitmap) Resize(newLength int) {
	if newLength == b.length {
		return
	}

	n := BitmapBytes(newLength)
	if n <= len(b.buf) {
		b.buf = b.buf[:n]
	} else {
		b.buf = append(b.buf, make([]byte, n-len(b.buf))...)
	}
	b.length = newLength
	b.clearTail()
}

func (b *Bitmap) clearTail() {
	if rem := b.length % 8; rem != 0 {
		b.buf[len(b.buf)-1] &= byte((1 << rem) - 1)
	}
}

// Splice returns a bitmap where bits [at, at+remove) are replaced by all
// bits of src. A nil src inserts nothing. Replacing the tail reuses b.
func (b *Bitmap) Splice(at, remove int, src *Bitmap) *Bitmap {
	insert := 0
	if src != nil {
		insert = src.length
	}
	if at+remove == b.length {
		b.Resize(at)
		b.Resize(at + insert)
		for i := 0; i < insert; i++ {
			if src.IsSet(i) {
				b.Set(at + i)
			}
		}
		return b
	}
	out := NewBitmap(b.length - remove + insert)
	for i := 0; i < at; i++ {
		if b.IsSet(i) {
			out.Set(i)
		}
	}
	for i := 0; i < insert; i++ {
		if src.IsSet(i) {
			out.Set(at + i)
		}
	}
	for i := at + remove; i < b.length; i++ {
		if b.IsSet(i) {
			out.Set(i - remove + insert)
		}
	}
	return out
}

// --- Helper: Create bitmap with all values set ---

// NewBitmapAllSet creates a bitmap with all bits set to 1.
func NewBitmapAllSet(length int) *Bitmap {
	bm := NewBitmap(length)
	bm.SetAll()
	return bm
}
