// Copyright 2024 Vego Authors
// Licensed under the Apache License, Version 2.0

package format

import (
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// Writer appends little-endian fields to a growing byte slice.
type Writer struct {
	buf []byte
}

// NewWriter creates a writer with capacity hint size.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

func (w *Writer) PutU8(v uint8)     { w.buf = append(w.buf, v) }
func (w *Writer) PutU16(v uint16)   { w.buf = ByteOrder.AppendUint16(w.buf, v) }
func (w *Writer) PutU32(v uint32)   { w.buf = ByteOrder.AppendUint32(w.buf, v) }
func (w *Writer) PutU64(v uint64)   { w.buf = ByteOrder.AppendUint64(w.buf, v) }
func (w *Writer) PutBytes(b []byte) { w.buf = append(w.buf, b...) }

// PutU32s writes each value as a u32.
func (w *Writer) PutU32s(vs []uint32) {
	for _, v := range vs {
		w.PutU32(v)
	}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte { return w.buf }

// Reader consumes little-endian fields from a byte slice. Every read checks
// the remaining length first, so a short input surfaces as TruncatedInput
// carrying the absolute offset of the failed read.
type Reader struct {
	buf  []byte
	pos  int
	base int64 // absolute offset of buf[0] in the file
	op   string
}

// NewReader reads buf, reporting offsets relative to base.
func NewReader(buf []byte, base int64) *Reader {
	return &Reader{buf: buf, base: base, op: "read"}
}

// SetOp names the decode phase used in errors.
func (r *Reader) SetOp(op string) {
	r.op = op
}

// Offset returns the absolute offset of the next byte.
func (r *Reader) Offset() int64 { return r.base + int64(r.pos) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Need fails with TruncatedInput unless n more bytes are available.
func (r *Reader) Need(n int) error {
	if n < 0 || n > r.Remaining() {
		return lerrors.Truncated(r.op, r.Offset(), n, r.Remaining())
	}
	return nil
}

// Bytes returns the next n bytes without copying.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.Need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) U16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return ByteOrder.Uint16(b), nil
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return ByteOrder.Uint32(b), nil
}

func (r *Reader) U64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return ByteOrder.Uint64(b), nil
}

// U32s reads n consecutive u32 values.
func (r *Reader) U32s(n int) ([]uint32, error) {
	if n < 0 || n > r.Remaining()/4 {
		return nil, lerrors.Truncated(r.op, r.Offset(), n*4, r.Remaining())
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = ByteOrder.Uint32(r.buf[r.pos:])
		r.pos += 4
	}
	return out, nil
}
