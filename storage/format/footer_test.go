// Copyright 2024 Vego Authors
// Licensed under the Apache License, Version 2.0

package format

import (
	"testing"

	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

func TestFooterRoundtrip(t *testing.T) {
	body := []byte("CTBL header schema data")
	f := NewFooter(body)

	if f.ContentID.Version() != 5 {
		t.Errorf("expected UUIDv5 content id, got version %d", f.ContentID.Version())
	}
	if again := NewFooter(body); again.ContentID != f.ContentID || again.Checksum != f.Checksum {
		t.Error("footer is not deterministic")
	}

	w := NewWriter(FooterSize)
	f.WriteTo(w)
	if w.Len() != FooterSize {
		t.Fatalf("expected %d footer bytes, got %d", FooterSize, w.Len())
	}

	got, err := ReadFooter(NewReader(w.Bytes(), int64(len(body))))
	if err != nil {
		t.Fatalf("ReadFooter failed: %v", err)
	}
	if *got != *f {
		t.Errorf("footer mismatch")
	}
	if err := got.Verify(body); err != nil {
		t.Errorf("Verify failed: %v", err)
	}

	tampered := append([]byte{}, body...)
	tampered[5] ^= 0x01
	assertErrorCode(t, got.Verify(tampered), lerrors.ErrCorruptedFile, "tampered body")
}

func TestFooterErrors(t *testing.T) {
	w := NewWriter(FooterSize)
	NewFooter(nil).WriteTo(w)
	data := w.Bytes()

	for n := 0; n < len(data); n++ {
		_, err := ReadFooter(NewReader(data[:n], 0))
		assertErrorCode(t, err, lerrors.ErrTruncatedInput, "footer prefix")
	}

	data[len(data)-1] = 'X'
	_, err := ReadFooter(NewReader(data, 0))
	assertErrorCode(t, err, lerrors.ErrCorruptedFile, "end magic")
}

func TestReaderOffsets(t *testing.T) {
	w := NewWriter(0)
	w.PutU8(1)
	w.PutU16(2)
	w.PutU32s([]uint32{3, 4})
	w.PutU64(5)

	r := NewReader(w.Bytes(), 100)
	r.SetOp("test")
	if v, _ := r.U8(); v != 1 {
		t.Errorf("u8: %d", v)
	}
	if v, _ := r.U16(); v != 2 {
		t.Errorf("u16: %d", v)
	}
	vs, err := r.U32s(2)
	if err != nil || vs[0] != 3 || vs[1] != 4 {
		t.Errorf("u32s: %v %v", vs, err)
	}
	if r.Offset() != 111 {
		t.Errorf("expected offset 111, got %d", r.Offset())
	}

	_, err = r.U32s(3)
	assertErrorCode(t, err, lerrors.ErrTruncatedInput, "u32s past end")
	if v, _ := r.U64(); v != 5 {
		t.Errorf("u64: %d", v)
	}
	_, err = r.U8()
	assertErrorCode(t, err, lerrors.ErrTruncatedInput, "read past end")
}
