// Copyright 2024 Vego Authors
// Licensed under the Apache License, Version 2.0

package format

import (
	"bytes"
	"fmt"
	"hash/crc32"

	"github.com/google/uuid"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// ContentNamespace is the UUIDv5 namespace of table content ids.
var ContentNamespace = uuid.MustParse("6f0b6c1e-3c0a-5d8e-9a51-7c2f43d1b0a4")

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Footer closes a table file. Both fields cover every byte before the footer.
type Footer struct {
	ContentID uuid.UUID // UUIDv5 of the covered bytes
	Checksum  uint32    // CRC32C of the covered bytes
}

// NewFooter computes the footer for body (header, schema and data block).
func NewFooter(body []byte) *Footer {
	return &Footer{
		ContentID: uuid.NewSHA1(ContentNamespace, body),
		Checksum:  crc32.Checksum(body, castagnoli),
	}
}

// WriteTo appends the footer to w.
func (f *Footer) WriteTo(w *Writer) {
	w.PutBytes(f.ContentID[:])
	w.PutU32(f.Checksum)
	w.PutBytes(EndMagic)
}

// ReadFooter parses the footer at the reader position.
func ReadFooter(r *Reader) (*Footer, error) {
	r.SetOp("decode_footer")
	start := r.Offset()

	id, err := r.Bytes(16)
	if err != nil {
		return nil, err
	}
	sum, err := r.U32()
	if err != nil {
		return nil, err
	}
	end, err := r.Bytes(len(EndMagic))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(end, EndMagic) {
		return nil, lerrors.Corrupted("decode_footer", start+20, fmt.Sprintf("end magic %q", end))
	}

	f := &Footer{Checksum: sum}
	copy(f.ContentID[:], id)
	return f, nil
}

// Verify checks body against the stored checksum and content id.
func (f *Footer) Verify(body []byte) error {
	if got := crc32.Checksum(body, castagnoli); got != f.Checksum {
		return lerrors.Corrupted("verify_footer", int64(len(body)),
			fmt.Sprintf("checksum mismatch: computed 0x%08X vs stored 0x%08X", got, f.Checksum))
	}
	if got := uuid.NewSHA1(ContentNamespace, body); got != f.ContentID {
		return lerrors.Corrupted("verify_footer", int64(len(body)),
			fmt.Sprintf("content id mismatch: computed %s vs stored %s", got, f.ContentID))
	}
	return nil
}
