// Copyright 2024 Vego Authors
// Licensed under the Apache License, Version 2.0

package format

import "fmt"

// Header is the fixed-size start of a table file.
type Header struct {
	Version    uint32
	Flags      Flags
	NumRows    uint64
	NumColumns uint32
}

// NewHeader creates a header for the current format version.
func NewHeader(numRows uint64, numColumns uint32) *Header {
	return &Header{
		Version:    CurrentVersion.Version,
		NumRows:    numRows,
		NumColumns: numColumns,
	}
}

// SetFlag sets a feature flag
func (h *Header) SetFlag(flag Flags) {
	h.Flags |= flag
}

// HasFlag checks if a flag is set
func (h *Header) HasFlag(flag Flags) bool {
	return h.Flags.Has(flag)
}

func (h *Header) String() string {
	return fmt.Sprintf("Header{version=%d, flags=%s, rows=%d, columns=%d}",
		h.Version, h.Flags, h.NumRows, h.NumColumns)
}

// WriteTo appends the header to w.
func (h *Header) WriteTo(w *Writer) {
	w.PutBytes(Magic)
	w.PutU32(h.Version)
	w.PutU32(uint32(h.Flags))
	w.PutU64(h.NumRows)
	w.PutU32(h.NumColumns)
}

// ReadHeader parses and validates the header at the reader position.
// Fields are checked in file order, so a short input is always
// TruncatedInput and never a later validation error.
func ReadHeader(r *Reader) (*Header, error) {
	r.SetOp("decode_header")

	magic, err := r.Bytes(len(Magic))
	if err != nil {
		return nil, err
	}
	if err := ValidateMagic(magic); err != nil {
		return nil, err
	}

	h := &Header{}
	if h.Version, err = r.U32(); err != nil {
		return nil, err
	}
	policy, err := PolicyFor(h.Version)
	if err != nil {
		return nil, err
	}

	flags, err := r.U32()
	if err != nil {
		return nil, err
	}
	h.Flags = Flags(flags)
	if err := policy.CheckFlags(h.Flags); err != nil {
		return nil, err
	}

	if h.NumRows, err = r.U64(); err != nil {
		return nil, err
	}
	if h.NumColumns, err = r.U32(); err != nil {
		return nil, err
	}
	return h, nil
}
