// Copyright 2024 Vego Authors
// Licensed under the Apache License, Version 2.0

package format

import (
	"bytes"
	"encoding/binary"
	"fmt"

	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// Table file format constants
const (
	// HeaderSize is the fixed size of the header: magic, version, flags,
	// row count and column count.
	HeaderSize = 4 + 4 + 4 + 8 + 4

	// FooterSize is the fixed size of the footer: content id, crc32c, end magic.
	FooterSize = 16 + 4 + 4

	// CompressedPrefixSize precedes a compressed data block: raw and stored length.
	CompressedPrefixSize = 8 + 8
)

var (
	// Magic identifies a table file.
	Magic = []byte("CTBL")

	// EndMagic terminates a table file.
	EndMagic = []byte("CEND")
)

// ByteOrder is the byte order used throughout table files
var ByteOrder = binary.LittleEndian

// Flags is the header feature bit set.
type Flags uint32

const (
	FlagCompressed Flags = 1 << iota // data block is a zstd frame

	knownFlags = FlagCompressed
)

func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var sb bytes.Buffer
	if f.Has(FlagCompressed) {
		sb.WriteString("compressed")
	}
	if rest := f &^ knownFlags; rest != 0 {
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		fmt.Fprintf(&sb, "unknown(0x%x)", uint32(rest))
	}
	return sb.String()
}

// ValidateMagic checks the leading file magic.
func ValidateMagic(got []byte) error {
	if !bytes.Equal(got, Magic) {
		return lerrors.BadMagic(got, Magic)
	}
	return nil
}
