package encoding

import (
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// DecodeError wraps a decompression failure. The input cannot be trusted.
func DecodeError(encoding string, inputSize int, err error) error {
	return lerrors.CompressionFailed(encoding, inputSize, err)
}

// SizeError reports a frame whose expanded size disagrees with its prefix.
func SizeError(encoding string, declared uint64, actual int) error {
	return lerrors.New(lerrors.ErrCorruptedFile).
		Op(encoding+"_decompress").
		Context("declared_size", declared).
		Context("actual_size", actual).
		Severity(lerrors.SeverityFatal).
		Build()
}
