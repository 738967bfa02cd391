package errors

import "fmt"

// BadMagic reports input that does not start with the file magic.
func BadMagic(got, want []byte) error {
	return New(ErrBadMagic).
		Op("decode_header").
		Offset(0).
		Context("got", fmt.Sprintf("%q", got)).
		Context("want", fmt.Sprintf("%q", want)).
		Build()
}

// UnsupportedVersion reports a format version this build cannot read.
func UnsupportedVersion(got, min, max uint32) error {
	return New(ErrUnsupportedVersion).
		Op("decode_header").
		Context("version", got).
		Context("min_supported", min).
		Context("max_supported", max).
		Build()
}

// Truncated reports a declared length running past the end of the input.
func Truncated(op string, offset int64, need, have int) error {
	return New(ErrTruncatedInput).
		Op(op).
		Offset(offset).
		Context("need_bytes", need).
		Context("have_bytes", have).
		Severity(SeverityFatal).
		Build()
}

// MalformedSchema reports an unrecognized type tag or invalid parameters.
func MalformedSchema(op string, offset int64, reason string) error {
	return New(ErrMalformedSchema).
		Op(op).
		Offset(offset).
		Context("reason", reason).
		Severity(SeverityFatal).
		Build()
}

// Corrupted reports structurally inconsistent input.
func Corrupted(op string, offset int64, reason string) error {
	return New(ErrCorruptedFile).
		Op(op).
		Offset(offset).
		Context("reason", reason).
		Severity(SeverityFatal).
		Build()
}

// CompressionFailed wraps a codec library failure.
func CompressionFailed(codec string, inputSize int, err error) error {
	return New(ErrCompressionFailed).
		Op(fmt.Sprintf("%s_decompress", codec)).
		Context("codec", codec).
		Context("input_size", inputSize).
		Wrap(err).
		Severity(SeverityFatal).
		Build()
}
