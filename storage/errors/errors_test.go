package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderFields(t *testing.T) {
	err := New(ErrTruncatedInput).
		Op("decode_column").
		Offset(42).
		Context("need_bytes", 8).
		Build()

	var ce *ColError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrTruncatedInput, ce.Code)
	assert.Equal(t, "decode_column", ce.Op)
	assert.Equal(t, int64(42), ce.Offset)
	assert.Equal(t, 8, ce.Context["need_bytes"])
	assert.Contains(t, err.Error(), "[TruncatedInput:decode_column]")
	assert.Contains(t, err.Error(), "offset=42")
}

func TestErrorMessageIsStable(t *testing.T) {
	err := New(ErrTypeMismatch).
		Op("column_set").
		Context("z", 1).
		Context("a", 2).
		Context("m", 3).
		Build()

	first := err.Error()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, err.Error())
	}
	assert.True(t, strings.Index(first, "a=2") < strings.Index(first, "z=1"))
}

func TestIsFollowsChain(t *testing.T) {
	inner := Truncated("read_u32", 10, 4, 1)
	outer := New(ErrIO).Op("read_file").Wrap(inner).Build()
	wrapped := fmt.Errorf("cli: %w", outer)

	assert.True(t, Is(wrapped, ErrIO))
	assert.True(t, Is(wrapped, ErrTruncatedInput))
	assert.False(t, Is(wrapped, ErrBadMagic))
	assert.Equal(t, ErrIO, GetCode(wrapped))
	assert.True(t, IsFatal(inner))
}

func TestCategories(t *testing.T) {
	assert.True(t, IsTypeError(InvalidScale("validate", 3, 5)))
	assert.True(t, IsTypeError(NestingTooDeep("validate", 40, 32)))
	assert.True(t, IsBufferError(IndexOutOfRange("set", 3, 3)))
	assert.True(t, IsBufferError(TypeMismatch("set", "int64", "string")))
	assert.True(t, IsTableError(DuplicateName("add_column", "c")))
	assert.True(t, IsTableError(RowCountMismatch("add_column", "c", 3, 4)))
	assert.True(t, IsCodecError(BadMagic([]byte("XXXX"), []byte("CTBL"))))
	assert.True(t, IsCodecError(UnsupportedVersion(9, 1, 1)))
	assert.True(t, IsCodecError(MalformedSchema("read_type", 12, "unknown tag")))

	assert.False(t, IsCodecError(DuplicateName("add_column", "c")))
	assert.False(t, IsTypeError(errors.New("plain")))
	assert.Equal(t, ErrUnknown, GetCode(errors.New("plain")))
}

func TestIOMapsUnexpectedEOF(t *testing.T) {
	assert.True(t, Is(IO("read", "f", io.ErrUnexpectedEOF), ErrTruncatedInput))
	assert.True(t, Is(IO("read", "f", io.ErrClosedPipe), ErrIO))
}

func TestCodeStrings(t *testing.T) {
	for code := ErrUnknown; code <= ErrFileNotFound; code++ {
		assert.NotContains(t, code.String(), "ErrorCode(", "code %d has no name", int(code))
	}
	assert.Equal(t, "ErrorCode(999)", ErrorCode(999).String())
}
