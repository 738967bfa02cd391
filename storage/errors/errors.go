package errors

import (
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sort"
	"strings"
)

// ErrorCode classifies a failure.
type ErrorCode int

const (
	// General (0-99)
	ErrUnknown ErrorCode = iota
	ErrInvalidArgument
	ErrNotSupported

	// Type system (100-199)
	ErrInvalidScale
	ErrInvalidPrecision
	ErrNestingTooDeep
	ErrUnsupportedType

	// Column buffer (200-299)
	ErrIndexOutOfRange
	ErrTypeMismatch
	ErrValueOutOfRange

	// Table (300-399)
	ErrDuplicateName
	ErrRowCountMismatch
	ErrColumnNotFound

	// File codec (400-499)
	ErrBadMagic
	ErrUnsupportedVersion
	ErrTruncatedInput
	ErrMalformedSchema
	ErrCorruptedFile
	ErrCompressionFailed

	// I/O (500-599)
	ErrIO
	ErrFileNotFound
)

func (c ErrorCode) String() string {
	switch c {
	case ErrUnknown:
		return "Unknown"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrNotSupported:
		return "NotSupported"
	case ErrInvalidScale:
		return "InvalidScale"
	case ErrInvalidPrecision:
		return "InvalidPrecision"
	case ErrNestingTooDeep:
		return "NestingTooDeep"
	case ErrUnsupportedType:
		return "UnsupportedType"
	case ErrIndexOutOfRange:
		return "IndexOutOfRange"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrValueOutOfRange:
		return "ValueOutOfRange"
	case ErrDuplicateName:
		return "DuplicateName"
	case ErrRowCountMismatch:
		return "RowCountMismatch"
	case ErrColumnNotFound:
		return "ColumnNotFound"
	case ErrBadMagic:
		return "BadMagic"
	case ErrUnsupportedVersion:
		return "UnsupportedVersion"
	case ErrTruncatedInput:
		return "TruncatedInput"
	case ErrMalformedSchema:
		return "MalformedSchema"
	case ErrCorruptedFile:
		return "CorruptedFile"
	case ErrCompressionFailed:
		return "CompressionFailed"
	case ErrIO:
		return "IO"
	case ErrFileNotFound:
		return "FileNotFound"
	default:
		return fmt.Sprintf("ErrorCode(%d)", c)
	}
}

// ErrorSeverity tells callers how much state may be affected.
type ErrorSeverity int

const (
	SeverityWarning ErrorSeverity = iota // recoverable, may be ignored
	SeverityError                        // operation failed, caller state intact
	SeverityFatal                        // input or output cannot be trusted
)

// ColError is the structured error returned by every storage package.
type ColError struct {
	Code     ErrorCode
	Severity ErrorSeverity
	Op       string // e.g. "decode_header", "column_set"
	Path     string // file or object the error relates to, if any
	Offset   int64  // byte offset in the encoded input, -1 if unknown
	Err      error
	Context  map[string]interface{}
	Stack    []byte
}

func (e *ColError) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("[%s:%s]", e.Code, e.Op))

	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	if e.Offset >= 0 {
		parts = append(parts, fmt.Sprintf("offset=%d", e.Offset))
	}

	if len(e.Context) > 0 {
		parts = append(parts, fmt.Sprintf("context=%s", formatContext(e.Context)))
	}

	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Err))
	}

	return "colfile error: " + strings.Join(parts, " | ")
}

// formatContext renders keys in sorted order so messages are stable.
func formatContext(ctx map[string]interface{}) string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%v", k, ctx[k])
	}
	sb.WriteByte('}')
	return sb.String()
}

// Unwrap supports errors.Is/As.
func (e *ColError) Unwrap() error {
	return e.Err
}

// IsCode reports whether the error carries code.
func (e *ColError) IsCode(code ErrorCode) bool {
	return e.Code == code
}

// WithContext adds a context entry.
func (e *ColError) WithContext(key string, value interface{}) *ColError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// ErrorBuilder assembles a ColError.
type ErrorBuilder struct {
	err *ColError
}

func New(code ErrorCode) *ErrorBuilder {
	return &ErrorBuilder{
		err: &ColError{
			Code:     code,
			Severity: SeverityError,
			Offset:   -1,
			Context:  make(map[string]interface{}),
		},
	}
}

func (b *ErrorBuilder) Op(op string) *ErrorBuilder {
	b.err.Op = op
	return b
}

func (b *ErrorBuilder) Path(path string) *ErrorBuilder {
	b.err.Path = path
	return b
}

func (b *ErrorBuilder) Offset(offset int64) *ErrorBuilder {
	b.err.Offset = offset
	return b
}

func (b *ErrorBuilder) Wrap(err error) *ErrorBuilder {
	b.err.Err = err
	return b
}

func (b *ErrorBuilder) Severity(s ErrorSeverity) *ErrorBuilder {
	b.err.Severity = s
	return b
}

func (b *ErrorBuilder) Context(key string, value interface{}) *ErrorBuilder {
	b.err.Context[key] = value
	return b
}

func (b *ErrorBuilder) WithStack() *ErrorBuilder {
	b.err.Stack = debug.Stack()
	return b
}

func (b *ErrorBuilder) Build() error {
	return b.err
}

// Unknown wraps an unclassified error.
func Unknown(op string, err error) error {
	return New(ErrUnknown).Op(op).Wrap(err).Build()
}

// InvalidArg reports a bad argument.
func InvalidArg(op string, msg string) error {
	return New(ErrInvalidArgument).Op(op).Context("message", msg).Build()
}

// IO wraps an I/O failure.
func IO(op string, path string, err error) error {
	code := ErrIO
	if errors.Is(err, io.ErrUnexpectedEOF) {
		code = ErrTruncatedInput
	}
	return New(code).Op(op).Path(path).Wrap(err).Build()
}

// Is reports whether err, or any ColError in its chain, carries code.
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	var le *ColError
	if errors.As(err, &le) {
		if le.Code == code {
			return true
		}
		if le.Err != nil {
			return Is(le.Err, code)
		}
	}

	return false
}

// IsAny reports whether err matches any of codes.
func IsAny(err error, codes ...ErrorCode) bool {
	for _, code := range codes {
		if Is(err, code) {
			return true
		}
	}
	return false
}

// IsTypeError reports a type system failure.
func IsTypeError(err error) bool {
	return IsAny(err, ErrInvalidScale, ErrInvalidPrecision, ErrNestingTooDeep, ErrUnsupportedType)
}

// IsBufferError reports a column buffer failure.
func IsBufferError(err error) bool {
	return IsAny(err, ErrIndexOutOfRange, ErrTypeMismatch, ErrValueOutOfRange)
}

// IsTableError reports a table construction failure.
func IsTableError(err error) bool {
	return IsAny(err, ErrDuplicateName, ErrRowCountMismatch, ErrColumnNotFound)
}

// IsCodecError reports a decode failure.
func IsCodecError(err error) bool {
	return IsAny(err, ErrBadMagic, ErrUnsupportedVersion, ErrTruncatedInput,
		ErrMalformedSchema, ErrCorruptedFile, ErrCompressionFailed)
}

// IsFatal reports whether the error marks its input as untrustworthy.
func IsFatal(err error) bool {
	var le *ColError
	if errors.As(err, &le) {
		return le.Severity == SeverityFatal
	}
	return false
}

// GetCode returns the outermost code, or ErrUnknown for foreign errors.
func GetCode(err error) ErrorCode {
	var le *ColError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrUnknown
}
