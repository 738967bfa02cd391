package arrow

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// TypeID is the closed set of logical column types. The numeric value is the
// type tag written to the schema block and must never be reordered.
type TypeID uint8

const (
	NULL TypeID = iota
	BOOL
	INT8
	INT16
	INT32
	INT64
	UINT8
	UINT16
	UINT32
	UINT64
	FLOAT32
	FLOAT64
	DECIMAL
	STRING
	BINARY
	DATE
	TIME
	DATETIME
	DURATION
	LIST
	FIXED_SIZE_LIST

	maxTypeID = FIXED_SIZE_LIST
)

func (id TypeID) String() string {
	switch id {
	case NULL:
		return "Null"
	case BOOL:
		return "Boolean"
	case INT8:
		return "Int8"
	case INT16:
		return "Int16"
	case INT32:
		return "Int32"
	case INT64:
		return "Int64"
	case UINT8:
		return "UInt8"
	case UINT16:
		return "UInt16"
	case UINT32:
		return "UInt32"
	case UINT64:
		return "UInt64"
	case FLOAT32:
		return "Float32"
	case FLOAT64:
		return "Float64"
	case DECIMAL:
		return "Decimal"
	case STRING:
		return "String"
	case BINARY:
		return "Binary"
	case DATE:
		return "Date"
	case TIME:
		return "Time"
	case DATETIME:
		return "Datetime"
	case DURATION:
		return "Duration"
	case LIST:
		return "List"
	case FIXED_SIZE_LIST:
		return "FixedSizeList"
	default:
		return fmt.Sprintf("TypeID(%d)", uint8(id))
	}
}

// Valid reports whether id is a known tag.
func (id TypeID) Valid() bool {
	return id <= maxTypeID
}

// TimeUnit is the resolution of Time, Datetime and Duration values.
type TimeUnit uint8

const (
	Millisecond TimeUnit = iota + 1
	Microsecond
	Nanosecond
)

func (u TimeUnit) String() string {
	switch u {
	case Millisecond:
		return "ms"
	case Microsecond:
		return "us"
	case Nanosecond:
		return "ns"
	default:
		return fmt.Sprintf("unit(%d)", uint8(u))
	}
}

// Valid reports whether u is a known unit.
func (u TimeUnit) Valid() bool {
	return u >= Millisecond && u <= Nanosecond
}

// PerSecond returns the number of ticks of u in one second.
func (u TimeUnit) PerSecond() int64 {
	switch u {
	case Millisecond:
		return 1e3
	case Microsecond:
		return 1e6
	default:
		return 1e9
	}
}

// ParseTimeUnit accepts "ms", "us" (or "μs") and "ns".
func ParseTimeUnit(s string) (TimeUnit, bool) {
	switch s {
	case "ms":
		return Millisecond, true
	case "us", "μs":
		return Microsecond, true
	case "ns":
		return Nanosecond, true
	}
	return 0, false
}

const (
	// MaxDecimalPrecision is the widest decimal, stored as a 128-bit integer.
	MaxDecimalPrecision = 38

	// MaxZoneLength bounds the Datetime zone tag in bytes.
	MaxZoneLength = 255

	// DefaultMaxNestingDepth bounds List/FixedSizeList nesting.
	DefaultMaxNestingDepth = 32
)

// DataType is the logical type of a column. The set of implementations is
// closed; switches over ID() must handle every TypeID.
type DataType interface {
	ID() TypeID
	Name() string
	isDataType()
}

// --- Primitive Types ---

type NullType struct{}

func (t *NullType) ID() TypeID   { return NULL }
func (t *NullType) Name() string { return "null" }
func (t *NullType) isDataType()  {}

type BooleanType struct{}

func (t *BooleanType) ID() TypeID   { return BOOL }
func (t *BooleanType) Name() string { return "bool" }
func (t *BooleanType) isDataType()  {}

type Int8Type struct{}

func (t *Int8Type) ID() TypeID   { return INT8 }
func (t *Int8Type) Name() string { return "int8" }
func (t *Int8Type) isDataType()  {}

type Int16Type struct{}

func (t *Int16Type) ID() TypeID   { return INT16 }
func (t *Int16Type) Name() string { return "int16" }
func (t *Int16Type) isDataType()  {}

type Int32Type struct{}

func (t *Int32Type) ID() TypeID   { return INT32 }
func (t *Int32Type) Name() string { return "int32" }
func (t *Int32Type) isDataType()  {}

type Int64Type struct{}

func (t *Int64Type) ID() TypeID   { return INT64 }
func (t *Int64Type) Name() string { return "int64" }
func (t *Int64Type) isDataType()  {}

type Uint8Type struct{}

func (t *Uint8Type) ID() TypeID   { return UINT8 }
func (t *Uint8Type) Name() string { return "uint8" }
func (t *Uint8Type) isDataType()  {}

type Uint16Type struct{}

func (t *Uint16Type) ID() TypeID   { return UINT16 }
func (t *Uint16Type) Name() string { return "uint16" }
func (t *Uint16Type) isDataType()  {}

type Uint32Type struct{}

func (t *Uint32Type) ID() TypeID   { return UINT32 }
func (t *Uint32Type) Name() string { return "uint32" }
func (t *Uint32Type) isDataType()  {}

type Uint64Type struct{}

func (t *Uint64Type) ID() TypeID   { return UINT64 }
func (t *Uint64Type) Name() string { return "uint64" }
func (t *Uint64Type) isDataType()  {}

type Float32Type struct{}

func (t *Float32Type) ID() TypeID   { return FLOAT32 }
func (t *Float32Type) Name() string { return "float32" }
func (t *Float32Type) isDataType()  {}

type Float64Type struct{}

func (t *Float64Type) ID() TypeID   { return FLOAT64 }
func (t *Float64Type) Name() string { return "float64" }
func (t *Float64Type) isDataType()  {}

// DecimalType is a fixed-point number: unscaled integer * 10^-scale.
type DecimalType struct {
	precision uint8
	scale     uint8
}

func (t *DecimalType) ID() TypeID { return DECIMAL }
func (t *DecimalType) Name() string {
	return fmt.Sprintf("decimal(%d,%d)", t.precision, t.scale)
}
func (t *DecimalType) isDataType()      {}
func (t *DecimalType) Precision() uint8 { return t.precision }
func (t *DecimalType) Scale() uint8     { return t.scale }

// --- Variable-Length Types ---

type StringType struct{}

func (t *StringType) ID() TypeID   { return STRING }
func (t *StringType) Name() string { return "utf8" }
func (t *StringType) isDataType()  {}

type BinaryType struct{}

func (t *BinaryType) ID() TypeID   { return BINARY }
func (t *BinaryType) Name() string { return "binary" }
func (t *BinaryType) isDataType()  {}

// --- Temporal Types ---

// DateType counts days since 1970-01-01.
type DateType struct{}

func (t *DateType) ID() TypeID   { return DATE }
func (t *DateType) Name() string { return "date" }
func (t *DateType) isDataType()  {}

// TimeType is a time of day, counted in unit since midnight.
type TimeType struct {
	unit TimeUnit
}

func (t *TimeType) ID() TypeID     { return TIME }
func (t *TimeType) Name() string   { return fmt.Sprintf("time[%s]", t.unit) }
func (t *TimeType) isDataType()    {}
func (t *TimeType) Unit() TimeUnit { return t.unit }

// DatetimeType is an instant counted in unit since the Unix epoch. The zone is
// a display tag only; stored values are always UTC based.
type DatetimeType struct {
	unit TimeUnit
	zone string
}

func (t *DatetimeType) ID() TypeID { return DATETIME }
func (t *DatetimeType) Name() string {
	if t.zone == "" {
		return fmt.Sprintf("datetime[%s]", t.unit)
	}
	return fmt.Sprintf("datetime[%s, %s]", t.unit, t.zone)
}
func (t *DatetimeType) isDataType()    {}
func (t *DatetimeType) Unit() TimeUnit { return t.unit }
func (t *DatetimeType) Zone() string   { return t.zone }

// DurationType is a signed count of unit.
type DurationType struct {
	unit TimeUnit
}

func (t *DurationType) ID() TypeID     { return DURATION }
func (t *DurationType) Name() string   { return fmt.Sprintf("duration[%s]", t.unit) }
func (t *DurationType) isDataType()    {}
func (t *DurationType) Unit() TimeUnit { return t.unit }

// --- Nested Types ---

// FixedSizeListType holds exactly size elements per row.
type FixedSizeListType struct {
	elem DataType
	size int
}

func (t *FixedSizeListType) ID() TypeID { return FIXED_SIZE_LIST }
func (t *FixedSizeListType) Name() string {
	return fmt.Sprintf("fixed_size_list<%s>[%d]", t.elem.Name(), t.size)
}
func (t *FixedSizeListType) isDataType()    {}
func (t *FixedSizeListType) Elem() DataType { return t.elem }
func (t *FixedSizeListType) Size() int      { return t.size }

// ListType holds a variable number of elements per row.
type ListType struct {
	elem DataType
}

func (t *ListType) ID() TypeID     { return LIST }
func (t *ListType) Name() string   { return fmt.Sprintf("list<%s>", t.elem.Name()) }
func (t *ListType) isDataType()    {}
func (t *ListType) Elem() DataType { return t.elem }

// --- Type Constructors ---

func PrimNull() DataType    { return &NullType{} }
func PrimBool() DataType    { return &BooleanType{} }
func PrimInt8() DataType    { return &Int8Type{} }
func PrimInt16() DataType   { return &Int16Type{} }
func PrimInt32() DataType   { return &Int32Type{} }
func PrimInt64() DataType   { return &Int64Type{} }
func PrimUint8() DataType   { return &Uint8Type{} }
func PrimUint16() DataType  { return &Uint16Type{} }
func PrimUint32() DataType  { return &Uint32Type{} }
func PrimUint64() DataType  { return &Uint64Type{} }
func PrimFloat32() DataType { return &Float32Type{} }
func PrimFloat64() DataType { return &Float64Type{} }
func PrimString() DataType  { return &StringType{} }
func PrimBinary() DataType  { return &BinaryType{} }
func PrimDate() DataType    { return &DateType{} }

func DecimalOf(precision, scale uint8) DataType {
	return &DecimalType{precision: precision, scale: scale}
}

func TimeOf(unit TimeUnit) DataType {
	return &TimeType{unit: unit}
}

func DatetimeOf(unit TimeUnit, zone string) DataType {
	return &DatetimeType{unit: unit, zone: zone}
}

func DurationOf(unit TimeUnit) DataType {
	return &DurationType{unit: unit}
}

func FixedSizeListOf(elem DataType, size int) DataType {
	return &FixedSizeListType{elem: elem, size: size}
}

func ListOf(elem DataType) DataType {
	return &ListType{elem: elem}
}

// ElemType returns the element type of a List or FixedSizeList, nil otherwise.
func ElemType(dt DataType) DataType {
	switch t := dt.(type) {
	case *ListType:
		return t.elem
	case *FixedSizeListType:
		return t.elem
	default:
		return nil
	}
}

// Depth counts the List/FixedSizeList wrappers around the innermost type.
func Depth(dt DataType) int {
	depth := 0
	for cur := ElemType(dt); cur != nil; cur = ElemType(cur) {
		depth++
	}
	return depth
}

// Validate checks type parameters. Nesting is walked iteratively, so deeply
// nested input cannot exhaust the stack here.
func Validate(dt DataType, maxDepth int) error {
	if dt == nil {
		return lerrors.InvalidArg("validate_type", "nil data type")
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxNestingDepth
	}

	depth := 0
	for cur := dt; cur != nil; cur = ElemType(cur) {
		switch t := cur.(type) {
		case *DecimalType:
			if t.precision == 0 || t.precision > MaxDecimalPrecision {
				return lerrors.InvalidPrecision("validate_type", int(t.precision), MaxDecimalPrecision)
			}
			if t.scale > t.precision {
				return lerrors.InvalidScale("validate_type", int(t.precision), int(t.scale))
			}
		case *TimeType:
			if !t.unit.Valid() {
				return lerrors.UnsupportedType("validate_type", t.Name())
			}
		case *DurationType:
			if !t.unit.Valid() {
				return lerrors.UnsupportedType("validate_type", t.Name())
			}
		case *DatetimeType:
			if !t.unit.Valid() {
				return lerrors.UnsupportedType("validate_type", t.Name())
			}
			if err := validateZone(t.zone); err != nil {
				return err
			}
		case *ListType:
			if t.elem == nil {
				return lerrors.InvalidArg("validate_type", "list without element type")
			}
			depth++
		case *FixedSizeListType:
			if t.elem == nil {
				return lerrors.InvalidArg("validate_type", "fixed_size_list without element type")
			}
			if t.size < 0 || int64(t.size) > math.MaxUint32 {
				return lerrors.New(lerrors.ErrInvalidArgument).
					Op("validate_type").
					Context("size", t.size).
					Context("message", "fixed_size_list size out of range").
					Build()
			}
			depth++
		}
		if depth > maxDepth {
			return lerrors.NestingTooDeep("validate_type", depth, maxDepth)
		}
	}
	return nil
}

func validateZone(zone string) error {
	if len(zone) > MaxZoneLength || !utf8.ValidString(zone) || strings.ContainsAny(zone, "[]") {
		return lerrors.New(lerrors.ErrInvalidArgument).
			Op("validate_type").
			Context("zone", zone).
			Context("message", "zone tag must be UTF-8, at most 255 bytes, without brackets").
			Build()
	}
	return nil
}

// TypeEqual compares two types including all parameters.
func TypeEqual(a, b DataType) bool {
	for a != nil && b != nil {
		if a.ID() != b.ID() {
			return false
		}
		switch ta := a.(type) {
		case *DecimalType:
			tb := b.(*DecimalType)
			return ta.precision == tb.precision && ta.scale == tb.scale
		case *TimeType:
			return ta.unit == b.(*TimeType).unit
		case *DurationType:
			return ta.unit == b.(*DurationType).unit
		case *DatetimeType:
			tb := b.(*DatetimeType)
			return ta.unit == tb.unit && ta.zone == tb.zone
		case *FixedSizeListType:
			if ta.size != b.(*FixedSizeListType).size {
				return false
			}
		case *ListType:
		default:
			return true
		}
		a, b = ElemType(a), ElemType(b)
	}
	return a == nil && b == nil
}
