package arrow

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// ColumnBuffer is a typed, nullable column of n rows. It owns its validity
// bitmap, its value region and, for List and FixedSizeList, its child column.
//
// Null rows always hold a placeholder: zero bytes for fixed-width values, a
// cleared bit for Boolean, an empty entry for String, Binary and List, and
// null child rows for FixedSizeList.
type ColumnBuffer struct {
	dtype    DataType
	layout   PhysicalLayout
	length   int
	validity *Bitmap
	bits     *Bitmap  // LayoutBits
	values   *Buffer  // LayoutFixed slots or LayoutVarBinary payload
	offsets  []uint32 // LayoutVarBinary and LayoutList, length+1 entries
	child    *ColumnBuffer
}

// NewColumnBuffer allocates n null rows of type dt.
func NewColumnBuffer(dt DataType, n int) (*ColumnBuffer, error) {
	if err := Validate(dt, DefaultMaxNestingDepth); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, lerrors.InvalidArg("new_column", fmt.Sprintf("negative length %d", n))
	}
	if err := checkChildRows(dt, n); err != nil {
		return nil, err
	}
	return newColumn(dt, n), nil
}

// NewColumnFromValues builds a column holding values in order. A nil entry
// is a null row.
func NewColumnFromValues(dt DataType, values []any) (*ColumnBuffer, error) {
	c, err := NewColumnBuffer(dt, 0)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if err := c.Append(v); err != nil {
			var ce *lerrors.ColError
			if errors.As(err, &ce) {
				ce.WithContext("row", i)
			}
			return nil, err
		}
	}
	return c, nil
}

func newColumn(dt DataType, n int) *ColumnBuffer {
	c := &ColumnBuffer{
		dtype:    dt,
		layout:   Layout(dt),
		length:   n,
		validity: NewBitmap(n),
	}
	switch c.layout.Kind {
	case LayoutBits:
		c.bits = NewBitmap(n)
	case LayoutFixed:
		c.values = NewBuffer(n * c.layout.ByteWidth)
	case LayoutVarBinary:
		c.values = NewBuffer(0)
		c.offsets = make([]uint32, n+1)
	case LayoutList:
		c.offsets = make([]uint32, n+1)
		c.child = newColumn(ElemType(dt), 0)
	case LayoutFixedList:
		c.child = newColumn(ElemType(dt), n*c.layout.ListSize)
	}
	return c
}

// checkChildRows rejects FixedSizeList chains whose flattened row count
// overflows int.
func checkChildRows(dt DataType, n int) error {
	rows := n
	for cur := dt; cur != nil; cur = ElemType(cur) {
		fl, ok := cur.(*FixedSizeListType)
		if !ok {
			return nil
		}
		if fl.size > 0 && rows > math.MaxInt/fl.size {
			return lerrors.ValueOutOfRange("new_column", dt.Name(), "flattened child length overflows")
		}
		rows *= fl.size
	}
	return nil
}

func (c *ColumnBuffer) DataType() DataType     { return c.dtype }
func (c *ColumnBuffer) Layout() PhysicalLayout { return c.layout }
func (c *ColumnBuffer) Len() int               { return c.length }

// NullN returns the number of null rows.
func (c *ColumnBuffer) NullN() int {
	return c.length - c.validity.CountSet()
}

// Validity returns the presence bitmap (bit=1 means present).
func (c *ColumnBuffer) Validity() *Bitmap {
	return c.validity
}

// Values returns the raw value region: packed bits for Boolean, fixed-width
// slots, or the String/Binary payload. It is nil for other layouts.
func (c *ColumnBuffer) Values() []byte {
	switch c.layout.Kind {
	case LayoutBits:
		return c.bits.Bytes()
	case LayoutFixed, LayoutVarBinary:
		return c.values.Bytes()
	default:
		return nil
	}
}

// Offsets returns the length+1 offsets of String, Binary and List columns.
func (c *ColumnBuffer) Offsets() []uint32 {
	return c.offsets
}

// Child returns the element column of List and FixedSizeList columns.
func (c *ColumnBuffer) Child() *ColumnBuffer {
	return c.child
}

func (c *ColumnBuffer) checkIndex(i int) {
	if i < 0 || i >= c.length {
		panic(fmt.Sprintf("arrow: index %d out of range [0:%d]", i, c.length))
	}
}

// IsNull reports whether row i is null. It panics if i is out of range.
func (c *ColumnBuffer) IsNull(i int) bool {
	c.checkIndex(i)
	return !c.validity.IsSet(i)
}

// Set writes v at row i and marks it present. A nil v is SetNull.
// On error the column is unchanged.
func (c *ColumnBuffer) Set(i int, v any) error {
	if i < 0 || i >= c.length {
		return lerrors.IndexOutOfRange("column_set", i, c.length)
	}
	if v == nil {
		return c.SetNull(i)
	}

	switch c.layout.Kind {
	case LayoutBits:
		b, ok := v.(bool)
		if !ok {
			return c.mismatch(v)
		}
		c.bits.SetTo(i, b)
		c.validity.Set(i)
		return nil
	case LayoutFixed:
		var tmp [16]byte
		w := c.layout.ByteWidth
		if err := c.encodeFixed(v, tmp[:w]); err != nil {
			return err
		}
		copy(c.values.Slot(i, w), tmp[:w])
		c.validity.Set(i)
		return nil
	}

	row, err := c.encodeRow(v)
	if err != nil {
		return err
	}
	return c.replace(i, 1, row)
}

// SetNull clears row i and writes its placeholder.
func (c *ColumnBuffer) SetNull(i int) error {
	if i < 0 || i >= c.length {
		return lerrors.IndexOutOfRange("column_set_null", i, c.length)
	}

	switch c.layout.Kind {
	case LayoutNone:
		c.validity.Clear(i)
		return nil
	case LayoutBits:
		c.validity.Clear(i)
		c.bits.Clear(i)
		return nil
	case LayoutFixed:
		c.validity.Clear(i)
		c.values.ZeroSlot(i, c.layout.ByteWidth)
		return nil
	}
	return c.replace(i, 1, newColumn(c.dtype, 1))
}

// Append adds v as a new last row.
func (c *ColumnBuffer) Append(v any) error {
	row, err := c.encodeRow(v)
	if err != nil {
		return err
	}
	return c.replace(c.length, 0, row)
}

// Get returns the value at row i, or ok=false for a null row.
// It panics if i is out of range.
func (c *ColumnBuffer) Get(i int) (any, bool) {
	c.checkIndex(i)
	if !c.validity.IsSet(i) {
		return nil, false
	}
	return c.value(i), true
}

func (c *ColumnBuffer) value(i int) any {
	switch c.dtype.ID() {
	case NULL:
		return nil
	case BOOL:
		return c.bits.IsSet(i)
	case INT8:
		return int8(c.values.Uint8(i))
	case INT16:
		return int16(c.values.Uint16(i))
	case INT32:
		return int32(c.values.Uint32(i))
	case INT64:
		return int64(c.values.Uint64(i))
	case UINT8:
		return c.values.Uint8(i)
	case UINT16:
		return c.values.Uint16(i)
	case UINT32:
		return c.values.Uint32(i)
	case UINT64:
		return c.values.Uint64(i)
	case FLOAT32:
		return c.values.Float32(i)
	case FLOAT64:
		return c.values.Float64(i)
	case DECIMAL:
		return decodeDecimal(c.dtype.(*DecimalType), c.values.Slot(i, c.layout.ByteWidth))
	case STRING:
		return string(c.payload(i))
	case BINARY:
		return append([]byte{}, c.payload(i)...)
	case DATE:
		return Date(int32(c.values.Uint32(i)))
	case TIME:
		return Time(int64(c.values.Uint64(i)))
	case DATETIME:
		return Datetime(int64(c.values.Uint64(i)))
	case DURATION:
		return Duration(int64(c.values.Uint64(i)))
	case LIST:
		return c.child.slice(int(c.offsets[i]), int(c.offsets[i+1]))
	case FIXED_SIZE_LIST:
		size := c.layout.ListSize
		return c.child.slice(i*size, (i+1)*size)
	default:
		panic(fmt.Sprintf("arrow: unhandled type %s", c.dtype.ID()))
	}
}

func (c *ColumnBuffer) payload(i int) []byte {
	return c.values.Bytes()[c.offsets[i]:c.offsets[i+1]]
}

func (c *ColumnBuffer) slice(from, to int) []any {
	out := make([]any, to-from)
	for k := range out {
		out[k], _ = c.Get(from + k)
	}
	return out
}

func (c *ColumnBuffer) mismatch(v any) error {
	return lerrors.TypeMismatch("column_set", c.dtype.Name(), fmt.Sprintf("%T", v))
}

// encodeFixed writes the physical bytes of v into dst.
func (c *ColumnBuffer) encodeFixed(v any, dst []byte) error {
	le := binary.LittleEndian
	ok := true
	switch c.dtype.ID() {
	case INT8:
		var x int8
		if x, ok = v.(int8); ok {
			dst[0] = byte(x)
		}
	case INT16:
		var x int16
		if x, ok = v.(int16); ok {
			le.PutUint16(dst, uint16(x))
		}
	case INT32:
		var x int32
		if x, ok = v.(int32); ok {
			le.PutUint32(dst, uint32(x))
		}
	case INT64:
		var x int64
		if x, ok = v.(int64); ok {
			le.PutUint64(dst, uint64(x))
		}
	case UINT8:
		var x uint8
		if x, ok = v.(uint8); ok {
			dst[0] = x
		}
	case UINT16:
		var x uint16
		if x, ok = v.(uint16); ok {
			le.PutUint16(dst, x)
		}
	case UINT32:
		var x uint32
		if x, ok = v.(uint32); ok {
			le.PutUint32(dst, x)
		}
	case UINT64:
		var x uint64
		if x, ok = v.(uint64); ok {
			le.PutUint64(dst, x)
		}
	case FLOAT32:
		var x float32
		if x, ok = v.(float32); ok {
			le.PutUint32(dst, math.Float32bits(x))
		}
	case FLOAT64:
		var x float64
		if x, ok = v.(float64); ok {
			le.PutUint64(dst, math.Float64bits(x))
		}
	case DATE:
		var x Date
		if x, ok = v.(Date); ok {
			le.PutUint32(dst, uint32(x))
		}
	case TIME:
		var x Time
		if x, ok = v.(Time); ok {
			le.PutUint64(dst, uint64(x))
		}
	case DATETIME:
		var x Datetime
		if x, ok = v.(Datetime); ok {
			le.PutUint64(dst, uint64(x))
		}
	case DURATION:
		var x Duration
		if x, ok = v.(Duration); ok {
			le.PutUint64(dst, uint64(x))
		}
	case DECIMAL:
		d, isDec := v.(decimal.Decimal)
		if !isDec {
			return c.mismatch(v)
		}
		return encodeDecimal(c.dtype.(*DecimalType), d, dst)
	default:
		ok = false
	}
	if !ok {
		return c.mismatch(v)
	}
	return nil
}

// encodeRow converts v into a one-row column of the same type.
func (c *ColumnBuffer) encodeRow(v any) (*ColumnBuffer, error) {
	row := newColumn(c.dtype, 1)
	if v == nil {
		return row, nil
	}

	switch c.layout.Kind {
	case LayoutNone:
		return nil, c.mismatch(v)
	case LayoutBits:
		b, ok := v.(bool)
		if !ok {
			return nil, c.mismatch(v)
		}
		row.bits.SetTo(0, b)
	case LayoutFixed:
		if err := c.encodeFixed(v, row.values.Bytes()); err != nil {
			return nil, err
		}
	case LayoutVarBinary:
		var payload []byte
		switch x := v.(type) {
		case string:
			if c.dtype.ID() != STRING {
				return nil, c.mismatch(v)
			}
			if !utf8.ValidString(x) {
				return nil, lerrors.ValueOutOfRange("column_set", c.dtype.Name(), "string is not valid UTF-8")
			}
			payload = []byte(x)
		case []byte:
			if c.dtype.ID() != BINARY {
				return nil, c.mismatch(v)
			}
			payload = append([]byte{}, x...)
		default:
			return nil, c.mismatch(v)
		}
		if uint64(len(payload)) > math.MaxUint32 {
			return nil, lerrors.ValueOutOfRange("column_set", c.dtype.Name(), "payload exceeds u32 offsets")
		}
		row.values = NewBufferBytes(payload)
		row.offsets[1] = uint32(len(payload))
	case LayoutList:
		elems, ok := v.([]any)
		if !ok {
			return nil, c.mismatch(v)
		}
		if uint64(len(elems)) > math.MaxUint32 {
			return nil, lerrors.ValueOutOfRange("column_set", c.dtype.Name(), "list exceeds u32 offsets")
		}
		for _, e := range elems {
			if err := row.child.Append(e); err != nil {
				return nil, err
			}
		}
		row.offsets[1] = uint32(len(elems))
	case LayoutFixedList:
		elems, ok := v.([]any)
		if !ok {
			return nil, c.mismatch(v)
		}
		if len(elems) != c.layout.ListSize {
			return nil, lerrors.TypeMismatch("column_set", c.dtype.Name(),
				fmt.Sprintf("[]any of length %d", len(elems)))
		}
		for k, e := range elems {
			if err := row.child.Set(k, e); err != nil {
				return nil, err
			}
		}
	}
	row.validity.Set(0)
	return row, nil
}

// replace swaps rows [at, at+remove) for all rows of src, which must have
// the same type. Every check happens before any mutation, so a failure
// leaves c untouched.
func (c *ColumnBuffer) replace(at, remove int, src *ColumnBuffer) error {
	var (
		offsets    []uint32
		start, end int
	)
	if c.layout.HasOffsets() {
		start, end = int(c.offsets[at]), int(c.offsets[at+remove])
		var err error
		if offsets, err = spliceOffsets(c.offsets, at, remove, src.offsets); err != nil {
			return lerrors.ValueOutOfRange("column_set", c.dtype.Name(), err.Error())
		}
	}

	switch c.layout.Kind {
	case LayoutList:
		if err := c.child.replace(start, end-start, src.child); err != nil {
			return err
		}
	case LayoutFixedList:
		size := c.layout.ListSize
		if err := c.child.replace(at*size, remove*size, src.child); err != nil {
			return err
		}
	}

	c.validity = c.validity.Splice(at, remove, src.validity)
	switch c.layout.Kind {
	case LayoutBits:
		c.bits = c.bits.Splice(at, remove, src.bits)
	case LayoutFixed:
		w := c.layout.ByteWidth
		c.values.Splice(at*w, remove*w, src.values.Bytes())
	case LayoutVarBinary:
		c.values.Splice(start, end-start, src.values.Bytes())
	}
	if offsets != nil {
		c.offsets = offsets
	}
	c.length += src.length - remove
	return nil
}

// spliceOffsets returns offs with entries for rows [at, at+remove) replaced by
// the rows described by src (whose first entry is 0).
func spliceOffsets(offs []uint32, at, remove int, src []uint32) ([]uint32, error) {
	start, end := uint64(offs[at]), uint64(offs[at+remove])
	inserted := uint64(src[len(src)-1])
	if uint64(offs[len(offs)-1])-(end-start)+inserted > math.MaxUint32 {
		return nil, fmt.Errorf("offset range exceeded")
	}

	var out []uint32
	if remove == 0 && at == len(offs)-1 {
		out = offs
	} else {
		out = make([]uint32, 0, len(offs)-remove+len(src)-1)
		out = append(out, offs[:at+1]...)
	}
	for _, o := range src[1:] {
		out = append(out, uint32(start+uint64(o)))
	}
	for _, o := range offs[at+remove+1:] {
		out = append(out, uint32(uint64(o)-end+start+inserted))
	}
	return out, nil
}

// Equal compares type, length, validity and present values. Placeholder
// bytes under null rows are ignored.
func (c *ColumnBuffer) Equal(other *ColumnBuffer) bool {
	if c == nil || other == nil {
		return c == other
	}
	if !TypeEqual(c.dtype, other.dtype) || c.length != other.length {
		return false
	}
	for i := 0; i < c.length; i++ {
		if !rowEqual(c, i, other, i) {
			return false
		}
	}
	return true
}

func rowEqual(a *ColumnBuffer, i int, b *ColumnBuffer, j int) bool {
	present := a.validity.IsSet(i)
	if present != b.validity.IsSet(j) {
		return false
	}
	if !present {
		return true
	}

	switch a.layout.Kind {
	case LayoutBits:
		return a.bits.IsSet(i) == b.bits.IsSet(j)
	case LayoutFixed:
		w := a.layout.ByteWidth
		return bytes.Equal(a.values.Slot(i, w), b.values.Slot(j, w))
	case LayoutVarBinary:
		return bytes.Equal(a.payload(i), b.payload(j))
	case LayoutList:
		as, ae := int(a.offsets[i]), int(a.offsets[i+1])
		bs, be := int(b.offsets[j]), int(b.offsets[j+1])
		if ae-as != be-bs {
			return false
		}
		for k := 0; k < ae-as; k++ {
			if !rowEqual(a.child, as+k, b.child, bs+k) {
				return false
			}
		}
	case LayoutFixedList:
		size := a.layout.ListSize
		for k := 0; k < size; k++ {
			if !rowEqual(a.child, i*size+k, b.child, j*size+k) {
				return false
			}
		}
	}
	return true
}

// ColumnParts holds the raw regions of a column read back from storage.
type ColumnParts struct {
	Validity []byte
	Values   []byte
	Offsets  []uint32
	Child    *ColumnBuffer
}

// FromParts assembles a column of n rows from raw regions, checking that
// every region agrees with dt and n. Validity and Values are copied.
func FromParts(dt DataType, n int, parts ColumnParts) (*ColumnBuffer, error) {
	bad := func(reason string) error {
		return lerrors.New(lerrors.ErrInvalidArgument).
			Op("column_from_parts").
			Context("data_type", dt.Name()).
			Context("message", reason).
			Build()
	}

	if n < 0 {
		return nil, bad("negative length")
	}
	if len(parts.Validity) != BitmapBytes(n) || !tailClear(parts.Validity, n) {
		return nil, bad("validity bitmap does not match row count")
	}

	c := &ColumnBuffer{
		dtype:    dt,
		layout:   Layout(dt),
		length:   n,
		validity: NewBitmapFromBytes(parts.Validity, n),
	}

	switch c.layout.Kind {
	case LayoutNone:
		if c.validity.CountSet() != 0 {
			return nil, bad("null column has present rows")
		}
	case LayoutBits:
		if len(parts.Values) != BitmapBytes(n) || !tailClear(parts.Values, n) {
			return nil, bad("value bits do not match row count")
		}
		c.bits = NewBitmapFromBytes(parts.Values, n)
	case LayoutFixed:
		if int64(len(parts.Values)) != int64(n)*int64(c.layout.ByteWidth) {
			return nil, bad("value region does not match row count")
		}
		c.values = NewBufferBytes(append([]byte{}, parts.Values...))
	case LayoutVarBinary:
		if err := checkOffsets(parts.Offsets, n, len(parts.Values)); err != "" {
			return nil, bad(err)
		}
		c.values = NewBufferBytes(append([]byte{}, parts.Values...))
		c.offsets = parts.Offsets
		if dt.ID() == STRING {
			for i := 0; i < n; i++ {
				if c.validity.IsSet(i) && !utf8.Valid(c.payload(i)) {
					return nil, bad(fmt.Sprintf("row %d is not valid UTF-8", i))
				}
			}
		}
	case LayoutList:
		if parts.Child == nil || !TypeEqual(parts.Child.dtype, ElemType(dt)) {
			return nil, bad("missing or mistyped child column")
		}
		if err := checkOffsets(parts.Offsets, n, parts.Child.length); err != "" {
			return nil, bad(err)
		}
		c.offsets = parts.Offsets
		c.child = parts.Child
	case LayoutFixedList:
		if parts.Child == nil || !TypeEqual(parts.Child.dtype, ElemType(dt)) {
			return nil, bad("missing or mistyped child column")
		}
		if int64(parts.Child.length) != int64(n)*int64(c.layout.ListSize) {
			return nil, bad("child length does not match row count")
		}
		c.child = parts.Child
	}
	return c, nil
}

func checkOffsets(offs []uint32, n, end int) string {
	if len(offs) != n+1 {
		return "offsets length does not match row count"
	}
	if offs[0] != 0 {
		return "first offset is not zero"
	}
	for i := 0; i < n; i++ {
		if offs[i+1] < offs[i] {
			return fmt.Sprintf("offsets decrease at row %d", i)
		}
	}
	if int64(offs[n]) != int64(end) {
		return "last offset does not match payload length"
	}
	return ""
}

// tailClear reports whether the unused bits of the last byte are zero.
func tailClear(data []byte, n int) bool {
	rem := n % 8
	if rem == 0 || len(data) == 0 {
		return true
	}
	return data[len(data)-1]&^byte((1<<rem)-1) == 0
}

var twoTo128 = new(big.Int).Lsh(big.NewInt(1), 128)

func encodeDecimal(t *DecimalType, d decimal.Decimal, dst []byte) error {
	scale := int32(t.scale)
	unscaled := d.Round(scale).Shift(scale).BigInt()
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(t.precision)), nil)
	if new(big.Int).Abs(unscaled).Cmp(limit) >= 0 {
		return lerrors.ValueOutOfRange("column_set", t.Name(),
			fmt.Sprintf("%s needs more than %d digits", d.String(), t.precision))
	}

	le := binary.LittleEndian
	switch len(dst) {
	case 4:
		le.PutUint32(dst, uint32(int32(unscaled.Int64())))
	case 8:
		le.PutUint64(dst, uint64(unscaled.Int64()))
	default:
		v := unscaled
		if v.Sign() < 0 {
			v = new(big.Int).Add(v, twoTo128)
		}
		be := v.FillBytes(make([]byte, 16))
		for i := range dst {
			dst[i] = be[15-i]
		}
	}
	return nil
}

func decodeDecimal(t *DecimalType, src []byte) decimal.Decimal {
	exp := -int32(t.scale)
	le := binary.LittleEndian
	switch len(src) {
	case 4:
		return decimal.New(int64(int32(le.Uint32(src))), exp)
	case 8:
		return decimal.New(int64(le.Uint64(src)), exp)
	default:
		be := make([]byte, 16)
		for i := range be {
			be[i] = src[15-i]
		}
		v := new(big.Int).SetBytes(be)
		if src[15]&0x80 != 0 {
			v.Sub(v, twoTo128)
		}
		return decimal.NewFromBigInt(v, exp)
	}
}
