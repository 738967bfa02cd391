package jsontab

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wzqhbustb/colfile/storage/arrow"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// toJSON maps a present Go value of dt to a value encoding/json renders
// without loss.
func toJSON(dt arrow.DataType, v any) any {
	switch x := v.(type) {
	case float32:
		return floatJSON(float64(x), 32)
	case float64:
		return floatJSON(x, 64)
	case decimal.Decimal:
		return x.StringFixed(int32(dt.(*arrow.DecimalType).Scale()))
	case []byte:
		return base64.StdEncoding.EncodeToString(x)
	case arrow.Date:
		// Years outside 1..9999 have no four-digit form; use the day count.
		if y := x.Time().Year(); y < 1 || y > 9999 {
			return int64(x)
		}
		return x.String()
	case arrow.Time:
		return int64(x)
	case arrow.Datetime:
		return int64(x)
	case arrow.Duration:
		return int64(x)
	case []any:
		elem := arrow.ElemType(dt)
		out := make([]any, len(x))
		for i, e := range x {
			if e != nil {
				out[i] = toJSON(elem, e)
			}
		}
		return out
	default:
		return v
	}
}

// floatJSON keeps finite floats as numbers and spells out NaN and the
// infinities, which JSON numbers cannot carry.
func floatJSON(f float64, bits int) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, bits)
	}
	if bits == 32 {
		return json.Number(strconv.FormatFloat(f, 'g', -1, 32))
	}
	return f
}

// fromJSON converts a decoded JSON value to the Go value kind of dt.
func fromJSON(dt arrow.DataType, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	switch dt.ID() {
	case arrow.NULL:
		return nil, mismatch(dt, raw)
	case arrow.BOOL:
		b, ok := raw.(bool)
		if !ok {
			return nil, mismatch(dt, raw)
		}
		return b, nil
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		return parseInt(dt, raw)
	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return parseUint(dt, raw)
	case arrow.FLOAT32, arrow.FLOAT64:
		bits := 64
		if dt.ID() == arrow.FLOAT32 {
			bits = 32
		}
		s, ok := numberText(raw)
		if !ok {
			return nil, mismatch(dt, raw)
		}
		f, err := strconv.ParseFloat(s, bits)
		if err != nil {
			return nil, outOfRange(dt, err)
		}
		if bits == 32 {
			return float32(f), nil
		}
		return f, nil
	case arrow.DECIMAL:
		s, ok := numberText(raw)
		if !ok {
			return nil, mismatch(dt, raw)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, outOfRange(dt, err)
		}
		return d, nil
	case arrow.STRING:
		s, ok := raw.(string)
		if !ok {
			return nil, mismatch(dt, raw)
		}
		return s, nil
	case arrow.BINARY:
		s, ok := raw.(string)
		if !ok {
			return nil, mismatch(dt, raw)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, outOfRange(dt, err)
		}
		return b, nil
	case arrow.DATE:
		if s, ok := raw.(string); ok {
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				return nil, outOfRange(dt, err)
			}
			return arrow.DateFromTime(t), nil
		}
		n, err := parseCount(dt, raw, 32)
		if err != nil {
			return nil, err
		}
		return arrow.Date(n), nil
	case arrow.TIME:
		n, err := parseCount(dt, raw, 64)
		if err != nil {
			return nil, err
		}
		return arrow.Time(n), nil
	case arrow.DATETIME:
		if s, ok := raw.(string); ok {
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, outOfRange(dt, err)
			}
			return arrow.DatetimeFromTime(t, dt.(*arrow.DatetimeType).Unit()), nil
		}
		n, err := parseCount(dt, raw, 64)
		if err != nil {
			return nil, err
		}
		return arrow.Datetime(n), nil
	case arrow.DURATION:
		n, err := parseCount(dt, raw, 64)
		if err != nil {
			return nil, err
		}
		return arrow.Duration(n), nil
	case arrow.LIST, arrow.FIXED_SIZE_LIST:
		items, ok := raw.([]any)
		if !ok {
			return nil, mismatch(dt, raw)
		}
		elem := arrow.ElemType(dt)
		out := make([]any, len(items))
		for i, item := range items {
			v, err := fromJSON(elem, item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, lerrors.UnsupportedType("json_decode", dt.Name())
}

// numberText accepts json.Number, float64 (from decoders without
// UseNumber) and strings.
func numberText(raw any) (string, bool) {
	switch x := raw.(type) {
	case json.Number:
		return x.String(), true
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	}
	return "", false
}

func parseInt(dt arrow.DataType, raw any) (any, error) {
	bits := map[arrow.TypeID]int{arrow.INT8: 8, arrow.INT16: 16, arrow.INT32: 32, arrow.INT64: 64}[dt.ID()]
	n, err := parseCount(dt, raw, bits)
	if err != nil {
		return nil, err
	}
	switch bits {
	case 8:
		return int8(n), nil
	case 16:
		return int16(n), nil
	case 32:
		return int32(n), nil
	}
	return n, nil
}

func parseUint(dt arrow.DataType, raw any) (any, error) {
	bits := map[arrow.TypeID]int{arrow.UINT8: 8, arrow.UINT16: 16, arrow.UINT32: 32, arrow.UINT64: 64}[dt.ID()]
	s, ok := numberText(raw)
	if !ok {
		return nil, mismatch(dt, raw)
	}
	n, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return nil, outOfRange(dt, err)
	}
	switch bits {
	case 8:
		return uint8(n), nil
	case 16:
		return uint16(n), nil
	case 32:
		return uint32(n), nil
	}
	return n, nil
}

func parseCount(dt arrow.DataType, raw any, bits int) (int64, error) {
	s, ok := numberText(raw)
	if !ok {
		return 0, mismatch(dt, raw)
	}
	n, err := strconv.ParseInt(s, 10, bits)
	if err != nil {
		return 0, outOfRange(dt, err)
	}
	return n, nil
}

func mismatch(dt arrow.DataType, raw any) error {
	return lerrors.TypeMismatch("json_decode", dt.Name(), fmt.Sprintf("%T", raw))
}

func outOfRange(dt arrow.DataType, err error) error {
	return lerrors.New(lerrors.ErrValueOutOfRange).
		Op("json_decode").
		Context("data_type", dt.Name()).
		Wrap(err).
		Build()
}
