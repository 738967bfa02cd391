package arrow

import (
	"strconv"
	"strings"

	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// ParseDataType parses the textual form produced by DataType.Name, e.g.
// "decimal(9,3)", "datetime[us, UTC]" or "fixed_size_list<float64>[1]".
func ParseDataType(s string) (DataType, error) {
	dt, err := parseDataType(strings.TrimSpace(s), 0)
	if err != nil {
		return nil, err
	}
	if err := Validate(dt, DefaultMaxNestingDepth); err != nil {
		return nil, err
	}
	return dt, nil
}

func parseDataType(s string, depth int) (DataType, error) {
	if depth > DefaultMaxNestingDepth {
		return nil, lerrors.NestingTooDeep("parse_data_type", depth, DefaultMaxNestingDepth)
	}

	switch s {
	case "null":
		return PrimNull(), nil
	case "bool", "boolean":
		return PrimBool(), nil
	case "int8":
		return PrimInt8(), nil
	case "int16":
		return PrimInt16(), nil
	case "int32":
		return PrimInt32(), nil
	case "int64":
		return PrimInt64(), nil
	case "uint8":
		return PrimUint8(), nil
	case "uint16":
		return PrimUint16(), nil
	case "uint32":
		return PrimUint32(), nil
	case "uint64":
		return PrimUint64(), nil
	case "float32":
		return PrimFloat32(), nil
	case "float64":
		return PrimFloat64(), nil
	case "utf8", "string":
		return PrimString(), nil
	case "binary":
		return PrimBinary(), nil
	case "date":
		return PrimDate(), nil
	}

	switch {
	case strings.HasPrefix(s, "decimal(") && strings.HasSuffix(s, ")"):
		return parseDecimal(s)
	case strings.HasPrefix(s, "time[") && strings.HasSuffix(s, "]"):
		unit, err := parseUnit(s, s[len("time["):len(s)-1])
		if err != nil {
			return nil, err
		}
		return TimeOf(unit), nil
	case strings.HasPrefix(s, "duration[") && strings.HasSuffix(s, "]"):
		unit, err := parseUnit(s, s[len("duration["):len(s)-1])
		if err != nil {
			return nil, err
		}
		return DurationOf(unit), nil
	case strings.HasPrefix(s, "datetime[") && strings.HasSuffix(s, "]"):
		body := s[len("datetime[") : len(s)-1]
		unitStr, zone, _ := strings.Cut(body, ",")
		unit, err := parseUnit(s, strings.TrimSpace(unitStr))
		if err != nil {
			return nil, err
		}
		return DatetimeOf(unit, strings.TrimSpace(zone)), nil
	case strings.HasPrefix(s, "list<") && strings.HasSuffix(s, ">"):
		elem, err := parseDataType(strings.TrimSpace(s[len("list<"):len(s)-1]), depth+1)
		if err != nil {
			return nil, err
		}
		return ListOf(elem), nil
	case strings.HasPrefix(s, "fixed_size_list<"):
		return parseFixedSizeList(s, depth)
	}

	return nil, lerrors.UnsupportedType("parse_data_type", s)
}

// parseDecimal parses "decimal(9,3)".
func parseDecimal(s string) (DataType, error) {
	body := s[len("decimal(") : len(s)-1]
	pStr, sStr, ok := strings.Cut(body, ",")
	if !ok {
		return nil, lerrors.UnsupportedType("parse_decimal", s)
	}
	precision, err := strconv.ParseUint(strings.TrimSpace(pStr), 10, 8)
	if err != nil {
		return nil, lerrors.UnsupportedType("parse_decimal", s)
	}
	scale, err := strconv.ParseUint(strings.TrimSpace(sStr), 10, 8)
	if err != nil {
		return nil, lerrors.UnsupportedType("parse_decimal", s)
	}
	return DecimalOf(uint8(precision), uint8(scale)), nil
}

// parseFixedSizeList parses "fixed_size_list<float32>[768]". The size is the
// bracket group after the last '>' so nested element names may contain brackets.
func parseFixedSizeList(s string, depth int) (DataType, error) {
	closeElem := strings.LastIndex(s, ">")
	if closeElem < 0 || !strings.HasSuffix(s, "]") || closeElem+1 >= len(s) || s[closeElem+1] != '[' {
		return nil, lerrors.UnsupportedType("parse_fixed_size_list", s)
	}

	size, err := strconv.ParseUint(s[closeElem+2:len(s)-1], 10, 32)
	if err != nil {
		return nil, lerrors.UnsupportedType("parse_fixed_size_list", s)
	}

	elem, err := parseDataType(strings.TrimSpace(s[len("fixed_size_list<"):closeElem]), depth+1)
	if err != nil {
		return nil, err
	}
	return FixedSizeListOf(elem, int(size)), nil
}

func parseUnit(full, s string) (TimeUnit, error) {
	unit, ok := ParseTimeUnit(s)
	if !ok {
		return 0, lerrors.UnsupportedType("parse_time_unit", full)
	}
	return unit, nil
}
