// Copyright 2024 Vego Authors
// Licensed under the Apache License, Version 2.0

package format

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/wzqhbustb/colfile/storage/arrow"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// minColumnEntry is the smallest schema entry: empty name and a one-byte tag.
const minColumnEntry = 2 + 1

// WriteSchema appends the schema block: per column a u16-prefixed name and
// the type.
func WriteSchema(w *Writer, schema *arrow.Schema) {
	for _, f := range schema.Fields() {
		w.PutU16(uint16(len(f.Name)))
		w.PutBytes([]byte(f.Name))
		WriteType(w, f.Type)
	}
}

// WriteType appends the wire form of dt: a tag byte and its parameters,
// followed by the element type for List and FixedSizeList. Each type has at
// most one element, so the chain is written iteratively.
func WriteType(w *Writer, dt arrow.DataType) {
	for cur := dt; cur != nil; cur = arrow.ElemType(cur) {
		w.PutU8(uint8(cur.ID()))
		switch t := cur.(type) {
		case *arrow.DecimalType:
			w.PutU8(t.Precision())
			w.PutU8(t.Scale())
		case *arrow.TimeType:
			w.PutU8(uint8(t.Unit()))
		case *arrow.DurationType:
			w.PutU8(uint8(t.Unit()))
		case *arrow.DatetimeType:
			w.PutU8(uint8(t.Unit()))
			if t.Zone() == "" {
				w.PutU8(0)
			} else {
				w.PutU8(1)
				w.PutU8(uint8(len(t.Zone())))
				w.PutBytes([]byte(t.Zone()))
			}
		case *arrow.FixedSizeListType:
			w.PutU32(uint32(t.Size()))
		}
	}
}

// ReadSchema parses numColumns schema entries.
func ReadSchema(r *Reader, numColumns uint32, maxDepth int) (*arrow.Schema, error) {
	r.SetOp("decode_schema")
	if uint64(numColumns) > uint64(r.Remaining()/minColumnEntry) {
		return nil, lerrors.Truncated("decode_schema", r.Offset(),
			int(min(uint64(numColumns)*minColumnEntry, math.MaxInt32)), r.Remaining())
	}

	fields := make([]arrow.Field, 0, numColumns)
	seen := make(map[string]struct{}, numColumns)
	for i := uint32(0); i < numColumns; i++ {
		start := r.Offset()
		nameLen, err := r.U16()
		if err != nil {
			return nil, err
		}
		raw, err := r.Bytes(int(nameLen))
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(raw) {
			return nil, lerrors.MalformedSchema("decode_schema", start, fmt.Sprintf("column %d name is not UTF-8", i))
		}
		name := string(raw)
		if _, dup := seen[name]; dup {
			return nil, malformed(start, "duplicate column name", lerrors.DuplicateName("decode_schema", name))
		}
		seen[name] = struct{}{}

		dt, err := ReadType(r, maxDepth)
		if err != nil {
			return nil, err
		}
		fields = append(fields, arrow.NewField(name, dt))
	}
	return arrow.NewSchema(fields), nil
}

// ReadType parses one type. Container tags are collected first and wrapped
// around the leaf afterwards, so nesting never recurses; depth beyond
// maxDepth is rejected as soon as it is seen.
func ReadType(r *Reader, maxDepth int) (arrow.DataType, error) {
	if maxDepth <= 0 {
		maxDepth = arrow.DefaultMaxNestingDepth
	}

	type container struct {
		id   arrow.TypeID
		size int
	}
	var chain []container

	for {
		start := r.Offset()
		tag, err := r.U8()
		if err != nil {
			return nil, err
		}
		id := arrow.TypeID(tag)
		if !id.Valid() {
			return nil, lerrors.MalformedSchema("decode_type", start, fmt.Sprintf("unknown type tag %d", tag))
		}

		switch id {
		case arrow.LIST:
			chain = append(chain, container{id: id})
		case arrow.FIXED_SIZE_LIST:
			size, err := r.U32()
			if err != nil {
				return nil, err
			}
			if uint64(size) > math.MaxInt {
				return nil, lerrors.MalformedSchema("decode_type", start, "fixed_size_list size exceeds platform int")
			}
			chain = append(chain, container{id: id, size: int(size)})
		default:
			dt, err := readLeaf(r, id, start)
			if err != nil {
				return nil, err
			}
			for i := len(chain) - 1; i >= 0; i-- {
				if chain[i].id == arrow.LIST {
					dt = arrow.ListOf(dt)
				} else {
					dt = arrow.FixedSizeListOf(dt, chain[i].size)
				}
			}
			return dt, nil
		}

		if len(chain) > maxDepth {
			return nil, malformed(start, "nesting too deep",
				lerrors.NestingTooDeep("decode_type", len(chain), maxDepth))
		}
	}
}

func readLeaf(r *Reader, id arrow.TypeID, start int64) (arrow.DataType, error) {
	var dt arrow.DataType
	switch id {
	case arrow.NULL:
		dt = arrow.PrimNull()
	case arrow.BOOL:
		dt = arrow.PrimBool()
	case arrow.INT8:
		dt = arrow.PrimInt8()
	case arrow.INT16:
		dt = arrow.PrimInt16()
	case arrow.INT32:
		dt = arrow.PrimInt32()
	case arrow.INT64:
		dt = arrow.PrimInt64()
	case arrow.UINT8:
		dt = arrow.PrimUint8()
	case arrow.UINT16:
		dt = arrow.PrimUint16()
	case arrow.UINT32:
		dt = arrow.PrimUint32()
	case arrow.UINT64:
		dt = arrow.PrimUint64()
	case arrow.FLOAT32:
		dt = arrow.PrimFloat32()
	case arrow.FLOAT64:
		dt = arrow.PrimFloat64()
	case arrow.STRING:
		dt = arrow.PrimString()
	case arrow.BINARY:
		dt = arrow.PrimBinary()
	case arrow.DATE:
		dt = arrow.PrimDate()
	case arrow.DECIMAL:
		precision, err := r.U8()
		if err != nil {
			return nil, err
		}
		scale, err := r.U8()
		if err != nil {
			return nil, err
		}
		dt = arrow.DecimalOf(precision, scale)
	case arrow.TIME, arrow.DURATION:
		unit, err := r.U8()
		if err != nil {
			return nil, err
		}
		if id == arrow.TIME {
			dt = arrow.TimeOf(arrow.TimeUnit(unit))
		} else {
			dt = arrow.DurationOf(arrow.TimeUnit(unit))
		}
	case arrow.DATETIME:
		unit, err := r.U8()
		if err != nil {
			return nil, err
		}
		present, err := r.U8()
		if err != nil {
			return nil, err
		}
		zone := ""
		switch present {
		case 0:
		case 1:
			n, err := r.U8()
			if err != nil {
				return nil, err
			}
			raw, err := r.Bytes(int(n))
			if err != nil {
				return nil, err
			}
			if n == 0 {
				return nil, lerrors.MalformedSchema("decode_type", start, "zone marked present but empty")
			}
			zone = string(raw)
		default:
			return nil, lerrors.MalformedSchema("decode_type", start, fmt.Sprintf("zone flag %d", present))
		}
		dt = arrow.DatetimeOf(arrow.TimeUnit(unit), zone)
	default:
		return nil, lerrors.MalformedSchema("decode_type", start, fmt.Sprintf("unexpected tag %s", id))
	}

	if err := arrow.Validate(dt, 1); err != nil {
		return nil, malformed(start, "invalid type parameters", err)
	}
	return dt, nil
}

func malformed(offset int64, reason string, cause error) error {
	return lerrors.New(lerrors.ErrMalformedSchema).
		Op("decode_type").
		Offset(offset).
		Context("reason", reason).
		Wrap(cause).
		Severity(lerrors.SeverityFatal).
		Build()
}
