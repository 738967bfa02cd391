// Copyright 2024 Vego Authors
// Licensed under the Apache License, Version 2.0

package format

import (
	"bytes"
	"testing"

	"github.com/wzqhbustb/colfile/storage/arrow"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

func testSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		arrow.NewField("mycol", arrow.PrimInt64()),
		arrow.NewField("decimal", arrow.DecimalOf(9, 3)),
		arrow.NewField("", arrow.PrimNull()),
		arrow.NewField("ts", arrow.DatetimeOf(arrow.Microsecond, "UTC")),
		arrow.NewField("naive", arrow.DatetimeOf(arrow.Nanosecond, "")),
		arrow.NewField("tod", arrow.TimeOf(arrow.Millisecond)),
		arrow.NewField("dur", arrow.DurationOf(arrow.Microsecond)),
		arrow.NewField("col_list_int32", arrow.ListOf(arrow.PrimInt32())),
		arrow.NewField("col_array_float64", arrow.FixedSizeListOf(arrow.PrimFloat64(), 1)),
		arrow.NewField("nested", arrow.ListOf(arrow.FixedSizeListOf(arrow.DecimalOf(38, 2), 4))),
		arrow.NewField("名前", arrow.PrimString()),
	})
}

func TestSchemaRoundtrip(t *testing.T) {
	schema := testSchema()
	w := NewWriter(0)
	WriteSchema(w, schema)

	r := NewReader(w.Bytes(), HeaderSize)
	got, err := ReadSchema(r, uint32(schema.NumFields()), 0)
	if err != nil {
		t.Fatalf("ReadSchema failed: %v", err)
	}
	if !got.Equal(schema) {
		t.Errorf("schema mismatch:\n%s\n%s", got, schema)
	}
	if r.Remaining() != 0 {
		t.Errorf("%d bytes left unread", r.Remaining())
	}
}

func TestTypeWireForm(t *testing.T) {
	cases := []struct {
		dt   arrow.DataType
		want []byte
	}{
		{arrow.PrimInt64(), []byte{5}},
		{arrow.DecimalOf(9, 3), []byte{12, 9, 3}},
		{arrow.DatetimeOf(arrow.Microsecond, ""), []byte{17, 2, 0}},
		{arrow.DatetimeOf(arrow.Millisecond, "UTC"), []byte{17, 1, 1, 3, 'U', 'T', 'C'}},
		{arrow.ListOf(arrow.PrimInt32()), []byte{19, 4}},
		{arrow.FixedSizeListOf(arrow.PrimFloat64(), 1), []byte{20, 1, 0, 0, 0, 11}},
	}
	for _, tc := range cases {
		w := NewWriter(0)
		WriteType(w, tc.dt)
		if !bytes.Equal(w.Bytes(), tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.dt.Name(), tc.want, w.Bytes())
		}
	}
}

func TestReadTypeErrors(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		code lerrors.ErrorCode
	}{
		{"unknown tag", []byte{99}, lerrors.ErrMalformedSchema},
		{"scale above precision", []byte{12, 3, 5}, lerrors.ErrMalformedSchema},
		{"precision above 38", []byte{12, 40, 0}, lerrors.ErrMalformedSchema},
		{"unknown unit", []byte{16, 0}, lerrors.ErrMalformedSchema},
		{"bad zone flag", []byte{17, 1, 2}, lerrors.ErrMalformedSchema},
		{"empty zone", []byte{17, 1, 1, 0}, lerrors.ErrMalformedSchema},
		{"bracket in zone", []byte{17, 1, 1, 1, '['}, lerrors.ErrMalformedSchema},
		{"list without element", []byte{19}, lerrors.ErrTruncatedInput},
		{"zone cut short", []byte{17, 1, 1, 5, 'U'}, lerrors.ErrTruncatedInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadType(NewReader(tc.data, 0), 0)
			assertErrorCode(t, err, tc.code, tc.name)
		})
	}
}

func TestReadTypeDepthLimit(t *testing.T) {
	deep := bytes.Repeat([]byte{19}, 33)
	deep = append(deep, 2)

	_, err := ReadType(NewReader(deep, 0), 32)
	assertErrorCode(t, err, lerrors.ErrMalformedSchema, "depth 33")
	assertErrorCode(t, err, lerrors.ErrNestingTooDeep, "depth 33 cause")

	dt, err := ReadType(NewReader(deep, 0), 40)
	if err != nil {
		t.Fatalf("raised limit should accept: %v", err)
	}
	if arrow.Depth(dt) != 33 {
		t.Errorf("expected depth 33, got %d", arrow.Depth(dt))
	}

	// Rejected before reading the rest of an absurdly long chain.
	huge := bytes.Repeat([]byte{19}, 1<<16)
	_, err = ReadType(NewReader(huge, 0), 32)
	assertErrorCode(t, err, lerrors.ErrNestingTooDeep, "long chain")
}

func TestReadSchemaErrors(t *testing.T) {
	w := NewWriter(0)
	WriteSchema(w, arrow.NewSchema([]arrow.Field{
		arrow.NewField("a", arrow.PrimInt8()),
		arrow.NewField("a", arrow.PrimInt8()),
	}))
	_, err := ReadSchema(NewReader(w.Bytes(), 0), 2, 0)
	assertErrorCode(t, err, lerrors.ErrMalformedSchema, "duplicate name")

	bad := []byte{1, 0, 0xff, 2}
	_, err = ReadSchema(NewReader(bad, 0), 1, 0)
	assertErrorCode(t, err, lerrors.ErrMalformedSchema, "non UTF-8 name")

	_, err = ReadSchema(NewReader([]byte{0, 0, 2}, 0), 1<<30, 0)
	assertErrorCode(t, err, lerrors.ErrTruncatedInput, "column count past input")

	schema := testSchema()
	w = NewWriter(0)
	WriteSchema(w, schema)
	data := w.Bytes()
	for n := 0; n < len(data); n++ {
		_, err := ReadSchema(NewReader(data[:n], 0), uint32(schema.NumFields()), 0)
		assertErrorCode(t, err, lerrors.ErrTruncatedInput, "schema prefix")
	}
}
