// Package jsontab converts tables to and from a column-oriented JSON form:
//
//	{"rows": 3, "columns": [{"name": "mycol", "type": "int64", "values": [1, 2, null]}]}
//
// Types use their canonical names. Decimals travel as strings, binary as
// base64, dates as "YYYY-MM-DD" and the other temporal kinds as integer
// counts of the column unit.
package jsontab

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/wzqhbustb/colfile/storage/arrow"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// Document is the JSON form of a table.
type Document struct {
	Rows    int      `json:"rows"`
	Columns []Column `json:"columns"`
}

// Column is one named, typed column.
type Column struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Values []any  `json:"values"`
}

// FieldDoc is a schema entry without values.
type FieldDoc struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Marshal renders t as JSON.
func Marshal(t *arrow.Table) ([]byte, error) {
	doc := ToDocument(t)
	return json.Marshal(doc)
}

// Unmarshal parses a JSON document into a table. Numbers are kept exact
// until the column type is known.
func Unmarshal(data []byte) (*arrow.Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, lerrors.New(lerrors.ErrInvalidArgument).
			Op("json_decode").
			Context("message", "malformed JSON document").
			Wrap(err).
			Build()
	}
	return FromDocument(&doc)
}

// ToDocument converts every column of t to its JSON value form.
func ToDocument(t *arrow.Table) *Document {
	doc := &Document{Rows: t.NumRows(), Columns: make([]Column, 0, t.NumCols())}
	for i := 0; i < t.NumCols(); i++ {
		col := t.ColumnAt(i)
		values := make([]any, col.Len())
		for r := range values {
			if v, ok := col.Get(r); ok {
				values[r] = toJSON(col.DataType(), v)
			}
		}
		doc.Columns = append(doc.Columns, Column{
			Name:   t.Name(i),
			Type:   col.DataType().Name(),
			Values: values,
		})
	}
	return doc
}

// FromDocument builds a table, parsing each column type and converting
// each value to the column's Go value kind.
func FromDocument(doc *Document) (*arrow.Table, error) {
	t := arrow.NewTable()
	for _, c := range doc.Columns {
		dt, err := arrow.ParseDataType(c.Type)
		if err != nil {
			return nil, columnError(c.Name, -1, err)
		}
		values := make([]any, len(c.Values))
		for r, raw := range c.Values {
			if values[r], err = fromJSON(dt, raw); err != nil {
				return nil, columnError(c.Name, r, err)
			}
		}
		col, err := arrow.NewColumnFromValues(dt, values)
		if err != nil {
			return nil, columnError(c.Name, -1, err)
		}
		if err := t.AddColumn(c.Name, col); err != nil {
			return nil, err
		}
	}
	if len(doc.Columns) > 0 && doc.Rows != 0 && doc.Rows != t.NumRows() {
		return nil, lerrors.RowCountMismatch("json_decode", "rows", doc.Rows, t.NumRows())
	}
	return t, nil
}

// SchemaFields lists the schema in JSON form.
func SchemaFields(s *arrow.Schema) []FieldDoc {
	out := make([]FieldDoc, 0, s.NumFields())
	for _, f := range s.Fields() {
		out = append(out, FieldDoc{Name: f.Name, Type: f.Type.Name()})
	}
	return out
}

func columnError(name string, row int, err error) error {
	var ce *lerrors.ColError
	if errors.As(err, &ce) {
		ce.WithContext("column", name)
		if row >= 0 {
			ce.WithContext("row", row)
		}
		return err
	}
	b := lerrors.New(lerrors.ErrInvalidArgument).
		Op("json_decode").
		Context("column", name).
		Wrap(err)
	if row >= 0 {
		b = b.Context("row", row)
	}
	return b.Build()
}
