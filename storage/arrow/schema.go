package arrow

import (
	"fmt"
	"strings"
)

// Field is one schema entry.
type Field struct {
	Name string
	Type DataType
}

func NewField(name string, dtype DataType) Field {
	return Field{Name: name, Type: dtype}
}

// String renders "name: type", e.g. "decimal: decimal(9,3)".
func (f Field) String() string {
	return f.Name + ": " + f.Type.Name()
}

// Schema is the ordered list of (name, type) pairs of a table. It is a
// snapshot; changing the table afterwards does not change it.
type Schema struct {
	fields []Field
}

func NewSchema(fields []Field) *Schema {
	return &Schema{fields: fields}
}

func (s *Schema) NumFields() int   { return len(s.fields) }
func (s *Schema) Field(i int) Field { return s.fields[i] }
func (s *Schema) Fields() []Field   { return s.fields }

// FieldByName returns the field called name and its position, or -1.
func (s *Schema) FieldByName(name string) (Field, int, bool) {
	for i, f := range s.fields {
		if f.Name == name {
			return f, i, true
		}
	}
	return Field{}, -1, false
}

func (s *Schema) String() string {
	parts := make([]string, len(s.fields))
	for i, f := range s.fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("schema(%s)", strings.Join(parts, ", "))
}

// Equal checks names, order and full type parameters.
func (s *Schema) Equal(other *Schema) bool {
	if s.NumFields() != other.NumFields() {
		return false
	}
	for i, f := range s.fields {
		g := other.fields[i]
		if f.Name != g.Name || !TypeEqual(f.Type, g.Type) {
			return false
		}
	}
	return true
}
