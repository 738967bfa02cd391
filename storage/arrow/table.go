package arrow

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// MaxColumnNameLength bounds a column name so it fits a u16 length prefix.
const MaxColumnNameLength = math.MaxUint16

// Table is an ordered set of uniquely named columns of equal length.
// Columns are added once during construction; the table owns them.
type Table struct {
	names   []string
	columns []*ColumnBuffer
	index   map[string]int
	numRows int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// AddColumn appends col under name. The first column fixes the row count.
func (t *Table) AddColumn(name string, col *ColumnBuffer) error {
	if col == nil {
		return lerrors.InvalidArg("add_column", "nil column")
	}
	if !utf8.ValidString(name) || len(name) > MaxColumnNameLength {
		return lerrors.New(lerrors.ErrInvalidArgument).
			Op("add_column").
			Context("name_bytes", len(name)).
			Context("message", "column name must be UTF-8 and at most 65535 bytes").
			Build()
	}
	if _, ok := t.index[name]; ok {
		return lerrors.DuplicateName("add_column", name)
	}
	if len(t.columns) > 0 && col.Len() != t.numRows {
		return lerrors.RowCountMismatch("add_column", name, t.numRows, col.Len())
	}

	if len(t.columns) == 0 {
		t.numRows = col.Len()
	}
	t.index[name] = len(t.columns)
	t.names = append(t.names, name)
	t.columns = append(t.columns, col)
	return nil
}

// Column returns the column called name.
func (t *Table) Column(name string) (*ColumnBuffer, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// ColumnByName is Column with a ColumnNotFound error.
func (t *Table) ColumnByName(name string) (*ColumnBuffer, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, lerrors.ColumnNotFound("column", name, t.Names())
	}
	return col, nil
}

// ColumnAt returns the i-th column.
func (t *Table) ColumnAt(i int) *ColumnBuffer {
	return t.columns[i]
}

// Name returns the name of the i-th column.
func (t *Table) Name(i int) string {
	return t.names[i]
}

// Names returns column names in order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Schema returns the ordered (name, type) list.
func (t *Table) Schema() *Schema {
	fields := make([]Field, len(t.columns))
	for i, col := range t.columns {
		fields[i] = NewField(t.names[i], col.DataType())
	}
	return NewSchema(fields)
}

func (t *Table) NumRows() int { return t.numRows }
func (t *Table) NumCols() int { return len(t.columns) }

// Equal compares schema and every value, including null positions.
func (t *Table) Equal(other *Table) bool {
	if other == nil || t.numRows != other.numRows || !t.Schema().Equal(other.Schema()) {
		return false
	}
	for i, col := range t.columns {
		if !col.Equal(other.columns[i]) {
			return false
		}
	}
	return true
}

func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Table{rows=%d, cols=%d}\n", t.numRows, len(t.columns)))
	for i, name := range t.names {
		col := t.columns[i]
		sb.WriteString(fmt.Sprintf("  %s: %s (nulls=%d)\n", name, col.DataType().Name(), col.NullN()))
	}
	return sb.String()
}
