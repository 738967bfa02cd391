package arrow

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

func TestTableAddColumn(t *testing.T) {
	tbl := NewTable()
	assert.Equal(t, 0, tbl.NumRows())

	ints, err := NewColumnFromValues(PrimInt64(), []any{int64(1), int64(2), int64(3)})
	require.NoError(t, err)
	decs, err := NewColumnFromValues(DecimalOf(9, 3), []any{
		decimal.NewFromInt(1), decimal.NewFromInt(2), decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	require.NoError(t, tbl.AddColumn("mycol", ints))
	require.NoError(t, tbl.AddColumn("decimal", decs))
	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, 2, tbl.NumCols())
	assert.Equal(t, []string{"mycol", "decimal"}, tbl.Names())

	schema := tbl.Schema()
	assert.Equal(t, "decimal(9,3)", schema.Field(1).Type.Name())
	_, idx, ok := schema.FieldByName("decimal")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	col, ok := tbl.Column("decimal")
	require.True(t, ok)
	v, ok := col.Get(0)
	require.True(t, ok)
	assert.Equal(t, "1.000", v.(decimal.Decimal).StringFixed(3))

	_, ok = tbl.Column("missing")
	assert.False(t, ok)
	_, err = tbl.ColumnByName("missing")
	assert.True(t, lerrors.Is(err, lerrors.ErrColumnNotFound))
}

func TestTableRejectsBadColumns(t *testing.T) {
	tbl := NewTable()
	three, _ := NewColumnBuffer(PrimInt8(), 3)
	four, _ := NewColumnBuffer(PrimInt8(), 4)

	require.NoError(t, tbl.AddColumn("a", three))

	err := tbl.AddColumn("a", three)
	assert.True(t, lerrors.Is(err, lerrors.ErrDuplicateName))

	err = tbl.AddColumn("b", four)
	assert.True(t, lerrors.Is(err, lerrors.ErrRowCountMismatch))

	err = tbl.AddColumn("c", nil)
	assert.True(t, lerrors.Is(err, lerrors.ErrInvalidArgument))

	err = tbl.AddColumn(strings.Repeat("n", MaxColumnNameLength+1), three)
	assert.True(t, lerrors.Is(err, lerrors.ErrInvalidArgument))

	err = tbl.AddColumn(string([]byte{0xc3}), three)
	assert.True(t, lerrors.Is(err, lerrors.ErrInvalidArgument))

	assert.Equal(t, 1, tbl.NumCols(), "failed adds leave the table unchanged")
}

func TestTableEqual(t *testing.T) {
	build := func(last any) *Table {
		tbl := NewTable()
		col, err := NewColumnFromValues(PrimString(), []any{"x", nil, last})
		require.NoError(t, err)
		require.NoError(t, tbl.AddColumn("s", col))
		return tbl
	}

	assert.True(t, build("z").Equal(build("z")))
	assert.False(t, build("z").Equal(build("y")))
	assert.False(t, build("z").Equal(build(nil)))
	assert.False(t, build("z").Equal(NewTable()))
	assert.Contains(t, build("z").String(), "s: utf8 (nulls=1)")
}
