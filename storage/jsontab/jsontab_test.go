package jsontab

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wzqhbustb/colfile/storage/arrow"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

const sampleDoc = `{
  "rows": 3,
  "columns": [
    {"name": "mycol", "type": "int64", "values": [1, 2, 9223372036854775807]},
    {"name": "decimal", "type": "decimal(9,3)", "values": ["1.0", null, 3]},
    {"name": "flag", "type": "bool", "values": [true, false, null]},
    {"name": "u64", "type": "uint64", "values": [18446744073709551615, 0, 1]},
    {"name": "f32", "type": "float32", "values": [0.5, "NaN", "-Inf"]},
    {"name": "bin", "type": "binary", "values": ["AAEC", "", null]},
    {"name": "day", "type": "date", "values": ["2024-02-29", 0, null]},
    {"name": "ts", "type": "datetime[ms, UTC]", "values": [1000, "1970-01-01T00:00:02Z", null]},
    {"name": "col_list_int32", "type": "list<int32>", "values": [[1, null], [], null]},
    {"name": "col_array_float64", "type": "fixed_size_list<float64>[1]", "values": [[1.5], [null], null]}
  ]
}`

func TestUnmarshalSample(t *testing.T) {
	tbl, err := Unmarshal([]byte(sampleDoc))
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, 10, tbl.NumCols())

	get := func(name string, row int) (any, bool) {
		col, err := tbl.ColumnByName(name)
		require.NoError(t, err)
		return col.Get(row)
	}

	v, _ := get("mycol", 2)
	assert.Equal(t, int64(math.MaxInt64), v)

	v, _ = get("decimal", 0)
	assert.True(t, decimal.RequireFromString("1").Equal(v.(decimal.Decimal)))
	_, ok := get("decimal", 1)
	assert.False(t, ok)

	v, _ = get("u64", 0)
	assert.Equal(t, uint64(math.MaxUint64), v)

	v, _ = get("f32", 1)
	assert.True(t, math.IsNaN(float64(v.(float32))))

	v, _ = get("bin", 0)
	assert.Equal(t, []byte{0, 1, 2}, v)

	v, _ = get("day", 0)
	assert.Equal(t, "2024-02-29", v.(arrow.Date).String())

	v, _ = get("ts", 1)
	assert.Equal(t, arrow.Datetime(2000), v)

	v, _ = get("col_list_int32", 0)
	assert.Equal(t, []any{int32(1), nil}, v)
}

func TestMarshalRoundTrip(t *testing.T) {
	tbl, err := Unmarshal([]byte(sampleDoc))
	require.NoError(t, err)

	out, err := Marshal(tbl)
	require.NoError(t, err)

	back, err := Unmarshal(out)
	require.NoError(t, err)
	assert.True(t, tbl.Equal(back), "round trip differs:\n%s", out)
}

func TestDatesOutsideFourDigitYears(t *testing.T) {
	days := []any{arrow.Date(3000000), arrow.Date(-800000), arrow.Date(19000)}
	col, err := arrow.NewColumnFromValues(arrow.PrimDate(), days)
	require.NoError(t, err)
	tbl := arrow.NewTable()
	require.NoError(t, tbl.AddColumn("day", col))

	out, err := Marshal(tbl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows":3,"columns":[{"name":"day","type":"date","values":[3000000,-800000,"2022-01-08"]}]}`, string(out))

	back, err := Unmarshal(out)
	require.NoError(t, err)
	assert.True(t, tbl.Equal(back))
}

func TestMarshalShape(t *testing.T) {
	dec, err := arrow.NewColumnFromValues(arrow.DecimalOf(9, 3), []any{decimal.NewFromInt(1), nil})
	require.NoError(t, err)
	tbl := arrow.NewTable()
	require.NoError(t, tbl.AddColumn("decimal", dec))

	out, err := Marshal(tbl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows":2,"columns":[{"name":"decimal","type":"decimal(9,3)","values":["1.000",null]}]}`, string(out))
}

func TestUnmarshalErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		code lerrors.ErrorCode
	}{
		{"malformed", `{"columns": [`, lerrors.ErrInvalidArgument},
		{"bad type", `{"columns": [{"name": "a", "type": "int128", "values": []}]}`, lerrors.ErrUnsupportedType},
		{"wrong kind", `{"columns": [{"name": "a", "type": "bool", "values": [1]}]}`, lerrors.ErrTypeMismatch},
		{"overflow", `{"columns": [{"name": "a", "type": "int8", "values": [128]}]}`, lerrors.ErrValueOutOfRange},
		{"fraction", `{"columns": [{"name": "a", "type": "int32", "values": [1.5]}]}`, lerrors.ErrValueOutOfRange},
		{"decimal precision", `{"columns": [{"name": "a", "type": "decimal(3,1)", "values": ["100.0"]}]}`, lerrors.ErrValueOutOfRange},
		{"bad base64", `{"columns": [{"name": "a", "type": "binary", "values": ["!!"]}]}`, lerrors.ErrValueOutOfRange},
		{"null column value", `{"columns": [{"name": "a", "type": "null", "values": [1]}]}`, lerrors.ErrTypeMismatch},
		{"duplicate", `{"columns": [{"name": "a", "type": "int8", "values": []}, {"name": "a", "type": "int8", "values": []}]}`, lerrors.ErrDuplicateName},
		{"ragged", `{"columns": [{"name": "a", "type": "int8", "values": [1]}, {"name": "b", "type": "int8", "values": []}]}`, lerrors.ErrRowCountMismatch},
		{"rows disagree", `{"rows": 5, "columns": [{"name": "a", "type": "int8", "values": [1]}]}`, lerrors.ErrRowCountMismatch},
		{"fixed list size", `{"columns": [{"name": "a", "type": "fixed_size_list<int8>[2]", "values": [[1]]}]}`, lerrors.ErrTypeMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tc.doc))
			require.Error(t, err)
			assert.True(t, lerrors.Is(err, tc.code), "expected %s, got %v", tc.code, err)
		})
	}
}

func TestErrorNamesColumnAndRow(t *testing.T) {
	_, err := Unmarshal([]byte(`{"columns": [{"name": "x", "type": "uint8", "values": [1, -1]}]}`))
	var ce *lerrors.ColError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "x", ce.Context["column"])
	assert.Equal(t, 1, ce.Context["row"])
}

func TestSchemaFields(t *testing.T) {
	tbl, err := Unmarshal([]byte(sampleDoc))
	require.NoError(t, err)

	fields := SchemaFields(tbl.Schema())
	require.Len(t, fields, 10)
	assert.Equal(t, FieldDoc{Name: "decimal", Type: "decimal(9,3)"}, fields[1])

	out, err := json.Marshal(fields[7])
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ts","type":"datetime[ms, UTC]"}`, string(out))
}
