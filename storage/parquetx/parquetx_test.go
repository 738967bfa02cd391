package parquetx

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/wzqhbustb/colfile/storage/arrow"
)

func smokeTable(t *testing.T) *arrow.Table {
	t.Helper()
	ints, err := arrow.NewColumnFromValues(arrow.PrimInt64(), []any{int64(1), int64(2), int64(3)})
	require.NoError(t, err)
	decs, err := arrow.NewColumnFromValues(arrow.DecimalOf(9, 3), []any{
		decimal.NewFromInt(1), decimal.NewFromInt(2), decimal.RequireFromString("3.5"),
	})
	require.NoError(t, err)
	strs, err := arrow.NewColumnFromValues(arrow.PrimString(), []any{"a", nil, "c"})
	require.NoError(t, err)
	lists, err := arrow.NewColumnFromValues(arrow.ListOf(arrow.PrimInt32()), []any{
		[]any{int32(1), int32(2)}, nil, []any{},
	})
	require.NoError(t, err)

	tbl := arrow.NewTable()
	require.NoError(t, tbl.AddColumn("mycol", ints))
	require.NoError(t, tbl.AddColumn("decimal", decs))
	require.NoError(t, tbl.AddColumn("label", strs))
	require.NoError(t, tbl.AddColumn("col_list_int32", lists))
	return tbl
}

func TestSchemaJSON(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		arrow.NewField("mycol", arrow.PrimInt64()),
		arrow.NewField("decimal", arrow.DecimalOf(9, 3)),
		arrow.NewField("tags", arrow.ListOf(arrow.PrimString())),
	})
	got, err := SchemaJSON(schema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Tag":"name=parquet_go_root, repetitiontype=REQUIRED","Fields":[
		{"Tag":"type=INT64, name=mycol, repetitiontype=OPTIONAL"},
		{"Tag":"type=INT32, convertedtype=DECIMAL, scale=3, precision=9, name=decimal, repetitiontype=OPTIONAL"},
		{"Tag":"type=LIST, name=tags, repetitiontype=OPTIONAL","Fields":[
			{"Tag":"type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN, name=Element, repetitiontype=OPTIONAL"}]}]}`, got)
}

func TestFieldNames(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		arrow.NewField("ok_name", arrow.PrimInt8()),
		arrow.NewField("", arrow.PrimInt8()),
		arrow.NewField("名前", arrow.PrimInt8()),
		arrow.NewField("Ok_name", arrow.PrimInt8()),
		arrow.NewField("1st", arrow.PrimInt8()),
	})
	assert.Equal(t, []string{"ok_name", "col_1", "col_2", "col_3", "col_4"}, fieldNames(schema))
}

func TestPhysicalTags(t *testing.T) {
	cases := []struct {
		dt   arrow.DataType
		want string
	}{
		{arrow.DecimalOf(18, 2), "type=INT64, convertedtype=DECIMAL, scale=2, precision=18"},
		{arrow.DecimalOf(38, 0), "type=FIXED_LEN_BYTE_ARRAY, length=16, convertedtype=DECIMAL, scale=0, precision=38"},
		{arrow.PrimDate(), "type=INT32, convertedtype=DATE"},
		{arrow.DatetimeOf(arrow.Microsecond, "UTC"), "type=INT64, convertedtype=TIMESTAMP_MICROS"},
		{arrow.TimeOf(arrow.Millisecond), "type=INT32, convertedtype=TIME_MILLIS"},
		{arrow.DurationOf(arrow.Nanosecond), "type=INT64"},
		{arrow.PrimUint8(), "type=INT32, convertedtype=UINT_8"},
	}
	for _, tc := range cases {
		got := fieldSchema("x", tc.dt).Tag
		assert.Equal(t, tc.want+", name=x, repetitiontype=OPTIONAL", got, tc.dt.Name())
	}
}

func TestWriteProducesParquet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, smokeTable(t)))

	out := buf.Bytes()
	require.Greater(t, len(out), 8)
	assert.Equal(t, []byte("PAR1"), out[:4])
	assert.Equal(t, []byte("PAR1"), out[len(out)-4:])
}

func TestWriteFileReadBack(t *testing.T) {
	tbl := smokeTable(t)
	path := filepath.Join(t.TempDir(), "smoke.parquet")
	require.NoError(t, WriteFile(path, tbl))

	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()

	// No schema: the handler is built from the footer as stored.
	pr, err := reader.NewParquetReader(fr, nil, 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	assert.Equal(t, int64(3), pr.GetNumRows())

	// The reader renames footer elements to Go identifiers in memory;
	// ExName keeps the name stored in the file.
	var names []string
	for _, info := range pr.SchemaHandler.Infos {
		names = append(names, info.ExName)
	}
	assert.NotContains(t, names, "Mycol")
	assert.Contains(t, names, "mycol")
	assert.Contains(t, names, "decimal")
	assert.Contains(t, names, "col_list_int32")
}

func TestRowValue(t *testing.T) {
	assert.Equal(t, "3.500", rowValue(arrow.DecimalOf(9, 3), decimal.RequireFromString("3.5")))
	assert.Equal(t, "AAE=", rowValue(arrow.PrimBinary(), []byte{0, 1}))
	assert.Equal(t, "9223372036854775807", rowValue(arrow.PrimInt64(), int64(9223372036854775807)))
	assert.Equal(t, []any{"1", nil}, rowValue(arrow.ListOf(arrow.PrimInt8()), []any{int8(1), nil}))
	assert.Equal(t, "NaN", rowValue(arrow.PrimFloat32(), float32(math.NaN())))
}
