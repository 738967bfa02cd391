package parquetx

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/wzqhbustb/colfile/storage/arrow"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

type options struct {
	parallelism int64
	codec       parquet.CompressionCodec
}

// Option configures Parquet export.
type Option func(*options)

// WithParallelism sets the number of marshalling goroutines.
func WithParallelism(np int64) Option {
	return func(o *options) {
		if np > 0 {
			o.parallelism = np
		}
	}
}

// WithCodec selects the page compression codec. The default is SNAPPY.
func WithCodec(codec parquet.CompressionCodec) Option {
	return func(o *options) {
		o.codec = codec
	}
}

func buildOptions(opts []Option) options {
	o := options{parallelism: 4, codec: parquet.CompressionCodec_SNAPPY}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Write exports t as a Parquet file to w.
func Write(w io.Writer, t *arrow.Table, opts ...Option) error {
	o := buildOptions(opts)
	schema, err := SchemaJSON(t.Schema())
	if err != nil {
		return err
	}
	pw, err := writer.NewJSONWriterFromWriter(schema, w, o.parallelism)
	if err != nil {
		return exportError("error in NewJSONWriterFromWriter", err)
	}
	return writeRows(pw, t, o)
}

// WriteFile exports t to a local Parquet file at path.
func WriteFile(path string, t *arrow.Table, opts ...Option) error {
	o := buildOptions(opts)
	schema, err := SchemaJSON(t.Schema())
	if err != nil {
		return err
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return lerrors.WriteFile(path, 0, err)
	}
	pw, err := writer.NewJSONWriter(schema, fw, o.parallelism)
	if err != nil {
		fw.Close()
		return exportError("error in NewJSONWriter", err)
	}
	if err := writeRows(pw, t, o); err != nil {
		fw.Close()
		return err
	}
	if err := fw.Close(); err != nil {
		return lerrors.WriteFile(path, 0, err)
	}
	return nil
}

func writeRows(pw *writer.JSONWriter, t *arrow.Table, o options) error {
	pw.CompressionType = o.codec
	names := fieldNames(t.Schema())

	for r := 0; r < t.NumRows(); r++ {
		row := make(map[string]any, t.NumCols())
		for c := 0; c < t.NumCols(); c++ {
			col := t.ColumnAt(c)
			if v, ok := col.Get(r); ok {
				row[names[c]] = rowValue(col.DataType(), v)
			} else {
				row[names[c]] = nil
			}
		}
		b, err := json.Marshal(row)
		if err != nil {
			return exportError("error in json.Marshal of row", err)
		}
		if err := pw.Write(string(b)); err != nil {
			return exportError(fmt.Sprintf("error in pw.Write for row %d", r), err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return exportError("error in pw.WriteStop", err)
	}
	return nil
}

// rowValue renders scalars as strings: parquet-go parses each leaf with
// fmt, and strings avoid float64 rounding of wide integers.
func rowValue(dt arrow.DataType, v any) any {
	switch x := v.(type) {
	case []any:
		elem := arrow.ElemType(dt)
		out := make([]any, len(x))
		for i, e := range x {
			if e != nil {
				out[i] = rowValue(elem, e)
			}
		}
		return out
	case decimal.Decimal:
		return x.StringFixed(int32(dt.(*arrow.DecimalType).Scale()))
	case []byte:
		return base64.StdEncoding.EncodeToString(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case arrow.Date:
		return strconv.FormatInt(int64(x), 10)
	case arrow.Time:
		return strconv.FormatInt(int64(x), 10)
	case arrow.Datetime:
		return strconv.FormatInt(int64(x), 10)
	case arrow.Duration:
		return strconv.FormatInt(int64(x), 10)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

func exportError(msg string, err error) error {
	return lerrors.New(lerrors.ErrIO).
		Op("parquet_export").
		Context("message", msg).
		Wrap(err).
		Build()
}
