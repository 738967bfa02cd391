package codec

import (
	"github.com/wzqhbustb/colfile/storage/arrow"
	"github.com/wzqhbustb/colfile/storage/encoding"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
	"github.com/wzqhbustb/colfile/storage/format"
)

// Encoder serializes tables. It is safe for concurrent use on distinct tables.
type Encoder struct {
	opts options
	zstd encoding.Encoder
}

// NewEncoder creates an encoder.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{opts: buildOptions(opts)}
	if e.opts.level > 0 {
		e.zstd = encoding.NewZstdEncoder(e.opts.level)
	}
	return e
}

// Encode serializes t with default options.
func Encode(t *arrow.Table, opts ...Option) ([]byte, error) {
	return NewEncoder(opts...).Encode(t)
}

// Encode writes header, schema, data block and footer. The output depends
// only on the table contents and the encoder options.
func (e *Encoder) Encode(t *arrow.Table) ([]byte, error) {
	if t == nil {
		return nil, lerrors.InvalidArg("encode", "nil table")
	}
	for i := 0; i < t.NumCols(); i++ {
		if n := t.ColumnAt(i).Len(); n != t.NumRows() {
			return nil, lerrors.RowCountMismatch("encode", t.Name(i), t.NumRows(), n)
		}
		if err := arrow.Validate(t.ColumnAt(i).DataType(), e.opts.maxDepth); err != nil {
			return nil, lerrors.New(lerrors.GetCode(err)).
				Op("encode").
				Context("column", t.Name(i)).
				Wrap(err).
				Build()
		}
	}

	data := format.NewWriter(0)
	for i := 0; i < t.NumCols(); i++ {
		writeColumn(data, t.ColumnAt(i))
	}

	header := format.NewHeader(uint64(t.NumRows()), uint32(t.NumCols()))
	if e.zstd != nil {
		header.SetFlag(format.FlagCompressed)
	}

	w := format.NewWriter(format.HeaderSize + data.Len() + format.FooterSize + 64*t.NumCols())
	header.WriteTo(w)
	format.WriteSchema(w, t.Schema())
	if e.zstd != nil {
		frame := e.zstd.Encode(data.Bytes())
		w.PutU64(uint64(data.Len()))
		w.PutU64(uint64(len(frame)))
		w.PutBytes(frame)
	} else {
		w.PutBytes(data.Bytes())
	}

	footer := format.NewFooter(w.Bytes())
	footer.WriteTo(w)

	compression := "none"
	if e.zstd != nil {
		compression = e.zstd.Name()
	}
	e.opts.logger.Debug().
		Int("rows", t.NumRows()).
		Int("columns", t.NumCols()).
		Int("data_bytes", data.Len()).
		Int("file_bytes", w.Len()).
		Str("compression", compression).
		Str("content_id", footer.ContentID.String()).
		Msg("table encoded")
	return w.Bytes(), nil
}

// writeColumn emits validity and value region for the column and then for
// each nested child. A column has at most one child, so the walk is a loop.
func writeColumn(w *format.Writer, col *arrow.ColumnBuffer) {
	for c := col; c != nil; c = c.Child() {
		w.PutBytes(c.Validity().Bytes())
		switch c.Layout().Kind {
		case arrow.LayoutBits, arrow.LayoutFixed:
			w.PutBytes(c.Values())
		case arrow.LayoutVarBinary:
			w.PutU32s(c.Offsets())
			w.PutBytes(c.Values())
		case arrow.LayoutList:
			w.PutU32s(c.Offsets())
		case arrow.LayoutNone, arrow.LayoutFixedList:
		}
	}
}
