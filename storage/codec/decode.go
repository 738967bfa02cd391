package codec

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wzqhbustb/colfile/storage/arrow"
	"github.com/wzqhbustb/colfile/storage/encoding"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
	"github.com/wzqhbustb/colfile/storage/format"
)

// decodeState is a step of the decode state machine. Transitions only move
// forward; any failure lands in stateFailed.
type decodeState int

const (
	stateReadHeader decodeState = iota
	stateReadSchema
	stateReadColumnData
	stateReadFooter
	stateDone
	stateFailed
)

func (s decodeState) String() string {
	switch s {
	case stateReadHeader:
		return "ReadHeader"
	case stateReadSchema:
		return "ReadSchema"
	case stateReadColumnData:
		return "ReadColumnData"
	case stateReadFooter:
		return "ReadFooter"
	case stateDone:
		return "Done"
	case stateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("decodeState(%d)", int(s))
	}
}

// Decoder parses encoded tables. It is safe for concurrent use.
type Decoder struct {
	opts options
	zstd encoding.Decoder
}

// NewDecoder creates a decoder.
func NewDecoder(opts ...Option) *Decoder {
	return &Decoder{
		opts: buildOptions(opts),
		zstd: encoding.NewZstdDecoder(),
	}
}

// Decode parses data with default options.
func Decode(data []byte, opts ...Option) (*arrow.Table, error) {
	return NewDecoder(opts...).Decode(data)
}

// Decode reconstructs the table encoded in data. The input is consumed
// strictly front to back; a prefix of a valid file always fails with
// TruncatedInput.
func (d *Decoder) Decode(data []byte) (*arrow.Table, error) {
	run := &decodeRun{
		dec:   d,
		data:  data,
		r:     format.NewReader(data, 0),
		state: stateReadHeader,
		log:   d.opts.logger.With().Str("component", "decoder").Logger(),
	}
	return run.execute()
}

// decodeRun holds the state of a single Decode call.
type decodeRun struct {
	dec   *Decoder
	data  []byte
	r     *format.Reader
	state decodeState
	log   zerolog.Logger

	header  *format.Header
	schema  *arrow.Schema
	columns []*arrow.ColumnBuffer
	footer  *format.Footer
	err     error
}

func (d *decodeRun) execute() (*arrow.Table, error) {
	for {
		switch d.state {
		case stateReadHeader:
			d.step(d.readHeader, stateReadSchema)
		case stateReadSchema:
			d.step(d.readSchema, stateReadColumnData)
		case stateReadColumnData:
			d.step(d.readColumnData, stateReadFooter)
		case stateReadFooter:
			d.step(d.readFooter, stateDone)
		case stateDone:
			return d.table()
		case stateFailed:
			return nil, d.err
		}
	}
}

func (d *decodeRun) step(fn func() error, next decodeState) {
	if err := fn(); err != nil {
		d.log.Debug().
			Err(err).
			Stringer("state", d.state).
			Int64("offset", d.r.Offset()).
			Msg("decode failed")
		d.err = err
		d.state = stateFailed
		return
	}
	d.log.Trace().
		Stringer("from", d.state).
		Stringer("to", next).
		Int64("offset", d.r.Offset()).
		Msg("decode transition")
	d.state = next
}

func (d *decodeRun) readHeader() error {
	h, err := format.ReadHeader(d.r)
	if err != nil {
		return err
	}
	if h.NumColumns == 0 && h.NumRows != 0 {
		return lerrors.Corrupted("decode_header", 12,
			fmt.Sprintf("%d rows declared with no columns", h.NumRows))
	}
	d.header = h
	return nil
}

func (d *decodeRun) readSchema() error {
	s, err := format.ReadSchema(d.r, d.header.NumColumns, d.dec.opts.maxDepth)
	if err != nil {
		return err
	}
	d.schema = s
	return nil
}

func (d *decodeRun) readColumnData() error {
	body, err := d.dataBlock()
	if err != nil {
		return err
	}
	body.SetOp("decode_column")

	// Every row costs at least one validity bit in the first column.
	if d.header.NumColumns > 0 && d.header.NumRows > uint64(body.Remaining())*8 {
		return lerrors.Truncated("decode_column", body.Offset(),
			arrow.BitmapBytes(int(min(d.header.NumRows, uint64(1)<<40))), body.Remaining())
	}
	rows := int(d.header.NumRows)

	d.columns = make([]*arrow.ColumnBuffer, 0, d.schema.NumFields())
	for _, f := range d.schema.Fields() {
		col, err := readColumn(body, f.Type, rows)
		if err != nil {
			return lerrors.New(lerrors.GetCode(err)).
				Op("decode_column").
				Offset(body.Offset()).
				Context("column", f.Name).
				Severity(lerrors.SeverityFatal).
				Wrap(err).
				Build()
		}
		d.columns = append(d.columns, col)
	}

	if body != d.r && body.Remaining() != 0 {
		return lerrors.Corrupted("decode_column", body.Offset(),
			fmt.Sprintf("%d unread bytes in data block", body.Remaining()))
	}
	return nil
}

// dataBlock returns a reader over the column data, decompressing it first
// when the header says so.
func (d *decodeRun) dataBlock() (*format.Reader, error) {
	if !d.header.HasFlag(format.FlagCompressed) {
		return d.r, nil
	}
	d.r.SetOp("decode_data_block")
	rawLen, err := d.r.U64()
	if err != nil {
		return nil, err
	}
	storedLen, err := d.r.U64()
	if err != nil {
		return nil, err
	}
	if storedLen > uint64(d.r.Remaining()) {
		return nil, lerrors.Truncated("decode_data_block", d.r.Offset(),
			int(min(storedLen, uint64(1)<<40)), d.r.Remaining())
	}
	start := d.r.Offset()
	frame, err := d.r.Bytes(int(storedLen))
	if err != nil {
		return nil, err
	}
	raw, err := d.dec.zstd.Decode(frame, rawLen)
	if err != nil {
		return nil, lerrors.New(lerrors.GetCode(err)).
			Op("decode_data_block").
			Offset(start).
			Severity(lerrors.SeverityFatal).
			Wrap(err).
			Build()
	}
	d.log.Trace().
		Uint64("raw_bytes", rawLen).
		Uint64("stored_bytes", storedLen).
		Msg("data block decompressed")
	return format.NewReader(raw, start), nil
}

func (d *decodeRun) readFooter() error {
	bodyEnd := d.r.Offset()
	f, err := format.ReadFooter(d.r)
	if err != nil {
		return err
	}
	if d.r.Remaining() != 0 {
		return lerrors.Corrupted("decode_footer", d.r.Offset(),
			fmt.Sprintf("%d trailing bytes after footer", d.r.Remaining()))
	}
	if err := f.Verify(d.data[:bodyEnd]); err != nil {
		return err
	}
	d.footer = f
	return nil
}

func (d *decodeRun) table() (*arrow.Table, error) {
	t := arrow.NewTable()
	for i, col := range d.columns {
		if err := t.AddColumn(d.schema.Field(i).Name, col); err != nil {
			return nil, lerrors.New(lerrors.ErrCorruptedFile).
				Op("decode_table").
				Severity(lerrors.SeverityFatal).
				Wrap(err).
				Build()
		}
	}
	d.log.Debug().
		Int("rows", t.NumRows()).
		Int("columns", t.NumCols()).
		Str("content_id", d.footer.ContentID.String()).
		Msg("table decoded")
	return t, nil
}

// columnLevel is one column of a nested chain, read but not yet assembled.
type columnLevel struct {
	dt     arrow.DataType
	n      int
	offset int64
	parts  arrow.ColumnParts
}

// readColumn reads a column and its nested children. Regions are read top
// down, since a child's row count comes from its parent, and assembled
// bottom up, since a parent needs its finished child.
func readColumn(r *format.Reader, dt arrow.DataType, n int) (*arrow.ColumnBuffer, error) {
	var levels []columnLevel
	for cur := dt; cur != nil; cur = arrow.ElemType(cur) {
		lv := columnLevel{dt: cur, n: n, offset: r.Offset()}

		validity, err := r.Bytes(arrow.BitmapBytes(n))
		if err != nil {
			return nil, err
		}
		lv.parts.Validity = validity

		layout := arrow.Layout(cur)
		next := 0
		switch layout.Kind {
		case arrow.LayoutNone:
		case arrow.LayoutBits:
			if lv.parts.Values, err = r.Bytes(arrow.BitmapBytes(n)); err != nil {
				return nil, err
			}
		case arrow.LayoutFixed:
			if n > r.Remaining()/layout.ByteWidth {
				return nil, lerrors.Truncated("decode_column", r.Offset(),
					n*layout.ByteWidth, r.Remaining())
			}
			if lv.parts.Values, err = r.Bytes(n * layout.ByteWidth); err != nil {
				return nil, err
			}
		case arrow.LayoutVarBinary:
			if lv.parts.Offsets, err = r.U32s(n + 1); err != nil {
				return nil, err
			}
			if lv.parts.Values, err = r.Bytes(int(lv.parts.Offsets[n])); err != nil {
				return nil, err
			}
		case arrow.LayoutList:
			if lv.parts.Offsets, err = r.U32s(n + 1); err != nil {
				return nil, err
			}
			next = int(lv.parts.Offsets[n])
		case arrow.LayoutFixedList:
			size := layout.ListSize
			// Each child row needs at least one validity bit.
			if size > 0 && n > (r.Remaining()*8)/size {
				return nil, lerrors.Truncated("decode_column", r.Offset(),
					arrow.BitmapBytes(min(n, 1<<40/size)*size), r.Remaining())
			}
			next = n * size
		}
		levels = append(levels, lv)
		n = next
	}

	var child *arrow.ColumnBuffer
	for i := len(levels) - 1; i >= 0; i-- {
		lv := levels[i]
		lv.parts.Child = child
		col, err := arrow.FromParts(lv.dt, lv.n, lv.parts)
		if err != nil {
			return nil, lerrors.New(lerrors.ErrCorruptedFile).
				Op("decode_column").
				Offset(lv.offset).
				Context("data_type", lv.dt.Name()).
				Severity(lerrors.SeverityFatal).
				Wrap(err).
				Build()
		}
		child = col
	}
	return child, nil
}
