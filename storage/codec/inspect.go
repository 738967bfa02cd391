package codec

import (
	"github.com/google/uuid"

	"github.com/wzqhbustb/colfile/storage/arrow"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
	"github.com/wzqhbustb/colfile/storage/format"
)

// Info describes an encoded table without its column data.
type Info struct {
	Header    *format.Header
	Schema    *arrow.Schema
	ContentID uuid.UUID
	DataBytes int // stored size of the data block
	FileBytes int
}

// Inspect reads the header, schema and footer of data and verifies the
// checksum. Column data is not decoded.
func Inspect(data []byte, opts ...Option) (*Info, error) {
	o := buildOptions(opts)
	r := format.NewReader(data, 0)

	h, err := format.ReadHeader(r)
	if err != nil {
		return nil, err
	}
	schema, err := format.ReadSchema(r, h.NumColumns, o.maxDepth)
	if err != nil {
		return nil, err
	}

	dataStart := int(r.Offset())
	if len(data)-dataStart < format.FooterSize {
		return nil, lerrors.Truncated("inspect", r.Offset(), format.FooterSize, len(data)-dataStart)
	}
	bodyEnd := len(data) - format.FooterSize
	footer, err := format.ReadFooter(format.NewReader(data[bodyEnd:], int64(bodyEnd)))
	if err != nil {
		return nil, err
	}
	if err := footer.Verify(data[:bodyEnd]); err != nil {
		return nil, err
	}

	return &Info{
		Header:    h,
		Schema:    schema,
		ContentID: footer.ContentID,
		DataBytes: bodyEnd - dataStart,
		FileBytes: len(data),
	}, nil
}
