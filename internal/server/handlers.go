package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wzqhbustb/colfile/storage/codec"
	"github.com/wzqhbustb/colfile/storage/jsontab"
)

const contentTypeTable = "application/vnd.colfile.table"

type EncodeParams struct {
	Compression int `validate:"gte=0,lte=9"`
}

// SchemaResponse describes an encoded table without its data.
type SchemaResponse struct {
	Version   uint32             `json:"version"`
	Flags     string             `json:"flags"`
	Rows      uint64             `json:"rows"`
	ContentID string             `json:"content_id"`
	DataBytes int                `json:"data_bytes"`
	Columns   []jsontab.FieldDoc `json:"columns"`
}

func (s *HTTPServer) readBody(c *CustomContext) ([]byte, error) {
	defer c.Request().Body.Close()
	return io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, s.opts.MaxBodyBytes))
}

func (s *HTTPServer) codecOptions(c *CustomContext) []codec.Option {
	return []codec.Option{
		codec.WithMaxNestingDepth(s.opts.MaxNestingDepth),
		codec.WithLogger(*zerolog.Ctx(c.Request().Context())),
	}
}

// EncodeHandler turns a JSON table into the binary form.
func (s *HTTPServer) EncodeHandler(c *CustomContext) error {
	params := EncodeParams{Compression: s.opts.CompressionLevel}
	err := echo.QueryParamsBinder(c).Int("compression", &params.Compression).BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&params); err != nil {
		return err
	}

	body, err := s.readBody(c)
	if err != nil {
		return c.Fail(err)
	}
	tbl, err := jsontab.Unmarshal(body)
	if err != nil {
		return c.Fail(err)
	}
	data, err := codec.Encode(tbl, append(s.codecOptions(c), codec.WithCompression(params.Compression))...)
	if err != nil {
		return c.Fail(err)
	}
	c.Response().Header().Set("X-Colfile-Rows", strconv.Itoa(tbl.NumRows()))
	return c.Blob(http.StatusOK, contentTypeTable, data)
}

// DecodeHandler turns the binary form into a JSON table.
func (s *HTTPServer) DecodeHandler(c *CustomContext) error {
	body, err := s.readBody(c)
	if err != nil {
		return c.Fail(err)
	}
	tbl, err := codec.Decode(body, s.codecOptions(c)...)
	if err != nil {
		return c.Fail(err)
	}
	return c.JSON(http.StatusOK, jsontab.ToDocument(tbl))
}

// SchemaHandler reports header, schema and content id of the binary form.
func (s *HTTPServer) SchemaHandler(c *CustomContext) error {
	body, err := s.readBody(c)
	if err != nil {
		return c.Fail(err)
	}
	info, err := codec.Inspect(body, codec.WithMaxNestingDepth(s.opts.MaxNestingDepth))
	if err != nil {
		return c.Fail(err)
	}
	return c.JSON(http.StatusOK, SchemaResponse{
		Version:   info.Header.Version,
		Flags:     info.Header.Flags.String(),
		Rows:      info.Header.NumRows,
		ContentID: info.ContentID.String(),
		DataBytes: info.DataBytes,
		Columns:   jsontab.SchemaFields(info.Schema),
	})
}
