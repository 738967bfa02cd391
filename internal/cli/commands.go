package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/shopspring/decimal"

	"github.com/wzqhbustb/colfile/internal/server"
	"github.com/wzqhbustb/colfile/storage/arrow"
	"github.com/wzqhbustb/colfile/storage/codec"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
	"github.com/wzqhbustb/colfile/storage/format"
	"github.com/wzqhbustb/colfile/storage/jsontab"
	"github.com/wzqhbustb/colfile/storage/parquetx"
)

// defaultName returns a K-sorted file name, so successive outputs list in
// creation order.
func defaultName(ext string) string {
	return ksuid.New().String() + ext
}

func runEncode(e *env, args []string) error {
	fs := newFlagSet(e, "encode")
	in := fs.String("in", "-", "JSON table to read, - for stdin")
	out := fs.String("out", "", "destination path or s3://bucket/key (default <ksuid>.ctbl)")
	level := fs.Int("compression", e.cfg.Codec.CompressionLevel, "zstd level 1-9, 0 for none")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *level < 0 || *level > 9 {
		return usagef("encode: compression must be between 0 and 9")
	}
	if *out == "" {
		*out = defaultName(".ctbl")
	}

	doc, err := e.readInput(*in)
	if err != nil {
		return err
	}
	tbl, err := jsontab.Unmarshal(doc)
	if err != nil {
		return err
	}
	data, err := codec.Encode(tbl, e.codecOptions(codec.WithCompression(*level))...)
	if err != nil {
		return err
	}
	if err := e.writeOutput(*out, data); err != nil {
		return err
	}

	e.logger.Debug().Str("out", *out).Int("rows", tbl.NumRows()).Int("bytes", len(data)).Msg("encoded")
	if *out != "-" {
		fmt.Fprintln(e.stdout, *out)
	}
	return nil
}

func runDecode(e *env, args []string) error {
	fs := newFlagSet(e, "decode")
	in := fs.String("in", "", "encoded table path or s3://bucket/key, - for stdin")
	out := fs.String("out", "-", "JSON destination, - for stdout")
	indent := fs.Bool("indent", false, "indent the JSON output")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *in == "" {
		return usagef("decode: -in is required")
	}

	data, err := e.readInput(*in)
	if err != nil {
		return err
	}
	tbl, err := codec.Decode(data, e.codecOptions()...)
	if err != nil {
		return err
	}
	doc, err := jsontab.Marshal(tbl)
	if err != nil {
		return err
	}
	if *indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, doc, "", "  "); err != nil {
			return err
		}
		doc = buf.Bytes()
	}
	return e.writeOutput(*out, append(doc, '\n'))
}

func runSchema(e *env, args []string) error {
	fs := newFlagSet(e, "schema")
	in := fs.String("in", "", "encoded table path or s3://bucket/key, - for stdin")
	asJSON := fs.Bool("json", false, "print as JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *in == "" {
		return usagef("schema: -in is required")
	}

	data, err := e.readInput(*in)
	if err != nil {
		return err
	}
	info, err := codec.Inspect(data, codec.WithMaxNestingDepth(e.cfg.Codec.MaxNestingDepth))
	if err != nil {
		return err
	}

	if *asJSON {
		out, err := json.MarshalIndent(server.SchemaResponse{
			Version:   info.Header.Version,
			Flags:     info.Header.Flags.String(),
			Rows:      info.Header.NumRows,
			ContentID: info.ContentID.String(),
			DataBytes: info.DataBytes,
			Columns:   jsontab.SchemaFields(info.Schema),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(e.stdout, string(out))
		return nil
	}

	policy, err := format.PolicyFor(info.Header.Version)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "version:    %s\n", policy)
	fmt.Fprintf(e.stdout, "features:   %s\n", policy.Describe())
	fmt.Fprintf(e.stdout, "flags:      %s\n", info.Header.Flags)
	fmt.Fprintf(e.stdout, "rows:       %d\n", info.Header.NumRows)
	fmt.Fprintf(e.stdout, "content_id: %s\n", info.ContentID)
	fmt.Fprintf(e.stdout, "columns:\n")
	for _, f := range info.Schema.Fields() {
		fmt.Fprintf(e.stdout, "  %s\n", f)
	}
	return nil
}

func runExportParquet(e *env, args []string) error {
	fs := newFlagSet(e, "export-parquet")
	in := fs.String("in", "", "encoded table path or s3://bucket/key, - for stdin")
	out := fs.String("out", "", "Parquet destination path or s3://bucket/key (default <ksuid>.parquet)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *in == "" {
		return usagef("export-parquet: -in is required")
	}
	if *out == "" {
		*out = defaultName(".parquet")
	}

	data, err := e.readInput(*in)
	if err != nil {
		return err
	}
	tbl, err := codec.Decode(data, e.codecOptions()...)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := parquetx.Write(&buf, tbl); err != nil {
		return err
	}
	if err := e.writeOutput(*out, buf.Bytes()); err != nil {
		return err
	}
	if *out != "-" {
		fmt.Fprintln(e.stdout, *out)
	}
	return nil
}

// smokeTable is the two-column sample: mycol Int64 and decimal Decimal(9,3).
func smokeTable() (*arrow.Table, error) {
	ints, err := arrow.NewColumnFromValues(arrow.PrimInt64(), []any{int64(1), int64(2), int64(3)})
	if err != nil {
		return nil, err
	}
	decs, err := arrow.NewColumnBuffer(arrow.DecimalOf(9, 3), 3)
	if err != nil {
		return nil, err
	}
	for i, s := range []string{"1.0", "2.0", "3.0"} {
		if err := decs.Set(i, decimal.RequireFromString(s)); err != nil {
			return nil, err
		}
	}

	tbl := arrow.NewTable()
	if err := tbl.AddColumn("mycol", ints); err != nil {
		return nil, err
	}
	if err := tbl.AddColumn("decimal", decs); err != nil {
		return nil, err
	}
	return tbl, nil
}

func runSmoke(e *env, args []string) error {
	fs := newFlagSet(e, "smoke")
	dir := fs.String("dir", "", "output directory (default: a temporary directory, removed afterwards)")
	withParquet := fs.Bool("parquet", false, "also write smoke.parquet")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *dir == "" {
		tmp, err := os.MkdirTemp("", "colfile-smoke-")
		if err != nil {
			return lerrors.WriteFile(os.TempDir(), 0, err)
		}
		defer os.RemoveAll(tmp)
		*dir = tmp
	}

	tbl, err := smokeTable()
	if err != nil {
		return err
	}
	data, err := codec.Encode(tbl, e.codecOptions()...)
	if err != nil {
		return err
	}
	path := filepath.Join(*dir, "smoke.ctbl")
	if err := e.writeOutput(path, data); err != nil {
		return err
	}
	if *withParquet {
		if err := parquetx.WriteFile(filepath.Join(*dir, "smoke.parquet"), tbl); err != nil {
			return err
		}
	}

	raw, err := e.readInput(path)
	if err != nil {
		return err
	}
	back, err := codec.Decode(raw, e.codecOptions()...)
	if err != nil {
		return err
	}

	want := map[string]arrow.DataType{"mycol": arrow.PrimInt64(), "decimal": arrow.DecimalOf(9, 3)}
	for name, dt := range want {
		col, err := back.ColumnByName(name)
		if err != nil {
			return err
		}
		if !arrow.TypeEqual(col.DataType(), dt) {
			return lerrors.TypeMismatch("smoke", dt.Name(), col.DataType().Name())
		}
	}
	if !back.Equal(tbl) {
		return lerrors.Corrupted("smoke", 0, "table read back differs from table written")
	}

	fmt.Fprint(e.stdout, back.String())
	fmt.Fprintln(e.stdout, "ok "+strconv.Itoa(back.NumRows())+" rows")
	return nil
}

func runServe(e *env, args []string) error {
	fs := newFlagSet(e, "serve")
	host := fs.String("host", "", "listen host")
	port := fs.Int("port", e.cfg.Server.Port, "listen port")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	srv := server.New(server.Options{
		MaxBodyBytes:     e.cfg.Server.MaxBodyBytes,
		MaxNestingDepth:  e.cfg.Codec.MaxNestingDepth,
		CompressionLevel: e.cfg.Codec.CompressionLevel,
		Logger:           e.logger,
	})
	listener, err := net.Listen("tcp", net.JoinHostPort(*host, strconv.Itoa(*port)))
	if err != nil {
		return lerrors.New(lerrors.ErrIO).Op("listen").Wrap(err).Build()
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(listener) }()

	select {
	case err := <-errc:
		return err
	case <-e.ctx.Done():
	}

	timeout := e.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	e.logger.Info().Msg("shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return <-errc
}
