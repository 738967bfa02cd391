// Package cli implements the colfile command line.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog"

	"github.com/wzqhbustb/colfile/internal/config"
	"github.com/wzqhbustb/colfile/internal/logger"
	"github.com/wzqhbustb/colfile/storage/blob"
	"github.com/wzqhbustb/colfile/storage/codec"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// env is what a command sees of the process.
type env struct {
	ctx    context.Context
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	logger zerolog.Logger
}

type command struct {
	summary string
	run     func(e *env, args []string) error
}

var commands = map[string]command{
	"encode":         {"encode a JSON table into the binary form", runEncode},
	"decode":         {"decode the binary form into a JSON table", runDecode},
	"schema":         {"print header, schema and content id", runSchema},
	"export-parquet": {"export an encoded table as a Parquet file", runExportParquet},
	"smoke":          {"write, read back and check the sample table", runSmoke},
	"serve":          {"serve the HTTP API", runServe},
	"bench":          {"time encode and decode across sizes and levels", runBench},
}

// usageError marks mistakes in how the command was invoked.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// Run executes args (without the program name) and returns the exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("colfile", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "YAML config file")
	logLevel := global.String("log-level", "", "log level (trace, debug, info, warn, error)")
	pretty := global.Bool("pretty", false, "human readable logs")
	global.Usage = func() { printUsage(stderr, global) }

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}
	rest := global.Args()
	if len(rest) == 0 {
		printUsage(stderr, global)
		return ExitUsage
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		printUsage(stderr, global)
		return ExitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s: %v\n", lerrors.ErrInvalidArgument, err)
		return ExitError
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *pretty {
		cfg.Log.Pretty = true
	}
	log := logger.New(stderr, logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	e := &env{
		ctx:    log.WithContext(ctx),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		cfg:    cfg,
		logger: log.With().Str("command", rest[0]).Logger(),
	}
	err = cmd.run(e, rest[1:])

	var uerr *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, flag.ErrHelp):
		return ExitOK
	case errors.As(err, &uerr):
		fmt.Fprintf(stderr, "usage error: %s\n", uerr.msg)
		return ExitUsage
	default:
		fmt.Fprintf(stderr, "error: %s: %v\n", lerrors.GetCode(err), err)
		return ExitError
	}
}

func printUsage(w io.Writer, global *flag.FlagSet) {
	fmt.Fprintln(w, "usage: colfile [global flags] <command> [flags]")
	fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-15s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w, "\nglobal flags:")
	global.PrintDefaults()
}

// newFlagSet returns a flag set whose parse errors become usage errors.
func newFlagSet(e *env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usagef("%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return usagef("%s: unexpected argument %q", fs.Name(), fs.Arg(0))
	}
	return nil
}

func (e *env) s3Config() blob.S3Config {
	return blob.S3Config{
		Region:     e.cfg.S3.Region,
		Endpoint:   e.cfg.S3.Endpoint,
		MaxRetries: e.cfg.S3.MaxRetries,
	}
}

func (e *env) codecOptions(extra ...codec.Option) []codec.Option {
	opts := []codec.Option{
		codec.WithMaxNestingDepth(e.cfg.Codec.MaxNestingDepth),
		codec.WithCompression(e.cfg.Codec.CompressionLevel),
		codec.WithLogger(e.logger),
	}
	return append(opts, extra...)
}

// readInput reads "-" from stdin and anything else through blob.
func (e *env) readInput(uri string) ([]byte, error) {
	if uri == "-" {
		data, err := io.ReadAll(e.stdin)
		if err != nil {
			return nil, lerrors.IO("read_stdin", "-", err)
		}
		return data, nil
	}
	return blob.ReadAll(e.ctx, uri, e.s3Config())
}

// writeOutput writes "-" to stdout and anything else through blob.
func (e *env) writeOutput(uri string, data []byte) error {
	if uri == "-" {
		if _, err := e.stdout.Write(data); err != nil {
			return lerrors.IO("write_stdout", "-", err)
		}
		return nil
	}
	return blob.WriteAll(e.ctx, uri, data, e.s3Config())
}
