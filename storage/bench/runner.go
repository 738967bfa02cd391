package bench

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/wzqhbustb/colfile/storage/arrow"
	"github.com/wzqhbustb/colfile/storage/codec"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

type benchCase struct {
	rows    int
	pattern string
	level   int
}

// Runner times encode and decode over the cases of a Config.
type Runner struct {
	cfg    Config
	logger zerolog.Logger
}

func NewRunner(cfg Config, logger zerolog.Logger) (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, logger: logger}, nil
}

func (r *Runner) cases() []benchCase {
	var out []benchCase
	for _, n := range r.cfg.Rows {
		for _, p := range r.cfg.Patterns {
			for _, l := range r.cfg.CompressionLevels {
				out = append(out, benchCase{rows: n, pattern: p, level: l})
			}
		}
	}
	return out
}

// Run measures every case in order. It stops between cases when ctx is
// done. Each case also checks that the decoded table equals the input.
func (r *Runner) Run(ctx context.Context) (*ResultSet, error) {
	rs := NewResultSet()
	tables := make(map[benchCase]*arrow.Table)
	plain := codec.NewEncoder()

	for _, c := range r.cases() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key := benchCase{rows: c.rows, pattern: c.pattern}
		tbl, ok := tables[key]
		if !ok {
			var err error
			if tbl, err = GenerateTable(c.rows, c.pattern, r.cfg.Seed); err != nil {
				return nil, err
			}
			tables[key] = tbl
		}

		raw, err := plain.Encode(tbl)
		if err != nil {
			return nil, err
		}
		enc := codec.NewEncoder(codec.WithCompression(c.level))
		dec := codec.NewDecoder()

		var data []byte
		encodeTime, err := measure(r.cfg.Iterations, func() error {
			data, err = enc.Encode(tbl)
			return err
		})
		if err != nil {
			return nil, err
		}

		var back *arrow.Table
		decodeTime, err := measure(r.cfg.Iterations, func() error {
			back, err = dec.Decode(data)
			return err
		})
		if err != nil {
			return nil, err
		}
		if !back.Equal(tbl) {
			return nil, lerrors.Corrupted("bench_round_trip", 0, "decoded table differs from input")
		}

		encRes := newResult("encode", c, encodeTime, len(raw), len(data))
		decRes := newResult("decode", c, decodeTime, len(raw), len(data))
		rs.Add(encRes)
		rs.Add(decRes)

		r.logger.Debug().
			Str("case", encRes.Name).
			Int64("encode_ns", encRes.NsPerOp).
			Int64("decode_ns", decRes.NsPerOp).
			Float64("ratio", encRes.CompressionRatio).
			Msg("bench case done")
	}
	return rs, nil
}

// measure returns the mean wall time of iterations calls to fn.
func measure(iterations int, fn func() error) (time.Duration, error) {
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if err := fn(); err != nil {
			return 0, err
		}
	}
	return time.Since(start) / time.Duration(iterations), nil
}
