package bench

import (
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	lerrors "github.com/wzqhbustb/colfile/storage/errors"
	"github.com/wzqhbustb/colfile/storage/format"
)

// Result is one measured case.
type Result struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`

	// Op is "encode" or "decode".
	Op      string `json:"op"`
	Rows    int    `json:"rows"`
	Pattern string `json:"pattern"`
	Level   int    `json:"level"`

	// Throughput
	OpsPerSec   float64 `json:"ops_per_sec"`
	NsPerOp     int64   `json:"ns_per_op"`
	BytesPerSec float64 `json:"bytes_per_sec"` // over RawBytes

	// Size
	RawBytes         int64   `json:"raw_bytes"`     // uncompressed encoding
	EncodedBytes     int64   `json:"encoded_bytes"` // at Level
	CompressionRatio float64 `json:"compression_ratio"`

	// Environment
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	CPU       string `json:"cpu"`
}

// ResultSet is the output of one Runner.Run.
type ResultSet struct {
	Timestamp     time.Time `json:"timestamp"`
	FormatVersion uint32    `json:"format_version"`
	Results       []*Result `json:"results"`
}

func NewResultSet() *ResultSet {
	return &ResultSet{
		Timestamp:     time.Now(),
		FormatVersion: format.CurrentVersion.Version,
		Results:       make([]*Result, 0),
	}
}

func (rs *ResultSet) Add(r *Result) {
	rs.Results = append(rs.Results, r)
}

// Marshal renders the set as indented JSON.
func (rs *ResultSet) Marshal() ([]byte, error) {
	return json.MarshalIndent(rs, "", "  ")
}

// ParseResultSet reads a set written by Marshal.
func ParseResultSet(data []byte) (*ResultSet, error) {
	var rs ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, lerrors.New(lerrors.ErrInvalidArgument).
			Op("parse_bench_results").
			Wrap(err).
			Build()
	}
	return &rs, nil
}

// Compare reports how rs moved relative to baseline.
func (rs *ResultSet) Compare(baseline *ResultSet) *ComparisonReport {
	return CompareResults(baseline, rs)
}

func newResult(op string, c benchCase, perOp time.Duration, raw, encoded int) *Result {
	r := &Result{
		Name:         fmt.Sprintf("%s/rows=%d/pattern=%s/level=%d", op, c.rows, c.pattern, c.level),
		Timestamp:    time.Now(),
		Op:           op,
		Rows:         c.rows,
		Pattern:      c.pattern,
		Level:        c.level,
		NsPerOp:      perOp.Nanoseconds(),
		RawBytes:     int64(raw),
		EncodedBytes: int64(encoded),
		GoVersion:    runtime.Version(),
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		CPU:          fmt.Sprintf("%d cores", runtime.NumCPU()),
	}
	if perOp > 0 {
		r.OpsPerSec = float64(time.Second) / float64(perOp)
		r.BytesPerSec = float64(raw) * r.OpsPerSec
	}
	if encoded > 0 {
		r.CompressionRatio = float64(raw) / float64(encoded)
	}
	return r
}
