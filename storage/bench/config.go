package bench

import (
	"fmt"

	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// Data patterns understood by GenerateTable.
const (
	PatternRandom     = "random"
	PatternSequential = "sequential"
	PatternRepeated   = "repeated"
)

// Config selects the cases a Runner measures. Every combination of
// Rows, Patterns and CompressionLevels is one case.
type Config struct {
	Rows              []int    // table sizes, e.g. [1000, 10000, 100000]
	Patterns          []string // value distributions
	CompressionLevels []int    // 0 disables compression
	Iterations        int      // timed repetitions per case
	Seed              int64
}

// DefaultConfig returns the configuration used by `colfile bench`.
func DefaultConfig() Config {
	return Config{
		Rows:              []int{1000, 10000, 100000},
		Patterns:          []string{PatternRandom, PatternSequential, PatternRepeated},
		CompressionLevels: []int{0, 1, 3, 9},
		Iterations:        5,
		Seed:              1,
	}
}

func (c Config) validate() error {
	if c.Iterations <= 0 {
		return lerrors.InvalidArg("bench_config", fmt.Sprintf("iterations must be positive, got %d", c.Iterations))
	}
	if len(c.Rows) == 0 || len(c.Patterns) == 0 || len(c.CompressionLevels) == 0 {
		return lerrors.InvalidArg("bench_config", "rows, patterns and levels must not be empty")
	}
	for _, n := range c.Rows {
		if n <= 0 {
			return lerrors.InvalidArg("bench_config", fmt.Sprintf("row count must be positive, got %d", n))
		}
	}
	for _, p := range c.Patterns {
		switch p {
		case PatternRandom, PatternSequential, PatternRepeated:
		default:
			return lerrors.InvalidArg("bench_config", fmt.Sprintf("unknown pattern %q", p))
		}
	}
	for _, l := range c.CompressionLevels {
		if l < 0 || l > 9 {
			return lerrors.InvalidArg("bench_config", fmt.Sprintf("compression level %d out of range 0-9", l))
		}
	}
	return nil
}
