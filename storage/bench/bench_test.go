package bench

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wzqhbustb/colfile/storage/codec"
	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

func TestGenerateTable(t *testing.T) {
	for _, pattern := range []string{PatternRandom, PatternSequential, PatternRepeated} {
		t.Run(pattern, func(t *testing.T) {
			a, err := GenerateTable(50, pattern, 7)
			require.NoError(t, err)
			b, err := GenerateTable(50, pattern, 7)
			require.NoError(t, err)

			assert.Equal(t, 50, a.NumRows())
			assert.Equal(t, []string{"id", "score", "price", "label", "tags", "vec"}, a.Names())
			assert.True(t, a.Equal(b))

			score, err := a.ColumnByName("score")
			require.NoError(t, err)
			assert.Equal(t, 5, score.NullN())
		})
	}

	_, err := GenerateTable(10, "zigzag", 1)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().validate())

	cases := map[string]func(c *Config){
		"zero iterations": func(c *Config) { c.Iterations = 0 },
		"no rows":         func(c *Config) { c.Rows = nil },
		"negative rows":   func(c *Config) { c.Rows = []int{-1} },
		"bad pattern":     func(c *Config) { c.Patterns = []string{"zigzag"} },
		"bad level":       func(c *Config) { c.CompressionLevels = []int{12} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			_, err := NewRunner(cfg, zerolog.Nop())
			assert.True(t, lerrors.Is(err, lerrors.ErrInvalidArgument), "got %v", err)
		})
	}
}

func TestRunnerRun(t *testing.T) {
	r, err := NewRunner(Config{
		Rows:              []int{200},
		Patterns:          []string{PatternRepeated},
		CompressionLevels: []int{0, 3},
		Iterations:        1,
		Seed:              1,
	}, zerolog.Nop())
	require.NoError(t, err)

	rs, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rs.Results, 4)

	names := make([]string, len(rs.Results))
	for i, res := range rs.Results {
		names[i] = res.Name
	}
	assert.Equal(t, []string{
		"encode/rows=200/pattern=repeated/level=0",
		"decode/rows=200/pattern=repeated/level=0",
		"encode/rows=200/pattern=repeated/level=3",
		"decode/rows=200/pattern=repeated/level=3",
	}, names)

	plain, packed := rs.Results[0], rs.Results[2]
	assert.Equal(t, plain.RawBytes, plain.EncodedBytes)
	assert.InDelta(t, 1.0, plain.CompressionRatio, 1e-9)
	assert.Less(t, packed.EncodedBytes, packed.RawBytes)
	assert.Greater(t, packed.CompressionRatio, 1.0)
	assert.Equal(t, uint32(1), rs.FormatVersion)
}

func TestRunnerStopsOnCancel(t *testing.T) {
	r, err := NewRunner(DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultSetMarshal(t *testing.T) {
	rs := NewResultSet()
	rs.Add(newResult("encode", benchCase{rows: 10, pattern: PatternRandom, level: 1}, 1000, 400, 100))

	data, err := rs.Marshal()
	require.NoError(t, err)
	back, err := ParseResultSet(data)
	require.NoError(t, err)
	require.Len(t, back.Results, 1)
	assert.Equal(t, "encode/rows=10/pattern=random/level=1", back.Results[0].Name)
	assert.InDelta(t, 4.0, back.Results[0].CompressionRatio, 1e-9)
	assert.InDelta(t, 1e6, back.Results[0].OpsPerSec, 1e-3)

	_, err = ParseResultSet([]byte("{"))
	assert.True(t, lerrors.Is(err, lerrors.ErrInvalidArgument))
}

func TestCompareResults(t *testing.T) {
	mk := func(ops map[string]float64) *ResultSet {
		rs := NewResultSet()
		for name, v := range ops {
			rs.Add(&Result{Name: name, OpsPerSec: v, EncodedBytes: 100})
		}
		return rs
	}
	baseline := mk(map[string]float64{"a": 100, "b": 100, "c": 100, "gone": 100})
	current := mk(map[string]float64{"a": 150, "b": 50, "c": 102, "new": 10})

	report := current.Compare(baseline)
	assert.Equal(t, 1, report.Improved)
	assert.Equal(t, 1, report.Regressed)
	assert.Equal(t, 1, report.Unchanged)
	assert.Len(t, report.Comparisons, 3)

	var buf bytes.Buffer
	report.Print(&buf)
	out := buf.String()
	assert.Contains(t, out, "regressed: 1")
	assert.Contains(t, out, "regressions:")
	assert.Contains(t, out, "improvements:")
}

func BenchmarkEncode(b *testing.B) {
	for _, rows := range []int{1000, 10000} {
		for _, level := range []int{0, 3} {
			b.Run(fmt.Sprintf("rows=%d/level=%d", rows, level), func(b *testing.B) {
				tbl, err := GenerateTable(rows, PatternRandom, 1)
				if err != nil {
					b.Fatal(err)
				}
				enc := codec.NewEncoder(codec.WithCompression(level))
				data, err := enc.Encode(tbl)
				if err != nil {
					b.Fatal(err)
				}

				b.SetBytes(int64(len(data)))
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := enc.Encode(tbl); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	for _, rows := range []int{1000, 10000} {
		for _, level := range []int{0, 3} {
			b.Run(fmt.Sprintf("rows=%d/level=%d", rows, level), func(b *testing.B) {
				tbl, err := GenerateTable(rows, PatternRandom, 1)
				if err != nil {
					b.Fatal(err)
				}
				data, err := codec.Encode(tbl, codec.WithCompression(level))
				if err != nil {
					b.Fatal(err)
				}
				dec := codec.NewDecoder()

				b.SetBytes(int64(len(data)))
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := dec.Decode(data); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
