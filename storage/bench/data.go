package bench

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/wzqhbustb/colfile/storage/arrow"
)

// VectorDim is the width of the generated fixed_size_list column.
const VectorDim = 4

var labels = []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta", "iota", "kappa"}

// GenerateTable builds a mixed-type table of n rows whose values follow
// pattern. The same (n, pattern, seed) always yields an equal table.
// Every tenth row is null in the nullable columns.
func GenerateTable(n int, pattern string, seed int64) (*arrow.Table, error) {
	rng := rand.New(rand.NewSource(seed))

	ids := make([]any, n)
	scores := make([]any, n)
	prices := make([]any, n)
	names := make([]any, n)
	tags := make([]any, n)
	vecs := make([]any, n)

	for i := 0; i < n; i++ {
		var k int64
		switch pattern {
		case PatternRandom:
			k = rng.Int63()
		case PatternSequential:
			k = int64(i)
		case PatternRepeated:
			k = int64(i % 10)
		default:
			return nil, fmt.Errorf("unknown pattern %q", pattern)
		}

		ids[i] = k
		prices[i] = decimal.New(k%1_000_000, -2)

		list := make([]any, i%4)
		for j := range list {
			list[j] = int32(k%1000) + int32(j)
		}
		tags[i] = list

		vec := make([]any, VectorDim)
		for j := range vec {
			vec[j] = float32(k%97) * 0.01 * float32(j+1)
		}
		vecs[i] = vec

		if i%10 == 9 {
			continue
		}
		scores[i] = float64(k%10_000) / 100
		names[i] = labels[k%int64(len(labels))]
	}

	cols := []struct {
		name   string
		dtype  arrow.DataType
		values []any
	}{
		{"id", arrow.PrimInt64(), ids},
		{"score", arrow.PrimFloat64(), scores},
		{"price", arrow.DecimalOf(12, 2), prices},
		{"label", arrow.PrimString(), names},
		{"tags", arrow.ListOf(arrow.PrimInt32()), tags},
		{"vec", arrow.FixedSizeListOf(arrow.PrimFloat32(), VectorDim), vecs},
	}

	t := arrow.NewTable()
	for _, c := range cols {
		col, err := arrow.NewColumnFromValues(c.dtype, c.values)
		if err != nil {
			return nil, err
		}
		if err := t.AddColumn(c.name, col); err != nil {
			return nil, err
		}
	}
	return t, nil
}
