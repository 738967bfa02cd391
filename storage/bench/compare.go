package bench

import (
	"fmt"
	"io"
	"math"
)

// DefaultThresholdPct is the throughput change below which a case counts
// as unchanged.
const DefaultThresholdPct = 5.0

// Comparison is one case present in both sets.
type Comparison struct {
	Name           string  `json:"name"`
	BaselineOps    float64 `json:"baseline_ops"`
	CurrentOps     float64 `json:"current_ops"`
	ChangePercent  float64 `json:"change_percent"` // positive is faster
	BaselineBytes  int64   `json:"baseline_bytes"`
	CurrentBytes   int64   `json:"current_bytes"`
	BytesChangePct float64 `json:"bytes_change_pct"` // encoded size
}

type ComparisonReport struct {
	Comparisons  []*Comparison `json:"comparisons"`
	Improved     int           `json:"improved"`
	Regressed    int           `json:"regressed"`
	Unchanged    int           `json:"unchanged"`
	ThresholdPct float64       `json:"threshold_pct"`
}

// CompareResults matches cases by name. Cases missing from baseline are
// skipped.
func CompareResults(baseline, current *ResultSet) *ComparisonReport {
	report := &ComparisonReport{
		Comparisons:  make([]*Comparison, 0),
		ThresholdPct: DefaultThresholdPct,
	}

	base := make(map[string]*Result, len(baseline.Results))
	for _, r := range baseline.Results {
		base[r.Name] = r
	}

	for _, curr := range current.Results {
		b, ok := base[curr.Name]
		if !ok {
			continue
		}

		comp := &Comparison{
			Name:          curr.Name,
			BaselineOps:   b.OpsPerSec,
			CurrentOps:    curr.OpsPerSec,
			BaselineBytes: b.EncodedBytes,
			CurrentBytes:  curr.EncodedBytes,
		}
		if b.OpsPerSec > 0 {
			comp.ChangePercent = (curr.OpsPerSec - b.OpsPerSec) / b.OpsPerSec * 100
		}
		if b.EncodedBytes > 0 {
			comp.BytesChangePct = float64(curr.EncodedBytes-b.EncodedBytes) / float64(b.EncodedBytes) * 100
		}

		switch {
		case math.Abs(comp.ChangePercent) < report.ThresholdPct:
			report.Unchanged++
		case comp.ChangePercent > 0:
			report.Improved++
		default:
			report.Regressed++
		}
		report.Comparisons = append(report.Comparisons, comp)
	}
	return report
}

// Print writes a plain text summary, regressions first.
func (r *ComparisonReport) Print(w io.Writer) {
	fmt.Fprintln(w, "benchmark comparison")
	fmt.Fprintf(w, "threshold: +/-%.1f%%\n", r.ThresholdPct)
	fmt.Fprintf(w, "improved:  %d\n", r.Improved)
	fmt.Fprintf(w, "regressed: %d\n", r.Regressed)
	fmt.Fprintf(w, "unchanged: %d\n", r.Unchanged)

	if r.Regressed > 0 {
		fmt.Fprintln(w, "\nregressions:")
		for _, c := range r.Comparisons {
			if c.ChangePercent <= -r.ThresholdPct {
				fmt.Fprintf(w, "  %-50s %6.1f%%  (%.0f -> %.0f ops/s)\n",
					c.Name, c.ChangePercent, c.BaselineOps, c.CurrentOps)
			}
		}
	}
	if r.Improved > 0 {
		fmt.Fprintln(w, "\nimprovements:")
		for _, c := range r.Comparisons {
			if c.ChangePercent >= r.ThresholdPct {
				fmt.Fprintf(w, "  %-50s +%5.1f%%  (%.0f -> %.0f ops/s)\n",
					c.Name, c.ChangePercent, c.BaselineOps, c.CurrentOps)
			}
		}
	}
}
