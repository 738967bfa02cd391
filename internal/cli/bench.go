package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/wzqhbustb/colfile/storage/bench"
)

func parseInts(flagName, s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, usagef("bench: -%s: %q is not an integer", flagName, part)
		}
		out = append(out, n)
	}
	return out, nil
}

func runBench(e *env, args []string) error {
	def := bench.DefaultConfig()
	fs := newFlagSet(e, "bench")
	rows := fs.String("rows", "1000,10000,100000", "comma separated row counts")
	patterns := fs.String("patterns", strings.Join(def.Patterns, ","), "comma separated value patterns")
	levels := fs.String("levels", "0,1,3,9", "comma separated compression levels")
	iterations := fs.Int("iterations", def.Iterations, "timed repetitions per case")
	out := fs.String("out", "", "write JSON results to this path or s3://bucket/key")
	baseline := fs.String("baseline", "", "compare against JSON results at this path or s3://bucket/key")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg := def
	cfg.Iterations = *iterations
	cfg.Patterns = strings.Split(*patterns, ",")
	var err error
	if cfg.Rows, err = parseInts("rows", *rows); err != nil {
		return err
	}
	if cfg.CompressionLevels, err = parseInts("levels", *levels); err != nil {
		return err
	}

	runner, err := bench.NewRunner(cfg, e.logger)
	if err != nil {
		return err
	}
	rs, err := runner.Run(e.ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tNS/OP\tMB/S\tBYTES\tRATIO")
	for _, r := range rs.Results {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%d\t%.2f\n", r.Name, r.NsPerOp, r.BytesPerSec/1e6, r.EncodedBytes, r.CompressionRatio)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if *out != "" {
		data, err := rs.Marshal()
		if err != nil {
			return err
		}
		if err := e.writeOutput(*out, data); err != nil {
			return err
		}
	}
	if *baseline != "" {
		data, err := e.readInput(*baseline)
		if err != nil {
			return err
		}
		base, err := bench.ParseResultSet(data)
		if err != nil {
			return err
		}
		fmt.Fprintln(e.stdout)
		rs.Compare(base).Print(e.stdout)
	}
	return nil
}
