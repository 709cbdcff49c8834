package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"github.com/MeKo-Tech/gs1decode/internal/benchmark"
	"github.com/spf13/cobra"
)

type benchmarkReport struct {
	Codes      int                       `json:"codes_per_symbology"`
	Iterations int                       `json:"iterations"`
	Decode     []benchmarkDecodeResult   `json:"decode"`
	Scaling    []benchmark.ScalingResult `json:"scaling"`
}

type benchmarkDecodeResult struct {
	benchmark.Result
	CodesPerSec float64 `json:"codes_per_sec"`
}

// benchmarkCmd measures decode throughput.
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Measure decode throughput",
	Long: `Generate random valid codes for every symbology, time decoding them and
compare batch decoding across worker counts.

Examples:
  gs1decode benchmark
  gs1decode benchmark --codes 100000 --workers 1,2,4,8
  gs1decode benchmark -f json`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("codes")
		iterations, _ := cmd.Flags().GetInt("iterations")
		workers, _ := cmd.Flags().GetIntSlice("workers")
		seed, _ := cmd.Flags().GetUint64("seed")
		format, _ := cmd.Flags().GetString("format")

		if n <= 0 || iterations <= 0 {
			return errors.New("--codes and --iterations must be positive")
		}
		if format != outputFormatText && format != outputFormatJSON {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		suite, err := benchmark.NewDecodeSuite(n, seed)
		if err != nil {
			return err
		}
		results := suite.RunAll(iterations)
		for _, r := range results {
			if r.Error != nil {
				return fmt.Errorf("benchmark %s failed: %w", r.Name, r.Error)
			}
		}

		// Mixed symbologies exercise automatic detection in the worker pool.
		var codes []string
		for _, sym := range barcode.Symbologies() {
			c, err := benchmark.GenerateCodes(sym, n, seed)
			if err != nil {
				return err
			}
			codes = append(codes, c...)
		}
		scaling, err := benchmark.RunWorkerScaling(cmd.Context(), codes, workers)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if format == outputFormatJSON {
			report := benchmarkReport{Codes: n, Iterations: iterations, Scaling: scaling}
			for _, r := range results {
				report.Decode = append(report.Decode, benchmarkDecodeResult{Result: r, CodesPerSec: r.OpsPerSec()})
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		suite.PrintResults(out)
		_, _ = fmt.Fprintln(out, "Worker scaling:")
		for _, r := range scaling {
			_, _ = fmt.Fprintln(out, r.String())
		}
		return nil
	},
}

func defaultBenchmarkWorkers() []int {
	workers := []int{1, 2, 4}
	if cpus := runtime.NumCPU(); !slices.Contains(workers, cpus) {
		workers = append(workers, cpus)
	}
	return workers
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)
	benchmarkCmd.Flags().IntP("codes", "n", 10000, "codes generated per symbology")
	benchmarkCmd.Flags().IntP("iterations", "i", 3, "iterations per decode benchmark")
	benchmarkCmd.Flags().IntSlice("workers", defaultBenchmarkWorkers(), "worker counts to compare")
	benchmarkCmd.Flags().Uint64("seed", 1, "random seed for code generation")
	benchmarkCmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json)")
}
