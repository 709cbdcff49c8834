package cmd

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/MeKo-Tech/gs1decode/internal/batch"
	"github.com/MeKo-Tech/gs1decode/internal/config"
	"github.com/spf13/cobra"
)

// batchCmd represents the batch command for parallel code decoding.
var batchCmd = &cobra.Command{
	Use:   "batch [files/dirs...]",
	Short: "Decode code files in parallel",
	Long: `Decode every code in the given files and directories using a pool of
parallel workers. Text files carry one code per line (blank lines and '#'
comments are skipped); CSV files use the first column or the column named
code, barcode, gtin, ean or upc. Use "-" to read from stdin.

Decoding stops at the first invalid code unless --continue-on-error is set,
in which case every code is reported and failures are counted in the
statistics.

Examples:
  gs1decode batch codes.txt
  gs1decode batch codes/ --recursive --workers 8 -s auto
  gs1decode batch export.csv --format json --output results.json --continue-on-error`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

// configToBatchConfig maps centralized configuration to batch.Config.
// CLI flags override config file values.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command) (*batch.Config, error) {
	batchConfig := batch.DefaultConfig()

	sym, auto, tag, err := decodeSettings(cmd, cfg)
	if err != nil {
		return nil, err
	}
	batchConfig.Symbology = sym
	batchConfig.Auto = auto
	batchConfig.Language = tag

	batchConfig.Format, batchConfig.OutputFile = outputSettings(cmd, cfg)

	batchConfig.Workers = cfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		batchConfig.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if batchConfig.Workers <= 0 {
		batchConfig.Workers = runtime.NumCPU()
	}

	batchConfig.ContinueOnError = cfg.Batch.ContinueOnError
	if cmd.Flags().Changed("continue-on-error") {
		batchConfig.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}

	batchConfig.Recursive = cfg.Batch.Recursive
	if cmd.Flags().Changed("recursive") {
		batchConfig.Recursive, _ = cmd.Flags().GetBool("recursive")
	}

	batchConfig.IncludePatterns = cfg.Batch.IncludePatterns
	if cmd.Flags().Changed("include") {
		batchConfig.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	}

	batchConfig.ExcludePatterns = cfg.Batch.ExcludePatterns
	if cmd.Flags().Changed("exclude") {
		batchConfig.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
	}

	// Progress settings are CLI-only
	batchConfig.ShowProgress, _ = cmd.Flags().GetBool("progress")
	batchConfig.Quiet, _ = cmd.Flags().GetBool("quiet")
	batchConfig.ShowStats, _ = cmd.Flags().GetBool("stats")
	batchConfig.ProgressInterval, _ = cmd.Flags().GetDuration("progress-interval")

	return batchConfig, nil
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	config, err := configToBatchConfig(cfg, cmd)
	if err != nil {
		return err
	}

	if !config.Quiet {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Decoding codes from %d inputs...\n", len(args))
	}

	result, err := batch.ProcessBatch(cmd.Context(), args, cmd.InOrStdin(), config)
	stopped := errors.Is(err, batch.ErrStopped)
	if err != nil && !stopped {
		return fmt.Errorf("batch decoding failed: %w", err)
	}

	if err := result.SaveResults(cmd.OutOrStdout(), config.Format, config.OutputFile, config.Quiet); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	if config.ShowStats {
		result.PrintStats(cmd.ErrOrStderr(), config.Quiet)
	}

	if stopped {
		return fmt.Errorf("%w: %w (use --continue-on-error to decode all codes)", errDecodeFailed, batch.ErrStopped)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addDecodeFlags(batchCmd)
	addOutputFlags(batchCmd)

	// Parallel processing flags
	batchCmd.Flags().IntP("workers", "w", 0, fmt.Sprintf("number of parallel workers (default: %d)", runtime.NumCPU()))
	batchCmd.Flags().Bool("continue-on-error", false, "decode all codes even after a failure")

	// File discovery flags
	batchCmd.Flags().BoolP("recursive", "r", false, "recursively scan directories")
	batchCmd.Flags().StringSlice("include", []string{"*.txt", "*.csv"}, "file patterns to include")
	batchCmd.Flags().StringSlice("exclude", []string{}, "file patterns to exclude")

	// Progress and monitoring flags
	batchCmd.Flags().Bool("progress", false, "show progress bar")
	batchCmd.Flags().Bool("quiet", false, "suppress progress output")
	batchCmd.Flags().Bool("stats", false, "show decoding statistics")
	batchCmd.Flags().Duration("progress-interval", 100*time.Millisecond, "progress update interval")
}
