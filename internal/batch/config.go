package batch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"golang.org/x/text/language"
)

// Config holds all configuration for batch decoding.
type Config struct {
	// Decoding settings
	Symbology barcode.Symbology // ignored when Auto is set
	Auto      bool
	Language  language.Tag

	// Output settings
	Format     string
	OutputFile string

	// Parallel processing settings
	Workers         int
	ContinueOnError bool

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Progress settings
	ShowProgress     bool
	Quiet            bool
	ShowStats        bool
	ProgressInterval time.Duration
}

// DefaultConfig returns the batch defaults used when no configuration file is present.
func DefaultConfig() *Config {
	return &Config{
		Symbology:        barcode.SymbologyEAN13,
		Language:         language.English,
		Format:           "text",
		Workers:          4,
		IncludePatterns:  []string{"*.txt", "*.csv"},
		ProgressInterval: 100 * time.Millisecond,
	}
}

// Result holds the result of a batch run. Entries are in input order.
type Result struct {
	Entries     []Entry
	Files       []string
	Duration    time.Duration
	WorkerCount int
}

// Stats returns aggregate counters for the run.
func (r *Result) Stats() Stats {
	return CalculateStats(r.Entries, r.Duration, r.WorkerCount)
}

// Failed reports whether any entry failed to decode.
func (r *Result) Failed() bool {
	for _, e := range r.Entries {
		if e.Err != nil {
			return true
		}
	}
	return false
}

// FormatResults formats the batch results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return FormatEntries(r.Entries, format)
}

// SaveResults writes the formatted results to outputFile, or to w when
// outputFile is empty.
func (r *Result) SaveResults(w io.Writer, format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(w, "Results written to %s\n", outputFile)
		}
		return nil
	}

	_, _ = fmt.Fprint(w, output)
	return nil
}

// PrintStats prints decoding statistics.
func (r *Result) PrintStats(w io.Writer, quiet bool) {
	if quiet {
		return
	}
	stats := r.Stats()
	_, _ = fmt.Fprintf(w, "\nDecoding Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Files: %d\n", len(r.Files))
	_, _ = fmt.Fprintf(w, "  Total codes: %d\n", stats.Total)
	_, _ = fmt.Fprintf(w, "  Valid: %d\n", stats.Valid)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", stats.Failed)
	for _, kind := range []barcode.ErrorKind{barcode.InvalidLength, barcode.NonNumericCharacter, barcode.ChecksumMismatch} {
		if n := stats.FailuresByKind[kind.String()]; n > 0 {
			_, _ = fmt.Fprintf(w, "    %s: %d\n", kind, n)
		}
	}
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", stats.WorkerCount)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", stats.TotalDuration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "  Throughput: %.1f codes/sec\n", stats.ThroughputPerSec)
}
