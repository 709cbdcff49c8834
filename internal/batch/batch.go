// Package batch decodes GS1 codes read from files in parallel and formats
// the results.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// ErrNoCodes is returned when the inputs contain no codes at all.
var ErrNoCodes = errors.New("no codes found")

// ProcessBatch discovers code files under paths, reads every code and decodes
// them in parallel. stdin is read when a path is "-".
func ProcessBatch(ctx context.Context, paths []string, stdin io.Reader, config *Config) (*Result, error) {
	files, err := discoverCodeFiles(paths, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover code files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no code files found")
	}

	var codes []Code
	for _, f := range files {
		fileCodes, err := ReadCodeFile(f, stdin)
		if err != nil {
			return nil, err
		}
		slog.Debug("Read code file", "file", f, "codes", len(fileCodes))
		codes = append(codes, fileCodes...)
	}
	if len(codes) == 0 {
		return nil, ErrNoCodes
	}

	var progress ProgressCallback
	if config.ShowProgress && !config.Quiet {
		progress = NewConsoleProgressCallback(os.Stderr, "Decoding: ").WithUpdateInterval(config.ProgressInterval)
	}

	opts := DecodeOptions{Symbology: config.Symbology, Auto: config.Auto, Language: config.Language}
	parallel := ParallelConfig{
		MaxWorkers:       config.Workers,
		ProgressCallback: progress,
		StopOnError:      !config.ContinueOnError,
	}

	start := time.Now()
	entries, err := DecodeParallel(ctx, codes, opts, parallel)
	duration := time.Since(start)

	result := &Result{
		Entries:     entries,
		Files:       files,
		Duration:    duration,
		WorkerCount: min(max(config.Workers, 1), len(codes)),
	}
	if err != nil && !errors.Is(err, ErrStopped) {
		return nil, fmt.Errorf("batch decoding failed: %w", err)
	}
	return result, err
}
