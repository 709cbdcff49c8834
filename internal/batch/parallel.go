package batch

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"golang.org/x/text/language"
)

// Entry is the outcome of decoding one Code. Exactly one of Result and Err is set.
type Entry struct {
	Code
	Result *barcode.DecodedBarcode
	Region string // region name in the requested language
	Err    error
}

// DecodeOptions selects how each code is decoded.
type DecodeOptions struct {
	Symbology barcode.Symbology
	Auto      bool
	Language  language.Tag
}

// ParallelConfig holds configuration for parallel decoding.
type ParallelConfig struct {
	MaxWorkers       int // 0 = runtime.NumCPU()
	ProgressCallback ProgressCallback
	// StopOnError cancels outstanding work after the first failed code.
	StopOnError bool
}

type codeJob struct {
	index int
	code  Code
}

type codeResult struct {
	index int
	entry Entry
}

// DecodeEntry decodes a single code with the given options.
func DecodeEntry(code Code, opts DecodeOptions) Entry {
	var (
		d   *barcode.DecodedBarcode
		err error
	)
	if opts.Auto {
		d, err = barcode.DecodeAuto(code.Value)
	} else {
		d, err = barcode.Decode(code.Value, opts.Symbology)
	}

	entry := Entry{Code: code, Result: d, Err: err}
	if err == nil {
		entry.Region = d.LocalizedRegionName(opts.Language)
	}
	return entry
}

// ErrStopped is returned when decoding stopped at the first failure.
var ErrStopped = errors.New("batch stopped after first decode failure")

// DecodeParallel decodes codes with a worker pool and returns the entries in
// input order. Per-code failures are reported in the entries. The returned
// error is the context error, or ErrStopped when StopOnError cut the run short;
// the entries decoded so far are returned alongside it.
func DecodeParallel(ctx context.Context, codes []Code, opts DecodeOptions, config ParallelConfig) ([]Entry, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = runtime.NumCPU()
	}
	workers := min(config.MaxWorkers, len(codes))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if config.ProgressCallback != nil {
		config.ProgressCallback.OnStart(len(codes))
		defer config.ProgressCallback.OnComplete()
	}

	jobs := make(chan codeJob, workers)
	results := make(chan codeResult, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go worker(ctx, jobs, results, &wg, opts)
	}

	go func() {
		defer close(jobs)
		for i, c := range codes {
			select {
			case jobs <- codeJob{index: i, code: c}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	entries := make([]Entry, len(codes))
	done := make([]bool, len(codes))
	processed := 0
	stopped := false

	for res := range results {
		entries[res.index] = res.entry
		done[res.index] = true
		processed++

		if res.entry.Err != nil {
			if config.ProgressCallback != nil {
				config.ProgressCallback.OnError(processed, res.entry.Err)
			}
			if config.StopOnError && !stopped {
				stopped = true
				cancel()
			}
		}
		if config.ProgressCallback != nil {
			config.ProgressCallback.OnProgress(processed, len(codes))
		}
	}

	if stopped || ctx.Err() != nil {
		partial := make([]Entry, 0, processed)
		for i := range entries {
			if done[i] {
				partial = append(partial, entries[i])
			}
		}
		if stopped {
			return partial, ErrStopped
		}
		return partial, ctx.Err()
	}

	return entries, nil
}

func worker(ctx context.Context, jobs <-chan codeJob, results chan<- codeResult, wg *sync.WaitGroup, opts DecodeOptions) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			entry := DecodeEntry(job.code, opts)
			select {
			case results <- codeResult{index: job.index, entry: entry}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
