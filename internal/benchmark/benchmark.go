// Package benchmark measures decode throughput for each symbology and how
// batch decoding scales with the number of workers.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"github.com/MeKo-Tech/gs1decode/internal/batch"
)

// Timer provides simple timing utilities for benchmarking.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer creates a new timer with the given name.
func NewTimer(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Stop stops the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration (only valid after Stop()).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

func (t *Timer) String() string {
	return fmt.Sprintf("%s: %v", t.name, t.duration)
}

// MemoryStats holds memory usage statistics.
type MemoryStats struct {
	AllocBytes      uint64  // Currently allocated bytes
	TotalAllocBytes uint64  // Total allocated bytes (cumulative)
	SysBytes        uint64  // Total bytes from system
	NumGC           uint32  // Number of GC runs
	GCCPUFraction   float64 // Fraction of CPU time spent in GC
}

// GetMemoryStats returns current memory statistics.
func GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryStats{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		SysBytes:        m.Sys,
		NumGC:           m.NumGC,
		GCCPUFraction:   m.GCCPUFraction,
	}
}

// Result holds the result of a benchmark run.
type Result struct {
	Name         string        `json:"name"`
	Duration     time.Duration `json:"duration_ns"`
	Iterations   int           `json:"iterations"`
	Ops          int           `json:"ops"` // codes decoded across all iterations
	MemoryBefore MemoryStats   `json:"-"`
	MemoryAfter  MemoryStats   `json:"-"`
	Error        error         `json:"-"`
}

// OpsPerSec returns the decode throughput of the run.
func (r Result) OpsPerSec() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Duration.Seconds()
}

func (r Result) String() string {
	if r.Error != nil {
		return fmt.Sprintf("%s: ERROR - %v", r.Name, r.Error)
	}

	allocated := r.MemoryAfter.TotalAllocBytes - r.MemoryBefore.TotalAllocBytes
	avgDuration := r.Duration / time.Duration(max(r.Iterations, 1))

	return fmt.Sprintf("%s: %d iterations, avg: %v, total: %v, %.0f codes/sec, alloc: %d KB",
		r.Name, r.Iterations, avgDuration, r.Duration, r.OpsPerSec(), allocated/1024)
}

// Benchmark is a named function that decodes Ops codes per call.
type Benchmark struct {
	Name string
	Ops  int
	Func func() error
}

// Suite manages multiple benchmarks.
type Suite struct {
	benchmarks []Benchmark
	results    []Result
	mu         sync.Mutex
}

// NewSuite creates an empty benchmark suite.
func NewSuite() *Suite {
	return &Suite{
		benchmarks: make([]Benchmark, 0),
		results:    make([]Result, 0),
	}
}

// Add adds a benchmark to the suite.
func (s *Suite) Add(name string, ops int, fn func() error) {
	s.benchmarks = append(s.benchmarks, Benchmark{Name: name, Ops: ops, Func: fn})
}

// Names lists the benchmarks in registration order.
func (s *Suite) Names() []string {
	names := make([]string, len(s.benchmarks))
	for i, b := range s.benchmarks {
		names[i] = b.Name
	}
	return names
}

// Run runs a single benchmark with the specified number of iterations.
func (s *Suite) Run(name string, iterations int) Result {
	for _, b := range s.benchmarks {
		if b.Name == name {
			return runBenchmark(b, iterations)
		}
	}
	return Result{
		Name:  name,
		Error: fmt.Errorf("benchmark '%s' not found", name),
	}
}

// RunAll runs all benchmarks in the suite.
func (s *Suite) RunAll(iterations int) []Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = make([]Result, 0, len(s.benchmarks))
	for _, b := range s.benchmarks {
		s.results = append(s.results, runBenchmark(b, iterations))
	}
	return s.results
}

func runBenchmark(b Benchmark, iterations int) Result {
	// Force garbage collection before measuring
	runtime.GC()
	memBefore := GetMemoryStats()

	timer := NewTimer(b.Name)
	var err error
	done := 0
	for range iterations {
		if e := b.Func(); e != nil {
			err = e
			break
		}
		done++
	}
	duration := timer.Stop()

	return Result{
		Name:         b.Name,
		Duration:     duration,
		Iterations:   iterations,
		Ops:          done * b.Ops,
		MemoryBefore: memBefore,
		MemoryAfter:  GetMemoryStats(),
		Error:        err,
	}
}

// Results returns the last run results.
func (s *Suite) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// PrintResults writes formatted benchmark results to w.
func (s *Suite) PrintResults(w io.Writer) {
	_, _ = fmt.Fprintln(w, "\nBenchmark Results:")
	_, _ = fmt.Fprintln(w, "==================")
	for _, result := range s.Results() {
		_, _ = fmt.Fprintln(w, result.String())
	}
	_, _ = fmt.Fprintln(w)
}

// GenerateCodes returns n valid codes of sym built from random payloads. The
// same seed always yields the same codes.
func GenerateCodes(sym barcode.Symbology, n int, seed uint64) ([]string, error) {
	if !sym.Valid() {
		return nil, fmt.Errorf("%w: %s", barcode.ErrUnsupportedSymbology, sym)
	}

	rng := rand.New(rand.NewPCG(seed, uint64(sym))) //nolint:gosec // deterministic test data
	payloadLen := sym.Length() - 1
	codes := make([]string, 0, n)

	var b strings.Builder
	for range n {
		b.Reset()
		for range payloadLen {
			b.WriteByte(byte('0' + rng.IntN(10)))
		}
		code, err := barcode.Complete(b.String(), sym)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// NewDecodeSuite registers one benchmark per symbology plus one for automatic
// detection over a mix of all symbologies. Each benchmark decodes
// codesPerSymbology codes per iteration.
func NewDecodeSuite(codesPerSymbology int, seed uint64) (*Suite, error) {
	suite := NewSuite()
	var mixed []string

	for _, sym := range barcode.Symbologies() {
		codes, err := GenerateCodes(sym, codesPerSymbology, seed)
		if err != nil {
			return nil, err
		}
		mixed = append(mixed, codes...)

		suite.Add("Decode_"+sym.String(), len(codes), func() error {
			for _, c := range codes {
				if _, err := barcode.Decode(c, sym); err != nil {
					return err
				}
			}
			return nil
		})
	}

	suite.Add("DecodeAuto_mixed", len(mixed), func() error {
		for _, c := range mixed {
			if _, err := barcode.DecodeAuto(c); err != nil {
				return err
			}
		}
		return nil
	})

	return suite, nil
}

// ScalingResult compares one worker count against the single worker baseline.
type ScalingResult struct {
	Workers    int           `json:"workers"`
	Codes      int           `json:"codes"`
	Duration   time.Duration `json:"duration_ns"`
	Throughput float64       `json:"codes_per_sec"`
	Speedup    float64       `json:"speedup"`
}

func (r ScalingResult) String() string {
	return fmt.Sprintf("%3d workers: %v for %d codes, %.0f codes/sec, %.2fx",
		r.Workers, r.Duration, r.Codes, r.Throughput, r.Speedup)
}

// RunWorkerScaling decodes codes with batch.DecodeParallel once per worker
// count. Speedup is relative to the first entry of workerCounts.
func RunWorkerScaling(ctx context.Context, codes []string, workerCounts []int) ([]ScalingResult, error) {
	if len(codes) == 0 {
		return nil, errors.New("no codes to benchmark")
	}
	if len(workerCounts) == 0 {
		return nil, errors.New("no worker counts given")
	}

	input := make([]batch.Code, len(codes))
	for i, c := range codes {
		input[i] = batch.Code{Line: i + 1, Value: c}
	}
	opts := batch.DecodeOptions{Auto: true}

	results := make([]ScalingResult, 0, len(workerCounts))
	for _, workers := range workerCounts {
		if workers <= 0 {
			return nil, fmt.Errorf("invalid worker count: %d", workers)
		}

		timer := NewTimer(fmt.Sprintf("workers=%d", workers))
		if _, err := batch.DecodeParallel(ctx, input, opts, batch.ParallelConfig{MaxWorkers: workers}); err != nil {
			return nil, fmt.Errorf("decode with %d workers: %w", workers, err)
		}
		duration := timer.Stop()

		r := ScalingResult{Workers: workers, Codes: len(codes), Duration: duration}
		if duration > 0 {
			r.Throughput = float64(len(codes)) / duration.Seconds()
		}
		if len(results) > 0 && duration > 0 {
			r.Speedup = float64(results[0].Duration) / float64(duration)
		} else {
			r.Speedup = 1
		}
		results = append(results, r)
	}
	return results, nil
}
