package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type recordingProgress struct {
	mu       sync.Mutex
	started  int
	progress []int
	errors   int
	done     bool
}

func (r *recordingProgress) OnStart(total int) { r.started = total }
func (r *recordingProgress) OnProgress(current, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, current)
}
func (r *recordingProgress) OnComplete()        { r.done = true }
func (r *recordingProgress) OnError(int, error) { r.errors++ }

func makeCodes(values ...string) []Code {
	codes := make([]Code, len(values))
	for i, v := range values {
		codes[i] = Code{Source: "test", Line: i + 1, Value: v}
	}
	return codes
}

func ean13Options() DecodeOptions {
	return DecodeOptions{Symbology: barcode.SymbologyEAN13, Language: language.English}
}

func TestDecodeParallel_PreservesOrder(t *testing.T) {
	var values []string
	for i := range 200 {
		code, err := barcode.Complete(fmt.Sprintf("400%09d", i), barcode.SymbologyEAN13)
		require.NoError(t, err)
		values = append(values, code)
	}

	progress := &recordingProgress{}
	entries, err := DecodeParallel(context.Background(), makeCodes(values...), ean13Options(), ParallelConfig{
		MaxWorkers:       8,
		ProgressCallback: progress,
	})
	require.NoError(t, err)
	require.Len(t, entries, len(values))

	for i, e := range entries {
		require.NoError(t, e.Err)
		assert.Equal(t, values[i], e.Value)
		assert.Equal(t, values[i], e.Result.Normalized)
		assert.Equal(t, "Germany", e.Region)
	}
	assert.Equal(t, 200, progress.started)
	assert.Len(t, progress.progress, 200)
	assert.True(t, progress.done)
}

func TestDecodeParallel_ContinueOnError(t *testing.T) {
	codes := makeCodes("4006381333931", "4006381333932", "12345", "012345678905")

	progress := &recordingProgress{}
	entries, err := DecodeParallel(context.Background(), codes, DecodeOptions{Auto: true, Language: language.German},
		ParallelConfig{MaxWorkers: 2, ProgressCallback: progress})
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.NoError(t, entries[0].Err)
	assert.Equal(t, "Deutschland", entries[0].Region)
	assert.ErrorIs(t, entries[1].Err, barcode.ErrChecksumMismatch)
	assert.ErrorIs(t, entries[2].Err, barcode.ErrInvalidLength)
	require.NoError(t, entries[3].Err)
	assert.Equal(t, barcode.SymbologyUPCA, entries[3].Result.Symbology)
	assert.Equal(t, 2, progress.errors)
}

func TestDecodeParallel_StopOnError(t *testing.T) {
	codes := makeCodes("12345")
	entries, err := DecodeParallel(context.Background(), codes, ean13Options(), ParallelConfig{
		MaxWorkers:  1,
		StopOnError: true,
	})
	assert.ErrorIs(t, err, ErrStopped)
	require.Len(t, entries, 1)
	assert.Error(t, entries[0].Err)
}

func TestDecodeParallel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	codes := makeCodes("4006381333931", "4006381333931", "4006381333931")
	entries, err := DecodeParallel(ctx, codes, ean13Options(), ParallelConfig{MaxWorkers: 2})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.LessOrEqual(t, len(entries), len(codes))
}

func TestDecodeParallel_Empty(t *testing.T) {
	entries, err := DecodeParallel(context.Background(), nil, ean13Options(), ParallelConfig{})
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDecodeEntry(t *testing.T) {
	e := DecodeEntry(Code{Value: "10012345678902"}, DecodeOptions{Symbology: barcode.SymbologyITF14, Language: language.English})
	require.NoError(t, e.Err)
	assert.Equal(t, "1", e.Result.Indicator)
	assert.Equal(t, "USA/Canada", e.Region)

	e = DecodeEntry(Code{Value: "10012345678902"}, ean13Options())
	assert.ErrorIs(t, e.Err, barcode.ErrInvalidLength)
	assert.Nil(t, e.Result)
	assert.Empty(t, e.Region)
}
