package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/gs1decode/internal/batch"
	"github.com/MeKo-Tech/gs1decode/internal/config"
	"github.com/MeKo-Tech/gs1decode/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchCommand_Valid(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteCodeFile(t, dir, "codes.txt", "4006381333931", "# comment", "4710088410139")

	out, errOut, err := executeCommand(t, "", "batch", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Decoding codes from 1 inputs")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "Germany"))
	assert.Contains(t, lines[1], "codes.txt:3:")
}

func TestBatchCommand_StopsOnError(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteCodeFile(t, dir, "codes.txt", "4006381333932")

	_, _, err := executeCommand(t, "", "batch", path, "--quiet")
	require.ErrorIs(t, err, errDecodeFailed)
	assert.ErrorIs(t, err, batch.ErrStopped)
}

func TestBatchCommand_ContinueOnError(t *testing.T) {
	dir := t.TempDir()
	lines := []string{}
	for _, fx := range testutil.InvalidCodes() {
		lines = append(lines, fx.Code)
	}
	lines = append(lines, "4006381333931", "5901234123457")
	testutil.WriteCodeFile(t, dir, "sub/codes.txt", lines...)
	testutil.WriteCodeFile(t, dir, "ignored.log", "4006381333931")

	out, errOut, err := executeCommand(t, "", "batch", dir, "-r", "--continue-on-error", "--stats", "-f", "json", "-w", "2")
	require.NoError(t, err)

	var report batch.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, batch.Summary{Total: 5, Valid: 2, Failed: 3}, report.Summary)
	for i, fx := range testutil.InvalidCodes() {
		assert.Equal(t, fx.ErrorType, report.Codes[i].ErrorType)
	}

	assert.Contains(t, errOut, "Total codes: 5")
	assert.Contains(t, errOut, "checksum_mismatch: 1")
	assert.Contains(t, errOut, "Workers: 2")
}

func TestBatchCommand_CSVAndOutputFile(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteCodeFile(t, dir, "export.csv", "sku,gtin", "A1,012345678905", "A2,96385074")
	output := filepath.Join(dir, "results.yaml")

	out, _, err := executeCommand(t, "", "batch", input, "-s", "auto", "-f", "yaml", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Results written to "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "0012345678905")
	assert.Contains(t, string(data), "valid: 2")
}

func TestBatchCommand_Stdin(t *testing.T) {
	out, _, err := executeCommand(t, "9780201379624\n", "batch", "-", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "Bookland (ISBN)")
}

func TestBatchCommand_Errors(t *testing.T) {
	_, _, err := executeCommand(t, "", "batch")
	require.Error(t, err)

	_, _, err = executeCommand(t, "", "batch", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)

	empty := testutil.WriteCodeFile(t, t.TempDir(), "empty.txt", "# only a comment")
	_, _, err = executeCommand(t, "", "batch", empty)
	require.ErrorIs(t, err, batch.ErrNoCodes)
}

func TestConfigToBatchConfig_FlagOverrides(t *testing.T) {
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	require.NoError(t, batchCmd.Flags().Set("workers", "3"))
	require.NoError(t, batchCmd.Flags().Set("symbology", "auto"))
	require.NoError(t, batchCmd.Flags().Set("exclude", "*.bak"))

	cfg := config.DefaultConfig()
	cfg.Batch.ContinueOnError = true

	bc, err := configToBatchConfig(&cfg, batchCmd)
	require.NoError(t, err)
	assert.Equal(t, 3, bc.Workers)
	assert.True(t, bc.Auto)
	assert.True(t, bc.ContinueOnError)
	assert.Equal(t, []string{"*.bak"}, bc.ExcludePatterns)
	assert.Equal(t, []string{"*.txt", "*.csv"}, bc.IncludePatterns)
}
