package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"github.com/MeKo-Tech/gs1decode/internal/batch"
	"github.com/MeKo-Tech/gs1decode/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand_Valid(t *testing.T) {
	out, _, err := executeCommand(t, "", "decode", "4006381333931")
	require.NoError(t, err)
	assert.Equal(t, "4006381333931 [ean13] prefix 400 | body 638133393 | check 1 | Germany\n", out)
}

func TestDecodeCommand_Fixtures(t *testing.T) {
	for _, fx := range testutil.ValidCodes() {
		t.Run(fx.Code, func(t *testing.T) {
			out, _, err := executeCommand(t, "", "decode", fx.Code, "--symbology", fx.Symbology)
			require.NoError(t, err)
			assert.Contains(t, out, fx.Region)
		})
	}
}

func TestDecodeCommand_UPCA(t *testing.T) {
	out, _, err := executeCommand(t, "", "decode", "012345678905", "-s", "upc-a")
	require.NoError(t, err)
	assert.Contains(t, out, "0012345678905 [upca] prefix 001")
	assert.Contains(t, out, "USA/Canada")
}

func TestDecodeCommand_Invalid(t *testing.T) {
	out, _, err := executeCommand(t, "", "decode", "4006381333932")
	require.ErrorIs(t, err, errDecodeFailed)
	assert.Contains(t, out, "4006381333932 INVALID (checksum_mismatch)")
	assert.Contains(t, out, "expected check digit 1, got 2")
}

func TestDecodeCommand_MixedJSON(t *testing.T) {
	out, _, err := executeCommand(t, "", "decode", "4710088410139", "12345", "-f", "json")
	require.ErrorIs(t, err, errDecodeFailed)
	assert.Contains(t, err.Error(), "(1 of 2)")

	var report batch.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, batch.Summary{Total: 2, Valid: 1, Failed: 1}, report.Summary)
	assert.Equal(t, "Taiwan", report.Codes[0].Region)
	assert.Equal(t, "invalid_length", report.Codes[1].ErrorType)
}

func TestDecodeCommand_AutoAndStdin(t *testing.T) {
	stdin := "# scanned\n10012345678902\n\n96385074\n"
	out, _, err := executeCommand(t, stdin, "decode", "-s", "auto")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[itf14] indicator 1 | prefix 100")
	assert.Contains(t, lines[0], "(001)")
	assert.Contains(t, lines[1], "[ean8]")
}

func TestDecodeCommand_Language(t *testing.T) {
	out, _, err := executeCommand(t, "", "decode", "4006381333931", "--lang", "de")
	require.NoError(t, err)
	assert.Contains(t, out, "Deutschland")
}

func TestDecodeCommand_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	out, _, err := executeCommand(t, "", "decode", "5901234123457", "-f", "csv", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "source,line,code,valid"))
	assert.Contains(t, string(data), "Poland")
}

func TestDecodeCommand_Errors(t *testing.T) {
	_, _, err := executeCommand(t, "", "decode", "4006381333931", "-s", "qr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid decoder.default_symbology")

	_, _, err = executeCommand(t, "", "decode", "4006381333931", "-f", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")

	_, _, err = executeCommand(t, "\n# nothing\n", "decode")
	require.ErrorIs(t, err, batch.ErrNoCodes)
}

func TestDecodeCommand_NonNumeric(t *testing.T) {
	out, _, err := executeCommand(t, "", "decode", "12345678901X", "-s", "upca", "-f", "json")
	require.ErrorIs(t, err, errDecodeFailed)
	assert.Contains(t, out, barcode.NonNumericCharacter.String())
}
