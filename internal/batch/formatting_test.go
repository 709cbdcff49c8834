package batch

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

func sampleEntries(t *testing.T) []Entry {
	t.Helper()
	opts := DecodeOptions{Auto: true, Language: language.English}
	return []Entry{
		DecodeEntry(Code{Source: "codes.txt", Line: 1, Value: "4006381333931"}, opts),
		DecodeEntry(Code{Source: "codes.txt", Line: 2, Value: "10012345678902"}, opts),
		DecodeEntry(Code{Source: "codes.txt", Line: 3, Value: "4006381333932"}, opts),
	}
}

func TestFormatEntries_Text(t *testing.T) {
	out, err := FormatEntries(sampleEntries(t), "text")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "codes.txt:1: 4006381333931 [ean13] prefix 400 | body 638133393 | check 1 | Germany", lines[0])
	assert.Equal(t, "codes.txt:2: 10012345678902 [itf14] indicator 1 | prefix 100 | body 1234567890 | check 2 | USA/Canada (001)", lines[1])
	assert.Contains(t, lines[2], "4006381333932 INVALID (checksum_mismatch)")
	assert.Contains(t, lines[2], "expected check digit 1, got 2")
}

func TestFormatEntries_JSON(t *testing.T) {
	out, err := FormatEntries(sampleEntries(t), "json")
	require.NoError(t, err)

	var report struct {
		Codes []struct {
			Code      string         `json:"code"`
			Valid     bool           `json:"valid"`
			Result    map[string]any `json:"result"`
			ErrorType string         `json:"error_type"`
		} `json:"codes"`
		Summary Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	require.Len(t, report.Codes, 3)
	assert.True(t, report.Codes[0].Valid)
	assert.Equal(t, "Germany", report.Codes[0].Result["region_name"])
	assert.Equal(t, "ean13", report.Codes[0].Result["symbology"])
	assert.False(t, report.Codes[2].Valid)
	assert.Equal(t, "checksum_mismatch", report.Codes[2].ErrorType)
	assert.Equal(t, Summary{Total: 3, Valid: 2, Failed: 1}, report.Summary)
}

func TestFormatEntries_CSV(t *testing.T) {
	out, err := FormatEntries(sampleEntries(t), "csv")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"codes.txt", "1", "4006381333931", "true", "ean13", "4006381333931", "400", "638133393",
		"1", "", "400", "Germany", "", "",
	}, rows[1])
	assert.Equal(t, "1", rows[2][9])
	assert.Equal(t, "001", rows[2][10])
	assert.Equal(t, "false", rows[3][3])
	assert.Equal(t, "checksum_mismatch", rows[3][12])
}

func TestFormatEntries_YAML(t *testing.T) {
	out, err := FormatEntries(sampleEntries(t), "yaml")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	codes, ok := report["codes"].([]any)
	require.True(t, ok)
	require.Len(t, codes, 3)

	first, ok := codes[0].(map[string]any)
	require.True(t, ok)
	result, ok := first["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ean13", result["symbology"])
	assert.Contains(t, out, "region_name: Germany")
}

func TestFormatEntries_UnknownFormat(t *testing.T) {
	_, err := FormatEntries(nil, "xml")
	assert.Error(t, err)
}

func TestFormatEntryText_NoSource(t *testing.T) {
	e := DecodeEntry(Code{Value: "012345678905"}, DecodeOptions{Auto: true, Language: language.English})
	assert.Equal(t, "0012345678905 [upca] prefix 001 | body 234567890 | check 5 | USA/Canada", FormatEntryText(e))
}
