package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// CodeFixture is a code with its expected decode outcome.
type CodeFixture struct {
	Code      string
	Symbology string
	Valid     bool
	Region    string // expected English region name for valid codes
	ErrorType string // expected error kind for invalid codes
}

// ValidCodes returns well-formed codes covering every supported symbology.
func ValidCodes() []CodeFixture {
	return []CodeFixture{
		{Code: "4006381333931", Symbology: "ean13", Valid: true, Region: "Germany"},
		{Code: "4710088410139", Symbology: "ean13", Valid: true, Region: "Taiwan"},
		{Code: "5901234123457", Symbology: "ean13", Valid: true, Region: "Poland"},
		{Code: "9780201379624", Symbology: "ean13", Valid: true, Region: "Bookland (ISBN)"},
		{Code: "012345678905", Symbology: "upca", Valid: true, Region: "USA/Canada"},
		{Code: "10012345678902", Symbology: "itf14", Valid: true, Region: "USA/Canada"},
		{Code: "96385074", Symbology: "ean8", Valid: true, Region: "GS1 Global Office"},
	}
}

// InvalidCodes returns codes that fail EAN-13 decoding, one per error kind.
func InvalidCodes() []CodeFixture {
	return []CodeFixture{
		{Code: "4006381333932", Symbology: "ean13", ErrorType: "checksum_mismatch"},
		{Code: "12345", Symbology: "ean13", ErrorType: "invalid_length"},
		{Code: "40063813339X1", Symbology: "ean13", ErrorType: "non_numeric_character"},
	}
}

// WriteCodeFile writes lines to dir/name and returns the path.
func WriteCodeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, EnsureDir(filepath.Dir(path)))

	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "Failed to write code file: %s", path)
	return path
}
