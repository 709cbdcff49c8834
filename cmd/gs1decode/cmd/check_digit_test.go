package cmd

import (
	"testing"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDigitCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"ean13", []string{"400638133393"}, "4006381333931\n"},
		{"several", []string{"400638133393", "471008841013"}, "4006381333931\n4710088410139\n"},
		{"upca", []string{"01234567890", "-s", "upca"}, "012345678905\n"},
		{"itf14", []string{"1001234567890", "-s", "itf14"}, "10012345678902\n"},
		{"auto", []string{"9638507", "800000000000", "-s", "auto"}, "96385074\n8000000000002\n"},
		{"digit only", []string{"400638133393", "--digit-only"}, "1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := executeCommand(t, "", append([]string{"check-digit"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestCheckDigitCommand_Errors(t *testing.T) {
	_, _, err := executeCommand(t, "", "check-digit", "40063813339")
	require.ErrorIs(t, err, barcode.ErrInvalidLength)

	_, _, err = executeCommand(t, "", "check-digit", "40063813339X")
	require.ErrorIs(t, err, barcode.ErrNonNumericCharacter)

	_, _, err = executeCommand(t, "", "check-digit", "12345", "-s", "auto")
	require.ErrorIs(t, err, barcode.ErrInvalidLength)
	assert.Contains(t, err.Error(), "matches no supported symbology")

	_, _, err = executeCommand(t, "", "check-digit")
	require.Error(t, err)
}

func TestSymbologyForPayload(t *testing.T) {
	assert.Equal(t, barcode.SymbologyEAN13, symbologyForPayload("400638133393"))
	assert.Equal(t, barcode.SymbologyUPCA, symbologyForPayload("01234567890"))
	assert.Equal(t, barcode.SymbologyITF14, symbologyForPayload("1001234567890"))
	assert.Equal(t, barcode.SymbologyEAN8, symbologyForPayload("9638507"))
	assert.Equal(t, barcode.SymbologyUnknown, symbologyForPayload(""))
}
