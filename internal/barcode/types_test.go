package barcode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSymbology(t *testing.T) {
	tests := []struct {
		in   string
		want Symbology
	}{
		{"ean13", SymbologyEAN13},
		{"EAN-13", SymbologyEAN13},
		{" jan ", SymbologyEAN13},
		{"upca", SymbologyUPCA},
		{"UPC-A", SymbologyUPCA},
		{"upc_a", SymbologyUPCA},
		{"itf14", SymbologyITF14},
		{"GTIN-14", SymbologyITF14},
		{"ean-8", SymbologyEAN8},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSymbology(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseSymbology("qr")
	assert.ErrorIs(t, err, ErrUnsupportedSymbology)
}

func TestSymbology_StringRoundTrip(t *testing.T) {
	for _, s := range Symbologies() {
		parsed, err := ParseSymbology(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	assert.Equal(t, "unknown", SymbologyUnknown.String())
	assert.Equal(t, 0, SymbologyUnknown.Length())
}

func TestDecodedBarcode_JSON(t *testing.T) {
	d, err := Decode("10012345678902", SymbologyITF14)
	require.NoError(t, err)

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "itf14", out["symbology"])
	assert.Equal(t, "1", out["indicator"])
	assert.Equal(t, "USA/Canada", out["region_name"])

	var back DecodedBarcode
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, SymbologyITF14, back.Symbology)
}

func TestSymbology_MarshalUnknown(t *testing.T) {
	_, err := SymbologyUnknown.MarshalText()
	assert.ErrorIs(t, err, ErrUnsupportedSymbology)
}
