package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"github.com/MeKo-Tech/gs1decode/internal/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBatchHandler(t *testing.T) {
	_, mux := newTestServer(t, Config{DefaultSymbology: "auto"})

	req := BatchDecodeRequest{Codes: []string{
		"4006381333931",
		"4006381333932",
		"012345678905",
		"12345",
		"10012345678902",
	}}
	rec := doRequest(t, mux, http.MethodPost, "/decode/batch", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp BatchDecodeResponse
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, batch.Summary{Total: 5, Valid: 3, Failed: 2}, resp.Summary)
	require.Len(t, resp.Results, 5)

	// Results keep request order.
	for i, code := range req.Codes {
		assert.Equal(t, code, resp.Results[i].Code)
		assert.Equal(t, i+1, resp.Results[i].Line)
	}
	assert.Equal(t, "Germany", resp.Results[0].Region)
	assert.Equal(t, "checksum_mismatch", resp.Results[1].ErrorType)
	assert.Equal(t, barcode.SymbologyUPCA, resp.Results[2].Result.Symbology)
	assert.Equal(t, "invalid_length", resp.Results[3].ErrorType)
	assert.Equal(t, "1", resp.Results[4].Result.Indicator)
}

func TestDecodeBatchHandler_ExplicitSymbology(t *testing.T) {
	_, mux := newTestServer(t, Config{})

	rec := doRequest(t, mux, http.MethodPost, "/decode/batch", BatchDecodeRequest{
		Codes:     []string{"012345678905", "4006381333931"},
		Symbology: "upca",
		Lang:      "de",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BatchDecodeResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 1, resp.Summary.Valid)
	assert.True(t, resp.Results[0].Valid)
	assert.Equal(t, "invalid_length", resp.Results[1].ErrorType)
}

func TestDecodeBatchHandler_Errors(t *testing.T) {
	_, mux := newTestServer(t, Config{MaxBatchSize: 2})

	tests := []struct {
		name   string
		method string
		body   interface{}
		status int
	}{
		{"wrong method", http.MethodGet, nil, http.StatusMethodNotAllowed},
		{"no codes", http.MethodPost, BatchDecodeRequest{}, http.StatusBadRequest},
		{"too many codes", http.MethodPost, BatchDecodeRequest{Codes: []string{"1", "2", "3"}}, http.StatusRequestEntityTooLarge},
		{"bad symbology", http.MethodPost, BatchDecodeRequest{Codes: []string{"1"}, Symbology: "qr"}, http.StatusBadRequest},
		{"bad language", http.MethodPost, BatchDecodeRequest{Codes: []string{"1"}, Lang: "!!"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, mux, tt.method, "/decode/batch", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestDecodeBatch_CanceledContext(t *testing.T) {
	s, err := NewServer(Config{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.decodeBatch(ctx, []string{"4006381333931", "4710088410139"}, batch.DecodeOptions{Symbology: barcode.SymbologyEAN13})
	assert.ErrorIs(t, err, context.Canceled)
}
