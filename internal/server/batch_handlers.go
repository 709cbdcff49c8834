package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/gs1decode/internal/batch"
	"golang.org/x/text/language"
)

// decodeBatchHandler decodes a JSON list of codes through the batch worker pool.
func (s *Server) decodeBatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	var req BatchDecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, "Invalid JSON request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.Codes) == 0 {
		s.writeErrorResponse(w, "No codes provided", http.StatusBadRequest)
		return
	}
	if len(req.Codes) > s.maxBatchSize {
		s.writeErrorResponse(w, fmt.Sprintf("Too many codes: %d (max %d)", len(req.Codes), s.maxBatchSize),
			http.StatusRequestEntityTooLarge)
		return
	}

	sym, auto, err := parseSymbologyParam(req.Symbology, s.defaultSymbology, s.autoDetect)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	tag, err := s.requestLanguage(req.Lang)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.consumeCodes(w, r, len(req.Codes)) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.timeoutSec)*time.Second)
	defer cancel()

	resp, err := s.decodeBatch(ctx, req.Codes, batch.DecodeOptions{Symbology: sym, Auto: auto, Language: tag})
	if err != nil {
		slog.Warn("Batch decode aborted", "codes", len(req.Codes), "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		s.writeErrorResponse(w, "Batch decode aborted: "+err.Error(), status)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// decodeBatch decodes codes in parallel. Invalid codes are reported per record
// and never abort the batch.
func (s *Server) decodeBatch(ctx context.Context, values []string, opts batch.DecodeOptions) (BatchDecodeResponse, error) {
	codes := make([]batch.Code, len(values))
	for i, v := range values {
		codes[i] = batch.Code{Source: "request", Line: i + 1, Value: v}
	}

	parallel := batch.ParallelConfig{
		MaxWorkers:       s.batchWorkers,
		ProgressCallback: batch.NewLogProgressCallback(nil, slog.LevelDebug).WithInterval(max(len(codes)/4, 1)),
	}

	start := time.Now()
	entries, err := batch.DecodeParallel(ctx, codes, opts, parallel)
	duration := time.Since(start)
	if err != nil {
		return BatchDecodeResponse{}, err
	}

	batchSize.Observe(float64(len(codes)))
	batchDuration.Observe(duration.Seconds())
	for _, e := range entries {
		label := opts.Symbology.String()
		if opts.Auto {
			label = symbologyAuto
		}
		if e.Err != nil {
			decodeTotal.WithLabelValues(label, batch.ToRecord(e).ErrorType).Inc()
			continue
		}
		decodeTotal.WithLabelValues(e.Result.Symbology.String(), "valid").Inc()
	}

	report := batch.BuildReport(entries)
	return BatchDecodeResponse{
		Success:  true,
		Results:  report.Codes,
		Summary:  report.Summary,
		Duration: duration.Seconds(),
	}, nil
}

// batchOptions builds decode options for a WebSocket batch message.
func (s *Server) batchOptions(symbology string, tag language.Tag) (batch.DecodeOptions, error) {
	sym, auto, err := parseSymbologyParam(symbology, s.defaultSymbology, s.autoDetect)
	if err != nil {
		return batch.DecodeOptions{}, err
	}
	return batch.DecodeOptions{Symbology: sym, Auto: auto, Language: tag}, nil
}
