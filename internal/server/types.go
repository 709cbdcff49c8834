package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"github.com/MeKo-Tech/gs1decode/internal/batch"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"
)

const symbologyAuto = "auto"

// Server holds the HTTP server state and dependencies.
type Server struct {
	corsOrigin       string
	maxBodyBytes     int64
	maxBatchSize     int
	timeoutSec       int
	defaultSymbology barcode.Symbology
	autoDetect       bool
	language         language.Tag
	batchWorkers     int
	rateLimiter      *RateLimiter

	wsMessagesPerSecond float64
	wsBurst             int
	wsMaxMessageBytes   int64
}

// Config holds server configuration.
type Config struct {
	Host             string
	Port             int
	CORSOrigin       string
	MaxBodyKB        int
	MaxBatchSize     int
	TimeoutSec       int
	DefaultSymbology string // ean13, upca, itf14, ean8 or auto
	Language         string
	BatchWorkers     int
	RateLimit        RateLimitConfig
	WebSocket        WebSocketConfig
}

// RateLimitConfig holds per-client limits. Zero values disable a limit.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxCodesPerDay    int
}

// WebSocketConfig holds per-connection streaming limits.
type WebSocketConfig struct {
	MessagesPerSecond float64
	Burst             int
	MaxMessageKB      int
}

// Response types for API endpoints.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version,omitempty"`
	Time       string `json:"time"`
	Prefixes   int    `json:"prefix_ranges"`
	Symbology  string `json:"default_symbology"`
	Language   string `json:"language"`
	RateLimits bool   `json:"rate_limits"`
}

// DecodeRequest is the POST /decode body.
type DecodeRequest struct {
	Code      string `json:"code"`
	Symbology string `json:"symbology,omitempty"`
	Lang      string `json:"lang,omitempty"`
}

// DecodeResponse is returned by /decode and over WebSocket.
type DecodeResponse struct {
	Success   bool                    `json:"success"`
	Result    *barcode.DecodedBarcode `json:"result,omitempty"`
	Region    string                  `json:"region,omitempty"`
	Language  string                  `json:"language,omitempty"`
	Error     string                  `json:"error,omitempty"`
	ErrorType string                  `json:"error_type,omitempty"`
	Details   *barcode.DecodeError    `json:"details,omitempty"`
}

// BatchDecodeRequest is the POST /decode/batch body.
type BatchDecodeRequest struct {
	Codes     []string `json:"codes"`
	Symbology string   `json:"symbology,omitempty"`
	Lang      string   `json:"lang,omitempty"`
}

// BatchDecodeResponse carries one record per submitted code, in order.
type BatchDecodeResponse struct {
	Success  bool           `json:"success"`
	Results  []batch.Record `json:"results,omitempty"`
	Summary  batch.Summary  `json:"summary"`
	Duration float64        `json:"duration_seconds"`
	Error    string         `json:"error,omitempty"`
}

// PrefixInfo describes one range of the GS1 prefix table.
type PrefixInfo struct {
	Range         string   `json:"range"`
	Start         int      `json:"start"`
	End           int      `json:"end"`
	Name          string   `json:"name"`
	LocalizedName string   `json:"localized_name,omitempty"`
	Codes         []string `json:"codes,omitempty"`
	Note          string   `json:"note,omitempty"`
}

type PrefixesResponse struct {
	Prefixes []PrefixInfo `json:"prefixes"`
	Count    int          `json:"count"`
	Language string       `json:"language"`
}

type PrefixResponse struct {
	Prefix        string      `json:"prefix"`
	Found         bool        `json:"found"`
	Name          string      `json:"name"`
	LocalizedName string      `json:"localized_name,omitempty"`
	Region        *PrefixInfo `json:"region,omitempty"`
}

// NewServer creates a decode server from the given configuration.
func NewServer(config Config) (*Server, error) {
	s := &Server{
		corsOrigin:          config.CORSOrigin,
		maxBodyBytes:        int64(config.MaxBodyKB) * 1024,
		maxBatchSize:        config.MaxBatchSize,
		timeoutSec:          config.TimeoutSec,
		batchWorkers:        config.BatchWorkers,
		wsMessagesPerSecond: config.WebSocket.MessagesPerSecond,
		wsBurst:             config.WebSocket.Burst,
		wsMaxMessageBytes:   int64(config.WebSocket.MaxMessageKB) * 1024,
	}

	if s.corsOrigin == "" {
		s.corsOrigin = "*"
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = 256 * 1024
	}
	if s.maxBatchSize <= 0 {
		s.maxBatchSize = 1000
	}
	if s.timeoutSec <= 0 {
		s.timeoutSec = 30
	}
	if s.batchWorkers <= 0 {
		s.batchWorkers = 4
	}
	if s.wsMessagesPerSecond <= 0 {
		s.wsMessagesPerSecond = 20
	}
	if s.wsBurst <= 0 {
		s.wsBurst = 40
	}
	if s.wsMaxMessageBytes <= 0 {
		s.wsMaxMessageBytes = 64 * 1024
	}

	sym, auto, err := parseSymbologyParam(config.DefaultSymbology, barcode.SymbologyEAN13, false)
	if err != nil {
		return nil, fmt.Errorf("invalid default symbology: %w", err)
	}
	s.defaultSymbology, s.autoDetect = sym, auto

	tag, err := barcode.ParseLanguage(config.Language)
	if err != nil {
		return nil, fmt.Errorf("invalid language %q: %w", config.Language, err)
	}
	s.language = tag

	if config.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(
			config.RateLimit.RequestsPerMinute,
			config.RateLimit.RequestsPerHour,
			config.RateLimit.MaxCodesPerDay,
		)
	}

	return s, nil
}

// RateLimiter returns the server's limiter, or nil when rate limiting is off.
func (s *Server) RateLimiter() *RateLimiter {
	return s.rateLimiter
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/decode", s.corsMiddleware(s.rateLimitMiddleware(s.decodeHandler)))
	mux.HandleFunc("/decode/batch", s.corsMiddleware(s.rateLimitMiddleware(s.decodeBatchHandler)))
	mux.HandleFunc("/prefixes", s.corsMiddleware(s.prefixesHandler))
	mux.HandleFunc("/prefixes/", s.corsMiddleware(s.prefixHandler))
	// No CORS wrapper: the upgrade needs the raw, hijackable ResponseWriter.
	mux.HandleFunc("/ws/decode", s.rateLimitMiddleware(s.decodeWebSocketHandler))
	mux.Handle("/metrics", promhttp.Handler())
}

// parseSymbologyParam resolves a request's symbology value. Empty values fall
// back to the given default.
func parseSymbologyParam(value string, def barcode.Symbology, defAuto bool) (barcode.Symbology, bool, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return def, defAuto, nil
	case strings.EqualFold(value, symbologyAuto):
		return barcode.SymbologyUnknown, true, nil
	}
	sym, err := barcode.ParseSymbology(value)
	if err != nil {
		return barcode.SymbologyUnknown, false, err
	}
	return sym, false, nil
}
