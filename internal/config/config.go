package config

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"golang.org/x/text/language"
)

// SymbologyAuto selects the symbology from the digit count of each code.
const SymbologyAuto = "auto"

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Decoder: DecoderConfig{
			DefaultSymbology: "ean13",
			Language:         "en",
		},
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxBodyKB:       256,
			MaxBatchSize:    1000,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerMinute: 600,
				RequestsPerHour:   20000,
				MaxCodesPerDay:    100000,
			},
			WebSocket: WebSocketConfig{
				MessagesPerSecond: 20,
				Burst:             40,
				MaxMessageKB:      64,
			},
		},
		Batch: BatchConfig{
			Workers:         4,
			ContinueOnError: false,
			Recursive:       false,
			IncludePatterns: []string{"*.txt", "*.csv"},
			ExcludePatterns: []string{},
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "csv", "yaml"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if _, _, err := c.Symbology(); err != nil {
		return err
	}
	if _, err := c.Language(); err != nil {
		return err
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxBodyKB <= 0 {
		return fmt.Errorf("invalid max body size: %d (must be positive)", c.Server.MaxBodyKB)
	}
	if c.Server.MaxBatchSize <= 0 {
		return fmt.Errorf("invalid max batch size: %d (must be positive)", c.Server.MaxBatchSize)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RequestsPerMinute <= 0 || c.Server.RateLimit.RequestsPerHour <= 0 {
			return fmt.Errorf("invalid rate limit: requests per minute and hour must be positive")
		}
		if c.Server.RateLimit.MaxCodesPerDay < 0 {
			return fmt.Errorf("invalid max codes per day: %d (must not be negative)", c.Server.RateLimit.MaxCodesPerDay)
		}
	}
	if c.Server.WebSocket.MessagesPerSecond <= 0 || c.Server.WebSocket.Burst <= 0 {
		return fmt.Errorf("invalid websocket limits: messages per second and burst must be positive")
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	return nil
}

// Symbology resolves decoder.default_symbology. The bool result is true when
// the symbology should be detected per code.
func (c *Config) Symbology() (barcode.Symbology, bool, error) {
	name := strings.ToLower(strings.TrimSpace(c.Decoder.DefaultSymbology))
	if name == "" || name == SymbologyAuto {
		return barcode.SymbologyUnknown, true, nil
	}
	sym, err := barcode.ParseSymbology(name)
	if err != nil {
		return barcode.SymbologyUnknown, false, fmt.Errorf("invalid decoder.default_symbology: %w", err)
	}
	return sym, false, nil
}

// Language resolves decoder.language.
func (c *Config) Language() (language.Tag, error) {
	tag, err := barcode.ParseLanguage(c.Decoder.Language)
	if err != nil {
		return language.Und, fmt.Errorf("invalid decoder.language %q: %w", c.Decoder.Language, err)
	}
	return tag, nil
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
