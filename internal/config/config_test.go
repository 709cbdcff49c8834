package config

import (
	"testing"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
)

// TestDefaultConfig verifies that DefaultConfig returns expected values.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("Expected log level 'info', got %s", cfg.LogLevel)
	}
	if cfg.Decoder.DefaultSymbology != "ean13" {
		t.Errorf("Expected default symbology 'ean13', got %s", cfg.Decoder.DefaultSymbology)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Expected output format 'text', got %s", cfg.Output.Format)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("Expected 4 batch workers, got %d", cfg.Batch.Workers)
	}
	if len(cfg.Batch.IncludePatterns) != 2 {
		t.Errorf("Expected 2 include patterns, got %v", cfg.Batch.IncludePatterns)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() does not validate: %v", err)
	}
}

// TestValidate tests validation of individual settings.
func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{"defaults", func(*Config) {}, false},
		{"debug log level", func(c *Config) { c.LogLevel = "debug" }, false},
		{"invalid log level", func(c *Config) { c.LogLevel = "trace" }, true},
		{"yaml format", func(c *Config) { c.Output.Format = "yaml" }, false},
		{"empty format is valid", func(c *Config) { c.Output.Format = "" }, false},
		{"invalid format", func(c *Config) { c.Output.Format = "xml" }, true},
		{"auto symbology", func(c *Config) { c.Decoder.DefaultSymbology = "auto" }, false},
		{"dashed symbology", func(c *Config) { c.Decoder.DefaultSymbology = "UPC-A" }, false},
		{"invalid symbology", func(c *Config) { c.Decoder.DefaultSymbology = "qr" }, true},
		{"traditional chinese", func(c *Config) { c.Decoder.Language = "zh-Hant" }, false},
		{"invalid language", func(c *Config) { c.Decoder.Language = "!!" }, true},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"negative body size", func(c *Config) { c.Server.MaxBodyKB = -1 }, true},
		{"zero batch size", func(c *Config) { c.Server.MaxBatchSize = 0 }, true},
		{"zero timeout", func(c *Config) { c.Server.TimeoutSec = 0 }, true},
		{"zero workers", func(c *Config) { c.Batch.Workers = 0 }, true},
		{"rate limit disabled ignores zero", func(c *Config) { c.Server.RateLimit.RequestsPerMinute = 0 }, false},
		{"rate limit enabled rejects zero", func(c *Config) {
			c.Server.RateLimit.Enabled = true
			c.Server.RateLimit.RequestsPerMinute = 0
		}, true},
		{"zero websocket burst", func(c *Config) { c.Server.WebSocket.Burst = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

// TestSymbology tests resolution of decoder.default_symbology.
func TestSymbology(t *testing.T) {
	tests := []struct {
		value string
		want  barcode.Symbology
		auto  bool
	}{
		{"ean13", barcode.SymbologyEAN13, false},
		{"upca", barcode.SymbologyUPCA, false},
		{"ITF-14", barcode.SymbologyITF14, false},
		{"ean8", barcode.SymbologyEAN8, false},
		{"auto", barcode.SymbologyUnknown, true},
		{"", barcode.SymbologyUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Decoder.DefaultSymbology = tt.value

			sym, auto, err := cfg.Symbology()
			if err != nil {
				t.Fatalf("Symbology() unexpected error: %v", err)
			}
			if sym != tt.want || auto != tt.auto {
				t.Errorf("Symbology() = %v, %v; want %v, %v", sym, auto, tt.want, tt.auto)
			}
		})
	}
}

// TestLanguage tests resolution of decoder.language.
func TestLanguage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Decoder.Language = "de"

	tag, err := cfg.Language()
	if err != nil {
		t.Fatalf("Language() unexpected error: %v", err)
	}
	if tag.String() != "de" {
		t.Errorf("Expected tag 'de', got %s", tag)
	}
}

// TestContains tests the contains helper function.
func TestContains(t *testing.T) {
	slice := []string{"a", "b", "c"}

	if !contains(slice, "b") {
		t.Error("contains() should find 'b'")
	}
	if contains(slice, "d") {
		t.Error("contains() should not find 'd'")
	}
	if contains(nil, "a") {
		t.Error("contains() on nil slice should be false")
	}
}
