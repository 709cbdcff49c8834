//nolint:lll
package config

// Config represents the complete configuration for gs1decode.
// It includes settings for all commands (decode, batch, serve) and
// supports loading from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Decoder defaults shared by all commands
	Decoder DecoderConfig `mapstructure:"decoder" yaml:"decoder" json:"decoder"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch decoding configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// DecoderConfig contains decoding defaults.
type DecoderConfig struct {
	// DefaultSymbology is one of ean13, upca, itf14, ean8 or auto.
	DefaultSymbology string `mapstructure:"default_symbology" yaml:"default_symbology" json:"default_symbology"`
	// Language is a BCP 47 tag used for region display names.
	Language string `mapstructure:"language" yaml:"language" json:"language"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string          `mapstructure:"host" yaml:"host" json:"host"`
	Port            int             `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string          `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxBodyKB       int             `mapstructure:"max_body_kb" yaml:"max_body_kb" json:"max_body_kb"`
	MaxBatchSize    int             `mapstructure:"max_batch_size" yaml:"max_batch_size" json:"max_batch_size"`
	TimeoutSec      int             `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int             `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
	WebSocket       WebSocketConfig `mapstructure:"websocket" yaml:"websocket" json:"websocket"`
}

// RateLimitConfig contains per-client request limits.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int  `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxCodesPerDay    int  `mapstructure:"max_codes_per_day" yaml:"max_codes_per_day" json:"max_codes_per_day"`
}

// WebSocketConfig contains streaming decode settings.
type WebSocketConfig struct {
	MessagesPerSecond float64 `mapstructure:"messages_per_second" yaml:"messages_per_second" json:"messages_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst" json:"burst"`
	MaxMessageKB      int     `mapstructure:"max_message_kb" yaml:"max_message_kb" json:"max_message_kb"`
}

// BatchConfig contains batch decoding settings.
type BatchConfig struct {
	Workers         int      `mapstructure:"workers" yaml:"workers" json:"workers"`
	ContinueOnError bool     `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns" json:"include_patterns"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns" json:"exclude_patterns"`
}
