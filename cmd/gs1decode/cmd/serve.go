package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/gs1decode/internal/config"
	"github.com/MeKo-Tech/gs1decode/internal/server"
	"github.com/spf13/cobra"
)

const (
	rateLimiterPruneInterval = 10 * time.Minute
	rateLimiterIdleTimeout   = time.Hour
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the decode API",
	Long: `Start an HTTP server that provides REST and WebSocket endpoints for
decoding GS1 codes.

The server provides the following endpoints:
  GET  /health             - Health check endpoint
  GET  /decode             - Decode ?code=...&symbology=...&lang=...
  POST /decode             - Decode a JSON {"code", "symbology", "lang"} body
  POST /decode/batch       - Decode a JSON {"codes": [...]} body in parallel
  GET  /prefixes           - List the GS1 prefix table
  GET  /prefixes/{prefix}  - Resolve one 3-digit prefix
  GET  /ws/decode          - WebSocket, one JSON request per message
  GET  /metrics            - Prometheus metrics

Examples:
  gs1decode serve
  gs1decode serve --port 8080
  gs1decode serve --host 0.0.0.0 --port 3000 --rate-limit-enabled`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		serverConfig, shutdownTimeout := configToServerConfig(cfg, cmd)

		if serverConfig.Port < 1 || serverConfig.Port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", serverConfig.Port)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		decodeServer, err := server.NewServer(serverConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}

		mux := http.NewServeMux()
		decodeServer.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(serverConfig.TimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(serverConfig.TimeoutSec) * time.Second,
		}

		if rl := decodeServer.RateLimiter(); rl != nil {
			go pruneRateLimiter(ctx, rl)
		}

		go func() {
			slog.Info("Starting decode server", "host", serverConfig.Host, "port", serverConfig.Port,
				"symbology", serverConfig.DefaultSymbology, "rate_limit", serverConfig.RateLimit.Enabled)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			slog.Info("Context cancelled, initiating shutdown")
		}

		slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
			return err
		}

		slog.Info("Graceful shutdown completed")
		return nil
	},
}

// configToServerConfig maps centralized configuration to server.Config with
// CLI flag overrides. It also returns the shutdown timeout in seconds.
func configToServerConfig(cfg *config.Config, cmd *cobra.Command) (server.Config, int) {
	sc := cfg.Server
	flags := cmd.Flags()

	if flags.Changed("host") {
		sc.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		sc.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("cors-origin") {
		sc.CORSOrigin, _ = flags.GetString("cors-origin")
	}
	if flags.Changed("max-body-kb") {
		sc.MaxBodyKB, _ = flags.GetInt("max-body-kb")
	}
	if flags.Changed("max-batch-size") {
		sc.MaxBatchSize, _ = flags.GetInt("max-batch-size")
	}
	if flags.Changed("timeout") {
		sc.TimeoutSec, _ = flags.GetInt("timeout")
	}
	if flags.Changed("shutdown-timeout") {
		sc.ShutdownTimeout, _ = flags.GetInt("shutdown-timeout")
	}
	if flags.Changed("rate-limit-enabled") {
		sc.RateLimit.Enabled, _ = flags.GetBool("rate-limit-enabled")
	}
	if flags.Changed("requests-per-minute") {
		sc.RateLimit.RequestsPerMinute, _ = flags.GetInt("requests-per-minute")
	}
	if flags.Changed("requests-per-hour") {
		sc.RateLimit.RequestsPerHour, _ = flags.GetInt("requests-per-hour")
	}
	if flags.Changed("max-codes-per-day") {
		sc.RateLimit.MaxCodesPerDay, _ = flags.GetInt("max-codes-per-day")
	}
	if flags.Changed("ws-messages-per-second") {
		sc.WebSocket.MessagesPerSecond, _ = flags.GetFloat64("ws-messages-per-second")
	}

	symbology := cfg.Decoder.DefaultSymbology
	if flags.Changed("symbology") {
		symbology, _ = flags.GetString("symbology")
	}
	lang := cfg.Decoder.Language
	if flags.Changed("lang") {
		lang, _ = flags.GetString("lang")
	}

	return server.Config{
		Host:             sc.Host,
		Port:             sc.Port,
		CORSOrigin:       sc.CORSOrigin,
		MaxBodyKB:        sc.MaxBodyKB,
		MaxBatchSize:     sc.MaxBatchSize,
		TimeoutSec:       sc.TimeoutSec,
		DefaultSymbology: symbology,
		Language:         lang,
		BatchWorkers:     cfg.Batch.Workers,
		RateLimit: server.RateLimitConfig{
			Enabled:           sc.RateLimit.Enabled,
			RequestsPerMinute: sc.RateLimit.RequestsPerMinute,
			RequestsPerHour:   sc.RateLimit.RequestsPerHour,
			MaxCodesPerDay:    sc.RateLimit.MaxCodesPerDay,
		},
		WebSocket: server.WebSocketConfig{
			MessagesPerSecond: sc.WebSocket.MessagesPerSecond,
			Burst:             sc.WebSocket.Burst,
			MaxMessageKB:      sc.WebSocket.MaxMessageKB,
		},
	}, sc.ShutdownTimeout
}

// pruneRateLimiter periodically forgets clients that have gone idle.
func pruneRateLimiter(ctx context.Context, rl *server.RateLimiter) {
	ticker := time.NewTicker(rateLimiterPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Prune(rateLimiterIdleTimeout); n > 0 {
				slog.Debug("Pruned idle rate limit clients", "removed", n, "remaining", rl.Clients())
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-body-kb", 256, "maximum request body size in KB")
	serveCmd.Flags().Int("max-batch-size", 1000, "maximum number of codes per batch request")
	serveCmd.Flags().Int("timeout", 30, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	addDecodeFlags(serveCmd)
	// Rate limiting flags
	serveCmd.Flags().Bool("rate-limit-enabled", false, "enable rate limiting")
	serveCmd.Flags().Int("requests-per-minute", 600, "maximum requests per minute per client")
	serveCmd.Flags().Int("requests-per-hour", 20000, "maximum requests per hour per client")
	serveCmd.Flags().Int("max-codes-per-day", 100000, "maximum decoded codes per day per client")
	serveCmd.Flags().Float64("ws-messages-per-second", 20, "WebSocket messages per second per connection")
}
