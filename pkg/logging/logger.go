// Package logging configures zerolog for the instrumentation. Components
// log through named loggers; hosts embedding the library can silence all
// instrumentation output with LevelDisabled.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel selects the minimum severity that gets written.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"

	// LevelDisabled silences instrumentation logging entirely.
	LevelDisabled LogLevel = "disabled"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer logs go to. Nil defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level. Unknown input falls back
// to info rather than failing: logging setup must never block setup of the
// instrumented client.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a logger tagged with the given component name
// (redistrace, telemetry, ...).
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Client instrumentation (shape, prefix count)
//   - Skipped re-instrumentation of an already wrapped client
//
// Info: Normal operation events
//   - Tracing initialized (exporter endpoint, sampling ratio)
//   - Demo service startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Invalid sampling configuration (falls back to default)
//   - Exporter shutdown errors
//
// Error: Error conditions requiring attention
//   - Failed telemetry initialization
//   - Redis connectivity failures in the demo service
//
// Context Fields:
//   - shape: Client shape (client, cluster, ring, unknown)
//   - cache_prefixes: Number of configured cache prefixes
//   - endpoint: OTLP collector endpoint
//   - service: OpenTelemetry service name
