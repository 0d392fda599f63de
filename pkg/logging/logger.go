// Package logging configures the process-wide zerolog logger, mirroring
// the teacher's pkg/logging/logger.go trimmed of the gRPC interceptors
// (this module has no network surface).
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

// RequestIDKey is the key used to store a caller-supplied correlation id
// in a context.Context, surfaced by FromContext.
const RequestIDKey contextKey = "request_id"

// Config controls how Setup configures the global logger.
type Config struct {
	// Level is the minimum logging level (debug, info, warn, error).
	Level string
	// Pretty renders human-readable console output instead of JSON.
	Pretty bool
	// Output is where logs are written; defaults to os.Stdout.
	Output io.Writer
}

// DefaultConfig returns the module's default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Pretty: false,
		Output: os.Stdout,
	}
}

// Setup configures the global zerolog logger from cfg.
func Setup(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// FromContext returns a logger enriched with the correlation id stored
// in ctx by RequestIDKey, if any, falling back to the global logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		return log.With().Str("request_id", requestID).Logger()
	}
	return log.Logger
}

// WithRequestID returns a child context carrying requestID for later
// retrieval via FromContext.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}
