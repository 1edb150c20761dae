package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "modvault-backend"

var zlog = zerolog.Nop()

// InitStructured console output for local/dev, JSON elsewhere.
// LOG_LEVEL (debug, info, warn, error) overrides the default info level.
func InitStructured(env string) {
	var w io.Writer = os.Stdout
	switch env {
	case "development", "dev", "local":
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zlog = newLogger(w).Level(levelFromEnv())
}

// SetOutput replaces the global logger writer (JSON, no console formatting)
func SetOutput(w io.Writer) {
	zlog = newLogger(w)
}

// GetLogger returns the global zerolog logger
func GetLogger() *zerolog.Logger {
	return &zlog
}

// WithRequestID returns a logger with request_id field
func WithRequestID(requestID string) zerolog.Logger {
	return zlog.With().Str("request_id", requestID).Logger()
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("service", serviceName).Logger()
}

func levelFromEnv() zerolog.Level {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
