// Package logging provides structured logging for the lamp daemon,
// built on log/slog with level, format, and output selection from config.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls logger construction. Zero values mean info-level text
// logging to stdout.
type Config struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	Output string `yaml:"output"` // stdout or stderr
}

// Logger wraps slog.Logger. All methods are safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New creates a Logger from the given configuration.
func New(cfg Config) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Default creates a logger for use before configuration is loaded:
// info-level text on stdout.
func Default() *Logger {
	return New(Config{})
}

// With returns a new Logger carrying additional default attributes,
// typically a component name:
//
//	mqttLog := log.With("component", "mqtt")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
