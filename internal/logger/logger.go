// Package logger holds the process-wide slog logger used by the heap and the
// collector. It discards everything by default; set LISPHEAP_LOG_GC to any
// non-empty value to get debug records on stderr, or call Init.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvVar enables stderr debug logging at startup when non-empty.
// "json" selects the JSON handler, anything else the text handler.
const EnvVar = "LISPHEAP_LOG_GC"

// L is the global logger instance.
var L = fromEnv()

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Writer  io.Writer  // Destination. Default: os.Stderr
	JSON    bool       // JSON records instead of text
	Level   slog.Level // Minimum log level. Default: LevelInfo when enabled
}

// Init replaces L according to opts.
func Init(opts Options) {
	L = build(opts)
}

func build(opts Options) *slog.Logger {
	if !opts.Enabled {
		return slog.New(slog.DiscardHandler)
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, ho))
	}
	return slog.New(slog.NewTextHandler(w, ho))
}

func fromEnv() *slog.Logger {
	v := os.Getenv(EnvVar)
	return build(Options{
		Enabled: v != "",
		JSON:    strings.EqualFold(v, "json"),
		Level:   slog.LevelDebug,
	})
}

// Enabled reports whether L would emit a record at level.
// Hot paths check this before building attributes.
func Enabled(level slog.Level) bool {
	return L.Handler().Enabled(context.Background(), level)
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
