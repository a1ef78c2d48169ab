package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps LOG_LEVEL style names onto slog levels, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// NewJSONHandler is the stdout handler every process writes through.
func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// Setup installs a JSON stdout logger as the slog default and returns its handler
// so it can later be fanned out alongside the database sink.
func Setup(level string) slog.Handler {
	handler := NewJSONHandler(os.Stdout, ParseLevel(level))
	slog.SetDefault(slog.New(handler))
	return handler
}
