package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

func NewJSONLogger(service, level string) *slog.Logger {
	return newJSONLogger(os.Stdout, service, level)
}

// Install builds the JSON logger and makes it the process default, so
// package-level slog calls carry the service attribute.
func Install(service, level string) *slog.Logger {
	return InstallTo(os.Stdout, service, level)
}

// InstallTo is Install with an explicit sink; the CLI logs to stderr so
// stdout carries only the summary.
func InstallTo(w io.Writer, service, level string) *slog.Logger {
	logger := newJSONLogger(w, service, level)
	slog.SetDefault(logger)
	return logger
}

func newJSONLogger(w io.Writer, service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
