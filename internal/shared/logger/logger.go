package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup configures the global slog logger based on environment.
// Logs go to stderr so command output on stdout stays clean.
func Setup(env string) {
	SetupWriter(env, os.Stderr)
}

// SetupWriter is Setup with an explicit destination
func SetupWriter(env string, w io.Writer) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	switch env {
	case "production", "prod":
		// Production: JSON format, info level
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(w, opts)
	case "local", "dev", "development":
		// Development: Text format, debug level
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	default:
		// Default: Info level
		opts.Level = slog.LevelInfo
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Debug("Logger 초기화", "env", env, "level", opts.Level.Level().String())
}
