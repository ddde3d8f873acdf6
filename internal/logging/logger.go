// Package logging builds the single *slog.Logger handed through fx, with
// level and handler format taken from config instead of hardcoded.
package logging

import (
	"log/slog"
	"os"

	"github.com/webitel/floorqueue/config"
)

func New(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.LogLevel())

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat() == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
