package runtime

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the service-wide JSON logger. The level comes from
// LOG_LEVEL (debug, info, warn, error) and defaults to info.
func NewLogger(service string) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	})
	return slog.New(h).With("service", service)
}

func logLevel() slog.Level {
	switch strings.ToLower(Getenv("LOG_LEVEL", "info")) {
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
