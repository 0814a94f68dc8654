package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kokorev/ghcndaily/internal/config"
	"github.com/lmittmann/tint"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and sets
// it as the slog default. "text" selects a colored human-readable handler,
// anything else JSON.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := newLogger(os.Stdout, cfg.LogFormat, parseLevel(cfg.LogLevel))
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	if strings.EqualFold(format, "text") {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
