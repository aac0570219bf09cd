package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/tradeworks-payout-ledger/internal/config"
)

// NewLogger builds the JSON slog.Logger both binaries log through. Unknown
// level names fall back to info. Source locations are attached only at
// debug level.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})

	logger := slog.New(handler).With("app", cfg.Application.Name)
	logger.Info("logger initialized", "level", level)

	return logger
}

func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
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
