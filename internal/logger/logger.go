// internal/logger/logger.go
// 結構化日誌設定

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"contact-relay/internal/config"
)

// New 建立應用程式 logger
// 正式環境輸出 JSON，開發環境輸出易讀文字
func New(cfg *config.Config, service string) *slog.Logger {
	return newWithWriter(os.Stdout, cfg, service)
}

func newWithWriter(w io.Writer, cfg *config.Config, service string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(os.Getenv("LOG_LEVEL"))}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With("service", service)
}

// parseLevel 解析 LOG_LEVEL，預設 info
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
