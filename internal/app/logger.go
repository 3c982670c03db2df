package app

import (
	"log/slog"
	"os"

	"delivery-dispatch/internal/logx"
)

// NewLogger builds the process-wide logger. JSON lines on stdout, info
// level and up.
func NewLogger() logx.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return logx.NewSlogAdapter(slog.New(h))
}
