package logx

import "log/slog"

// NewSlogAdapter wraps a *slog.Logger in the Logger interface. All
// production logging flows through slog; the indirection exists so
// packages depend on the narrow interface instead of slog directly.
func NewSlogAdapter(base *slog.Logger) Logger {
	return slogLogger{base: base}
}

type slogLogger struct {
	base *slog.Logger
}

func (l slogLogger) Debug(msg string, fields ...Field) { l.base.Debug(msg, attrs(fields)...) }

func (l slogLogger) Info(msg string, fields ...Field) { l.base.Info(msg, attrs(fields)...) }

func (l slogLogger) Warn(msg string, fields ...Field) { l.base.Warn(msg, attrs(fields)...) }

func (l slogLogger) Error(msg string, fields ...Field) { l.base.Error(msg, attrs(fields)...) }

func (l slogLogger) With(fields ...Field) Logger {
	return slogLogger{base: l.base.With(attrs(fields)...)}
}

// Sync is a no-op. slog handlers write synchronously.
func (l slogLogger) Sync() error { return nil }

func attrs(fields []Field) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}
