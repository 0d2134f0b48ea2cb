package logger

import (
	"log/slog"
	"os"
)

// Logger is the logging interface used throughout driftwatch. It wraps
// structured leveled logging plus a mechanism to attach context.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// With returns a new Logger carrying the given structured context.
	With(args ...any) Logger
}

// Log is the global logger. It defaults to JSON at Info level so the
// orchestrator produces machine-readable output even before Init runs.
var Log Logger = &wrapper{l: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))}

// Init replaces the global Log with a JSON logger at the given level.
// Supported levels are "debug", "info", "warn" and "error"; anything
// else falls back to info.
func Init(level string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: ParseLevel(level)})
	Log = &wrapper{l: slog.New(handler)}
}

// ParseLevel maps a config-file level string onto a slog.Level.
func ParseLevel(level string) slog.Level {
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

type wrapper struct {
	l *slog.Logger
}

func (w *wrapper) Debug(msg string, args ...any) { w.l.Debug(msg, args...) }
func (w *wrapper) Info(msg string, args ...any)  { w.l.Info(msg, args...) }
func (w *wrapper) Warn(msg string, args ...any)  { w.l.Warn(msg, args...) }
func (w *wrapper) Error(msg string, args ...any) { w.l.Error(msg, args...) }
func (w *wrapper) With(args ...any) Logger       { return &wrapper{l: w.l.With(args...)} }
