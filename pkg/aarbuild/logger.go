package aarbuild

import (
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Fields are structured attributes attached to log records
type Fields map[string]interface{}

var (
	globalLogger *slog.Logger
	loggerMu     sync.RWMutex
)

// ParseLogLevel maps a config level name to a slog level. Unknown names
// map to info.
func ParseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
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

// NewLogger creates a slog logger writing to w. format is "json" or "text".
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewLoggerFromConfig creates the logger described by config
func NewLoggerFromConfig(w io.Writer, config *Config) *slog.Logger {
	return NewLogger(w, ParseLogLevel(config.LogLevel), config.LogFormat)
}

// SetLogger replaces the package logger
func SetLogger(logger *slog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	globalLogger = logger
}

// GetLogger returns the package logger, falling back to slog.Default
func GetLogger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// WithFields returns the package logger with fields attached
func WithFields(fields Fields) *slog.Logger {
	return withFields(GetLogger(), fields)
}

func withFields(logger *slog.Logger, fields Fields) *slog.Logger {
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return logger.With(args...)
}
