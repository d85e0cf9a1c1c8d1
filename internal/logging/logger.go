// Package logging builds the structured loggers used by the resolver and the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/funvibe/tower/internal/config"
)

const (
	DEBUG = "DEBUG"
	INFO  = "INFO"
	WARN  = "WARN"
	ERROR = "ERROR"
)

// ParseLevel maps a level name to a slog level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New creates a logger writing to dest (stderr when nil) with a text or JSON handler.
func New(level, format string, dest io.Writer) *slog.Logger {
	if dest == nil {
		dest = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			return a
		},
	}
	if strings.EqualFold(format, config.JSONLogFormat) {
		return slog.New(slog.NewJSONHandler(dest, opts))
	}
	return slog.New(slog.NewTextHandler(dest, opts))
}

// FromConfig creates the logger described by cfg.Log.
func FromConfig(cfg *config.Config, dest io.Writer) *slog.Logger {
	return New(cfg.Log.Level, cfg.Log.Format, dest)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
