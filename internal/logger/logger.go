package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func getSLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a console logger on stderr filtered at level.
func New(level string) *slog.Logger {
	return NewWithWriter(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}, level)
}

func NewWithWriter(w io.Writer, level string) *slog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerologLogger := zerolog.New(w).
		Level(toZerologLevel(getSLogLevel(level))).
		With().Timestamp().Logger()
	return slog.New(newZerologHandler(&zerologLogger))
}

// Discard drops every record. Tests and library callers use it as a default.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
