package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Level  string
	Format string
}

// New builds the process logger. Unknown levels fall back to info and are
// reported through the returned error so callers can log them.
func New(opts Options) (*slog.Logger, error) {
	return NewWithWriter(os.Stdout, opts)
}

func NewWithWriter(writer io.Writer, opts Options) (*slog.Logger, error) {
	level, levelErr := ParseLevel(opts.Level)
	handlerOptions := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		handler = slog.NewJSONHandler(writer, handlerOptions)
	default:
		handler = slog.NewTextHandler(writer, handlerOptions)
	}
	return slog.New(handler), levelErr
}

func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", value)
	}
}
