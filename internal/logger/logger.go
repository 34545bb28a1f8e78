package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is a log level name as written in config.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config describes where and how to log.
type Config struct {
	Level  Level  `toml:"level"`
	Format Format `toml:"format"`
	Output string `toml:"output"`
}

// New builds a slog.Logger from config. Unknown levels fall back to info and
// unknown formats to text.
func New(config Config) *slog.Logger {
	return slog.New(newHandler(config, writerFor(config.Output)))
}

func writerFor(output string) io.Writer {
	switch output {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	case "discard":
		return io.Discard
	}
	file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fail to open log file %q, using stdout: %s\n", output, err)
		return os.Stdout
	}
	return file
}

func newHandler(config Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(config.Level)}
	if Format(strings.ToLower(string(config.Format))) == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(l Level) slog.Level {
	switch Level(strings.ToLower(string(l))) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
