// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

const timeFmt = "01-02 15:04:05"

// ParseLevel maps a LOG_LEVEL value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New builds a slog logger backed by zerolog. Pretty selects the console writer.
func New(out io.Writer, level slog.Level, pretty bool) *slog.Logger {
	w := out
	if pretty {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: timeFmt}
	}
	zl := zerolog.New(w)
	opts := slogzerolog.Option{Level: level, Logger: &zl}
	return slog.New(opts.NewZerologHandler())
}

// Setup installs the logger as the slog default and redirects the std log package.
func Setup(out io.Writer, level string, pretty bool) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := New(out, lvl, pretty)
	slog.SetDefault(logger)
	log.SetFlags(0)
	return logger, nil
}
