// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the structured diagnostic logger. Diagnostics go
// to stderr; stdout is reserved for command output and progress lines.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

// New returns a logger writing to stderr at the given level and format.
func New(level, format string) (zerolog.Logger, error) {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter returns a logger writing to w. Level is one of debug,
// info, warn or error; format is text or json. Debug adds caller and pid.
func NewWithWriter(w io.Writer, level, format string) (zerolog.Logger, error) {
	var logLevel zerolog.Level
	switch level {
	case zerolog.LevelDebugValue:
		logLevel = zerolog.DebugLevel
	case zerolog.LevelInfoValue, "":
		logLevel = zerolog.InfoLevel
	case zerolog.LevelWarnValue:
		logLevel = zerolog.WarnLevel
	case zerolog.LevelErrorValue:
		logLevel = zerolog.ErrorLevel
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log level %q", level)
	}

	var out io.Writer
	switch format {
	case FormatJSON:
		out = w
	case FormatText, "":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log format %q", format)
	}

	if logLevel == zerolog.DebugLevel {
		return zerolog.New(out).
			Level(logLevel).
			With().
			Timestamp().
			Caller().
			Int("pid", os.Getpid()).Logger(), nil
	}
	return zerolog.New(out).
		Level(logLevel).
		With().
		Timestamp().
		Logger(), nil
}
