package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Format selects the log encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Options configures the logger.
type Options struct {
	Level   zerolog.Level
	Format  Format
	Output  io.Writer
	NoColor bool
}

// New builds the CLI logger. Console output is the default; logs go to
// stderr so command output on stdout stays clean.
func New(opts Options) zerolog.Logger {
	if opts.Level == zerolog.NoLevel {
		opts.Level = zerolog.InfoLevel
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Format != FormatJSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.TimeOnly,
			NoColor:    opts.NoColor,
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	return zerolog.New(out).
		With().
		Timestamp().
		Logger().
		Level(opts.Level)
}

// ParseLevel parses a level name, falling back to info.
func ParseLevel(value string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(s); err == nil {
		return lvl
	}
	return zerolog.InfoLevel
}

// ParseFormat parses a format name, falling back to console.
func ParseFormat(value string) Format {
	if strings.EqualFold(strings.TrimSpace(value), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatConsole
}
