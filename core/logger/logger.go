package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Format uint8

const (
	ConsoleFormat Format = iota
	JSONFormat
)

// Component loggers. They discard everything until Init is called, so
// packages can log freely from tests.
var (
	Root     = zerolog.Nop()
	Ledger   = zerolog.Nop()
	Oracle   = zerolog.Nop()
	API      = zerolog.Nop()
	Relay    = zerolog.Nop()
	Audit    = zerolog.Nop()
	Internal = zerolog.Nop()
)

// Options for Init
type Options struct {
	Level  zerolog.Level
	Format Format
	// Out defaults to os.Stdout.
	Out io.Writer
}

func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(level))
}

func ParseFormat(format string) (Format, error) {
	switch strings.ToLower(format) {
	case "", "console":
		return ConsoleFormat, nil
	case "json":
		return JSONFormat, nil
	default:
		return ConsoleFormat, fmt.Errorf("unknown log format %q", format)
	}
}

func Init(opts Options) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.Format == ConsoleFormat {
		out = newConsoleWriter(out)
	}
	Root = zerolog.New(out).Level(opts.Level).With().Timestamp().Logger()
	Ledger = Root.With().Str("component", "ledger").Logger()
	Oracle = Root.With().Str("component", "oracle").Logger()
	API = Root.With().Str("component", "api").Logger()
	Relay = Root.With().Str("component", "relay").Logger()
	Audit = Root.With().Str("component", "audit").Logger()
	Internal = Root.With().Str("component", "internal").Logger()
}

func newConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	cw := zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}

	cw.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	cw.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("message: \"%s\" |", i)
	}
	cw.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("\"%s\": ", i)
	}
	cw.FormatFieldValue = func(i interface{}) string {
		return fmt.Sprintf("\"%s\" |", i)
	}
	return cw
}
