// Package logging builds the zerolog loggers used by the pipeline and CLI.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level   string    // debug, info, warn, error (default: info)
	Pretty  bool      // human-readable console output
	NoColor bool      // disable ANSI colors in pretty mode
	Output  io.Writer // default: os.Stderr
}

// New creates a structured logger. The level is applied to the returned
// logger only; the zerolog global level is left untouched.
func New(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.TimeOnly,
			NoColor:    cfg.NoColor,
		}
	}

	return zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level. Unknown names map to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// ForStage returns a child logger carrying the stage name and kind.
func ForStage(l zerolog.Logger, name, kind string) zerolog.Logger {
	return l.With().
		Str("stage", name).
		Str("kind", kind).
		Logger()
}
