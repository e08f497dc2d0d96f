// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger. Logs go to stderr so that CSV written to
// stdout stays machine readable.
func Setup(level, format string) error {
	return setup(os.Stderr, level, format)
}

func setup(w io.Writer, level, format string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	switch strings.ToLower(format) {
	case "json":
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	case "", "console":
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
	default:
		return fmt.Errorf("unknown log format %q (expected console or json)", format)
	}
	return nil
}
