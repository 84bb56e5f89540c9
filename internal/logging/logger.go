// Package logging provides structured logging for refsync using zerolog.
// Terminals get a human-readable console writer, everything else gets JSON.
//
//	log := logging.Default()
//	log.Info().Str("application", "zotero").Msg("Fetching collections")
//
//	ctx := logging.WithLogger(ctx, log)
//	logging.FromContext(ctx).Debug().Msg("stage done")
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	defaultLogger zerolog.Logger

	// Nop discards everything
	Nop = zerolog.Nop()
)

func init() {
	defaultLogger = NewLogger(DefaultConfig())
}

// Default returns the default global logger
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// New creates a JSON logger writing to w at the global level
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()
}

func consoleWriter(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}
}

// isatty checks if stderr is a terminal
func isatty() bool {
	fileInfo, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fileInfo.Mode()&os.ModeCharDevice != 0
}
