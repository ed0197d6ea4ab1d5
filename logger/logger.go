// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Nop until Init runs, so library code can log unconditionally.
var log = zerolog.Nop()

// Init sets up console output and the global level. Default level is warn;
// verbose raises to info, debug to debug.
func Init(debug, verbose bool) {
	InitWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, debug, verbose)
}

// InitWriter is Init with an explicit sink, used by the dashboard to keep
// log lines off the terminal the UI owns.
func InitWriter(w io.Writer, debug, verbose bool) {
	log = zerolog.New(w).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else if verbose {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func Debug() *zerolog.Event { return log.Debug() }
func Info() *zerolog.Event  { return log.Info() }
func Warn() *zerolog.Event  { return log.Warn() }
func Error() *zerolog.Event { return log.Error() }
func Fatal() *zerolog.Event { return log.Fatal() }
