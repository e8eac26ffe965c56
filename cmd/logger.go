package cmd

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// newLogger creates the structured logger of the CLI. Logs go to stderr,
// stdout is kept for reports.
func newLogger(level string, pretty bool) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stderr
	if pretty {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}
