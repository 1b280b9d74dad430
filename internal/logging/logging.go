// Package logging constructs the application's zerolog loggers with a
// consistent service field and output format.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New builds a logger writing to w. In console mode the output is
// human-readable with timestamps; otherwise structured JSON is emitted.
//
// Parameters:
//   - w: Destination writer (typically os.Stderr).
//   - level: Minimum level ("debug", "info", "warn", "error"); unknown
//     values fall back to "info".
//   - console: Whether to use the human-readable console writer.
//
// Returns:
//   - zerolog.Logger: The configured logger.
func New(w io.Writer, level string, console bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "daft").Logger()
}

// Nop returns a disabled logger for components that run without logging.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
