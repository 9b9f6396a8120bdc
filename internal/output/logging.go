package output

import (
	"io"
	"log/slog"
	"math"
)

// SetupLogger creates a text slog.Logger writing to w. Precedence is quiet,
// then debug, then verbose; the default level is Warn. Quiet silences
// everything including errors.
func SetupLogger(quiet, verbose, debug bool, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.Level(math.MaxInt)
	case debug:
		level = slog.LevelDebug
	case verbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
