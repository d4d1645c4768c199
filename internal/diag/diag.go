// Package diag configures the process-wide structured logger every
// other package receives by value: a colored console writer when
// stderr is a terminal, JSON lines otherwise, matching the pack-wide
// isatty-gated color pattern (funvibe-funxy's REPL, deepnoodle-ai-risor's
// colorable writer) built on github.com/rs/zerolog.
package diag

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Format selects the wire shape of log output.
type Format int

const (
	// Auto picks Console when stderr is a TTY, JSON otherwise.
	Auto Format = iota
	Console
	JSON
)

// New builds a logger writing to stderr at the given level. format
// overrides the TTY auto-detection; pass Auto to let isatty decide.
func New(format Format, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	useConsole := format == Console || (format == Auto && isatty.IsTerminal(os.Stderr.Fd()))

	if useConsole {
		cw := zerolog.NewConsoleWriter()
		cw.Out = os.Stderr
		cw.TimeFormat = time.Kitchen
		return zerolog.New(cw).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

// ParseFormat maps the --log flag's string value to a Format, defaulting
// to Auto for anything unrecognized.
func ParseFormat(s string) Format {
	switch s {
	case "text", "console":
		return Console
	case "json":
		return JSON
	default:
		return Auto
	}
}
