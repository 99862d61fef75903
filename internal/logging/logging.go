// Package logging builds the slog logger shared by the command line tools.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phsym/console-slog"
)

// New returns a logger writing to w. WAGMAN_LOG_FORMAT=json selects JSON
// output, anything else the console handler. WAGMAN_LOG_LEVEL sets the
// minimum level (debug, info, warn, error; default info).
func New(w io.Writer) *slog.Logger {
	level := &slog.LevelVar{}
	level.Set(ParseLevel(os.Getenv("WAGMAN_LOG_LEVEL")))

	var handler slog.Handler
	if os.Getenv("WAGMAN_LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					a.Key = "ts"
				}
				return a
			},
		})
	} else {
		handler = console.NewHandler(w, &console.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
