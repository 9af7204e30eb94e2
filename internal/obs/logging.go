// Package obs contains observability utilities such as logging.
package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the global structured logger used by the service.
//
// Logger is exported to allow other packages to use it for logging.
var Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// InitLogger initializes the global Logger with a JSON handler on stdout.
// Unknown levels fall back to info.
func InitLogger(level string) {
	InitLoggerTo(os.Stdout, level)
}

// InitLoggerTo is InitLogger with a custom destination.
func InitLoggerTo(w io.Writer, level string) {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	Logger = slog.New(h)
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
