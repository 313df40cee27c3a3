// Package logger provides the configured zerolog logger shared by the
// API server and the reward worker.
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a service-tagged zerolog.Logger at the given level.
// Unknown levels fall back to info.
func New(serviceName, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(os.Stdout).Level(lvl).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}
