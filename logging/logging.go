// Package logging constructs the structured loggers used across the module.
// Components log nothing by default; setting PIPELINES_LOG_LEVEL or supplying
// a logger explicitly turns output on.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// LevelEnvVar names the environment variable controlling the default log level
const LevelEnvVar = "PIPELINES_LOG_LEVEL"

// ParseLevel translates a textual log level into a zerolog.Level. Empty or
// unrecognized levels disable logging.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.Disabled
	}
}

// New builds a structured logger writing to w at the given level
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Default builds the module-wide default logger: stderr, leveled by
// PIPELINES_LOG_LEVEL, silent when the variable is unset
func Default() zerolog.Logger {
	return New(os.Stderr, ParseLevel(os.Getenv(LevelEnvVar)))
}
