// Package logger provides leveled logging with support for debug, info, warn,
// and error levels. It wraps zerolog behind a small package-level facade so call
// sites stay printf-style.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init initializes the default logger with the specified level and format.
// Format "text" uses the human-readable console writer; anything else emits JSON.
func Init(level string, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stderr)
	if strings.ToLower(format) == "text" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
	log = logger.Level(lvl).With().Timestamp().Logger()
}

// Debug logs a message at debug level.
func Debug(format string, args ...interface{}) {
	log.Debug().Msgf(format, args...)
}

// Info logs a message at info level.
func Info(format string, args ...interface{}) {
	log.Info().Msgf(format, args...)
}

// Warn logs a message at warn level.
func Warn(format string, args ...interface{}) {
	log.Warn().Msgf(format, args...)
}

// Error logs a message at error level.
func Error(format string, args ...interface{}) {
	log.Error().Msgf(format, args...)
}

// Fatal logs a message at fatal level and exits.
func Fatal(format string, args ...interface{}) {
	log.Fatal().Msgf(format, args...)
}
