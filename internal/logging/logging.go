package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

var (
	current = LevelInfo
	logger  = newLogger(os.Stderr, false)
)

// InitFromEnv sets the log level based on LOG_LEVEL (debug|info|error) and the
// output format based on LOG_FORMAT (console|json).
func InitFromEnv() {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "error":
		current = LevelError
	case "debug":
		current = LevelDebug
	default:
		current = LevelInfo
	}
	logger = newLogger(os.Stderr, strings.EqualFold(os.Getenv("LOG_FORMAT"), "json"))
}

// SetOutput redirects log lines, mainly for tests.
func SetOutput(w io.Writer) {
	logger = newLogger(w, true)
}

func newLogger(w io.Writer, jsonOutput bool) zerolog.Logger {
	if !jsonOutput {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func Debugf(format string, args ...interface{}) {
	if current <= LevelDebug {
		logger.Debug().Msgf(format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if current <= LevelInfo {
		logger.Info().Msgf(format, args...)
	}
}

func Warnf(format string, args ...interface{}) {
	if current <= LevelInfo {
		logger.Warn().Msgf(format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	logger.Error().Msgf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	logger.Fatal().Msgf(format, args...)
}
