package logger

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	globalLogger zerolog.Logger
	once         sync.Once
)

// GetLogger returns the global logger instance
func GetLogger() zerolog.Logger {
	once.Do(func() {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		globalLogger = zerolog.New(consoleWriter).With().Timestamp().Logger().Level(zerolog.InfoLevel)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})
	return globalLogger
}

// New constructs a zerolog logger based on level and format configuration and installs it as the global logger.
func New(level, format string) (zerolog.Logger, error) {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter is New with an explicit output.
func NewWithWriter(out io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, err
	}

	var writer zerolog.Logger
	switch strings.ToLower(format) {
	case "json":
		writer = zerolog.New(out).With().Timestamp().Logger()
	case "console":
		consoleWriter := zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
		writer = zerolog.New(consoleWriter).With().Timestamp().Logger()
	default:
		return zerolog.Logger{}, errors.New("unsupported log format")
	}

	// make sure GetLogger does not overwrite the configured logger later on
	once.Do(func() {})
	zerolog.SetGlobalLevel(lvl)
	globalLogger = writer.Level(lvl)

	return globalLogger, nil
}
