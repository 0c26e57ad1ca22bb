// Package logger builds the application's zerolog.Logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/aanand-mishra/college-api/internal/config"
)

// New returns a logger configured for env.
//
//	prod:    JSON, info and above
//	staging: JSON, debug and above
//	dev:     human-readable console output, debug and above
func New(env string) zerolog.Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter is New writing to out.
func NewWithWriter(env string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	switch env {
	case config.EnvProd:
		return zerolog.New(out).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	case config.EnvStaging:
		return zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	default:
		console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		return zerolog.New(console).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}
}
