package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func New(env string) zerolog.Logger {
	return NewWithWriter(env, os.Stderr)
}

func NewWithWriter(env string, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if env == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", "fleet-service").
		Logger()
}
