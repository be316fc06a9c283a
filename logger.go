package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// newLogger builds the console logger shared across the service.
func newLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Logger()
}
