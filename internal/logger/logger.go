package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns the process logger. Level defaults to info and can be
// overridden with LOG_LEVEL.
func New(component string) zerolog.Logger {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", "finacore").
		Str("component", component).
		Logger()
}
