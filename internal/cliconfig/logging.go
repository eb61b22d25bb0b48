package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/realmbridge/pkg/log"
)

// Logger returns the CLI console logger. The level is applied process-wide so
// that a config reload can change it later through log.SetGlobalLevel.
func Logger(level string) zerolog.Logger {
	log.SetGlobalLevel(level)
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}
