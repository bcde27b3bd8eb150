// Package logging configures the process-wide zerolog logger (ambient
// stack §A.1), grounded on the teacher's cmd/cryptorun/main.go setup:
// console-formatted output on stderr with RFC3339 timestamps, level
// gated by a debug flag.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. debug lowers the level to
// DebugLevel; otherwise the level is WarnLevel and only warnings/errors
// are emitted. All output goes to stderr — stdout is reserved for
// JSON-RPC frames.
func Init(debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
