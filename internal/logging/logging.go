// Package logging configures the process-wide zerolog logger used by
// cmd/grand-chess and internal/nnue for warn-and-continue diagnostics.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init points the global logger at stderr (so stdout stays reserved for the
// UCI wire protocol) at the given level: JSON lines by default, a
// human-readable console writer when debug is set.
func Init(level zerolog.Level, debug bool) {
	var w io.Writer = os.Stderr
	if debug {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger().Level(level)
}
