// Command grand-chess is a UCI-speaking chess engine: bitboard move
// generation, alpha-beta search with an NNUE evaluator, read from stdin and
// written to stdout per the protocol in internal/uci.
package main

import (
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/hailam/chessplay/internal/config"
	"github.com/hailam/chessplay/internal/logging"
	"github.com/hailam/chessplay/internal/nnue"
	"github.com/hailam/chessplay/internal/search"
	"github.com/hailam/chessplay/internal/uci"
)

func main() {
	defaults := config.Defaults()

	hashMB := flag.Int("hash", defaults.HashMB, "transposition table size in MB")
	threads := flag.Int("threads", defaults.Threads, "search threads (accepted, ignored if >1)")
	evalFile := flag.String("eval-file", defaults.EvalFile, "NNUE weights file (empty uses a built-in pseudo-random network)")
	debug := flag.Bool("debug", false, "enable human-readable console logging")
	flag.Parse()
	_ = *threads

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	logging.Init(level, *debug)

	eval, err := nnue.NewEvaluator(*evalFile)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			log.Fatal().Err(err).Str("file", *evalFile).Msg("nnue: eval file is truncated")
		}
		log.Warn().Err(err).Str("file", *evalFile).Msg("nnue: failed to load eval file, falling back to the built-in network")
		eval, _ = nnue.NewEvaluator("")
	}

	eng := search.NewEngine(*hashMB, eval)

	protocol := uci.New(eng)
	protocol.Run()
	os.Exit(0)
}
