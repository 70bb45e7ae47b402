// Package uci implements a line-oriented, UCI-style protocol front end:
// one goroutine reads stdin and dispatches commands, search itself runs in
// its own goroutine so "stop" and "quit" stay responsive.
package uci

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/config"
	"github.com/hailam/chessplay/internal/perft"
	"github.com/hailam/chessplay/internal/search"
)

// UCI holds the protocol front end's mutable state: the current position,
// its hash history (for repetition detection), and in-flight search
// bookkeeping.
type UCI struct {
	engine   *search.Engine
	position *board.Board
	options  config.Options

	positionHashes []uint64

	searching     bool
	searchDone    chan struct{}
	stopRequested atomic.Bool
}

// New creates a protocol front end over eng, starting at the initial
// position.
func New(eng *search.Engine) *UCI {
	return &UCI{
		engine:   eng,
		position: board.NewPosition(),
		options:  config.Defaults(),
	}
}

// Run reads commands from stdin until "quit" or EOF.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleQuit()
		case "setoption":
			u.handleSetOption(args)
		case "d":
			fmt.Println(u.position.String())
		case "perft":
			u.handlePerft(args)
		default:
			fmt.Fprintf(os.Stderr, "info string unknown command: %s\n", cmd)
		}
	}
}

// handleUCI responds to the initial handshake.
func (u *UCI) handleUCI() {
	fmt.Println("id name grand-chess")
	fmt.Println("id author grand-chess contributors")
	fmt.Println()
	for _, opt := range config.Descriptors() {
		switch opt.Kind {
		case config.Spin:
			fmt.Printf("option name %s type spin default %s min %d max %d\n", opt.Name, opt.Default, opt.Min, opt.Max)
		case config.Check:
			fmt.Printf("option name %s type check default %s\n", opt.Name, opt.Default)
		case config.String:
			fmt.Printf("option name %s type string default %s\n", opt.Name, opt.Default)
		}
	}
	fmt.Println("uciok")
}

// handleNewGame resets engine state and the board for a fresh game.
func (u *UCI) handleNewGame() {
	u.engine.Clear()
	u.position = board.NewPosition()
	u.positionHashes = []uint64{u.position.Hash}
}

// handlePosition sets up the board from "position startpos|fen ... [moves ...]".
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	u.positionHashes = nil
	var moveStart int

	switch args[0] {
	case "startpos":
		u.position = board.NewPosition()
		moveStart = len(args)
		for i, arg := range args {
			if arg == "moves" {
				moveStart = i + 1
				break
			}
		}
	case "fen":
		fenEnd := len(args)
		for i, arg := range args[1:] {
			if arg == "moves" {
				fenEnd = i + 1
				break
			}
		}
		pos, err := board.ParseFEN(strings.Join(args[1:fenEnd], " "))
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string invalid fen: %v\n", err)
			return
		}
		u.position = pos
		moveStart = len(args)
		for i, arg := range args {
			if arg == "moves" {
				moveStart = i + 1
				break
			}
		}
	default:
		return
	}

	u.positionHashes = append(u.positionHashes, u.position.Hash)

	for i := moveStart; i < len(args); i++ {
		move, err := board.ParseMove(args[i], u.position)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string invalid move %s: %v\n", args[i], err)
			return
		}
		u.position.MakeMove(move)
		u.positionHashes = append(u.positionHashes, u.position.Hash)
	}
}

// goOptions holds parsed "go" command arguments.
type goOptions struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	Infinite  bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

func parseGoOptions(args []string) goOptions {
	var opts goOptions
	durationArg := func(i int) time.Duration {
		ms, _ := strconv.Atoi(args[i])
		return time.Duration(ms) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				opts.Nodes, _ = strconv.ParseUint(args[i+1], 10, 64)
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				opts.MoveTime = durationArg(i + 1)
				i++
			}
		case "infinite":
			opts.Infinite = true
		case "wtime":
			if i+1 < len(args) {
				opts.WTime = durationArg(i + 1)
				i++
			}
		case "btime":
			if i+1 < len(args) {
				opts.BTime = durationArg(i + 1)
				i++
			}
		case "winc":
			if i+1 < len(args) {
				opts.WInc = durationArg(i + 1)
				i++
			}
		case "binc":
			if i+1 < len(args) {
				opts.BInc = durationArg(i + 1)
				i++
			}
		case "movestogo":
			if i+1 < len(args) {
				opts.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}
	return opts
}

// handleGo parses search limits and runs the search on a copy of the
// current position in its own goroutine, so "stop" can interrupt it.
func (u *UCI) handleGo(args []string) {
	opts := parseGoOptions(args)

	u.engine.SetPositionHistory(u.positionHashes)
	u.engine.OnInfo = func(info search.Info) {
		u.sendInfo(info)
	}

	limits := search.Limits{
		Depth:    opts.Depth,
		Nodes:    opts.Nodes,
		MoveTime: opts.MoveTime,
		Infinite: opts.Infinite,
	}
	if limits.MoveTime == 0 && !limits.Infinite {
		limits.MoveTime = u.timeForMove(opts)
	}

	u.searching = true
	u.stopRequested.Store(false)
	u.searchDone = make(chan struct{})

	pos := u.position.Copy()

	go func() {
		defer close(u.searchDone)
		bestMove := u.engine.Search(pos, limits)
		u.searching = false

		if bestMove == board.NoMove {
			legal := pos.GenerateLegalMoves()
			if legal.Len() > 0 {
				bestMove = legal.Get(0)
			}
		}
		if bestMove == board.NoMove {
			fmt.Println("bestmove 0000")
			return
		}
		fmt.Printf("bestmove %s\n", bestMove.String())
	}()
}

// timeForMove allocates a per-move budget from UCI-style per-side time
// controls (wtime/btime/winc/binc/movestogo).
func (u *UCI) timeForMove(opts goOptions) time.Duration {
	var ourTime, ourInc time.Duration
	if u.position.SideToMove == board.White {
		ourTime, ourInc = opts.WTime, opts.WInc
	} else {
		ourTime, ourInc = opts.BTime, opts.BInc
	}
	if ourTime == 0 {
		return 0
	}

	movesToGo := opts.MovesToGo
	if movesToGo == 0 {
		movesToGo = u.estimateMovesRemaining()
	}

	moveTime := ourTime/time.Duration(movesToGo) + ourInc*9/10
	if max := ourTime * 9 / 10; moveTime > max {
		moveTime = max
	}
	if moveTime < 10*time.Millisecond {
		moveTime = 10 * time.Millisecond
	}
	return moveTime
}

func (u *UCI) estimateMovesRemaining() int {
	pieces := u.position.AllOccupied.PopCount()
	switch {
	case pieces > 24:
		return 40
	case pieces > 12:
		return 30
	default:
		return 20
	}
}

// sendInfo prints one "info" record in UCI wire format.
func (u *UCI) sendInfo(info search.Info) {
	var parts []string
	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))

	switch {
	case info.Score > search.MateScore-search.MaxPly:
		mateIn := (search.MateScore - info.Score + 1) / 2
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	case info.Score < -search.MateScore+search.MaxPly:
		mateIn := -(search.MateScore + info.Score + 1) / 2
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}
	if len(info.PV) > 0 {
		moves := make([]string, len(info.PV))
		for i, m := range info.PV {
			moves[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(moves, " "))
	}

	fmt.Printf("info %s\n", strings.Join(parts, " "))
}

// handleStop requests the search halt and blocks until it does.
func (u *UCI) handleStop() {
	if u.searching {
		u.stopRequested.Store(true)
		u.engine.Stop()
		<-u.searchDone
	}
}

// handleQuit stops any in-flight search and exits.
func (u *UCI) handleQuit() {
	u.handleStop()
	os.Exit(0)
}

// handleSetOption processes "setoption name <name> value <value>". Unknown
// option names are ignored, per the protocol's error-handling contract.
func (u *UCI) handleSetOption(args []string) {
	var name, value string
	readingName, readingValue := false, false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "hash":
		if mb, err := strconv.Atoi(value); err == nil && mb >= 1 {
			u.options.HashMB = mb
			u.engine.Resize(mb)
		}
	case "threads":
		// accepted and ignored: the search is single-threaded by design.
	case "evalfile":
		if err := u.engine.LoadNNUE(value); err != nil {
			fmt.Fprintf(os.Stderr, "info string failed to load eval file %s: %v\n", value, err)
			return
		}
		u.options.EvalFile = value
	case "usennue":
		u.options.UseNNUE = strings.EqualFold(value, "true")
		if !u.options.UseNNUE {
			u.engine.LoadNNUE("")
		} else if u.options.EvalFile != "" {
			u.engine.LoadNNUE(u.options.EvalFile)
		}
	}
}

// handlePerft runs a node-count test from the current position.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes, err := perft.CountParallel(u.position, depth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "info string perft error: %v\n", err)
		return
	}
	elapsed := time.Since(start)

	fmt.Printf("Nodes: %d\n", nodes)
	fmt.Printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}
