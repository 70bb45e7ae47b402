package search

import (
	"time"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/nnue"
)

// aspirationWindow is the fixed half-width (in centipawns) around the
// previous iteration's score that each new depth's search starts with.
const aspirationWindow = 50

// Limits bounds a single search call: any zero/false field is unbounded.
type Limits struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
	Infinite bool
}

// Info is one iterative-deepening progress record.
type Info struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int
}

// Engine drives iterative deepening with aspiration windows over a single
// Searcher. It is single-threaded and cooperative: Stop only sets a flag
// the searcher polls, so nothing here needs a mutex.
type Engine struct {
	tt       *Table
	searcher *Searcher
	eval     *nnue.Evaluator

	OnInfo func(Info)
}

// NewEngine creates an engine with a ttSizeMB transposition table and the
// given NNUE evaluator (shared, since only one search runs at a time).
func NewEngine(ttSizeMB int, eval *nnue.Evaluator) *Engine {
	tt := NewTable(ttSizeMB)
	return &Engine{
		tt:       tt,
		searcher: NewSearcher(tt, eval),
		eval:     eval,
	}
}

// SetPositionHistory supplies the game's hash history (for repetition
// detection) ahead of the position about to be searched.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.searcher.SetRootHistory(hashes)
}

// Clear resets the transposition table and move-ordering state for a new
// game.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.searcher.ClearOrderer()
	e.eval.Reset()
}

// Stop halts the in-progress search at its next poll.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Resize replaces the transposition table with a freshly sized one,
// discarding all entries.
func (e *Engine) Resize(sizeMB int) {
	e.tt = NewTable(sizeMB)
	e.searcher.tt = e.tt
}

// LoadNNUE replaces the evaluator's network from a weights file, leaving
// the previous network (and searches already in flight) untouched if the
// load fails.
func (e *Engine) LoadNNUE(weightsFile string) error {
	ev, err := nnue.NewEvaluator(weightsFile)
	if err != nil {
		return err
	}
	e.eval = ev
	e.searcher.eval = ev
	return nil
}

// Search runs iterative deepening with aspiration windows from pos under
// limits, calling OnInfo after every completed depth and returning the
// best move found by the last fully completed iteration.
func (e *Engine) Search(pos *board.Board, limits Limits) board.Move {
	maxDepth := MaxPly
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	start := time.Now()
	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = start.Add(limits.MoveTime)
	}

	e.searcher.Reset()
	e.eval.Refresh(pos)
	e.searcher.SetStopFunc(func() bool {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return true
		}
		if limits.Nodes > 0 && e.searcher.Nodes() >= limits.Nodes {
			return true
		}
		return false
	})

	var bestMove board.Move
	var bestPV []board.Move
	score := 0

	// Best-move stability across completed depths lets a soft move-time
	// budget (as opposed to the hard deadline/node cap enforced by the stop
	// func above) finish early once the PV has settled. While it keeps
	// flipping the budget is not shortened; it never grows past MoveTime,
	// which is also tm's maximum. baseOptimum is reset into tm before each
	// adjustment since Adjust* scale tm.optimumTime in place.
	baseOptimum := limits.MoveTime
	tm := &TimeManager{startTime: start, optimumTime: baseOptimum, maximumTime: baseOptimum}
	stability := 0
	changes := 0
	var prevBestMove board.Move

	for depth := 1; depth <= maxDepth; depth++ {
		alpha, beta := -Infinity, Infinity
		if depth > 1 {
			alpha = score - aspirationWindow
			beta = score + aspirationWindow
		}

		var move board.Move
		var s int
		for {
			move, s = e.searcher.Search(pos, depth, alpha, beta)
			if e.searcher.IsStopped() {
				break
			}
			if s <= alpha || s >= beta {
				alpha, beta = -Infinity, Infinity
				continue
			}
			break
		}

		if e.searcher.IsStopped() {
			break
		}

		score = s
		bestMove = move
		bestPV = e.searcher.GetPV()
		e.searcher.SetPreviousPV(bestPV)

		if e.OnInfo != nil {
			e.OnInfo(Info{
				Depth:    depth,
				Score:    score,
				Nodes:    e.searcher.Nodes(),
				Time:     time.Since(start),
				PV:       bestPV,
				HashFull: e.tt.HashFull(),
			})
		}

		if score > MateScore-MaxPly || score < -MateScore+MaxPly {
			break
		}

		if move == prevBestMove {
			stability++
			changes = 0
		} else {
			changes++
			stability = 0
		}
		prevBestMove = move

		if baseOptimum > 0 && !limits.Infinite {
			tm.optimumTime = baseOptimum
			if changes > 0 {
				tm.AdjustForInstability(changes)
			} else {
				tm.AdjustForStability(stability)
			}
			if tm.PastOptimum() {
				break
			}
		}
	}

	return bestMove
}

// Evaluate returns pos's static evaluation from the side to move's
// perspective, without searching.
func (e *Engine) Evaluate(pos *board.Board) int {
	e.eval.Refresh(pos)
	return e.searcher.staticEval(pos)
}
