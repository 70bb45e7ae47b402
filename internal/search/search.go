package search

import (
	"sync/atomic"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/nnue"
)

// Score constants. MateScore leaves headroom below Infinity for ply-shifted
// mate scores stored in the transposition table.
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128

	nullMoveReduction = 2
)

// stopped is the sentinel negamax/quiescence return when the search was
// cut off mid-frame; every caller up the stack propagates it unchanged.
const stopped = -Infinity - 1

// futilityMargin[d] bounds how far a quiet move's post-move eval may trail
// alpha at depth d and still be skipped outright. Only consulted for d<=3.
var futilityMargin = [4]int{0, 200, 300, 700}

type pvLine struct {
	length int
	moves  [MaxPly]board.Move
}

// StopFunc is polled roughly every 2^14 nodes; returning true asks the
// search to wind down at the next opportunity.
type StopFunc func() bool

// Searcher runs a single-threaded negamax search. It owns the transposition
// table, move orderer, NNUE accumulator stack, and repetition history
// outright — nothing here is shared across goroutines, so none of it needs
// locking.
type Searcher struct {
	tt      *Table
	orderer *MoveOrderer
	eval    *nnue.Evaluator

	nodes uint64
	stop  atomic.Bool

	shouldStop StopFunc

	rootHistory []uint64
	searchHash  [MaxPly]uint64

	pv      pvLine
	prevPV  [MaxPly]board.Move
	prevLen int

	excluded []board.Move
}

// NewSearcher creates a searcher over an existing transposition table and
// NNUE evaluator, both supplied by the engine so they outlive any one call.
func NewSearcher(tt *Table, eval *nnue.Evaluator) *Searcher {
	return &Searcher{
		tt:      tt,
		orderer: NewMoveOrderer(),
		eval:    eval,
	}
}

// Reset clears node count and the stop flag for a new search call, without
// touching move-ordering state or the transposition table.
func (s *Searcher) Reset() {
	s.nodes = 0
	s.stop.Store(false)
}

// ClearOrderer drops killer and history tables, e.g. between games.
func (s *Searcher) ClearOrderer() {
	s.orderer.Clear()
}

// SetStopFunc installs the periodic stop predicate (deadline, external
// stop signal, node cap) polled during search.
func (s *Searcher) SetStopFunc(f StopFunc) {
	s.shouldStop = f
}

// Stop requests the search halt at its next poll.
func (s *Searcher) Stop() {
	s.stop.Store(true)
}

// IsStopped reports whether the search has been halted.
func (s *Searcher) IsStopped() bool {
	return s.stop.Load()
}

// Nodes returns the number of nodes visited so far.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// SetRootHistory supplies the game's hash history up to and including the
// position about to be searched, for repetition detection.
func (s *Searcher) SetRootHistory(hashes []uint64) {
	s.rootHistory = hashes
}

// SetExcludedMoves excludes root moves from consideration (multi-PV).
func (s *Searcher) SetExcludedMoves(moves []board.Move) {
	s.excluded = moves
}

func (s *Searcher) isExcludedAtRoot(m board.Move) bool {
	for _, e := range s.excluded {
		if e == m {
			return true
		}
	}
	return false
}

// SetPreviousPV records the PV found at the prior iterative-deepening
// depth, consulted by move ordering's root-PV bonus.
func (s *Searcher) SetPreviousPV(pv []board.Move) {
	s.prevLen = copy(s.prevPV[:], pv)
}

func (s *Searcher) pvMoveAt(ply int) board.Move {
	if ply < s.prevLen {
		return s.prevPV[ply]
	}
	return board.NoMove
}

// GetPV returns the principal variation found by the most recent Search.
func (s *Searcher) GetPV() []board.Move {
	out := make([]board.Move, s.pv.length)
	copy(out, s.pv.moves[:s.pv.length])
	return out
}

// Search runs a single fixed-depth negamax search from pos with window
// [alpha, beta) and returns the best root move and its score.
func (s *Searcher) Search(pos *board.Board, depth, alpha, beta int) (board.Move, int) {
	s.pv.length = 0
	score := s.negamax(pos, depth, 0, alpha, beta, &s.pv)
	if score == stopped || s.pv.length == 0 {
		return board.NoMove, score
	}
	return s.pv.moves[0], score
}

func (s *Searcher) isRepetition(hash uint64, ply int) bool {
	for _, h := range s.rootHistory {
		if h == hash {
			return true
		}
	}
	for i := 0; i < ply; i++ {
		if s.searchHash[i] == hash {
			return true
		}
	}
	return false
}

func (s *Searcher) pollStop() bool {
	if s.stop.Load() {
		return true
	}
	if s.nodes&0x3FFF == 0 && s.shouldStop != nil && s.shouldStop() {
		s.stop.Store(true)
		return true
	}
	return false
}

// staticEval returns pos's evaluation from its side to move's perspective,
// blending the NNUE network with the incrementally maintained classical
// material+PST term — the same combination both stand-pat and futility
// pruning read off of.
func (s *Searcher) staticEval(pos *board.Board) int {
	return (s.eval.Evaluate(pos) + int(pos.Eval)) / 2
}

// negamax searches pos to depth at ply, within window [alpha, beta), and
// fills pv with the principal variation found.
func (s *Searcher) negamax(pos *board.Board, depth, ply int, alpha, beta int, pv *pvLine) int {
	pv.length = 0

	if ply > 0 {
		if s.isRepetition(pos.Hash, ply) {
			return 0
		}
		if pos.HalfMoveClock >= 100 || pos.IsInsufficientMaterial() {
			return 0
		}
	}
	s.searchHash[ply] = pos.Hash

	inCheck := pos.InCheck()
	if inCheck {
		depth++
	}

	if depth <= 0 {
		return s.quiescence(pos, ply, alpha, beta)
	}

	s.nodes++
	if s.pollStop() {
		return stopped
	}

	isPV := beta-alpha > 1

	ttMove := board.NoMove
	if entry, ok := s.tt.Probe(pos, pos.Hash, ply); ok {
		ttMove = entry.Move
		if entry.Depth >= depth && !isPV {
			switch entry.Flag {
			case Exact:
				return entry.Score
			case Alpha:
				if entry.Score <= alpha {
					return alpha
				}
			case Beta:
				if entry.Score >= beta {
					return beta
				}
			}
		}
	}

	if !inCheck && ply != 0 && !isPV {
		nullChild := pos.Copy()
		s.eval.Push()
		nullChild.MakeNullMove()
		var discard pvLine
		nullScore := -s.negamax(nullChild, depth-1-nullMoveReduction, ply, -beta, -beta+1, &discard)
		s.eval.Pop()
		if nullScore == stopped {
			return stopped
		}
		if nullScore >= beta {
			return beta
		}
	}

	moves := pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if inCheck {
			return -(MateScore + depth)
		}
		return 0
	}

	pvMove := s.pvMoveAt(ply)
	scores := s.orderer.ScoreMoves(pos, moves, ply, ttMove, pvMove)
	SortMoves(moves, scores)

	hashFlag := Alpha
	bestMove := board.NoMove
	movesSearched := 0
	var childPV pvLine

	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		if ply == 0 && s.isExcludedAtRoot(move) {
			continue
		}

		child := pos.Copy()
		s.eval.Push()
		deltas := child.MakeMove(move)
		s.eval.Update(child, deltas)

		if !inCheck && !isPV && movesSearched > 0 && depth <= 3 && move.IsQuiet() {
			evalAfterMove := -s.staticEval(child)
			if evalAfterMove+futilityMargin[depth] <= alpha && !child.InCheck() {
				s.eval.Pop()
				continue
			}
		}

		var score int
		switch {
		case movesSearched == 0:
			score = -s.negamax(child, depth-1, ply+1, -beta, -alpha, &childPV)
		default:
			if movesSearched >= 4 && depth >= 3 && !inCheck && move.IsQuiet() {
				score = -s.negamax(child, depth-2, ply+1, -alpha-1, -alpha, &childPV)
			} else {
				score = alpha + 1
			}
			if score > alpha {
				score = -s.negamax(child, depth-1, ply+1, -beta, -alpha, &childPV)
			}
		}

		s.eval.Pop()
		movesSearched++

		if score == stopped {
			return stopped
		}

		if score > alpha {
			alpha = score
			bestMove = move
			hashFlag = Exact

			if move.IsQuiet() {
				s.orderer.UpdateHistory(move, depth)
			}

			pv.moves[ply] = move
			for p := ply + 1; p < childPV.length; p++ {
				pv.moves[p] = childPV.moves[p]
			}
			pv.length = childPV.length
			if pv.length <= ply {
				pv.length = ply + 1
			}
		}

		if score >= beta {
			s.tt.Store(pos.Hash, depth, beta, Beta, bestMove, ply)
			if move.IsQuiet() {
				s.orderer.UpdateKillers(move, ply)
			}
			return beta
		}
	}

	if movesSearched == 0 {
		if inCheck {
			return -(MateScore + depth)
		}
		return 0
	}

	s.tt.Store(pos.Hash, depth, alpha, hashFlag, bestMove, ply)
	return alpha
}

// quiescence extends the search along captures only, until the position is
// quiet, returning a stand-pat-bounded evaluation.
func (s *Searcher) quiescence(pos *board.Board, ply int, alpha, beta int) int {
	s.nodes++
	if s.pollStop() {
		return stopped
	}

	standPat := s.staticEval(pos)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}
	if ply >= MaxPly-1 {
		return alpha
	}

	captures := pos.GenerateCaptures()
	scores := s.orderer.ScoreCaptures(captures)
	SortMoves(captures, scores)

	for i := 0; i < captures.Len(); i++ {
		move := captures.Get(i)

		child := pos.Copy()
		s.eval.Push()
		deltas := child.MakeMove(move)
		s.eval.Update(child, deltas)

		score := -s.quiescence(child, ply+1, -beta, -alpha)
		s.eval.Pop()

		if score == stopped {
			return stopped
		}
		if score > alpha {
			alpha = score
		}
		if score >= beta {
			return beta
		}
	}

	return alpha
}
