package search

import "github.com/hailam/chessplay/internal/board"

// Move ordering scores. Higher sorts earlier.
const (
	ttMoveScore  = 200000
	rootPVScore  = 100000
	captureBase  = 10000
	killerScore1 = 9000
	killerScore2 = 8000
)

// MoveOrderer holds the per-search killer and history tables used to score
// moves for sorting before each node's move loop.
type MoveOrderer struct {
	killers [MaxPly][2]board.Move
	history [12][64]int
}

// NewMoveOrderer creates an empty move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets killers and history for a new game.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] = 0
		}
	}
}

// ScoreMoves assigns an ordering score to every move in moves.
func (mo *MoveOrderer) ScoreMoves(pos *board.Board, moves *board.MoveList, ply int, ttMove, pvMove board.Move) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = mo.scoreMove(moves.Get(i), ply, ttMove, pvMove)
	}
	return scores
}

func (mo *MoveOrderer) scoreMove(m board.Move, ply int, ttMove, pvMove board.Move) int {
	if m == ttMove {
		return ttMoveScore
	}
	if m == pvMove {
		return rootPVScore
	}
	if m.IsCapture() && !m.IsPromotion() {
		moverType := m.Piece().Type()
		return (6 - int(moverType)) + int(m.CapturedType())*100 + captureBase
	}
	if m == mo.killers[ply][0] {
		return killerScore1
	}
	if m == mo.killers[ply][1] {
		return killerScore2
	}
	return mo.history[m.Piece()][m.To()]
}

// ScoreCaptures assigns MVV/LVA-only scores to a capture list, for
// quiescence ordering (no TT/PV/killer context there).
func (mo *MoveOrderer) ScoreCaptures(moves *board.MoveList) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		moverType := m.Piece().Type()
		scores[i] = (6 - int(moverType)) + int(m.CapturedType())*100
	}
	return scores
}

// SortMoves sorts moves by score descending using selection sort: at each
// index, pick the maximum of the remaining slice and swap it into place.
func SortMoves(moves *board.MoveList, scores []int) {
	n := moves.Len()
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			moves.Swap(i, best)
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}

// UpdateKillers records m as the newest killer move at ply, demoting the
// previous first killer to second.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory bumps the history score for a quiet move that raised alpha.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int) {
	mo.history[m.Piece()][m.To()] += depth
}
