// Package nnue implements the HalfKP NNUE evaluator: an incrementally
// updated feature transformer feeding a small quantized feed-forward
// network, giving search a leaf evaluation that costs O(changed pieces)
// per move instead of a full board rescan.
package nnue

import "github.com/hailam/chessplay/internal/board"

// HalfKP feature-set dimensions.
const (
	NumKingSquares  = 64
	NumPieceTypes   = 10 // 5 non-king types x 2 colors
	NumPieceSquares = 64

	// HalfSize is the per-perspective input dimension: 64 king squares
	// times (10*64 piece-on-square slots + 1 unused slot for the +1 term).
	HalfSize = NumKingSquares * (NumPieceTypes*NumPieceSquares + 1) // 41024

	// Features is the feature transformer's accumulator width per
	// perspective.
	Features = 256

	L1Out = 32
	L2Out = 32
)

// setHash is the HalfKP feature-set identifier baked into the weight file
// header, per the file format's hash chain.
const setHash uint32 = 0x5D69D5B9 ^ 1

// ClampedReLU clamps a wider accumulator value to the int8 activation
// range [0, 127] used between quantized linear layers.
func ClampedReLU(x int32) int8 {
	if x < 0 {
		return 0
	}
	if x > 127 {
		return 127
	}
	return int8(x)
}

// Evaluator ties a loaded Network to a per-search accumulator stack.
type Evaluator struct {
	net   *Network
	stack *AccumulatorStack
}

// NewEvaluator loads weights from weightsFile, or falls back to small
// deterministic random weights (useful for tests and boards with no
// network configured) when weightsFile is empty.
func NewEvaluator(weightsFile string) (*Evaluator, error) {
	net := NewNetwork()

	if weightsFile != "" {
		if err := net.LoadWeights(weightsFile); err != nil {
			return nil, err
		}
	} else {
		net.InitRandom(12345)
	}

	return &Evaluator{
		net:   net,
		stack: NewAccumulatorStack(),
	}, nil
}

// Evaluate returns the network's score in centipawns from the side to
// move's perspective, computing the accumulator from scratch if the top
// of the stack has not been populated yet.
func (e *Evaluator) Evaluate(pos *board.Board) int {
	acc := e.stack.Current()
	if !acc.Computed {
		acc.ComputeFull(pos, e.net)
	}
	return e.net.Forward(acc, pos.SideToMove)
}

// Push descends one ply: the new top-of-stack accumulator starts as a copy
// of the current one, ready for Update or Refresh to change in place. Call
// before MakeMove.
func (e *Evaluator) Push() {
	e.stack.Push()
}

// Pop ascends one ply, discarding the current accumulator. Call after a
// search frame returns (no undo is needed since boards are cloned, not
// mutated in place across ply boundaries).
func (e *Evaluator) Pop() {
	e.stack.Pop()
}

// Refresh forces a full recomputation of both perspectives' accumulators,
// used when evaluating or searching from a brand new position.
func (e *Evaluator) Refresh(pos *board.Board) {
	e.stack.Current().ComputeFull(pos, e.net)
}

// Update applies a move's piece-delta list to the current accumulator,
// refreshing a perspective fully if that perspective's king relocated.
func (e *Evaluator) Update(pos *board.Board, deltas []board.PieceDelta) {
	e.stack.Current().ApplyDeltas(pos, deltas, e.net)
}

// Reset clears the accumulator stack for a new game.
func (e *Evaluator) Reset() {
	e.stack.Reset()
}
