package nnue

import "github.com/hailam/chessplay/internal/board"

// Accumulator holds the feature transformer's output for both
// perspectives: bias plus the sum of weight columns for every active
// HalfKP feature.
type Accumulator struct {
	White    [Features]int16
	Black    [Features]int16
	Computed bool
}

// maxPly bounds the accumulator stack the same way search bounds its own
// ply-indexed arrays (MAX_PLY=128); the two are kept in independent
// constants since nnue must not import search.
const maxPly = 128

// AccumulatorStack is a ply-indexed stack of accumulators, one entry
// ahead of search's own ply index so Push/Pop mirror board cloning.
type AccumulatorStack struct {
	stack [maxPly + 1]Accumulator
	top   int
}

// NewAccumulatorStack creates an empty, unpopulated stack.
func NewAccumulatorStack() *AccumulatorStack {
	return &AccumulatorStack{}
}

// Push descends one ply, seeding the new top with a copy of the current
// accumulator so incremental updates have something to start from.
func (s *AccumulatorStack) Push() {
	if s.top < len(s.stack)-1 {
		s.stack[s.top+1] = s.stack[s.top]
		s.top++
	}
}

// Pop ascends one ply.
func (s *AccumulatorStack) Pop() {
	if s.top > 0 {
		s.top--
	}
}

// Current returns the accumulator at the current ply.
func (s *AccumulatorStack) Current() *Accumulator {
	return &s.stack[s.top]
}

// Reset clears the stack for a new game.
func (s *AccumulatorStack) Reset() {
	s.top = 0
	s.stack[0] = Accumulator{}
}

// ComputeFull recomputes both perspectives from scratch: bias plus every
// active feature's weight column.
func (acc *Accumulator) ComputeFull(pos *board.Board, net *Network) {
	white, black := ActiveFeatures(pos)

	copy(acc.White[:], net.FTBias[:])
	copy(acc.Black[:], net.FTBias[:])

	for _, idx := range white {
		addColumn(&acc.White, net, idx)
	}
	for _, idx := range black {
		addColumn(&acc.Black, net, idx)
	}

	acc.Computed = true
}

func addColumn(dst *[Features]int16, net *Network, idx int) {
	if idx < 0 || idx >= HalfSize {
		return
	}
	for i := 0; i < Features; i++ {
		dst[i] += net.FTWeights[idx][i]
	}
}

func subColumn(dst *[Features]int16, net *Network, idx int) {
	if idx < 0 || idx >= HalfSize {
		return
	}
	for i := 0; i < Features; i++ {
		dst[i] -= net.FTWeights[idx][i]
	}
}

// ApplyDeltas updates the accumulator for a just-made move's piece-delta
// list (appeared → add feature, vanished → subtract, relocated → both).
// If any delta moves a king, that perspective's accumulator is rebuilt
// from scratch instead, since the king square is part of every feature
// index for that perspective.
func (acc *Accumulator) ApplyDeltas(pos *board.Board, deltas []board.PieceDelta, net *Network) {
	if !acc.Computed {
		acc.ComputeFull(pos, net)
		return
	}

	whiteKingMoved, blackKingMoved := false, false
	for _, d := range deltas {
		if d.Piece.Type() == board.King {
			if d.Piece.Color() == board.White {
				whiteKingMoved = true
			} else {
				blackKingMoved = true
			}
		}
	}

	if whiteKingMoved && blackKingMoved {
		acc.ComputeFull(pos, net)
		return
	}

	whiteKing := pos.KingSquare[board.White]
	blackKing := pos.KingSquare[board.Black]

	if !whiteKingMoved {
		for _, d := range deltas {
			if d.From != board.NoSquare {
				if idx := deltaFeature(board.White, whiteKing, d.Piece, d.From); idx >= 0 {
					subColumn(&acc.White, net, idx)
				}
			}
			if d.To != board.NoSquare {
				if idx := deltaFeature(board.White, whiteKing, d.Piece, d.To); idx >= 0 {
					addColumn(&acc.White, net, idx)
				}
			}
		}
	}

	if !blackKingMoved {
		for _, d := range deltas {
			if d.From != board.NoSquare {
				if idx := deltaFeature(board.Black, blackKing, d.Piece, d.From); idx >= 0 {
					subColumn(&acc.Black, net, idx)
				}
			}
			if d.To != board.NoSquare {
				if idx := deltaFeature(board.Black, blackKing, d.Piece, d.To); idx >= 0 {
					addColumn(&acc.Black, net, idx)
				}
			}
		}
	}

	if whiteKingMoved || blackKingMoved {
		// One side's king relocated: that perspective needs a full
		// refresh (the other was already updated incrementally above).
		full := Accumulator{}
		full.ComputeFull(pos, net)
		if whiteKingMoved {
			acc.White = full.White
		}
		if blackKingMoved {
			acc.Black = full.Black
		}
	}
}
