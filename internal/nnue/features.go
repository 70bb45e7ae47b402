package nnue

import "github.com/hailam/chessplay/internal/board"

// FeatureIndex computes the HalfKP feature index for a piece as seen from
// perspective, given that perspective's king square. Both squares are
// XOR-flipped by 0x3F when perspective is Black, so each perspective always
// "sees" the board from its own side.
func FeatureIndex(perspective board.Color, kingSquare board.Square, piece board.Piece, pieceSquare board.Square) int {
	kingSq := kingSquare
	pieceSq := pieceSquare
	if perspective == board.Black {
		kingSq = kingSquare.FlipNNUE()
		pieceSq = pieceSquare.FlipNNUE()
	}

	colorTerm := 0
	if piece.Color() != perspective {
		colorTerm = 1
	}
	pieceTerm := (int(piece.Type()) << 1) + colorTerm

	return pieceTerm*64 + int(pieceSq) + 1 + int(kingSq)*641
}

// ActiveFeatures returns every active HalfKP feature index for both
// perspectives of pos, skipping kings (which are never features — they
// select the accumulator's king-square axis instead).
func ActiveFeatures(pos *board.Board) (white, black []int) {
	white = make([]int, 0, 32)
	black = make([]int, 0, 32)

	whiteKing := pos.KingSquare[board.White]
	blackKing := pos.KingSquare[board.Black]

	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt < board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				piece := board.NewPiece(pt, c)
				white = append(white, FeatureIndex(board.White, whiteKing, piece, sq))
				black = append(black, FeatureIndex(board.Black, blackKing, piece, sq))
			}
		}
	}

	return white, black
}

// deltaFeature returns the feature index that a PieceDelta's endpoint
// contributes for perspective, or -1 if the delta is a king (no feature).
func deltaFeature(perspective board.Color, kingSquare board.Square, piece board.Piece, sq board.Square) int {
	if piece.Type() == board.King {
		return -1
	}
	return FeatureIndex(perspective, kingSquare, piece, sq)
}
