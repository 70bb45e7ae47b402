package board

import "fmt"

// MoveType distinguishes the move kinds make-move must special-case.
type MoveType uint8

const (
	Quiet MoveType = iota
	DoublePush
	KingCastle
	QueenCastle
	Capture
	EnPassantCapture
	Promote
)

// Move is a packed 32-bit move: to:6, from:6, type:4, piece:4, captured:3.
// Promote moves carry the promoted piece (colored) in the piece field; the
// original pawn is implicit from the mover's side to move. Captures carry
// the captured piece *type* only — its color is always the opposing side.
type Move uint32

const (
	toShift       = 0
	fromShift     = 6
	typeShift     = 12
	pieceShift    = 16
	capturedShift = 20

	toMask       = 0x3F
	fromMask     = 0x3F
	typeMask     = 0xF
	pieceMask    = 0xF
	capturedMask = 0x7
)

// NoMove represents an invalid or null move.
const NoMove Move = 0xFFFFFFFF

func pack(to, from Square, mt MoveType, piece Piece, captured PieceType) Move {
	return Move(to&toMask)<<toShift |
		Move(from&fromMask)<<fromShift |
		Move(mt&typeMask)<<typeShift |
		Move(piece&pieceMask)<<pieceShift |
		Move(captured&capturedMask)<<capturedShift
}

// NewMove creates a quiet move.
func NewMove(from, to Square, piece Piece) Move {
	return pack(to, from, Quiet, piece, NoPieceType)
}

// NewDoublePush creates a pawn double-push move.
func NewDoublePush(from, to Square, piece Piece) Move {
	return pack(to, from, DoublePush, piece, NoPieceType)
}

// NewCapture creates a non-special capture, recording the captured type.
func NewCapture(from, to Square, piece Piece, captured PieceType) Move {
	return pack(to, from, Capture, piece, captured)
}

// NewPromotion creates a non-capturing promotion move; promoted is the
// colored promoted piece.
func NewPromotion(from, to Square, promoted Piece) Move {
	return pack(to, from, Promote, promoted, NoPieceType)
}

// NewPromotionCapture creates a capturing promotion move.
func NewPromotionCapture(from, to Square, promoted Piece, captured PieceType) Move {
	return pack(to, from, Promote, promoted, captured)
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square, piece Piece) Move {
	return pack(to, from, EnPassantCapture, piece, Pawn)
}

// NewKingCastle creates a kingside castling move (king's own movement).
func NewKingCastle(from, to Square, piece Piece) Move {
	return pack(to, from, KingCastle, piece, NoPieceType)
}

// NewQueenCastle creates a queenside castling move (king's own movement).
func NewQueenCastle(from, to Square, piece Piece) Move {
	return pack(to, from, QueenCastle, piece, NoPieceType)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> toShift) & toMask)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square((m >> fromShift) & fromMask)
}

// Type returns the move type.
func (m Move) Type() MoveType {
	return MoveType((m >> typeShift) & typeMask)
}

// Piece returns the moving piece (or, for Promote, the promoted piece).
func (m Move) Piece() Piece {
	return Piece((m >> pieceShift) & pieceMask)
}

// CapturedType returns the captured piece type, or NoPieceType if this move
// does not capture.
func (m Move) CapturedType() PieceType {
	return PieceType((m >> capturedShift) & capturedMask)
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Type() == Promote
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	t := m.Type()
	return t == KingCastle || t == QueenCastle
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Type() == EnPassantCapture
}

// IsCapture returns true if this move captures a piece (including en
// passant).
func (m Move) IsCapture() bool {
	return m.Type() == Capture || m.Type() == EnPassantCapture || (m.Type() == Promote && m.CapturedType() != NoPieceType)
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()

	if m.IsPromotion() {
		promoChars := "_nbrq_"
		s += string(promoChars[m.Piece().Type()])
	}

	return s
}

// ParseMove parses a UCI-style long algebraic move string against a
// position, disambiguating double pushes, castling, en passant, and
// promotions from the target square and board context.
func ParseMove(s string, pos *Board) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("move string too short: %q", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()
	capturedType := pos.PieceAt(to).Type()
	if capturedType == NoPieceType {
		capturedType = NoPieceType
	}

	if len(s) == 5 {
		var promoType PieceType
		switch s[4] {
		case 'n':
			promoType = Knight
		case 'b':
			promoType = Bishop
		case 'r':
			promoType = Rook
		case 'q':
			promoType = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		promoted := NewPiece(promoType, piece.Color())
		if !pos.IsEmpty(to) {
			return pack(to, from, Promote, promoted, capturedType), nil
		}
		return NewPromotion(from, to, promoted), nil
	}

	if pt == King && abs(int(to)-int(from)) == 2 {
		if to.File() == 6 {
			return NewKingCastle(from, to, piece), nil
		}
		return NewQueenCastle(from, to, piece), nil
	}

	if pt == Pawn && to == pos.EnPassant && pos.IsEmpty(to) {
		return NewEnPassant(from, to, piece), nil
	}

	if pt == Pawn && abs(to.Rank()-from.Rank()) == 2 {
		return NewDoublePush(from, to, piece), nil
	}

	if !pos.IsEmpty(to) {
		return NewCapture(from, to, piece, capturedType), nil
	}

	return NewMove(from, to, piece), nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
