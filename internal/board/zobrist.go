package board

// Zobrist hash keys: process-lifetime constants generated once from a fixed
// seed, so the same binary always hashes the same position the same way.
var (
	pieceKeys      [12][64]uint64 // indexed by Piece (WhitePawn..BlackKing)
	castleKeys     [16]uint64
	doublePushKeys [64]uint64 // indexed by the en-passant target (the square the pushed pawn passed over)
	sideKey        uint64
)

func init() {
	initZobrist()
}

// prng is a xorshift64* generator used only to seed the fixed Zobrist
// tables at boot; it is never reseeded or used again afterward.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234)

	for p := WhitePawn; p < NoPiece; p++ {
		for sq := A1; sq <= H8; sq++ {
			pieceKeys[p][sq] = rng.next()
		}
	}
	for file := 0; file < 8; file++ {
		_ = file
	}
	for sq := A1; sq <= H8; sq++ {
		doublePushKeys[sq] = rng.next()
	}
	for i := 0; i < 16; i++ {
		castleKeys[i] = rng.next()
	}
	sideKey = rng.next()
}

// ZobristPiece returns the key for a colored piece standing on sq.
func ZobristPiece(piece Piece, sq Square) uint64 {
	return pieceKeys[piece][sq]
}

// ZobristDoublePush returns the key for an en-passant target square.
func ZobristDoublePush(sq Square) uint64 {
	return doublePushKeys[sq]
}

// ZobristCastling returns the key for a castle-rights combination.
func ZobristCastling(cr CastlingRights) uint64 {
	return castleKeys[cr]
}

// ZobristSideToMove returns the key XORed in whenever it is Black to move.
func ZobristSideToMove() uint64 {
	return sideKey
}

// ComputeHash recomputes the Zobrist hash for p from scratch: XOR of keys
// for every piece-on-square, the castle-rights key, the en-passant key if
// set, and the side key if Black to move.
func ComputeHash(p *Board) uint64 {
	var h uint64
	for piece := WhitePawn; piece < NoPiece; piece++ {
		c := piece.Color()
		pt := piece.Type()
		bb := p.Pieces[c][pt]
		for bb != 0 {
			sq := bb.PopLSB()
			h ^= ZobristPiece(piece, sq)
		}
	}
	h ^= ZobristCastling(p.CastlingRights)
	if p.EnPassant != NoSquare {
		h ^= ZobristDoublePush(p.EnPassant)
	}
	if p.SideToMove == Black {
		h ^= ZobristSideToMove()
	}
	return h
}
