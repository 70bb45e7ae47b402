package search

import "github.com/hailam/chessplay/internal/board"

// Flag indicates which kind of bound a transposition entry's score is.
type Flag uint8

const (
	Exact Flag = iota
	Alpha      // upper bound: true score <= stored score
	Beta       // lower bound: true score >= stored score
)

// entry is the 128-bit packed transposition record: key occupies the low
// 64 bits, the high 64 bits hold depth(15) | score(32) | flags(2) |
// bestMove.from(6) | bestMove.to(6) | bestMove.type(3). The best move's
// piece and captured-type are not stored — they are re-derived by probing
// the live board at from/to, the same trick the format this is grounded on
// uses, since a probe always happens with board context at hand. The
// promoted piece of a promotion is not stored either, so a stored promotion
// comes back carrying the pawn and does not equal the move that was stored.
type entry struct {
	lo uint64 // key
	hi uint64 // depth | score | flags | move
}

const (
	hiDepthShift = 0
	hiDepthMask  = 0x7FFF

	hiScoreShift = 15
	hiScoreMask  = 0xFFFFFFFF

	hiFlagsShift = 47
	hiFlagsMask  = 0x3

	hiFromShift = 49
	hiFromMask  = 0x3F

	hiToShift = 55
	hiToMask  = 0x3F

	hiTypeShift = 61
	hiTypeMask  = 0x7
)

func packEntry(key uint64, depth int, score int, flag Flag, best board.Move) entry {
	var hi uint64
	hi |= uint64(depth) & hiDepthMask << hiDepthShift
	hi |= (uint64(int32(score)) & hiScoreMask) << hiScoreShift
	hi |= (uint64(flag) & hiFlagsMask) << hiFlagsShift
	if best != board.NoMove {
		hi |= (uint64(best.From()) & hiFromMask) << hiFromShift
		hi |= (uint64(best.To()) & hiToMask) << hiToShift
		hi |= (uint64(best.Type()) & hiTypeMask) << hiTypeShift
	} else {
		hi |= hiFromMask << hiFromShift // from==0x3F is not a valid square, doubles as "no move"
	}
	return entry{lo: key, hi: hi}
}

func (e entry) depth() int {
	return int((e.hi >> hiDepthShift) & hiDepthMask)
}

func (e entry) score() int {
	return int(int32(uint32((e.hi >> hiScoreShift) & hiScoreMask)))
}

func (e entry) flag() Flag {
	return Flag((e.hi >> hiFlagsShift) & hiFlagsMask)
}

func (e entry) hasMove() bool {
	return (e.hi>>hiFromShift)&hiFromMask != hiFromMask
}

// bestMove reconstructs the packed best move against pos: the piece and
// captured type are read off the board rather than stored.
func (e entry) bestMove(pos *board.Board) board.Move {
	if !e.hasMove() {
		return board.NoMove
	}
	from := board.Square((e.hi >> hiFromShift) & hiFromMask)
	to := board.Square((e.hi >> hiToShift) & hiToMask)
	mt := board.MoveType((e.hi >> hiTypeShift) & hiTypeMask)

	piece := pos.PieceAt(from)
	capturedType := board.NoPieceType
	if captured := pos.PieceAt(to); captured != board.NoPiece && captured.Color() != pos.SideToMove {
		capturedType = captured.Type()
	}

	switch mt {
	case board.Promote:
		return board.NewPromotion(from, to, piece)
	case board.DoublePush:
		return board.NewDoublePush(from, to, piece)
	case board.KingCastle:
		return board.NewKingCastle(from, to, piece)
	case board.QueenCastle:
		return board.NewQueenCastle(from, to, piece)
	case board.EnPassantCapture:
		return board.NewEnPassant(from, to, piece)
	default:
		if capturedType != board.NoPieceType {
			return board.NewCapture(from, to, piece, capturedType)
		}
		return board.NewMove(from, to, piece)
	}
}

// Entry is the caller-facing, unpacked view Probe returns.
type Entry struct {
	Depth int
	Score int
	Flag  Flag
	Move  board.Move
}

// Table is a fixed-size transposition table with depth-preferred
// replacement, indexed by hash modulo table size.
type Table struct {
	entries []entry
	mask    uint64

	hits   uint64
	probes uint64
}

// NewTable creates a table sized to approximately sizeMB megabytes, rounded
// down to a power of two entry count for a mask-based index.
func NewTable(sizeMB int) *Table {
	const entrySize = 16 // bytes, two uint64 words
	numEntries := roundDownToPowerOf2(uint64(sizeMB) * 1024 * 1024 / entrySize)
	if numEntries == 0 {
		numEntries = 1
	}
	return &Table{
		entries: make([]entry, numEntries),
		mask:    numEntries - 1,
	}
}

func roundDownToPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe returns the entry for hash and true if its key matches; the score
// is mate-adjusted for ply before return.
func (t *Table) Probe(pos *board.Board, hash uint64, ply int) (Entry, bool) {
	t.probes++
	idx := hash & t.mask
	e := t.entries[idx]
	if e.lo != hash {
		return Entry{}, false
	}
	t.hits++
	return Entry{
		Depth: e.depth(),
		Score: AdjustScoreFromTT(e.score(), ply),
		Flag:  e.flag(),
		Move:  e.bestMove(pos),
	}, true
}

// Store writes an entry for hash, replacing the existing slot only if the
// new depth is at least the stored depth (depth-preferred replacement).
// The score is mate-adjusted for ply before storage.
func (t *Table) Store(hash uint64, depth int, score int, flag Flag, best board.Move, ply int) {
	idx := hash & t.mask
	if depth < t.entries[idx].depth() {
		return
	}
	t.entries[idx] = packEntry(hash, depth, AdjustScoreToTT(score, ply), flag, best)
}

// Clear resets the table for a new game.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = entry{}
	}
	t.hits = 0
	t.probes = 0
}

// HashFull returns the permille of the table with a nonzero key, sampled
// over the first 1000 entries (or fewer if the table is smaller).
func (t *Table) HashFull() int {
	sample := 1000
	if uint64(sample) > uint64(len(t.entries)) {
		sample = len(t.entries)
	}
	used := 0
	for i := 0; i < sample; i++ {
		if t.entries[i].lo != 0 {
			used++
		}
	}
	if sample == 0 {
		return 0
	}
	return used * 1000 / sample
}

// HitRate returns the probe hit rate as a percentage.
func (t *Table) HitRate() float64 {
	if t.probes == 0 {
		return 0
	}
	return float64(t.hits) / float64(t.probes) * 100
}

// Size returns the number of entries in the table.
func (t *Table) Size() uint64 {
	return uint64(len(t.entries))
}

// AdjustScoreFromTT converts a mate score stored relative to the position
// back to being relative to the root, by ply.
func AdjustScoreFromTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT converts a root-relative mate score to one relative to
// the position being stored, by ply.
func AdjustScoreToTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
