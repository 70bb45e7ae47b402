package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hailam/chessplay/internal/board"
)

// write+probe on the same key returns the written entry, modulo the
// mate-score ply shift.
func TestTableStoreThenProbeRoundTrips(t *testing.T) {
	tbl := NewTable(1)
	pos := board.NewPosition()

	move := board.NewMove(board.E2, board.E4, board.NewPiece(board.Pawn, board.White))
	tbl.Store(pos.Hash, 6, 37, Exact, move, 0)

	got, ok := tbl.Probe(pos, pos.Hash, 0)
	require.True(t, ok)
	require.Equal(t, 6, got.Depth)
	require.Equal(t, 37, got.Score)
	require.Equal(t, Exact, got.Flag)
	require.Equal(t, move, got.Move)
}

func TestTableProbeMissOnDifferentKey(t *testing.T) {
	tbl := NewTable(1)
	_, ok := tbl.Probe(board.NewPosition(), 0xDEADBEEF, 0)
	require.False(t, ok)
}

// A write with strictly smaller depth than the occupant must not replace it.
func TestTableDepthPreferredReplacement(t *testing.T) {
	tbl := NewTable(1)
	pos := board.NewPosition()
	move := board.NewMove(board.E2, board.E4, board.NewPiece(board.Pawn, board.White))

	tbl.Store(pos.Hash, 10, 100, Exact, move, 0)
	tbl.Store(pos.Hash, 3, 5, Exact, move, 0)

	got, ok := tbl.Probe(pos, pos.Hash, 0)
	require.True(t, ok)
	require.Equal(t, 10, got.Depth)
	require.Equal(t, 100, got.Score)
}

func TestAdjustScoreRoundTripsThroughToThenFromTT(t *testing.T) {
	mateScore := MateScore - 3
	ply := 4

	stored := AdjustScoreToTT(mateScore, ply)
	require.Equal(t, mateScore, AdjustScoreFromTT(stored, ply))

	// non-mate scores pass through unchanged in both directions.
	require.Equal(t, 123, AdjustScoreToTT(123, ply))
	require.Equal(t, 123, AdjustScoreFromTT(123, ply))
}
