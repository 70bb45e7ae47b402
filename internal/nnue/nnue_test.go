package nnue

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
	"github.com/stretchr/testify/require"
)

// newTestNetwork returns a small deterministic network so these tests don't
// depend on a weights file being present.
func newTestNetwork() *Network {
	net := NewNetwork()
	net.InitRandom(12345)
	return net
}

// ComputeFull must agree before and after a null move: HalfKP features are
// keyed on king square and piece placement, neither of which a null move
// touches.
func TestRefreshMatchesAfterNullMove(t *testing.T) {
	net := newTestNetwork()
	pos, err := board.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	var before Accumulator
	before.ComputeFull(pos, net)

	null := pos.Copy()
	null.MakeNullMove()

	var after Accumulator
	after.ComputeFull(null, net)

	require.Equal(t, before.White, after.White)
	require.Equal(t, before.Black, after.Black)
}

// ApplyDeltas after a non-king move must match a from-scratch ComputeFull on
// the resulting position.
func TestIncrementalUpdateMatchesRefreshForNonKingMove(t *testing.T) {
	net := newTestNetwork()
	pos := board.NewPosition()

	var acc Accumulator
	acc.ComputeFull(pos, net)

	child := pos.Copy()
	pawn := board.NewPiece(board.Pawn, board.White)
	move := board.NewDoublePush(board.E2, board.E4, pawn)
	require.False(t, move.IsCapture())
	deltas := child.MakeMove(move)

	acc.ApplyDeltas(child, deltas, net)

	var want Accumulator
	want.ComputeFull(child, net)

	require.Equal(t, want.White, acc.White)
	require.Equal(t, want.Black, acc.Black)
}

// A king move relocates the king square that every HalfKP feature for that
// perspective is keyed on, so ApplyDeltas must fall back to a full refresh
// for that side rather than patch individual feature columns. The refreshed
// perspective trivially equals ComputeFull; this only pins down that the
// fallback actually happens.
func TestIncrementalUpdateForcesRefreshOnKingMove(t *testing.T) {
	net := newTestNetwork()
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	var acc Accumulator
	acc.ComputeFull(pos, net)

	child := pos.Copy()
	king := board.NewPiece(board.King, board.White)
	move := board.NewMove(board.E1, board.D1, king)
	deltas := child.MakeMove(move)

	acc.ApplyDeltas(child, deltas, net)

	var want Accumulator
	want.ComputeFull(child, net)

	require.Equal(t, want.White, acc.White)
	require.Equal(t, want.Black, acc.Black)
}

// Evaluator.Push/Refresh/Update wire the same accumulator contract through
// the per-search stack used by the engine, not just the bare Accumulator.
func TestEvaluatorUpdateMatchesRefresh(t *testing.T) {
	ev, err := NewEvaluator("")
	require.NoError(t, err)

	pos := board.NewPosition()
	ev.Refresh(pos)
	baseline := ev.Evaluate(pos)
	require.Equal(t, baseline, ev.Evaluate(pos))

	ev.Push()
	child := pos.Copy()
	pawn := board.NewPiece(board.Pawn, board.White)
	move := board.NewDoublePush(board.D2, board.D4, pawn)
	deltas := child.MakeMove(move)
	ev.Update(child, deltas)
	incremental := ev.Evaluate(child)

	ev2, err := NewEvaluator("")
	require.NoError(t, err)
	ev2.Refresh(child)
	refreshed := ev2.Evaluate(child)

	require.Equal(t, refreshed, incremental)
}
