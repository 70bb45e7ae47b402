package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/nnue"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eval, err := nnue.NewEvaluator("")
	require.NoError(t, err)
	return NewEngine(1, eval)
}

// From a mate-in-one position, a depth-2 search must return the mating move
// and a positive mate score.
func TestSearchFindsMateInOne(t *testing.T) {
	// Black king boxed in by its own pawns on f7/g7/h7; Rd1-d8# sweeps the
	// whole back rank with nothing to block or capture it.
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/8/3RK3 w - - 0 1")
	require.NoError(t, err)

	eng := newTestEngine(t)
	var scores []int
	eng.OnInfo = func(info Info) {
		scores = append(scores, info.Score)
	}
	best := eng.Search(pos, Limits{Depth: 2})

	require.NotEqual(t, board.NoMove, best)
	require.Equal(t, board.D1, best.From())
	require.Equal(t, board.D8, best.To())
	require.NotEmpty(t, scores)
	require.Greater(t, scores[len(scores)-1], MateScore-MaxPly)
}

// From the starting position, go depth 6 must emit at least six
// depth-monotonic info records and a legal bestmove.
func TestSearchEmitsMonotonicInfoFromStartPosition(t *testing.T) {
	pos := board.NewPosition()
	eng := newTestEngine(t)

	var depths []int
	eng.OnInfo = func(info Info) {
		depths = append(depths, info.Depth)
	}

	best := eng.Search(pos, Limits{Depth: 6})

	require.NotEqual(t, board.NoMove, best)
	require.GreaterOrEqual(t, len(depths), 6)
	for i := 1; i < len(depths); i++ {
		require.Greater(t, depths[i], depths[i-1])
	}

	legal := pos.GenerateLegalMoves()
	found := false
	for i := 0; i < legal.Len(); i++ {
		if legal.Get(i) == best {
			found = true
			break
		}
	}
	require.True(t, found, "bestmove must be a legal move from the root position")
}

func TestStalemateScoresZero(t *testing.T) {
	// Black to move, stalemated: Kc7/Qb6 cover a7/b7/b8, king a8 is not in
	// check and has no legal move.
	pos, err := board.ParseFEN("k7/2K5/1Q6/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)

	eng := newTestEngine(t)
	var scores []int
	eng.OnInfo = func(info Info) {
		scores = append(scores, info.Score)
	}
	best := eng.Search(pos, Limits{Depth: 1})
	require.Equal(t, board.NoMove, best)
	require.NotEmpty(t, scores)
	require.Equal(t, 0, scores[len(scores)-1])
}
