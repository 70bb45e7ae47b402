// Package perft counts leaf nodes of the legal-move tree below a position,
// for validating move generation and make-move against known node counts.
package perft

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessplay/internal/board"
)

// Count returns the number of leaf nodes at depth below pos.
func Count(pos *board.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}
	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		child := pos.Copy()
		child.MakeMove(moves.Get(i))
		nodes += Count(child, depth-1)
	}
	return nodes
}

// CountParallel is Count with the root ply fanned out across
// runtime.GOMAXPROCS(0) goroutines, one board clone per root move. This is
// the only place in the module that runs more than one goroutine over
// board/search state — every goroutine below the root owns an independent
// clone, so nothing here needs synchronization beyond the errgroup itself.
func CountParallel(pos *board.Board, depth int) (uint64, error) {
	if depth <= 1 {
		return Count(pos, depth), nil
	}

	moves := pos.GenerateLegalMoves()
	counts := make([]uint64, moves.Len())

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < moves.Len(); i++ {
		i := i
		g.Go(func() error {
			child := pos.Copy()
			child.MakeMove(moves.Get(i))
			counts[i] = Count(child, depth-1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total uint64
	for _, c := range counts {
		total += c
	}
	return total, nil
}

// Divide reports the perft count contributed by each legal root move, in
// UCI "divide" format, for isolating a move-generation bug to a single move.
func Divide(pos *board.Board, depth int) (string, uint64) {
	moves := pos.GenerateLegalMoves()
	var sb strings.Builder
	var total uint64

	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		child := pos.Copy()
		child.MakeMove(move)
		n := Count(child, depth-1)
		total += n
		fmt.Fprintf(&sb, "%s: %d\n", move.String(), n)
	}
	fmt.Fprintf(&sb, "\nTotal: %d\n", total)
	return sb.String(), total
}
