package nnue

import "github.com/hailam/chessplay/internal/board"

// Network holds the feature transformer and the three quantized linear
// layers that follow it.
type Network struct {
	// Feature transformer: HalfSize -> Features, shared by both
	// perspectives (the perspective only changes which features fire).
	FTWeights [HalfSize][Features]int16
	FTBias    [Features]int16

	// L1: int8 in 2*Features -> int32 out L1Out.
	L1Weights [L1Out][2 * Features]int8
	L1Bias    [L1Out]int32

	// L2: int8 in L1Out -> int32 out L2Out.
	L2Weights [L2Out][L1Out]int8
	L2Bias    [L2Out]int32

	// L3: int8 in L2Out -> int32 scalar.
	L3Weights [L2Out]int8
	L3Bias    int32
}

// NewNetwork allocates a zero-weight network; callers must LoadWeights or
// InitRandom before use.
func NewNetwork() *Network {
	return &Network{}
}

// Forward evaluates the network for the given accumulator, returning a
// centipawn-like score in sideToMove's perspective.
func (n *Network) Forward(acc *Accumulator, sideToMove board.Color) int {
	var stmAcc, nstmAcc *[Features]int16
	if sideToMove == board.White {
		stmAcc, nstmAcc = &acc.White, &acc.Black
	} else {
		stmAcc, nstmAcc = &acc.Black, &acc.White
	}

	var input [2 * Features]int8
	for i := 0; i < Features; i++ {
		input[i] = ClampedReLU(int32(stmAcc[i]))
		input[Features+i] = ClampedReLU(int32(nstmAcc[i]))
	}

	var l1Out [L1Out]int8
	for o := 0; o < L1Out; o++ {
		sum := n.L1Bias[o]
		for i := 0; i < 2*Features; i++ {
			sum += int32(input[i]) * int32(n.L1Weights[o][i])
		}
		l1Out[o] = ClampedReLU(sum >> 6)
	}

	var l2Out [L2Out]int8
	for o := 0; o < L2Out; o++ {
		sum := n.L2Bias[o]
		for i := 0; i < L1Out; i++ {
			sum += int32(l1Out[i]) * int32(n.L2Weights[o][i])
		}
		l2Out[o] = ClampedReLU(sum >> 6)
	}

	sum := n.L3Bias
	for i := 0; i < L2Out; i++ {
		sum += int32(l2Out[i]) * int32(n.L3Weights[i])
	}

	return int(sum / 16)
}

// InitRandom seeds small deterministic weights for boards with no weight
// file configured. Not meant to play well — only to keep the evaluator
// well-defined in tests and ad-hoc runs.
func (n *Network) InitRandom(seed int64) {
	state := uint64(seed)
	next := func() int32 {
		state = state*6364136223846793005 + 1442695040888963407
		return int32((state>>48)&0xFF) - 128
	}

	for i := 0; i < HalfSize; i++ {
		for j := 0; j < Features; j++ {
			n.FTWeights[i][j] = int16(next() >> 5)
		}
	}
	for j := 0; j < Features; j++ {
		n.FTBias[j] = int16(next() >> 3)
	}

	clamp8 := func(v int32) int8 {
		if v > 127 {
			return 127
		}
		if v < -128 {
			return -128
		}
		return int8(v)
	}

	for o := 0; o < L1Out; o++ {
		for i := 0; i < 2*Features; i++ {
			n.L1Weights[o][i] = clamp8(next() >> 6)
		}
		n.L1Bias[o] = next()
	}
	for o := 0; o < L2Out; o++ {
		for i := 0; i < L1Out; i++ {
			n.L2Weights[o][i] = clamp8(next() >> 6)
		}
		n.L2Bias[o] = next()
	}
	for i := 0; i < L2Out; i++ {
		n.L3Weights[i] = clamp8(next() >> 6)
	}
	n.L3Bias = next() * 100
}
