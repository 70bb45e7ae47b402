package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// fileVersion is the wire-format version this loader writes and expects.
const fileVersion int32 = 1

// netHash chains a fixed architecture fingerprint through the feature
// transformer and every linear/activation layer, the same construction
// Stockfish's own NNUE loader uses: mismatches signal a weight file built
// for a different network shape, not a data checksum failure.
func netHash() uint32 {
	h := featureHash()
	h = linearLayerHash(h, L1Out)
	h += creluHash
	h = linearLayerHash(h, L2Out)
	h += creluHash
	h = linearLayerHash(h, 1) // L3 has no trailing activation
	return h
}

func featureHash() uint32 {
	return setHash ^ uint32(Features)
}

func fileHash() uint32 {
	return setHash ^ uint32(Features) ^ netHash()
}

const creluHash uint32 = 0x538D24C7

func linearLayerHash(prev uint32, out int) uint32 {
	return (0xCC03DAE4 + uint32(out)) ^ (prev >> 1) ^ (prev << 31)
}

// LoadWeights reads a network from filename in the wire format: version,
// file hash, description, feature hash, feature-transformer bias+weights,
// net hash, then each linear layer's bias and weights in order. A hash
// mismatch is logged as a warning and loading continues — an older file
// from a slightly different build is usable, just unverified.
func (n *Network) LoadWeights(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open weights file: %w", err)
	}
	defer f.Close()
	return n.loadFrom(f)
}

func (n *Network) loadFrom(r io.Reader) error {
	var version int32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if version != fileVersion {
		log.Warn().Int32("got", version).Int32("want", fileVersion).Msg("nnue: weight file version mismatch, continuing")
	}

	var gotFileHash uint32
	if err := binary.Read(r, binary.LittleEndian, &gotFileHash); err != nil {
		return fmt.Errorf("read file hash: %w", err)
	}
	if want := fileHash(); gotFileHash != want {
		log.Warn().Uint32("got", gotFileHash).Uint32("want", want).Msg("nnue: file hash mismatch, continuing")
	}

	var descLen int32
	if err := binary.Read(r, binary.LittleEndian, &descLen); err != nil {
		return fmt.Errorf("read description length: %w", err)
	}
	if descLen < 0 || descLen > 1<<20 {
		return fmt.Errorf("implausible description length: %d", descLen)
	}
	desc := make([]byte, descLen)
	if _, err := io.ReadFull(r, desc); err != nil {
		return fmt.Errorf("read description: %w", err)
	}

	var gotFeatureHash uint32
	if err := binary.Read(r, binary.LittleEndian, &gotFeatureHash); err != nil {
		return fmt.Errorf("read feature hash: %w", err)
	}
	if want := featureHash(); gotFeatureHash != want {
		log.Warn().Uint32("got", gotFeatureHash).Uint32("want", want).Msg("nnue: feature hash mismatch, continuing")
	}

	if err := binary.Read(r, binary.LittleEndian, &n.FTBias); err != nil {
		return fmt.Errorf("read feature-transformer bias: %w", err)
	}
	for i := 0; i < HalfSize; i++ {
		if err := binary.Read(r, binary.LittleEndian, &n.FTWeights[i]); err != nil {
			return fmt.Errorf("read feature-transformer weights at %d: %w", i, err)
		}
	}

	var gotNetHash uint32
	if err := binary.Read(r, binary.LittleEndian, &gotNetHash); err != nil {
		return fmt.Errorf("read net hash: %w", err)
	}
	if want := netHash(); gotNetHash != want {
		log.Warn().Uint32("got", gotNetHash).Uint32("want", want).Msg("nnue: net hash mismatch, continuing")
	}

	if err := readLayer(r, n.L1Bias[:], n.L1Weights[:]); err != nil {
		return fmt.Errorf("read L1: %w", err)
	}
	if err := readLayer(r, n.L2Bias[:], n.L2Weights[:]); err != nil {
		return fmt.Errorf("read L2: %w", err)
	}
	var l3Bias [1]int32
	var l3Weights [1][L2Out]int8
	if err := readLayer(r, l3Bias[:], l3Weights[:]); err != nil {
		return fmt.Errorf("read L3: %w", err)
	}
	n.L3Bias = l3Bias[0]
	n.L3Weights = l3Weights[0]

	return nil
}

// readLayer reads OUT int32 biases followed by OUT rows of IN int8
// weights (row-major, output-major), per the wire format.
func readLayer[IN any](r io.Reader, bias []int32, weights []IN) error {
	if err := binary.Read(r, binary.LittleEndian, bias); err != nil {
		return fmt.Errorf("bias: %w", err)
	}
	for i := range weights {
		if err := binary.Read(r, binary.LittleEndian, &weights[i]); err != nil {
			return fmt.Errorf("weights row %d: %w", i, err)
		}
	}
	return nil
}

// SaveWeights writes n in the same wire format LoadWeights reads, with
// desc as the free-form description field.
func (n *Network) SaveWeights(filename, desc string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create weights file: %w", err)
	}
	defer f.Close()
	return n.saveTo(f, desc)
}

func (n *Network) saveTo(w io.Writer, desc string) error {
	if err := binary.Write(w, binary.LittleEndian, fileVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, fileHash()); err != nil {
		return err
	}
	descBytes := []byte(desc)
	if err := binary.Write(w, binary.LittleEndian, int32(len(descBytes))); err != nil {
		return err
	}
	if _, err := w.Write(descBytes); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, featureHash()); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, n.FTBias); err != nil {
		return err
	}
	for i := 0; i < HalfSize; i++ {
		if err := binary.Write(w, binary.LittleEndian, n.FTWeights[i]); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, netHash()); err != nil {
		return err
	}
	if err := writeLayer(w, n.L1Bias[:], n.L1Weights[:]); err != nil {
		return err
	}
	if err := writeLayer(w, n.L2Bias[:], n.L2Weights[:]); err != nil {
		return err
	}
	return writeLayer(w, []int32{n.L3Bias}, [][L2Out]int8{n.L3Weights})
}

func writeLayer[IN any](w io.Writer, bias []int32, weights []IN) error {
	if err := binary.Write(w, binary.LittleEndian, bias); err != nil {
		return err
	}
	for i := range weights {
		if err := binary.Write(w, binary.LittleEndian, weights[i]); err != nil {
			return err
		}
	}
	return nil
}
