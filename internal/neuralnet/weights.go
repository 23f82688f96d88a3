package neuralnet

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Binary weights file constants
const (
	WeightsMagicBinary   uint32 = 0x54444731 // "TDG1"
	WeightsVersionBinary uint32 = 1
)

// textTag is the third header field of text weight files
const textTag = "tdgammon"

// Load reads a network from path. Files ending in .bin are read as binary,
// anything else as text.
func Load(path string) (*Net, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening weights file: %w", err)
	}
	defer f.Close()

	if isBinary(path) {
		return LoadBinary(bufio.NewReader(f))
	}
	return LoadText(bufio.NewReader(f))
}

// Save writes nn to path, choosing the format from the extension like Load.
func (nn *Net) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating weights file: %w", err)
	}
	w := bufio.NewWriter(f)

	if isBinary(path) {
		err = nn.WriteBinary(w)
	} else {
		err = nn.WriteText(w)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func isBinary(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".bin")
}

// LoadText reads a network in text format: a header line
// "<inputs> <hidden> tdgammon" followed by the hidden weights (row by
// row), hidden biases, output weights and output bias, whitespace separated.
func LoadText(r io.Reader) (*Net, error) {
	var inputs, hidden int
	var tag string
	if _, err := fmt.Fscan(r, &inputs, &hidden, &tag); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if tag != textTag {
		return nil, fmt.Errorf("unexpected weights tag %q", tag)
	}

	nn, err := New(inputs, hidden)
	if err != nil {
		return nil, err
	}

	read := func(what string, dst []float64) error {
		for i := range dst {
			if _, err := fmt.Fscan(r, &dst[i]); err != nil {
				return fmt.Errorf("reading %s %d: %w", what, i, err)
			}
		}
		return nil
	}

	for j := range nn.HiddenWeights {
		if err := read("hidden weight", nn.HiddenWeights[j]); err != nil {
			return nil, err
		}
	}
	if err := read("hidden bias", nn.HiddenBias); err != nil {
		return nil, err
	}
	if err := read("output weight", nn.OutputWeights); err != nil {
		return nil, err
	}
	var bias [1]float64
	if err := read("output bias", bias[:]); err != nil {
		return nil, err
	}
	nn.OutputBias = bias[0]

	return nn, nil
}

// WriteText writes nn in the format read by LoadText.
func (nn *Net) WriteText(w io.Writer) error {
	if err := nn.validate(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d %d %s\n", nn.Inputs, nn.Hidden, textTag); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	write := func(values []float64) error {
		for _, v := range values {
			if _, err := fmt.Fprintf(w, "%.17g\n", v); err != nil {
				return fmt.Errorf("writing weights: %w", err)
			}
		}
		return nil
	}

	for _, row := range nn.HiddenWeights {
		if err := write(row); err != nil {
			return err
		}
	}
	if err := write(nn.HiddenBias); err != nil {
		return err
	}
	if err := write(nn.OutputWeights); err != nil {
		return err
	}
	return write([]float64{nn.OutputBias})
}

// LoadBinary reads a network in little-endian binary format: magic,
// version, inputs and hidden as uint32, then float64 values in text order.
func LoadBinary(r io.Reader) (*Net, error) {
	var header [4]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if header[0] != WeightsMagicBinary {
		return nil, fmt.Errorf("invalid magic number: %#x (expected %#x)", header[0], WeightsMagicBinary)
	}
	if header[1] != WeightsVersionBinary {
		return nil, fmt.Errorf("unsupported weights version: %d", header[1])
	}

	nn, err := New(int(header[2]), int(header[3]))
	if err != nil {
		return nil, err
	}

	for j := range nn.HiddenWeights {
		if err := binary.Read(r, binary.LittleEndian, nn.HiddenWeights[j]); err != nil {
			return nil, fmt.Errorf("reading hidden weights: %w", err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, nn.HiddenBias); err != nil {
		return nil, fmt.Errorf("reading hidden bias: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, nn.OutputWeights); err != nil {
		return nil, fmt.Errorf("reading output weights: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &nn.OutputBias); err != nil {
		return nil, fmt.Errorf("reading output bias: %w", err)
	}

	return nn, nil
}

// WriteBinary writes nn in the format read by LoadBinary.
func (nn *Net) WriteBinary(w io.Writer) error {
	if err := nn.validate(); err != nil {
		return err
	}
	header := [4]uint32{WeightsMagicBinary, WeightsVersionBinary, uint32(nn.Inputs), uint32(nn.Hidden)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range nn.HiddenWeights {
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return fmt.Errorf("writing hidden weights: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, nn.HiddenBias); err != nil {
		return fmt.Errorf("writing hidden bias: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, nn.OutputWeights); err != nil {
		return fmt.Errorf("writing output weights: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, nn.OutputBias); err != nil {
		return fmt.Errorf("writing output bias: %w", err)
	}
	return nil
}
