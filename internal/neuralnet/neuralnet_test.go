package neuralnet

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func testNet(t *testing.T) *Net {
	t.Helper()
	nn, err := NewRandom(DefaultInputs, DefaultHidden, 0.5, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	return nn
}

func testInput(n int) []float64 {
	input := make([]float64, n)
	for i := range input {
		if i%4 == 0 {
			input[i] = 1.0
		} else if i%7 == 0 {
			input[i] = 0.5
		}
	}
	return input
}

func TestZeroNetOutputsHalf(t *testing.T) {
	nn, err := New(3, 2)
	require.NoError(t, err)
	require.InDelta(t, 0.5, nn.Output([]float64{1, 0, 1}), 1e-12)
}

func TestOutputByHand(t *testing.T) {
	nn, err := New(2, 1)
	require.NoError(t, err)
	nn.HiddenWeights[0] = []float64{1, -1}
	nn.HiddenBias[0] = 0.5
	nn.OutputWeights[0] = 2
	nn.OutputBias = -1

	h := sigmoid(1*0.3 - 1*0.8 + 0.5)
	want := sigmoid(2*h - 1)
	require.InDelta(t, want, nn.Output([]float64{0.3, 0.8}), 1e-12)
}

func TestOutputRange(t *testing.T) {
	nn := testNet(t)
	out := nn.Output(testInput(DefaultInputs))
	require.Greater(t, out, 0.0)
	require.Less(t, out, 1.0)

	// Repeated calls reuse buffers without changing the result
	require.Equal(t, out, nn.Output(testInput(DefaultInputs)))
}

func TestOutputPanicsOnWrongSize(t *testing.T) {
	nn := testNet(t)
	require.Panics(t, func() { nn.Output(make([]float64, 10)) })
}

func TestNewRejectsBadDimensions(t *testing.T) {
	_, err := New(0, 40)
	require.Error(t, err)
	_, err = New(198, -1)
	require.Error(t, err)
	_, err = New(1<<16, 1<<16)
	require.Error(t, err)
}

func TestTextRoundTrip(t *testing.T) {
	nn := testNet(t)
	var buf bytes.Buffer
	require.NoError(t, nn.WriteText(&buf))

	loaded, err := LoadText(&buf)
	require.NoError(t, err)
	require.Equal(t, nn.HiddenWeights, loaded.HiddenWeights)
	require.Equal(t, nn.OutputBias, loaded.OutputBias)
	require.Equal(t, nn.Output(testInput(DefaultInputs)), loaded.Output(testInput(DefaultInputs)))
}

func TestBinaryRoundTrip(t *testing.T) {
	nn := testNet(t)
	var buf bytes.Buffer
	require.NoError(t, nn.WriteBinary(&buf))

	loaded, err := LoadBinary(&buf)
	require.NoError(t, err)
	require.Equal(t, nn.HiddenWeights, loaded.HiddenWeights)
	require.Equal(t, nn.HiddenBias, loaded.HiddenBias)
	require.Equal(t, nn.OutputWeights, loaded.OutputWeights)
}

func TestSaveLoadByExtension(t *testing.T) {
	nn := testNet(t)
	dir := t.TempDir()

	for _, name := range []string{"net.txt", "net.bin"} {
		path := filepath.Join(dir, name)
		require.NoError(t, nn.Save(path))
		loaded, err := Load(path)
		require.NoError(t, err, name)
		require.Equal(t, nn.Output(testInput(DefaultInputs)), loaded.Output(testInput(DefaultInputs)), name)
	}

	_, err := Load(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
}

func TestLoadTextErrors(t *testing.T) {
	_, err := LoadText(strings.NewReader("2 1 gnubg\n"))
	require.Error(t, err)

	_, err = LoadText(strings.NewReader("2 1 tdgammon\n0.1 0.2\n"))
	require.Error(t, err, "truncated weights")

	_, err = LoadBinary(bytes.NewReader([]byte{1, 2, 3, 4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}))
	require.Error(t, err, "bad magic")

	_, err = LoadText(strings.NewReader("2000000000 2000000000 tdgammon\n"))
	require.ErrorContains(t, err, "exceeds")
}
