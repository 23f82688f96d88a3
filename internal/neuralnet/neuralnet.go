// Package neuralnet implements the TD-Gammon style value network: one
// sigmoid hidden layer feeding a single sigmoid output, read as the win
// probability of the reference player.
package neuralnet

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// Default TD-Gammon dimensions
const (
	DefaultInputs = 198
	DefaultHidden = 40
)

// MaxWeights bounds inputs*hidden, so a corrupt weights header cannot
// demand an arbitrary allocation.
const MaxWeights = 1 << 22

// Net is a trained two-layer network. It is read-only after loading and
// safe for concurrent use.
type Net struct {
	Inputs        int         // Number of input nodes
	Hidden        int         // Number of hidden nodes
	HiddenWeights [][]float64 // [hidden][inputs] weights into each hidden node
	HiddenBias    []float64   // Bias of each hidden node
	OutputWeights []float64   // [hidden] weights into the output node
	OutputBias    float64     // Bias of the output node

	buffers sync.Pool // Hidden activation scratch space
}

// New returns a zero-weight network with the given dimensions.
func New(inputs, hidden int) (*Net, error) {
	if inputs < 1 || hidden < 1 {
		return nil, fmt.Errorf("invalid network dimensions: %d/%d", inputs, hidden)
	}
	if int64(inputs)*int64(hidden) > MaxWeights {
		return nil, fmt.Errorf("network %d/%d exceeds %d weights", inputs, hidden, MaxWeights)
	}
	nn := &Net{
		Inputs:        inputs,
		Hidden:        hidden,
		HiddenWeights: make([][]float64, hidden),
		HiddenBias:    make([]float64, hidden),
		OutputWeights: make([]float64, hidden),
	}
	for j := range nn.HiddenWeights {
		nn.HiddenWeights[j] = make([]float64, inputs)
	}
	return nn, nil
}

// NewRandom returns a network with weights drawn uniformly from
// [-scale, scale]. Used for tests and as an untrained baseline.
func NewRandom(inputs, hidden int, scale float64, rng *rand.Rand) (*Net, error) {
	nn, err := New(inputs, hidden)
	if err != nil {
		return nil, err
	}
	draw := func() float64 { return (2*rng.Float64() - 1) * scale }
	for j := 0; j < hidden; j++ {
		for i := range nn.HiddenWeights[j] {
			nn.HiddenWeights[j][i] = draw()
		}
		nn.HiddenBias[j] = draw()
		nn.OutputWeights[j] = draw()
	}
	nn.OutputBias = draw()
	return nn, nil
}

// Output computes the network output for one input vector.
func (nn *Net) Output(input []float64) float64 {
	if len(input) != nn.Inputs {
		panic(fmt.Sprintf("neuralnet: got %d inputs, want %d", len(input), nn.Inputs))
	}

	hidden, _ := nn.buffers.Get().([]float64)
	if len(hidden) != nn.Hidden {
		hidden = make([]float64, nn.Hidden)
	}
	defer nn.buffers.Put(hidden)

	for j, w := range nn.HiddenWeights {
		hidden[j] = sigmoid(floats.Dot(w, input) + nn.HiddenBias[j])
	}
	return sigmoid(floats.Dot(nn.OutputWeights, hidden) + nn.OutputBias)
}

// validate checks that the weight slices match the declared dimensions.
func (nn *Net) validate() error {
	if nn.Inputs < 1 || nn.Hidden < 1 {
		return fmt.Errorf("invalid network dimensions: %d/%d", nn.Inputs, nn.Hidden)
	}
	if len(nn.HiddenWeights) != nn.Hidden || len(nn.HiddenBias) != nn.Hidden || len(nn.OutputWeights) != nn.Hidden {
		return fmt.Errorf("hidden layer size mismatch: want %d", nn.Hidden)
	}
	for j, w := range nn.HiddenWeights {
		if len(w) != nn.Inputs {
			return fmt.Errorf("hidden node %d has %d weights, want %d", j, len(w), nn.Inputs)
		}
	}
	return nil
}

// sigmoid computes 1 / (1 + e^-x)
func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
