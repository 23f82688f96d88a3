package value

import (
	"fmt"
	"os"
	"sync"

	"github.com/patrikeh/go-deep"

	"github.com/yourusername/bgsearch/internal/neuralnet"
	"github.com/yourusername/bgsearch/pkg/engine"
)

// DeepNetwork is a Network backed by a go-deep feed-forward net with
// sigmoid hidden layers and a single sigmoid output.
type DeepNetwork struct {
	mu  sync.Mutex // go-deep keeps activations in the neurons
	net *deep.Neural
}

// NewDeepNetwork builds an untrained network with the given hidden layer
// sizes, weights drawn uniformly around zero.
func NewDeepNetwork(hidden ...int) *DeepNetwork {
	if len(hidden) == 0 {
		hidden = []int{neuralnet.DefaultHidden}
	}
	layout := append(append([]int{}, hidden...), 1)
	return &DeepNetwork{net: deep.NewNeural(&deep.Config{
		Inputs:     engine.NumFeatures,
		Layout:     layout,
		Activation: deep.ActivationSigmoid,
		Mode:       deep.ModeBinary,
		Weight:     deep.NewUniform(0.1, 0.0),
		Bias:       true,
	})}
}

// DeepFromNet copies a TD-Gammon network into a go-deep network.
func DeepFromNet(nn *neuralnet.Net) (*DeepNetwork, error) {
	if nn.Inputs != engine.NumFeatures {
		return nil, fmt.Errorf("network has %d inputs, want %d", nn.Inputs, engine.NumFeatures)
	}
	d := NewDeepNetwork(nn.Hidden)

	// Each neuron's incoming weights end with its bias
	hidden := make([][]float64, nn.Hidden)
	for j := range hidden {
		hidden[j] = append(append(make([]float64, 0, nn.Inputs+1), nn.HiddenWeights[j]...), nn.HiddenBias[j])
	}
	output := [][]float64{append(append(make([]float64, 0, nn.Hidden+1), nn.OutputWeights...), nn.OutputBias)}
	d.net.ApplyWeights([][][]float64{hidden, output})
	return d, nil
}

// LoadDeepNetwork reads a go-deep JSON dump.
func LoadDeepNetwork(path string) (*DeepNetwork, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	net, err := deep.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", path, err)
	}
	if net.Config.Inputs != engine.NumFeatures {
		return nil, fmt.Errorf("model %s has %d inputs, want %d", path, net.Config.Inputs, engine.NumFeatures)
	}
	return &DeepNetwork{net: net}, nil
}

// Save writes the network as a go-deep JSON dump.
func (d *DeepNetwork) Save(path string) error {
	d.mu.Lock()
	data, err := d.net.Marshal()
	d.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Output runs the network on features.
func (d *DeepNetwork) Output(features []float64) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Predict(features)[0]
}
