package value

import (
	"github.com/yourusername/bgsearch/pkg/engine"
)

// Network is a learned model mapping a feature vector of length
// engine.NumFeatures to a win probability.
type Network interface {
	Output(features []float64) float64
}

// Model adapts a Network to a value function. The network is fed features
// from Reference's perspective and its output is read as Reference's win
// probability; for the other side the result is 1-v.
type Model struct {
	Net       Network
	Reference engine.Side
	Label     string // Reported by Name
}

// NewModel wraps net with Black, the first player, as the reference side.
func NewModel(net Network, label string) *Model {
	return &Model{Net: net, Reference: engine.Black, Label: label}
}

// Evaluate scores st for side using the network.
func (m *Model) Evaluate(st *engine.State, side engine.Side) float64 {
	var features [engine.NumFeatures]float64
	engine.ExtractFeaturesInto(st, m.Reference, features[:])
	v := clamp(m.Net.Output(features[:]))
	if side != m.Reference {
		return 1 - v
	}
	return v
}

func (m *Model) Name() string {
	if m.Label == "" {
		return "model"
	}
	return "model(" + m.Label + ")"
}
