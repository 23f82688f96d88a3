package value

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/yourusername/bgsearch/pkg/engine"
)

// Linear mixes several functions with non-negative weights, normalised by
// the weight sum so the result stays in [0,1].
type Linear struct {
	Functions []Function
	Weights   []float64
	total     float64
}

// NewLinear builds a mix. Functions and weights must have the same length
// and the weights must be non-negative with a positive sum.
func NewLinear(functions []Function, weights []float64) (*Linear, error) {
	if len(functions) == 0 || len(functions) != len(weights) {
		return nil, fmt.Errorf("linear mix needs one weight per function, got %d functions and %d weights",
			len(functions), len(weights))
	}
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("weight %d is negative: %g", i, w)
		}
	}
	total := floats.Sum(weights)
	if total <= 0 {
		return nil, fmt.Errorf("weights sum to %g", total)
	}
	return &Linear{Functions: functions, Weights: weights, total: total}, nil
}

// Evaluate returns the weighted mean of the component scores.
func (l *Linear) Evaluate(st *engine.State, side engine.Side) float64 {
	var buf [8]float64
	scores := buf[:0]
	for _, f := range l.Functions {
		scores = append(scores, f.Evaluate(st, side))
	}
	return clamp(floats.Dot(scores, l.Weights) / l.total)
}

// Name lists the components, e.g. "linear(way_to_go*2,blocker*1)".
func (l *Linear) Name() string {
	parts := make([]string, len(l.Functions))
	for i, f := range l.Functions {
		parts[i] = fmt.Sprintf("%s*%g", f.Name(), l.Weights[i])
	}
	return "linear(" + strings.Join(parts, ",") + ")"
}
