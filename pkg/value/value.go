// Package value defines position value functions: pure mappings from a
// state and a side to a score in [0,1] where higher means better for that
// side. Search strategies only ever see positions through this interface.
package value

import (
	"github.com/yourusername/bgsearch/pkg/engine"
)

// Function scores a position for side. Implementations must be
// deterministic and must not modify st.
type Function interface {
	Evaluate(st *engine.State, side engine.Side) float64
	Name() string
}

// clamp limits v to [0,1].
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
