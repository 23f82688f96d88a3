// Package player binds strategies to sides and plays games and matches
// between them.
package player

import (
	"math"

	"golang.org/x/exp/rand"
	"lukechampine.com/frand"

	"github.com/yourusername/bgsearch/pkg/engine"
	"github.com/yourusername/bgsearch/pkg/search"
)

// Player is a strategy playing one side with its own random source.
type Player struct {
	Side     engine.Side
	Strategy search.Strategy
	Rng      *rand.Rand
	Config   string // Configuration string the player was built from, if any
}

// Action picks one of actions for the player's side, or reports a pass.
func (p *Player) Action(st *engine.State, actions []engine.Action) (engine.Action, bool) {
	return p.Strategy.Choose(st, p.Side, actions, p.Rng)
}

// Name returns the strategy name for reporting.
func (p *Player) Name() string {
	return p.Strategy.Name()
}

// NewRng returns a generator seeded with seed, or with fresh entropy when
// seed is 0.
func NewRng(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64)
	}
	return rand.New(rand.NewSource(seed))
}
