// Package search implements move selection strategies: random, greedy and
// n-ply lookahead over the dice, bounded expectiminimax, and Monte Carlo
// tree search. Every strategy scores positions through a value.Function.
package search

import (
	"golang.org/x/exp/rand"

	"github.com/yourusername/bgsearch/pkg/engine"
)

// Strategy picks one of the legal actions for side in st.
//
// Choose returns false when actions is empty, meaning side passes. st may
// be modified during the call but is always restored before Choose
// returns. rng is the only source of randomness.
type Strategy interface {
	Name() string
	Choose(st *engine.State, side engine.Side, actions []engine.Action, rng *rand.Rand) (engine.Action, bool)
}

// Random picks uniformly among the legal actions.
type Random struct{}

func (Random) Name() string {
	return "Random"
}

func (Random) Choose(_ *engine.State, _ engine.Side, actions []engine.Action, rng *rand.Rand) (engine.Action, bool) {
	if len(actions) == 0 {
		return engine.Action{}, false
	}
	return actions[rng.Intn(len(actions))], true
}
