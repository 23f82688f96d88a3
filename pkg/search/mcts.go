package search

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/yourusername/bgsearch/pkg/engine"
	"github.com/yourusername/bgsearch/pkg/value"
)

// DefaultMCTSIterations is the number of simulations per decision.
const DefaultMCTSIterations = 5000

// maxPreallocatedNodes bounds the node arena reserved up front; larger
// searches grow it as nodes are added.
const maxPreallocatedNodes = 1 << 12

type Option func(m *MCTS)

// WithIterations sets the number of simulations per decision.
func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		if iterations > 0 {
			m.iterations = iterations
		}
	}
}

// WithExploration sets the UCB1 exploration constant c in
// w/n + c*sqrt(ln N / n). The default is sqrt(2).
func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

// MCTS is Monte Carlo tree search with UCB1 selection.
//
// Each iteration descends through fully expanded nodes by UCB1, expands one
// untried action chosen uniformly at random, finishes the game with a
// random playout and credits the result to every node on the path whose
// mover won. A new node caches the value function's score of its position
// for the searching side, and its untried actions are the next side's
// plays over all 21 rolls. The final choice is the root child with the
// highest node value, the mean over its subtree's leaves, level by level.
type MCTS struct {
	value       value.Function
	iterations  int
	exploration float64
}

// NewMCTS returns an MCTS strategy scoring new nodes with v.
func NewMCTS(v value.Function, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		value:       v,
		iterations:  DefaultMCTSIterations,
		exploration: math.Sqrt2,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *MCTS) Name() string {
	return "MCTS [" + m.value.Name() + "]"
}

// Iterations returns the simulation budget.
func (m *MCTS) Iterations() int {
	return m.iterations
}

// Value returns the function scoring new nodes.
func (m *MCTS) Value() value.Function {
	return m.value
}

// newSearchTree returns an empty tree sized for one decision.
func (m *MCTS) newSearchTree() *tree {
	return newTree(min(m.iterations+1, maxPreallocatedNodes))
}

// Choose implements Strategy. st is never modified.
func (m *MCTS) Choose(st *engine.State, side engine.Side, actions []engine.Action, rng *rand.Rand) (engine.Action, bool) {
	if len(actions) == 0 {
		return engine.Action{}, false
	}

	t := m.newSearchTree()
	t.add(noParent, node{
		mover:   side.Opponent(),
		untried: append([]engine.Action(nil), actions...),
	})

	for i := 0; i < m.iterations; i++ {
		game := *st
		idx := int32(0)

		// Selection
		for len(t.nodes[idx].untried) == 0 && len(t.nodes[idx].children) > 0 {
			idx = t.selectChild(idx, m.exploration)
			game.MustExecute(t.nodes[idx].move, t.nodes[idx].mover)
		}

		// Expansion
		if untried := t.nodes[idx].untried; len(untried) > 0 {
			k := rng.Intn(len(untried))
			move := untried[k]
			untried[k] = untried[len(untried)-1]
			t.nodes[idx].untried = untried[:len(untried)-1]

			mover := t.nodes[idx].mover.Opponent()
			game.MustExecute(move, mover)

			var next []engine.Action
			if _, over := game.Winner(); !over {
				next = engine.AllLegalMoves(&game, mover.Opponent())
			}
			idx = t.add(idx, node{
				move:    move,
				mover:   mover,
				untried: next,
				value:   m.value.Evaluate(&game, side),
			})
		}

		// Simulation
		winner, err := engine.RandomPlayout(&game, t.nodes[idx].mover.Opponent(), rng)
		if err != nil {
			panic(fmt.Errorf("mcts: %w", err))
		}

		// Backpropagation
		t.backup(idx, winner)
	}

	values := t.nodeValues()
	root := &t.nodes[0]
	best := root.children[0]
	for _, c := range root.children {
		if values[c] >= values[best] {
			best = c
		}
	}

	log.Debug().
		Int("iterations", m.iterations).
		Int("nodes", len(t.nodes)).
		Int("rootChildren", len(root.children)).
		Int("bestVisits", t.nodes[best].visits).
		Float64("bestValue", values[best]).
		Msg("mcts search finished")

	return t.nodes[best].move, true
}
