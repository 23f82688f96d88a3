package search

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/bgsearch/pkg/engine"
	"github.com/yourusername/bgsearch/pkg/value"
)

// Lookahead scores each candidate by expectiminimax over the dice and keeps
// the best, the first one seen on ties.
//
// Depth counts the chance plies searched after the candidate is played:
// 0 evaluates the resulting position directly (greedy), 1 averages over
// the opponent's 21 rolls taking its best reply for each (2-ply), 2 adds
// our own best reply to each of those (3-ply), and so on. Layers alternate
// MIN for the opponent and MAX for side. There is no pruning, so every
// extra ply multiplies the work by roughly 21 times the number of plays.
type Lookahead struct {
	Value value.Function
	Depth int
	// Workers > 1 scores root candidates in parallel, each worker on its
	// own copy of the state. The choice is identical to the sequential one.
	Workers int

	label string
}

// NewGreedy returns the 1-ply strategy.
func NewGreedy(v value.Function) *Lookahead {
	return &Lookahead{Value: v, Depth: 0, label: "Greedy"}
}

// NewTwoPly returns the 2-ply strategy.
func NewTwoPly(v value.Function) *Lookahead {
	return &Lookahead{Value: v, Depth: 1, label: "TwoPly"}
}

// NewThreePly returns the 3-ply strategy.
func NewThreePly(v value.Function) *Lookahead {
	return &Lookahead{Value: v, Depth: 2, label: "ThreePly"}
}

// NewExpectiminimax returns a lookahead of the given depth.
func NewExpectiminimax(v value.Function, depth int) *Lookahead {
	if depth < 0 {
		depth = 0
	}
	return &Lookahead{Value: v, Depth: depth}
}

func (l *Lookahead) Name() string {
	label := l.label
	if label == "" {
		label = fmt.Sprintf("Expectiminimax(%d)", l.Depth)
	}
	return label + " [" + l.Value.Name() + "]"
}

// Choose implements Strategy.
func (l *Lookahead) Choose(st *engine.State, side engine.Side, actions []engine.Action, _ *rand.Rand) (engine.Action, bool) {
	if len(actions) == 0 {
		return engine.Action{}, false
	}

	var scores []float64
	if l.Workers > 1 && len(actions) > 1 {
		scores = l.scoreParallel(st, side, actions)
	} else {
		scores = l.score(st, side, actions, engine.NewArena(2*l.Depth+2))
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return actions[best], true
}

// Scores returns the lookahead value of each action, in order.
func (l *Lookahead) Scores(st *engine.State, side engine.Side, actions []engine.Action) []float64 {
	return l.score(st, side, actions, engine.NewArena(2*l.Depth+2))
}

func (l *Lookahead) score(st *engine.State, side engine.Side, actions []engine.Action, arena *engine.Arena) []float64 {
	scores := make([]float64, len(actions))
	h := arena.Snapshot(st)
	for i, a := range actions {
		st.MustExecute(a, side)
		scores[i] = l.expect(st, arena, side, side.Opponent(), l.Depth)
		arena.Restore(st, h)
	}
	arena.Release(h)
	return scores
}

func (l *Lookahead) scoreParallel(st *engine.State, side engine.Side, actions []engine.Action) []float64 {
	scores := make([]float64, len(actions))
	workers := l.Workers
	if workers > runtime.GOMAXPROCS(0)*4 {
		workers = runtime.GOMAXPROCS(0) * 4
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, a := range actions {
		i, a := i, a
		g.Go(func() error {
			game := st.Clone()
			arena := engine.NewArena(2*l.Depth + 1)
			game.MustExecute(a, side)
			scores[i] = l.expect(game, arena, side, side.Opponent(), l.Depth)
			return nil
		})
	}
	_ = g.Wait()
	return scores
}

// expect is the chance node: the probability-weighted value over all 21
// rolls for toMove, scored from me's perspective with depth plies left.
func (l *Lookahead) expect(st *engine.State, arena *engine.Arena, me, toMove engine.Side, depth int) float64 {
	if depth == 0 {
		return l.Value.Evaluate(st, me)
	}
	if _, over := st.Winner(); over {
		return l.Value.Evaluate(st, me)
	}

	h := arena.Snapshot(st)
	defer arena.Release(h)

	total := 0.0
	for _, r := range engine.Rolls {
		moves := engine.LegalMoves(st, r.Roll, toMove)

		// No play: the position stands and the turn passes
		if len(moves) == 0 {
			st.Turn = toMove.Opponent()
			total += r.Prob * l.expect(st, arena, me, toMove.Opponent(), depth-1)
			arena.Restore(st, h)
			continue
		}

		minimise := toMove != me
		folded := math.Inf(-1)
		if minimise {
			folded = math.Inf(1)
		}
		for _, m := range moves {
			st.MustExecute(m, toMove)
			v := l.expect(st, arena, me, toMove.Opponent(), depth-1)
			arena.Restore(st, h)

			if (minimise && v < folded) || (!minimise && v > folded) {
				folded = v
			}
		}
		total += r.Prob * folded
	}
	return total
}
