package search

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/yourusername/bgsearch/pkg/engine"
	"github.com/yourusername/bgsearch/pkg/value"
)

func TestMCTSDefaults(t *testing.T) {
	m := NewMCTS(value.WayToGo)
	require.Equal(t, DefaultMCTSIterations, m.Iterations())
	require.Equal(t, 5000, m.Iterations())

	// Non-positive budgets keep the default
	require.Equal(t, 5000, NewMCTS(value.WayToGo, WithIterations(0)).Iterations())
	require.Equal(t, 7, NewMCTS(value.WayToGo, WithIterations(7)).Iterations())
}

func TestMCTSBudgetOne(t *testing.T) {
	st := engine.StartingPosition()
	before := *st
	actions := engine.LegalMoves(st, engine.Roll{D1: 3, D2: 1}, engine.Black)

	a, ok := NewMCTS(value.Blocker, WithIterations(1)).Choose(st, engine.Black, actions, newRng())
	require.True(t, ok)
	require.Contains(t, actions, a)
	require.Equal(t, before, *st)
}

func TestMCTSIsReproducible(t *testing.T) {
	st := engine.StartingPosition()
	actions := engine.LegalMoves(st, engine.Roll{D1: 5, D2: 3}, engine.Black)
	m := NewMCTS(value.SingleToGo, WithIterations(120))

	a, _ := m.Choose(st, engine.Black, actions, rand.New(rand.NewSource(99)))
	b, _ := m.Choose(st, engine.Black, actions, rand.New(rand.NewSource(99)))
	require.Equal(t, a, b)
}

func TestMCTSSingleAction(t *testing.T) {
	st := engine.StartingPosition()
	actions := engine.LegalMoves(st, engine.Roll{D1: 6, D2: 5}, engine.Black)[:1]

	a, ok := NewMCTS(value.WayToGo, WithIterations(30)).Choose(st, engine.Black, actions, newRng())
	require.True(t, ok)
	require.Equal(t, actions[0], a)
}

func TestMCTSWinningMove(t *testing.T) {
	// Black can only bear off its last checker, which ends the game
	st := &engine.State{Turn: engine.Black}
	st.Points[0] = 1
	st.Off[engine.Black] = 14
	st.Points[18] = -15

	actions := engine.LegalMoves(st, engine.Roll{D1: 2, D2: 2}, engine.Black)
	require.Len(t, actions, 1)

	a, ok := NewMCTS(value.WayToGo, WithIterations(10)).Choose(st, engine.Black, actions, newRng())
	require.True(t, ok)
	require.Equal(t, actions[0], a)
}

func TestTreeBackupCreditsMover(t *testing.T) {
	tr := newTree(4)
	root := tr.add(noParent, node{mover: engine.White})
	child := tr.add(root, node{mover: engine.Black})
	grandchild := tr.add(child, node{mover: engine.White})

	tr.backup(grandchild, engine.Black)
	tr.backup(child, engine.White)

	require.Equal(t, 2, tr.nodes[root].visits)
	require.Equal(t, 1, tr.nodes[root].wins)
	require.Equal(t, 2, tr.nodes[child].visits)
	require.Equal(t, 1, tr.nodes[child].wins)
	require.Equal(t, 1, tr.nodes[grandchild].visits)
	require.Equal(t, 0, tr.nodes[grandchild].wins)
}

func TestTreeNodeValues(t *testing.T) {
	tr := newTree(6)
	root := tr.add(noParent, node{value: 0.9})
	a := tr.add(root, node{value: 0.2})
	b := tr.add(root, node{value: 0.7})
	tr.add(a, node{value: 0.4})
	tr.add(a, node{value: 0.8})

	values := tr.nodeValues()
	require.InDelta(t, 0.6, values[a], 1e-12, "mean of children, not its own score")
	require.InDelta(t, 0.7, values[b], 1e-12, "leaves use their own score")
	require.InDelta(t, 0.65, values[root], 1e-12)
}

func TestTreeSelectChildUCB1(t *testing.T) {
	tr := newTree(4)
	root := tr.add(noParent, node{visits: 10})
	tr.add(root, node{visits: 5, wins: 4})
	strong := tr.add(root, node{visits: 4, wins: 4})
	require.Equal(t, strong, tr.selectChild(root, 1.414))

	// Pure exploration favours the least visited child
	rare := tr.add(root, node{visits: 1, wins: 0})
	require.Equal(t, rare, tr.selectChild(root, 100))
}

func TestTreeSelectChildTiesGoToLast(t *testing.T) {
	tr := newTree(3)
	root := tr.add(noParent, node{visits: 4})
	tr.add(root, node{visits: 2, wins: 1})
	last := tr.add(root, node{visits: 2, wins: 1})
	require.Equal(t, last, tr.selectChild(root, 1.414))
}

func TestMCTSTreeReservationIsBounded(t *testing.T) {
	small := NewMCTS(value.WayToGo, WithIterations(10)).newSearchTree()
	require.Equal(t, 11, cap(small.nodes))

	huge := NewMCTS(value.WayToGo, WithIterations(2000000000)).newSearchTree()
	require.Equal(t, maxPreallocatedNodes, cap(huge.nodes))
	require.Empty(t, huge.nodes)
}

func TestMCTSPanicsOnNonTerminatingPlayout(t *testing.T) {
	// Black bears off its last board checker; nothing is left to move, so
	// every playout passes until the ply cap.
	st := &engine.State{Turn: engine.Black}
	st.Points[0] = 1
	a, err := engine.ParseAction("1/off", engine.Black)
	require.NoError(t, err)

	m := NewMCTS(value.WayToGo, WithIterations(1))
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok, "panic value %v", r)
		require.ErrorIs(t, err, engine.ErrNonTerminatingPlayout)
	}()
	m.Choose(st, engine.Black, []engine.Action{a}, newRng())
	t.Fatal("Choose returned")
}
