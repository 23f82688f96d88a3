package search

import (
	"math"

	"github.com/yourusername/bgsearch/pkg/engine"
)

// noParent marks the root node
const noParent = -1

// node is one position in the search tree, reached by move. Nodes live in
// a tree arena and refer to each other by index.
type node struct {
	move     engine.Action   // Action leading into this node
	mover    engine.Side     // Side that played move
	parent   int32           // Index of the parent, noParent for the root
	children []int32         // Indices of expanded children
	untried  []engine.Action // Actions of the side to move not yet expanded
	visits   int
	wins     int
	value    float64 // Value function score of the position, for the root side
}

// tree is an arena of nodes discarded after each decision. Index 0 is the
// root, and children always have larger indices than their parent.
type tree struct {
	nodes []node
}

func newTree(capacity int) *tree {
	return &tree{nodes: make([]node, 0, capacity)}
}

// add appends a child of parent and returns its index.
func (t *tree) add(parent int32, n node) int32 {
	n.parent = parent
	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, n)
	if parent != noParent {
		t.nodes[parent].children = append(t.nodes[parent].children, idx)
	}
	return idx
}

// selectChild returns the child of idx maximising UCB1. Equal scores go to
// the child expanded last.
func (t *tree) selectChild(idx int32, exploration float64) int32 {
	n := &t.nodes[idx]
	logN := math.Log(float64(n.visits))

	best := n.children[0]
	bestScore := math.Inf(-1)
	for _, c := range n.children {
		child := &t.nodes[c]
		score := float64(child.wins)/float64(child.visits) +
			exploration*math.Sqrt(logN/float64(child.visits))
		if score >= bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

// backup records a finished playout on idx and all its ancestors. A node
// scores a win when its mover won.
func (t *tree) backup(idx int32, winner engine.Side) {
	for idx != noParent {
		n := &t.nodes[idx]
		n.visits++
		if n.mover == winner {
			n.wins++
		}
		idx = n.parent
	}
}

// nodeValues returns every node's value: the mean of its children's values,
// or its own cached score for a leaf.
func (t *tree) nodeValues() []float64 {
	values := make([]float64, len(t.nodes))
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := &t.nodes[i]
		if len(n.children) == 0 {
			values[i] = n.value
			continue
		}
		sum := 0.0
		for _, c := range n.children {
			sum += values[c]
		}
		values[i] = sum / float64(len(n.children))
	}
	return values
}
