// Package match records games played between strategies and reads and
// writes them as Jellyfish MAT files.
package match

import (
	"fmt"

	"github.com/yourusername/bgsearch/pkg/engine"
)

// Match is a series of games between the same two players.
type Match struct {
	Black string  // Name of the player moving 24 to 1 in its own numbering, listed first
	White string  // Name of the second player
	Event string  // Event name
	Date  string  // Match date (YYYY-MM-DD format)
	Games []*Game // Games in play order
}

// Turn is one ply: a roll and the play made with it, or a pass.
type Turn struct {
	Side   engine.Side
	Roll   engine.Roll
	Action engine.Action
	Pass   bool
}

// Game is a single game within a match.
type Game struct {
	Number   int    // Game number (1-indexed)
	Score    [2]int // Games won by each side before this game
	Turns    []Turn
	Winner   engine.Side
	Finished bool
}

// NewMatch creates a new empty match.
func NewMatch(black, white string) *Match {
	return &Match{Black: black, White: white}
}

// NewGame appends an empty game, numbered and scored from the games before
// it.
func (m *Match) NewGame() *Game {
	g := &Game{Number: len(m.Games) + 1}
	for _, prev := range m.Games {
		if prev.Finished {
			g.Score[prev.Winner]++
		}
	}
	m.Games = append(m.Games, g)
	return g
}

// Wins returns the number of finished games won by each side.
func (m *Match) Wins() [2]int {
	var wins [2]int
	for _, g := range m.Games {
		if g.Finished {
			wins[g.Winner]++
		}
	}
	return wins
}

// AddTurn appends a turn.
func (g *Game) AddTurn(t Turn) {
	g.Turns = append(g.Turns, t)
}

// Finish marks the game as won by winner.
func (g *Game) Finish(winner engine.Side) {
	g.Winner = winner
	g.Finished = true
}

// First returns the side that moved first. It is false for a game without
// turns.
func (g *Game) First() (engine.Side, bool) {
	if len(g.Turns) == 0 {
		return engine.Black, false
	}
	return g.Turns[0].Side, true
}

// Replay plays the turns from the starting position and checks every one
// of them: sides alternate, each play is one of the legal plays for its
// roll, and a pass only happens when no play exists. It returns the final
// position.
func (g *Game) Replay() (*engine.State, error) {
	st := engine.StartingPosition()
	if first, ok := g.First(); ok {
		st.Turn = first
	}

	for i, t := range g.Turns {
		if t.Side != st.Turn {
			return st, fmt.Errorf("turn %d: %s moved out of turn", i+1, t.Side)
		}
		if _, over := st.Winner(); over {
			return st, fmt.Errorf("turn %d: game was already over", i+1)
		}
		if !t.Roll.Valid() {
			return st, fmt.Errorf("turn %d: invalid roll %s", i+1, t.Roll)
		}

		legal := engine.LegalMoves(st, t.Roll, t.Side)
		if t.Pass {
			if len(legal) > 0 {
				return st, fmt.Errorf("turn %d: %s passed with %s but had %d plays", i+1, t.Side, t.Roll, len(legal))
			}
			st.Pass()
			continue
		}

		next := *st
		if err := next.Execute(t.Action, t.Side); err != nil {
			return st, fmt.Errorf("turn %d: %w", i+1, err)
		}
		if !reachable(st, legal, t.Side, &next) {
			return st, fmt.Errorf("turn %d: %s with %s is not a legal play: %w",
				i+1, t.Action.Format(t.Side), t.Roll, engine.ErrIllegalMove)
		}
		*st = next
	}

	if g.Finished {
		if winner, over := st.Winner(); !over || winner != g.Winner {
			return st, fmt.Errorf("recorded winner %s does not match the final position", g.Winner)
		}
	}
	return st, nil
}

// reachable reports whether one of legal leads from st to target.
func reachable(st *engine.State, legal []engine.Action, side engine.Side, target *engine.State) bool {
	for _, a := range legal {
		next := *st
		next.MustExecute(a, side)
		if next == *target {
			return true
		}
	}
	return false
}
