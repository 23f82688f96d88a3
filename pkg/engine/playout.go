package engine

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
)

// MaxPlayoutPlies bounds a random playout. Backgammon always terminates, so
// reaching it means the rules encoding is broken.
const MaxPlayoutPlies = 10000

// ErrNonTerminatingPlayout is returned when a playout reaches MaxPlayoutPlies.
var ErrNonTerminatingPlayout = errors.New("playout did not terminate")

// RandomPlayout plays uniformly random dice and uniformly random legal plays
// from st, starting with onRoll, until a side has borne off all checkers.
// st is modified in place; callers that need the position afterwards should
// pass a clone.
func RandomPlayout(st *State, onRoll Side, rng *rand.Rand) (Side, error) {
	st.Turn = onRoll

	for ply := 0; ply < MaxPlayoutPlies; ply++ {
		if winner, ok := st.Winner(); ok {
			return winner, nil
		}

		roll := RollDice(rng)
		moves := LegalMoves(st, roll, st.Turn)
		if len(moves) == 0 {
			st.Pass()
			continue
		}
		st.MustExecute(moves[rng.Intn(len(moves))], st.Turn)
	}

	if winner, ok := st.Winner(); ok {
		return winner, nil
	}
	return 0, fmt.Errorf("%w after %d plies: %s", ErrNonTerminatingPlayout, MaxPlayoutPlies, st)
}
