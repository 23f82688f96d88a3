package engine

import (
	"fmt"

	"github.com/yourusername/bgsearch/internal/positionid"
)

// PositionID returns the GNU Backgammon position ID of st, seen from the
// side on roll.
func (st *State) PositionID() string {
	return positionid.Encode(positionid.Board(viewFor(st, st.Turn)))
}

// FromPositionID builds a state from a position ID, with turn on roll.
// Checkers missing from the ID are treated as borne off.
func FromPositionID(id string, turn Side) (*State, error) {
	b, err := positionid.Decode(id)
	if err != nil {
		return nil, fmt.Errorf("position %q: %w", id, err)
	}

	st := &State{Turn: turn}
	sides := [2]Side{turn.Opponent(), turn}
	for i, side := range sides {
		total := int(b[i][24])
		for p := 1; p <= NumPoints; p++ {
			n := int(b[i][p-1])
			if n == 0 {
				continue
			}
			st.Points[indexOf(side, p)] = int8(n) * side.sign()
			total += n
		}
		st.Bar[side] = int8(b[i][24])
		st.Off[side] = int8(NumCheckers - total)
	}
	return st, nil
}
