// Package engine implements the backgammon rules used by the search strategies:
// positions, legal move generation, move execution, snapshots, feature
// extraction and random playouts.
package engine

import (
	"fmt"
	"strings"
)

const (
	NumPoints     = 24 // Board points
	NumCheckers   = 15 // Checkers per side
	HomeBoardSize = 6  // Points in each home board
)

// Side identifies one of the two players.
type Side int8

const (
	Black Side = 0 // First player, moves from point index 23 toward index 0
	White Side = 1 // Second player, moves from point index 0 toward index 23
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	return 1 - s
}

// sign returns the point-count sign used for this side's checkers.
func (s Side) sign() int8 {
	if s == Black {
		return 1
	}
	return -1
}

func (s Side) String() string {
	switch s {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return fmt.Sprintf("side(%d)", int8(s))
}

// ParseSide parses "black"/"white" (or "b"/"w", "x"/"o").
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black", "b", "x", "0":
		return Black, nil
	case "white", "w", "o", "1":
		return White, nil
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

// State is a complete backgammon position.
// Points holds signed checker counts: Black checkers are positive, White negative.
// State is a plain value; copying it is a full snapshot.
type State struct {
	Points [NumPoints]int8 // Signed checker counts per point index 0-23
	Bar    [2]int8         // Checkers on the bar, indexed by Side
	Off    [2]int8         // Checkers borne off, indexed by Side
	Turn   Side            // Side on roll
}

// StartingPosition returns the standard backgammon starting position with
// Black on roll.
func StartingPosition() *State {
	st := &State{Turn: Black}

	// Black (from its own perspective)
	st.Points[23] = 2 // 2 on 24-point
	st.Points[12] = 5 // 5 on 13-point
	st.Points[7] = 3  // 3 on 8-point
	st.Points[5] = 5  // 5 on 6-point

	// White (mirror image)
	st.Points[0] = -2
	st.Points[11] = -5
	st.Points[16] = -3
	st.Points[18] = -5

	return st
}

// indexOf converts a side's own point number (1-24) into a board index.
func indexOf(side Side, point int) int {
	if side == Black {
		return point - 1
	}
	return NumPoints - point
}

// pointOf converts a board index into the side's own point number (1-24).
func pointOf(side Side, idx int) int {
	if side == Black {
		return idx + 1
	}
	return NumPoints - idx
}

// Count returns the number of checkers side has on board index idx.
func (st *State) Count(side Side, idx int) int {
	v := st.Points[idx] * side.sign()
	if v > 0 {
		return int(v)
	}
	return 0
}

// CountOnPoint returns the number of checkers side has on its own point number (1-24).
func (st *State) CountOnPoint(side Side, point int) int {
	return st.Count(side, indexOf(side, point))
}

// Checkers returns the total number of checkers side has on the board, on
// the bar and borne off. It is always NumCheckers for a valid position.
func (st *State) Checkers(side Side) int {
	n := int(st.Bar[side]) + int(st.Off[side])
	for i := 0; i < NumPoints; i++ {
		n += st.Count(side, i)
	}
	return n
}

// Validate checks the per-side checker invariant and field ranges.
func (st *State) Validate() error {
	for _, side := range [2]Side{Black, White} {
		if st.Bar[side] < 0 || st.Off[side] < 0 {
			return fmt.Errorf("%s has negative bar or off count", side)
		}
		if n := st.Checkers(side); n != NumCheckers {
			return fmt.Errorf("%s has %d checkers, want %d", side, n, NumCheckers)
		}
	}
	if st.Turn != Black && st.Turn != White {
		return fmt.Errorf("invalid turn %d", st.Turn)
	}
	return nil
}

// Winner reports the side that has borne off all of its checkers, if any.
func (st *State) Winner() (Side, bool) {
	if st.Off[Black] == NumCheckers {
		return Black, true
	}
	if st.Off[White] == NumCheckers {
		return White, true
	}
	return 0, false
}

// Clone returns an independent copy of the state.
func (st *State) Clone() *State {
	c := *st
	return &c
}

// Mirror returns the position with colours swapped and the board reflected,
// so that each side's checkers keep their own point numbers.
func (st *State) Mirror() *State {
	m := &State{Turn: st.Turn.Opponent()}
	for i := 0; i < NumPoints; i++ {
		m.Points[i] = -st.Points[NumPoints-1-i]
	}
	m.Bar[Black], m.Bar[White] = st.Bar[White], st.Bar[Black]
	m.Off[Black], m.Off[White] = st.Off[White], st.Off[Black]
	return m
}

// PipCount returns the number of pips side needs to bear off all checkers.
func (st *State) PipCount(side Side) int {
	pips := 25 * int(st.Bar[side])
	for p := 1; p <= NumPoints; p++ {
		pips += p * st.CountOnPoint(side, p)
	}
	return pips
}

// allHome reports whether side may bear off: nothing on the bar and no
// checker outside its home board.
func (st *State) allHome(side Side) bool {
	if st.Bar[side] > 0 {
		return false
	}
	for p := HomeBoardSize + 1; p <= NumPoints; p++ {
		if st.CountOnPoint(side, p) > 0 {
			return false
		}
	}
	return true
}

// String renders the position as a compact single-line description.
func (st *State) String() string {
	var b strings.Builder
	for i, v := range st.Points {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	fmt.Fprintf(&b, " | bar %d/%d off %d/%d | %s to play",
		st.Bar[Black], st.Bar[White], st.Off[Black], st.Off[White], st.Turn)
	return b.String()
}
