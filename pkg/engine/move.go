package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel point indices used by sub-moves.
const (
	BarPoint int8 = 24 // Source of a checker entering from the bar
	OffPoint int8 = -1 // Destination of a checker being borne off
)

// MaxSubMoves is the largest number of checker moves in one play (doubles).
const MaxSubMoves = 4

// ErrIllegalMove is returned when an action does not fit the current state.
// It always indicates a caller bug: only engine-generated actions should be executed.
var ErrIllegalMove = errors.New("illegal move")

// SubMove moves a single checker. From and To are board indices (0-23) or the
// BarPoint/OffPoint sentinels.
type SubMove struct {
	From int8
	To   int8
}

// Action is one complete legal play for a roll: an ordered sequence of up
// to four sub-moves. The zero Action is the empty play.
type Action struct {
	Moves [MaxSubMoves]SubMove
	N     int8
}

// SubMoves returns the sub-moves of the action.
func (a Action) SubMoves() []SubMove {
	return a.Moves[:a.N]
}

// Format renders the action in side's own point numbers, e.g. "8/5 6/5".
func (a Action) Format(side Side) string {
	parts := make([]string, 0, a.N)
	for _, m := range a.SubMoves() {
		from := "bar"
		if m.From != BarPoint {
			from = strconv.Itoa(pointOf(side, int(m.From)))
		}
		to := "off"
		if m.To != OffPoint {
			to = strconv.Itoa(pointOf(side, int(m.To)))
		}
		parts = append(parts, from+"/"+to)
	}
	return strings.Join(parts, " ")
}

// ParseAction parses notation such as "24/23 13/11", "bar/22" or "6/off"
// written in side's own point numbers.
func ParseAction(s string, side Side) (Action, error) {
	var a Action
	for _, tok := range strings.Fields(s) {
		if int(a.N) == MaxSubMoves {
			return Action{}, fmt.Errorf("too many sub-moves in %q", s)
		}
		from, to, ok := strings.Cut(tok, "/")
		if !ok {
			return Action{}, fmt.Errorf("sub-move %q must be written from/to", tok)
		}
		var m SubMove
		if strings.EqualFold(from, "bar") {
			m.From = BarPoint
		} else {
			p, err := strconv.Atoi(from)
			if err != nil || p < 1 || p > NumPoints {
				return Action{}, fmt.Errorf("bad source point %q", from)
			}
			m.From = int8(indexOf(side, p))
		}
		if strings.EqualFold(to, "off") {
			m.To = OffPoint
		} else {
			p, err := strconv.Atoi(to)
			if err != nil || p < 1 || p > NumPoints {
				return Action{}, fmt.Errorf("bad destination point %q", to)
			}
			m.To = int8(indexOf(side, p))
		}
		a.Moves[a.N] = m
		a.N++
	}
	return a, nil
}

// Execute applies all sub-moves of a for side and passes the turn to the
// opponent. If any sub-move is illegal the state is left untouched and an
// error wrapping ErrIllegalMove is returned.
func (st *State) Execute(a Action, side Side) error {
	next := *st
	for _, m := range a.SubMoves() {
		if err := next.applySubMove(m, side); err != nil {
			return fmt.Errorf("%s playing %q: %w", side, a.Format(side), err)
		}
	}
	next.Turn = side.Opponent()
	*st = next
	return nil
}

// MustExecute is Execute for actions produced by LegalMoves; it panics on
// an illegal action.
func (st *State) MustExecute(a Action, side Side) {
	if err := st.Execute(a, side); err != nil {
		panic(err)
	}
}

// Pass hands the turn to the opponent without moving.
func (st *State) Pass() {
	st.Turn = st.Turn.Opponent()
}

// applySubMove validates and applies one checker move for side.
func (st *State) applySubMove(m SubMove, side Side) error {
	opp := side.Opponent()
	sign := side.sign()

	// Source
	fromPoint := 25
	if m.From == BarPoint {
		if st.Bar[side] == 0 {
			return fmt.Errorf("%w: no checker on the bar", ErrIllegalMove)
		}
	} else {
		if m.From < 0 || int(m.From) >= NumPoints {
			return fmt.Errorf("%w: source index %d out of range", ErrIllegalMove, m.From)
		}
		if st.Bar[side] > 0 {
			return fmt.Errorf("%w: must enter from the bar first", ErrIllegalMove)
		}
		if st.Count(side, int(m.From)) == 0 {
			return fmt.Errorf("%w: no checker on point %d", ErrIllegalMove, pointOf(side, int(m.From)))
		}
		fromPoint = pointOf(side, int(m.From))
	}

	// Bearing off
	if m.To == OffPoint {
		if fromPoint > HomeBoardSize || !st.allHome(side) {
			return fmt.Errorf("%w: cannot bear off from point %d", ErrIllegalMove, fromPoint)
		}
		st.Points[m.From] -= sign
		st.Off[side]++
		return nil
	}

	if m.To < 0 || int(m.To) >= NumPoints {
		return fmt.Errorf("%w: destination index %d out of range", ErrIllegalMove, m.To)
	}
	toPoint := pointOf(side, int(m.To))
	if d := fromPoint - toPoint; d < 1 || d > 6 {
		return fmt.Errorf("%w: %d/%d is not a single die move", ErrIllegalMove, fromPoint, toPoint)
	}
	blockers := st.Count(opp, int(m.To))
	if blockers >= 2 {
		return fmt.Errorf("%w: point %d is blocked", ErrIllegalMove, toPoint)
	}

	if m.From == BarPoint {
		st.Bar[side]--
	} else {
		st.Points[m.From] -= sign
	}
	if blockers == 1 {
		// Hit
		st.Points[m.To] = 0
		st.Bar[opp]++
	}
	st.Points[m.To] += sign
	return nil
}

// board is the generator's working layout, seen from the side to move:
// board[1] holds the mover's checkers and board[0] the opponent's, each
// indexed by that player's own point number minus one, with index 24 the bar.
type board [2][25]uint8

// viewFor builds the generator board for side.
func viewFor(st *State, side Side) board {
	var b board
	opp := side.Opponent()
	for p := 1; p <= NumPoints; p++ {
		b[1][p-1] = uint8(st.CountOnPoint(side, p))
		b[0][p-1] = uint8(st.CountOnPoint(opp, p))
	}
	b[1][24] = uint8(st.Bar[side])
	b[0][24] = uint8(st.Bar[opp])
	return b
}

// moveList accumulates plays during generation.
type moveList struct {
	side     Side
	moves    []Action
	maxMoves int // Most dice used by any play so far
	maxPips  int // Most pips used by any play using maxMoves dice
	seen     map[board]struct{}
}

// LegalMoves returns every legal play of roll for side. Only plays using the
// largest possible number of dice (and, among those, the most pips) are
// returned, and plays that reach the same position are listed once.
// An empty result means side must pass.
func LegalMoves(st *State, roll Roll, side Side) []Action {
	ml := &moveList{
		side:  side,
		moves: make([]Action, 0, 32),
		seen:  make(map[board]struct{}, 32),
	}
	b := viewFor(st, side)

	// Set up the roll array (4 elements for doubles)
	anRoll := [4]int{roll.D1, roll.D2, 0, 0}
	if roll.IsDouble() {
		anRoll[2] = roll.D1
		anRoll[3] = roll.D1
	}

	anMoves := [8]int{-1, -1, -1, -1, -1, -1, -1, -1}
	generateMovesSub(ml, anRoll[:], 0, 23, 0, b, anMoves[:])

	// If not doubles, also try with dice swapped
	if !roll.IsDouble() {
		anRoll[0], anRoll[1] = anRoll[1], anRoll[0]
		anMoves = [8]int{-1, -1, -1, -1, -1, -1, -1, -1}
		generateMovesSub(ml, anRoll[:], 0, 23, 0, b, anMoves[:])
	}

	return ml.moves
}

// generateMovesSub tries every checker for die nMoveDepth and recurses.
// It returns true when no checker could use the die, meaning the caller's
// partial play is complete.
func generateMovesSub(ml *moveList, anRoll []int, nMoveDepth int,
	iPip int, cPip int, b board, anMoves []int) bool {

	if nMoveDepth > 3 || anRoll[nMoveDepth] == 0 {
		return true
	}

	// Checkers on the bar must enter first
	if b[1][24] > 0 {
		// Entry lands on the opponent's point die-1
		if b[0][anRoll[nMoveDepth]-1] >= 2 {
			return true
		}

		anMoves[nMoveDepth*2] = 24
		anMoves[nMoveDepth*2+1] = 24 - anRoll[nMoveDepth]

		next := b
		applyBoardMove(&next, 24, anRoll[nMoveDepth])

		if generateMovesSub(ml, anRoll, nMoveDepth+1, 23, cPip+anRoll[nMoveDepth], next, anMoves) {
			ml.save(nMoveDepth+1, cPip+anRoll[nMoveDepth], anMoves, next)
		}
		return false
	}

	fUsed := false
	for i := iPip; i >= 0; i-- {
		if b[1][i] == 0 || !legalBoardMove(b, i, anRoll[nMoveDepth]) {
			continue
		}
		anMoves[nMoveDepth*2] = i
		anMoves[nMoveDepth*2+1] = i - anRoll[nMoveDepth]

		next := b
		applyBoardMove(&next, i, anRoll[nMoveDepth])

		// For doubles, continue from the same point to avoid permutations
		nextIPip := 23
		if anRoll[0] == anRoll[1] {
			nextIPip = i
		}

		if generateMovesSub(ml, anRoll, nMoveDepth+1, nextIPip, cPip+anRoll[nMoveDepth], next, anMoves) {
			ml.save(nMoveDepth+1, cPip+anRoll[nMoveDepth], anMoves, next)
		}
		fUsed = true
	}

	return !fUsed
}

// legalBoardMove checks whether the checker on iSrc may move nPips.
func legalBoardMove(b board, iSrc, nPips int) bool {
	iDest := iSrc - nPips

	if iDest >= 0 {
		return b[0][23-iDest] < 2
	}

	// Bearing off: all checkers must be home, and a larger die may only be
	// used from the highest occupied point
	nBack := 24
	for nBack > 0 && b[1][nBack] == 0 {
		nBack--
	}
	return nBack <= 5 && (iSrc == nBack || iDest == -1)
}

// applyBoardMove moves one checker nRoll pips, hitting a blot if present.
func applyBoardMove(b *board, iSrc, nRoll int) {
	iDest := iSrc - nRoll

	b[1][iSrc]--
	if iDest < 0 {
		return
	}
	if b[0][23-iDest] == 1 {
		b[0][23-iDest] = 0
		b[0][24]++
	}
	b[1][iDest]++
}

// save records a finished play unless a longer play is already known or
// the resulting position was already reached.
func (ml *moveList) save(cMoves, cPip int, anMoves []int, b board) {
	if cMoves < ml.maxMoves {
		return
	}
	if cMoves > ml.maxMoves {
		ml.reset()
		ml.maxMoves = cMoves
		ml.maxPips = cPip
	} else if cPip < ml.maxPips {
		return
	} else if cPip > ml.maxPips {
		ml.reset()
		ml.maxPips = cPip
	}

	if _, dup := ml.seen[b]; dup {
		return
	}
	ml.seen[b] = struct{}{}

	var a Action
	for i := 0; i < cMoves; i++ {
		a.Moves[i] = SubMove{
			From: boardToIndex(ml.side, anMoves[i*2], BarPoint),
			To:   boardToIndex(ml.side, anMoves[i*2+1], OffPoint),
		}
	}
	a.N = int8(cMoves)
	ml.moves = append(ml.moves, a)
}

func (ml *moveList) reset() {
	ml.moves = ml.moves[:0]
	clear(ml.seen)
}

// boardToIndex maps a generator index back to a board index, using
// sentinel for the bar (24) or off (negative) positions.
func boardToIndex(side Side, i int, sentinel int8) int8 {
	if i < 0 || i >= 24 {
		return sentinel
	}
	return int8(indexOf(side, i+1))
}
