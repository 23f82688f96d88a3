package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// resultsOf returns the position each action leads to.
func resultsOf(t *testing.T, st *State, side Side, actions []Action) []State {
	t.Helper()
	results := make([]State, 0, len(actions))
	for _, a := range actions {
		next := *st
		require.NoError(t, next.Execute(a, side), a.Format(side))
		results = append(results, next)
	}
	return results
}

// after plays notation for side on a copy of st.
func after(t *testing.T, st *State, side Side, notation string) State {
	t.Helper()
	a, err := ParseAction(notation, side)
	require.NoError(t, err)
	next := *st
	require.NoError(t, next.Execute(a, side))
	return next
}

func TestLegalMovesOpening31(t *testing.T) {
	st := StartingPosition()
	moves := LegalMoves(st, Roll{3, 1}, Black)

	require.Len(t, moves, 16)
	for _, m := range moves {
		require.EqualValues(t, 2, m.N, m.Format(Black))
	}

	results := resultsOf(t, st, Black, moves)
	require.Contains(t, results, after(t, st, Black, "8/5 6/5"))
	require.Contains(t, results, after(t, st, Black, "24/23 13/10"))
}

func TestLegalMovesOpening21(t *testing.T) {
	st := StartingPosition()
	moves := LegalMoves(st, Roll{2, 1}, Black)

	require.Len(t, moves, 15)
	require.Contains(t, resultsOf(t, st, Black, moves), after(t, st, Black, "13/11 24/23"))
}

func TestLegalMovesOpeningCounts(t *testing.T) {
	tests := []struct {
		roll Roll
		want int
	}{
		{Roll{6, 6}, 11},
		{Roll{6, 5}, 7},
		{Roll{4, 2}, 18},
		{Roll{1, 1}, 42},
	}

	st := StartingPosition()
	for _, tt := range tests {
		t.Run(tt.roll.String(), func(t *testing.T) {
			moves := LegalMoves(st, tt.roll, Black)
			require.Len(t, moves, tt.want)

			// Every play reaches a distinct position
			results := resultsOf(t, st, Black, moves)
			seen := make(map[State]bool)
			for _, r := range results {
				require.False(t, seen[r])
				seen[r] = true
			}
		})
	}
}

func TestLegalMovesWhiteMirrorsBlack(t *testing.T) {
	st := StartingPosition()
	st.Turn = White
	for _, r := range Rolls {
		require.Len(t, LegalMoves(st, r.Roll, White), len(LegalMoves(StartingPosition(), r.Roll, Black)), r.String())
	}
}

// barPosition has one Black checker on the bar facing White's six point.
func barPosition() *State {
	st := StartingPosition()
	st.Points[23] = 1
	st.Bar[Black] = 1
	return st
}

func TestLegalMovesBarEntry(t *testing.T) {
	st := barPosition()

	moves := LegalMoves(st, Roll{6, 1}, Black)
	require.NotEmpty(t, moves)
	for _, m := range moves {
		require.Equal(t, BarPoint, m.Moves[0].From, m.Format(Black))
		require.Equal(t, "bar/24", m.Format(Black)[:6])
	}

	moves = LegalMoves(st, Roll{5, 5}, Black)
	require.NotEmpty(t, moves)
	for _, m := range moves {
		require.Equal(t, "bar/20", m.Format(Black)[:6])
	}
}

func TestLegalMovesBarBlocked(t *testing.T) {
	st := barPosition()
	require.Empty(t, LegalMoves(st, Roll{6, 6}, Black))
}

func TestLegalMovesBearOff(t *testing.T) {
	st := &State{Turn: Black}
	st.Points[1] = 1 // Black 2-point
	st.Points[0] = 1 // Black 1-point
	st.Off[Black] = 13
	st.Points[18] = -15
	require.NoError(t, st.Validate())

	moves := LegalMoves(st, Roll{1, 1}, Black)
	require.Len(t, moves, 1)
	require.Equal(t, "2/1 1/off 1/off", moves[0].Format(Black))

	require.NoError(t, st.Execute(moves[0], Black))
	winner, ok := st.Winner()
	require.True(t, ok)
	require.Equal(t, Black, winner)
}

func TestLegalMovesBearOffNeedsAllHome(t *testing.T) {
	st := &State{Turn: Black}
	st.Points[0] = 14
	st.Points[6] = 1 // Black 7-point
	st.Points[18] = -15
	require.NoError(t, st.Validate())

	// 7/6 6/off reaches the same position and is dropped
	moves := LegalMoves(st, Roll{6, 1}, Black)
	require.Len(t, moves, 1)
	require.Equal(t, "7/1 1/off", moves[0].Format(Black))
}

func TestExecuteIllegal(t *testing.T) {
	st := StartingPosition()
	before := *st

	for _, notation := range []string{"6/1", "bar/20", "5/4", "6/off", "13/5"} {
		a, err := ParseAction(notation, Black)
		require.NoError(t, err)
		err = st.Execute(a, Black)
		require.ErrorIs(t, err, ErrIllegalMove, notation)
		require.Equal(t, before, *st, "state must be untouched after %s", notation)
	}
}

func TestExecuteHitAndTurn(t *testing.T) {
	st := StartingPosition()
	st.Points[20] = -1 // White blot on Black's 21-point
	st.Points[18] = -4

	next := after(t, st, Black, "24/21")
	require.Equal(t, int8(1), next.Bar[White])
	require.Equal(t, 1, next.CountOnPoint(Black, 21))
	require.Equal(t, White, next.Turn)
	require.NoError(t, next.Validate())
}

func TestActionFormatParse(t *testing.T) {
	for _, side := range []Side{Black, White} {
		for _, m := range LegalMoves(StartingPosition(), Roll{4, 2}, side) {
			a, err := ParseAction(m.Format(side), side)
			require.NoError(t, err)
			require.Equal(t, m, a)
		}
	}

	_, err := ParseAction("24-23", Black)
	require.Error(t, err)
	_, err = ParseAction("1/2 3/4 5/6 7/8 9/10", Black)
	require.Error(t, err)
}

func TestAllLegalMovesUnique(t *testing.T) {
	st := StartingPosition()
	all := AllLegalMoves(st, Black)
	require.NotEmpty(t, all)

	seen := make(map[Action]bool)
	for _, a := range all {
		require.False(t, seen[a], a.Format(Black))
		seen[a] = true
	}

	// The first roll in the table contributes first
	first := LegalMoves(st, Rolls[0].Roll, Black)
	require.Equal(t, first, all[:len(first)])
}
