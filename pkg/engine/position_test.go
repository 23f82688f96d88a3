package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestStartingPosition(t *testing.T) {
	st := StartingPosition()
	require.NoError(t, st.Validate())
	require.Equal(t, Black, st.Turn)
	require.Equal(t, 167, st.PipCount(Black))
	require.Equal(t, 167, st.PipCount(White))
	_, over := st.Winner()
	require.False(t, over)
}

func TestCheckerInvariantDuringPlay(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	st := StartingPosition()

	for ply := 0; ply < 200; ply++ {
		if _, over := st.Winner(); over {
			break
		}
		moves := LegalMoves(st, RollDice(rng), st.Turn)
		if len(moves) == 0 {
			st.Pass()
			continue
		}
		require.NoError(t, st.Execute(moves[rng.Intn(len(moves))], st.Turn))
		require.NoError(t, st.Validate())
	}
}

func TestMirror(t *testing.T) {
	st := StartingPosition()
	st = &State{Points: st.Points, Turn: White}
	st.Points[23] = 1
	st.Bar[Black] = 1
	st.Off[White] = 2
	st.Points[18] = -3

	m := st.Mirror()
	require.Equal(t, Black, m.Turn)
	require.Equal(t, st.Bar[Black], m.Bar[White])
	require.Equal(t, st.Off[White], m.Off[Black])
	for p := 1; p <= NumPoints; p++ {
		require.Equal(t, st.CountOnPoint(Black, p), m.CountOnPoint(White, p))
		require.Equal(t, st.CountOnPoint(White, p), m.CountOnPoint(Black, p))
	}
	require.Equal(t, *st, *m.Mirror())
}

func TestValidateCatchesBadCounts(t *testing.T) {
	st := StartingPosition()
	st.Points[5]++
	require.Error(t, st.Validate())
}

func TestParseSide(t *testing.T) {
	side, err := ParseSide("White")
	require.NoError(t, err)
	require.Equal(t, White, side)

	side, err = ParseSide("x")
	require.NoError(t, err)
	require.Equal(t, Black, side)

	_, err = ParseSide("red")
	require.Error(t, err)
}

func TestSnapshotRestore(t *testing.T) {
	arena := NewArena(4)
	st := StartingPosition()
	start := *st

	h := arena.Snapshot(st)
	st.MustExecute(LegalMoves(st, Roll{3, 1}, Black)[0], Black)
	inner := arena.Snapshot(st)
	st.MustExecute(LegalMoves(st, Roll{6, 5}, White)[0], White)
	require.Equal(t, 2, arena.Len())

	arena.Restore(st, inner)
	require.Equal(t, White, st.Turn)
	arena.Release(inner)

	arena.Restore(st, h)
	require.Equal(t, start, *st)
	arena.Release(h)
	require.Zero(t, arena.Len())
}

func TestPositionID(t *testing.T) {
	st := StartingPosition()
	require.Equal(t, "4HPwATDgc/ABMA", st.PositionID())

	back, err := FromPositionID(st.PositionID(), Black)
	require.NoError(t, err)
	require.Equal(t, *st, *back)

	// A position with checkers on the bar and borne off
	st.MustExecute(LegalMoves(st, Roll{6, 4}, Black)[0], Black)
	st.Bar[White] = 1
	st.Points[0]++
	st.Off[Black] = 0
	back, err = FromPositionID(st.PositionID(), st.Turn)
	require.NoError(t, err)
	require.Equal(t, *st, *back)

	_, err = FromPositionID("not-an-id", Black)
	require.Error(t, err)
}

func TestRollTable(t *testing.T) {
	weight := 0
	prob := 0.0
	seen := make(map[Roll]bool)
	for _, r := range Rolls {
		require.True(t, r.Valid())
		require.GreaterOrEqual(t, r.D1, r.D2)
		require.False(t, seen[r.Roll])
		seen[r.Roll] = true
		weight += r.Weight
		prob += r.Prob
	}
	require.Len(t, seen, NumRolls)
	require.Equal(t, 36, weight)
	require.InDelta(t, 1.0, prob, 1e-12)
}

func TestParseRoll(t *testing.T) {
	r, err := ParseRoll("3,1")
	require.NoError(t, err)
	require.Equal(t, Roll{3, 1}, r)

	r, err = ParseRoll("6-6")
	require.NoError(t, err)
	require.True(t, r.IsDouble())

	_, err = ParseRoll("7,1")
	require.Error(t, err)
	_, err = ParseRoll("31")
	require.Error(t, err)
}
