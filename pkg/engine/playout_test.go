package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestRandomPlayoutTerminates(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		st := StartingPosition()

		winner, err := RandomPlayout(st, Black, rng)
		require.NoError(t, err)
		require.Equal(t, int8(NumCheckers), st.Off[winner])
		require.Less(t, st.Off[winner.Opponent()], int8(NumCheckers))
		require.NoError(t, st.Validate())
	}
}

func TestRandomPlayoutDeterministic(t *testing.T) {
	play := func() (Side, State) {
		st := StartingPosition()
		winner, err := RandomPlayout(st, White, rand.New(rand.NewSource(42)))
		require.NoError(t, err)
		return winner, *st
	}

	w1, s1 := play()
	w2, s2 := play()
	require.Equal(t, w1, w2)
	require.Equal(t, s1, s2)
}

func TestRandomPlayoutFinishedGame(t *testing.T) {
	st := &State{Turn: White}
	st.Off[Black] = NumCheckers
	st.Points[18] = -15

	winner, err := RandomPlayout(st, White, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Equal(t, Black, winner)
}

func TestRandomPlayoutNonTerminating(t *testing.T) {
	// No checkers anywhere and none borne off: every ply is a pass
	st := &State{}

	_, err := RandomPlayout(st, Black, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, ErrNonTerminatingPlayout)
}
