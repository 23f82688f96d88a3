package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestExtractFeaturesLength(t *testing.T) {
	require.Equal(t, 198, NumFeatures)
	require.Len(t, ExtractFeatures(StartingPosition(), Black), NumFeatures)
}

func TestExtractFeaturesStartingPosition(t *testing.T) {
	st := StartingPosition()
	f := ExtractFeatures(st, Black)

	// Own 6-point holds five checkers
	six := f[5*UnitsPerPoint : 6*UnitsPerPoint]
	require.Equal(t, []float64{1, 1, 1, 1}, six)

	// Own 24-point holds two
	back := f[23*UnitsPerPoint : 24*UnitsPerPoint]
	require.Equal(t, []float64{1, 1, 0, 0}, back)

	// Black is on roll
	require.Equal(t, []float64{1, 0}, f[NumFeatures-2:])
	require.Equal(t, []float64{0, 1}, ExtractFeatures(st, White)[NumFeatures-2:])

	// The start is symmetric, so both sides see the same board blocks
	w := ExtractFeatures(st, White)
	require.Equal(t, f[:2*FeaturesPerSide], w[:2*FeaturesPerSide])
}

func TestExtractFeaturesBarAndOff(t *testing.T) {
	st := &State{Turn: White}
	st.Bar[Black] = 2
	st.Off[Black] = 13
	st.Points[18] = -15

	f := ExtractFeatures(st, Black)
	require.Equal(t, 1.0, f[NumPoints*UnitsPerPoint])
	require.InDelta(t, 13.0/15, f[NumPoints*UnitsPerPoint+1], 1e-12)

	// Seen by White, Black's bar is in the opponent block
	w := ExtractFeatures(st, White)
	require.Equal(t, 1.0, w[FeaturesPerSide+NumPoints*UnitsPerPoint])
}

func TestExtractFeaturesMirrorSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	st := StartingPosition()

	for ply := 0; ply < 60; ply++ {
		for _, side := range []Side{Black, White} {
			require.Equal(t, ExtractFeatures(st, side), ExtractFeatures(st.Mirror(), side.Opponent()))
		}

		moves := LegalMoves(st, RollDice(rng), st.Turn)
		if len(moves) == 0 {
			st.Pass()
			continue
		}
		st.MustExecute(moves[rng.Intn(len(moves))], st.Turn)
		if _, over := st.Winner(); over {
			break
		}
	}
}
