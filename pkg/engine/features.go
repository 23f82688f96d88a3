package engine

// Feature layout
const (
	UnitsPerPoint   = 4
	FeaturesPerSide = NumPoints*UnitsPerPoint + 2 // Points, bar, off
	NumFeatures     = 2*FeaturesPerSide + 2       // Both sides plus turn units
	featureTurn     = 2 * FeaturesPerSide         // Offset of the turn units
)

// ExtractFeatures encodes st from side's perspective as NumFeatures values.
//
// The first block describes side's own checkers on its points 1-24 (four
// units per point: n>=1, n>=2, n>=3 and (n-3)/2), then bar/2 and off/15.
// The second block describes the opponent in its own point numbering.
// The last two units are [1,0] when side is on roll and [0,1] otherwise.
// A position and its Mirror therefore encode identically for opposite sides.
func ExtractFeatures(st *State, side Side) []float64 {
	features := make([]float64, NumFeatures)
	ExtractFeaturesInto(st, side, features)
	return features
}

// ExtractFeaturesInto writes the encoding into features, which must have
// length NumFeatures.
func ExtractFeaturesInto(st *State, side Side, features []float64) {
	encodeSide(st, side, features[:FeaturesPerSide])
	encodeSide(st, side.Opponent(), features[FeaturesPerSide:2*FeaturesPerSide])

	if st.Turn == side {
		features[featureTurn] = 1
		features[featureTurn+1] = 0
	} else {
		features[featureTurn] = 0
		features[featureTurn+1] = 1
	}
}

func encodeSide(st *State, side Side, out []float64) {
	for p := 1; p <= NumPoints; p++ {
		n := st.CountOnPoint(side, p)
		unit := out[(p-1)*UnitsPerPoint : p*UnitsPerPoint]
		unit[0], unit[1], unit[2], unit[3] = 0, 0, 0, 0
		if n >= 1 {
			unit[0] = 1
		}
		if n >= 2 {
			unit[1] = 1
		}
		if n >= 3 {
			unit[2] = 1
			unit[3] = float64(n-3) / 2
		}
	}
	out[NumPoints*UnitsPerPoint] = float64(st.Bar[side]) / 2
	out[NumPoints*UnitsPerPoint+1] = float64(st.Off[side]) / NumCheckers
}
