package engine

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"
)

// Roll is an unordered dice roll. D1 >= D2 for rolls taken from Rolls.
type Roll struct {
	D1 int
	D2 int
}

// IsDouble reports whether both dice show the same value.
func (r Roll) IsDouble() bool {
	return r.D1 == r.D2
}

// Valid reports whether both dice are in [1,6].
func (r Roll) Valid() bool {
	return r.D1 >= 1 && r.D1 <= 6 && r.D2 >= 1 && r.D2 <= 6
}

func (r Roll) String() string {
	return fmt.Sprintf("%d-%d", r.D1, r.D2)
}

// WeightedRoll is one entry of the roll distribution.
type WeightedRoll struct {
	Roll
	Weight int     // Out of 36: 2 for non-doubles, 1 for doubles
	Prob   float64 // Weight / 36
}

// NumRolls is the number of distinct unordered rolls.
const NumRolls = 21

// Rolls is the distribution of the 21 distinct rolls: non-doubles occur
// with probability 1/18 and doubles with probability 1/36. Every strategy
// that averages over dice uses this table.
var Rolls = buildRolls()

func buildRolls() [NumRolls]WeightedRoll {
	var rolls [NumRolls]WeightedRoll
	n := 0
	for d1 := 1; d1 <= 6; d1++ {
		for d2 := 1; d2 <= d1; d2++ {
			weight := 2
			if d1 == d2 {
				weight = 1
			}
			rolls[n] = WeightedRoll{
				Roll:   Roll{D1: d1, D2: d2},
				Weight: weight,
				Prob:   float64(weight) / 36,
			}
			n++
		}
	}
	return rolls
}

// RollDice rolls two dice with rng.
func RollDice(rng *rand.Rand) Roll {
	return Roll{D1: rng.Intn(6) + 1, D2: rng.Intn(6) + 1}
}

// ParseRoll parses dice written as "3,1" or "3-1".
func ParseRoll(s string) (Roll, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		parts = strings.Split(s, "-")
	}
	if len(parts) != 2 {
		return Roll{}, fmt.Errorf("dice should be in format '3,1' or '3-1'")
	}

	d1, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	d2, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	r := Roll{D1: d1, D2: d2}
	if err1 != nil || err2 != nil || !r.Valid() {
		return Roll{}, fmt.Errorf("dice values must be 1-6")
	}
	return r, nil
}

// AllLegalMoves returns the union of side's legal plays over all 21 rolls,
// in first-seen order.
func AllLegalMoves(st *State, side Side) []Action {
	seen := make(map[Action]struct{})
	var all []Action
	for _, r := range Rolls {
		for _, a := range LegalMoves(st, r.Roll, side) {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			all = append(all, a)
		}
	}
	return all
}
