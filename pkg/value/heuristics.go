package value

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/yourusername/bgsearch/pkg/engine"
)

// Heuristic is one of the hand-crafted value functions.
type Heuristic int

const (
	// WayToGo is the opponent's remaining pip count over 375, the most
	// pips 15 checkers can need.
	WayToGo Heuristic = iota
	// Singleton is the share of checkers that are not blots: (15-blots)/15.
	Singleton
	// Blocker is the number of made points (two or more checkers) over 7.
	Blocker
	// SingleToGo averages Singleton and WayToGo.
	SingleToGo
)

var heuristicNames = [...]string{
	WayToGo:    "way_to_go",
	Singleton:  "singleton",
	Blocker:    "blocker",
	SingleToGo: "single_to_go",
}

// maxPips is the pip count of 15 checkers on the bar
const maxPips = engine.NumCheckers * 25

// Heuristics lists every heuristic in declaration order.
var Heuristics = []Heuristic{WayToGo, Singleton, Blocker, SingleToGo}

// Name returns the heuristic's config name, e.g. "way_to_go".
func (h Heuristic) Name() string {
	if h < 0 || int(h) >= len(heuristicNames) {
		return fmt.Sprintf("heuristic(%d)", int(h))
	}
	return heuristicNames[h]
}

func (h Heuristic) String() string {
	return h.Name()
}

// ParseHeuristic looks a heuristic up by name.
func ParseHeuristic(name string) (Heuristic, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	h, ok := lo.Find(Heuristics, func(h Heuristic) bool { return h.Name() == name })
	if !ok {
		return 0, fmt.Errorf("unknown heuristic %q (known: %s)", name,
			strings.Join(lo.Map(Heuristics, func(h Heuristic, _ int) string { return h.Name() }), ", "))
	}
	return h, nil
}

// Evaluate scores st for side.
func (h Heuristic) Evaluate(st *engine.State, side engine.Side) float64 {
	switch h {
	case WayToGo:
		return wayToGo(st, side)
	case Singleton:
		return singleton(st, side)
	case Blocker:
		return blocker(st, side)
	case SingleToGo:
		return (singleton(st, side) + wayToGo(st, side)) / 2
	}
	panic(fmt.Sprintf("value: unknown heuristic %d", int(h)))
}

func wayToGo(st *engine.State, side engine.Side) float64 {
	return clamp(float64(st.PipCount(side.Opponent())) / maxPips)
}

func singleton(st *engine.State, side engine.Side) float64 {
	blots := 0
	for p := 1; p <= engine.NumPoints; p++ {
		if st.CountOnPoint(side, p) == 1 {
			blots++
		}
	}
	return float64(engine.NumCheckers-blots) / engine.NumCheckers
}

func blocker(st *engine.State, side engine.Side) float64 {
	made := 0
	for p := 1; p <= engine.NumPoints; p++ {
		if st.CountOnPoint(side, p) >= 2 {
			made++
		}
	}
	return clamp(float64(made) / 7)
}
