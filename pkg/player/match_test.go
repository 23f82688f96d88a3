package player

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/yourusername/bgsearch/pkg/engine"
	"github.com/yourusername/bgsearch/pkg/match"
	"github.com/yourusername/bgsearch/pkg/search"
)

func newPlayers(t *testing.T, black, white string) [2]*Player {
	t.Helper()
	b, err := New(engine.Black, black, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	w, err := New(engine.White, white, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	return [2]*Player{b, w}
}

func TestPlayGame(t *testing.T) {
	players := newPlayers(t, "random", "greedy")

	var plies []Ply
	r, err := PlayGame(context.Background(), players, rand.New(rand.NewSource(7)), GameOptions{
		Observer: func(p Ply) { plies = append(plies, p) },
	})
	require.NoError(t, err)
	require.Len(t, plies, r.Plies)
	assert.Equal(t, r.First, plies[0].Side)

	last := plies[len(plies)-1]
	assert.Equal(t, r.Winner, last.Side)
	assert.Equal(t, int8(engine.NumCheckers), last.State.Off[r.Winner])
	for _, p := range plies {
		require.NoError(t, p.State.Validate())
	}
}

func TestPlayGameDeterministic(t *testing.T) {
	play := func() GameResult {
		r, err := PlayGame(context.Background(), newPlayers(t, "random", "random"), rand.New(rand.NewSource(99)), GameOptions{})
		require.NoError(t, err)
		return r
	}
	assert.Equal(t, play(), play())
}

func TestPlayGameFixedStart(t *testing.T) {
	// Black bears off its last two checkers with any roll
	st := engine.State{}
	st.Points[0] = 2
	st.Off[engine.Black] = 13
	st.Points[23] = -15
	first := engine.Black

	r, err := PlayGame(context.Background(), newPlayers(t, "greedy", "greedy"), rand.New(rand.NewSource(1)),
		GameOptions{Start: &st, First: &first})
	require.NoError(t, err)
	assert.Equal(t, GameResult{Winner: engine.Black, First: engine.Black, Plies: 1}, r)
}

func TestPlayGameErrors(t *testing.T) {
	players := newPlayers(t, "random", "random")
	players[0], players[1] = players[1], players[0]
	_, err := PlayGame(context.Background(), players, rand.New(rand.NewSource(1)), GameOptions{})
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = PlayGame(ctx, newPlayers(t, "random", "random"), rand.New(rand.NewSource(1)), GameOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

// stubborn never plays.
type stubborn struct{}

func (stubborn) Name() string { return "stubborn" }
func (stubborn) Choose(*engine.State, engine.Side, []engine.Action, *rand.Rand) (engine.Action, bool) {
	return engine.Action{}, false
}

var _ search.Strategy = stubborn{}

func TestPlayGameRejectsIllegalPass(t *testing.T) {
	players := newPlayers(t, "random", "random")
	players[engine.White].Strategy = stubborn{}
	players[engine.Black].Strategy = stubborn{}
	_, err := PlayGame(context.Background(), players, rand.New(rand.NewSource(1)), GameOptions{})
	require.Error(t, err)
}

func TestPlayMatch(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]bool{}
	cfg := MatchConfig{
		Black:   "greedy:value=way_to_go",
		White:   "random",
		Games:   12,
		Seed:    5,
		Workers: 3,
		Progress: func(game int, _ GameResult) {
			mu.Lock()
			seen[game] = true
			mu.Unlock()
		},
	}
	r, err := PlayMatch(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 12, r.Games)
	assert.Equal(t, 12, r.Wins[engine.Black]+r.Wins[engine.White])
	assert.Len(t, seen, 12)
	assert.Equal(t, "Greedy [way_to_go]", r.Black)
	assert.InDelta(t, 1.0, r.WinRate(engine.Black)+r.WinRate(engine.White), 1e-12)
	assert.Contains(t, r.String(), "12 games")

	// Same seed, different parallelism, same tally
	cfg.Workers = 1
	cfg.Progress = nil
	again, err := PlayMatch(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, r.Wins, again.Wins)
	assert.Equal(t, r.Plies, again.Plies)
}

func TestPlayMatchErrors(t *testing.T) {
	_, err := PlayMatch(context.Background(), MatchConfig{Black: "random", White: "random"})
	require.Error(t, err)
	_, err = PlayMatch(context.Background(), MatchConfig{Black: "random", White: "nobody", Games: 1})
	require.Error(t, err)
}

func TestPlayMatchRecord(t *testing.T) {
	record := match.NewMatch("", "")
	r, err := PlayMatch(context.Background(), MatchConfig{
		Black:   "greedy:value=blocker",
		White:   "random",
		Games:   4,
		Seed:    11,
		Workers: 2,
		Record:  record,
	})
	require.NoError(t, err)

	assert.Equal(t, r.Black, record.Black)
	require.Len(t, record.Games, 4)
	assert.Equal(t, r.Wins, record.Wins())
	for i, g := range record.Games {
		assert.Equal(t, i+1, g.Number)
		st, err := g.Replay()
		require.NoError(t, err, "game %d", i)
		winner, over := st.Winner()
		require.True(t, over)
		assert.Equal(t, g.Winner, winner)
	}
}
