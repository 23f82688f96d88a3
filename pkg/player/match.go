package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/bgsearch/pkg/engine"
	"github.com/yourusername/bgsearch/pkg/match"
	"github.com/yourusername/bgsearch/pkg/search"
)

// MaxGamePlies bounds a single game. Real games end in well under a
// hundred plies; hitting the bound means a strategy refuses to progress.
const MaxGamePlies = engine.MaxPlayoutPlies

// ErrGameTooLong is returned when a game reaches MaxGamePlies.
var ErrGameTooLong = errors.New("game exceeded the ply limit")

// GameResult is the outcome of one game.
type GameResult struct {
	Winner engine.Side
	First  engine.Side // Side that moved first
	Plies  int         // Turns played, passes included
	Passes int
}

// Ply is reported to a game observer after every turn.
type Ply struct {
	Number int
	Side   engine.Side
	Roll   engine.Roll
	Action engine.Action
	Passed bool
	State  engine.State // Position after the turn
}

// GameOptions tunes PlayGame.
type GameOptions struct {
	// First fixes the side that moves first; nil picks it at random.
	First *engine.Side
	// Start is the initial position; nil means the standard setup.
	Start *engine.State
	// Observer, if set, is called after every ply.
	Observer func(Ply)
}

// PlayGame plays one game between players[Black] and players[White], rolling
// dice with rng. Each player chooses with its own random source.
func PlayGame(ctx context.Context, players [2]*Player, rng *rand.Rand, opts GameOptions) (GameResult, error) {
	for side, p := range players {
		if p == nil || p.Side != engine.Side(side) {
			return GameResult{}, errors.Errorf("player for %s is missing or plays the wrong side", engine.Side(side))
		}
	}

	st := engine.StartingPosition()
	if opts.Start != nil {
		*st = *opts.Start
		if err := st.Validate(); err != nil {
			return GameResult{}, errors.WithMessage(err, "start position")
		}
	}
	first := engine.Side(rng.Intn(2))
	if opts.First != nil {
		first = *opts.First
	}
	st.Turn = first

	result := GameResult{First: first}
	for result.Plies < MaxGamePlies {
		if winner, over := st.Winner(); over {
			result.Winner = winner
			return result, nil
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		side := st.Turn
		roll := engine.RollDice(rng)
		actions := engine.LegalMoves(st, roll, side)
		action, ok := players[side].Action(st, actions)
		if ok {
			if err := st.Execute(action, side); err != nil {
				return result, errors.Wrapf(err, "%s chose %s with %s", players[side].Name(), action.Format(side), roll)
			}
		} else {
			if len(actions) > 0 {
				return result, errors.Errorf("%s passed with %d legal plays", players[side].Name(), len(actions))
			}
			st.Pass()
			result.Passes++
		}
		result.Plies++

		if opts.Observer != nil {
			opts.Observer(Ply{Number: result.Plies, Side: side, Roll: roll, Action: action, Passed: !ok, State: *st})
		}
	}

	if winner, over := st.Winner(); over {
		result.Winner = winner
		return result, nil
	}
	return result, errors.Wrapf(ErrGameTooLong, "after %d plies", result.Plies)
}

// MatchConfig describes a series of games between two configurations.
type MatchConfig struct {
	Black, White string // Player configurations, see New
	Games        int
	Seed         uint64 // 0 seeds from entropy
	Workers      int    // Concurrent games, 0 means one
	// Progress, if set, is called after every finished game, serialised.
	Progress func(game int, r GameResult)
	// Record, if set, receives every game in game order once the match
	// finishes.
	Record *match.Match
}

// MatchResult tallies a match.
type MatchResult struct {
	Black, White string // Strategy names
	Games        int
	Wins         [2]int
	FirstWins    int // Games won by the side that moved first
	Plies        int
	Duration     time.Duration
}

// WinRate returns the fraction of games side won.
func (r MatchResult) WinRate(side engine.Side) float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.Wins[side]) / float64(r.Games)
}

func (r MatchResult) String() string {
	return fmt.Sprintf("%d games: black %s won %d (%.1f%%), white %s won %d (%.1f%%)",
		r.Games, r.Black, r.Wins[engine.Black], 100*r.WinRate(engine.Black),
		r.White, r.Wins[engine.White], 100*r.WinRate(engine.White))
}

// PlayMatch plays cfg.Games games and tallies the winners. Game i uses
// seed Seed+i for its dice and players, so a match with a fixed seed is
// reproducible regardless of Workers.
func PlayMatch(ctx context.Context, cfg MatchConfig) (MatchResult, error) {
	if cfg.Games < 1 {
		return MatchResult{}, errors.Errorf("games must be positive, got %d", cfg.Games)
	}
	var strategies [2]search.Strategy
	for side, config := range [2]string{cfg.Black, cfg.White} {
		s, err := NewStrategy(config)
		if err != nil {
			return MatchResult{}, errors.WithMessagef(err, "%s", engine.Side(side))
		}
		strategies[side] = s
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = NewRng(0).Uint64()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	result := MatchResult{
		Black: strategies[engine.Black].Name(),
		White: strategies[engine.White].Name(),
	}
	log.Info().Str("black", result.Black).Str("white", result.White).
		Int("games", cfg.Games).Uint64("seed", seed).Int("workers", workers).
		Msg("match started")
	start := time.Now()

	var records [][]match.Turn
	var winners []engine.Side
	if cfg.Record != nil {
		records = make([][]match.Turn, cfg.Games)
		winners = make([]engine.Side, cfg.Games)
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < cfg.Games; i++ {
		i := i
		gameSeed := seed + uint64(i)
		g.Go(func() error {
			players := [2]*Player{
				{Side: engine.Black, Strategy: strategies[engine.Black], Rng: rand.New(rand.NewSource(gameSeed ^ 0x5bd1e995))},
				{Side: engine.White, Strategy: strategies[engine.White], Rng: rand.New(rand.NewSource(gameSeed ^ 0x1b873593))},
			}
			var opts GameOptions
			var turns []match.Turn
			if records != nil {
				opts.Observer = func(p Ply) {
					turns = append(turns, match.Turn{Side: p.Side, Roll: p.Roll, Action: p.Action, Pass: p.Passed})
				}
			}
			r, err := PlayGame(ctx, players, rand.New(rand.NewSource(gameSeed)), opts)
			if err != nil {
				return errors.WithMessagef(err, "game %d", i)
			}

			mu.Lock()
			defer mu.Unlock()
			result.Games++
			result.Wins[r.Winner]++
			result.Plies += r.Plies
			if r.Winner == r.First {
				result.FirstWins++
			}
			if records != nil {
				records[i] = turns
				winners[i] = r.Winner
			}
			log.Debug().Int("game", i).Stringer("winner", r.Winner).Int("plies", r.Plies).Msg("game finished")
			if cfg.Progress != nil {
				cfg.Progress(i, r)
			}
			return nil
		})
	}
	err := g.Wait()
	result.Duration = time.Since(start)
	if err != nil {
		return result, err
	}

	if cfg.Record != nil {
		if cfg.Record.Black == "" && cfg.Record.White == "" {
			cfg.Record.Black, cfg.Record.White = result.Black, result.White
		}
		for i, turns := range records {
			game := cfg.Record.NewGame()
			game.Turns = turns
			game.Finish(winners[i])
		}
	}

	log.Info().Int("blackWins", result.Wins[engine.Black]).Int("whiteWins", result.Wins[engine.White]).
		Dur("duration", result.Duration).Msg("match finished")
	return result, nil
}
