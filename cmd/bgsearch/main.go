// bgsearch - backgammon game-tree search: matches, single decisions and
// feature dumps from the command line
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/bgsearch/internal/neuralnet"
	"github.com/yourusername/bgsearch/pkg/engine"
	"github.com/yourusername/bgsearch/pkg/match"
	"github.com/yourusername/bgsearch/pkg/player"
	"github.com/yourusername/bgsearch/pkg/search"
	"github.com/yourusername/bgsearch/pkg/value"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "match":
		err = cmdMatch(args)
	case "move":
		err = cmdMove(args)
	case "features":
		err = cmdFeatures(args)
	case "newnet":
		err = cmdNewNet(args)
	case "replay":
		err = cmdReplay(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Error().Err(err).Str("command", command).Msg("failed")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`bgsearch - Backgammon Game-Tree Search

Usage: bgsearch <command> [options]

Commands:
  match     Play a series of games between two players
  move      Choose a play for one position and roll
  features  Print the 198 network inputs of a position
  newnet    Write a randomly initialised network
  replay    Check the games of a MAT file move by move

Use "bgsearch <command> -h" for command-specific help.

Players are configured as "<strategy>[:key=value,...]", for example:
  random
  greedy:value=blocker
  twoply:value=way_to_go*2+singleton,workers=4
  expectiminimax:depth=2,value=single_to_go
  mcts:iterations=500,c=1.4
  model:path=net.txt,strategy=twoply
Strategies: %s
Values: %s, rollout, model
`, strings.Join(player.Modules(), ", "), strings.Join(heuristicNames(), ", "))
}

func heuristicNames() []string {
	names := make([]string, len(value.Heuristics))
	for i, h := range value.Heuristics {
		names[i] = h.Name()
	}
	return names
}

// setupLogging sends zerolog output to a console writer on stderr.
func setupLogging(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// positionFlags registers the flags selecting a position.
type positionFlags struct {
	position *string
	turn     *string
}

func addPositionFlags(fs *flag.FlagSet) positionFlags {
	return positionFlags{
		position: fs.String("position", "", "Position ID (gnubg format), default is the starting position"),
		turn:     fs.String("turn", "black", "Side on roll: black or white"),
	}
}

func (pf positionFlags) parse() (*engine.State, engine.Side, error) {
	side, err := engine.ParseSide(*pf.turn)
	if err != nil {
		return nil, side, err
	}
	pos := *pf.position
	// Accept gnubg "positionID:matchID", only the position part matters
	if idx := strings.Index(pos, ":"); idx >= 0 {
		pos = pos[:idx]
	}
	if pos == "" {
		st := engine.StartingPosition()
		st.Turn = side
		return st, side, nil
	}
	st, err := engine.FromPositionID(pos, side)
	if err != nil {
		return nil, side, err
	}
	return st, side, st.Validate()
}

func cmdMatch(args []string) error {
	fs := flag.NewFlagSet("match", flag.ExitOnError)
	black := fs.String("black", player.DefaultPlayerConfig, "Black player configuration")
	white := fs.String("white", "random", "White player configuration")
	games := fs.Int("games", 100, "Number of games")
	seed := fs.Uint64("seed", 0, "Random seed (0 = random)")
	workers := fs.Int("workers", 1, "Games played concurrently")
	recordFile := fs.String("record", "", "Write the games to this MAT file")
	verbose := fs.Bool("v", false, "Debug logging")
	fs.Parse(args)
	setupLogging(*verbose)

	var record *match.Match
	if *recordFile != "" {
		record = &match.Match{Event: "bgsearch match", Date: time.Now().Format("2006-01-02")}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	every := *games / 10
	if every < 1 {
		every = 1
	}
	done := 0
	r, err := player.PlayMatch(ctx, player.MatchConfig{
		Black:   *black,
		White:   *white,
		Games:   *games,
		Seed:    *seed,
		Workers: *workers,
		Record:  record,
		Progress: func(int, player.GameResult) {
			done++
			if done%every == 0 {
				log.Info().Int("done", done).Int("games", *games).Msg("progress")
			}
		},
	})
	if err != nil {
		return err
	}

	fmt.Println(r)
	fmt.Printf("  First mover won %d, average %.1f plies, %.1fs\n",
		r.FirstWins, float64(r.Plies)/float64(r.Games), r.Duration.Seconds())

	if record != nil {
		if err := writeRecord(*recordFile, record); err != nil {
			return err
		}
		log.Info().Str("path", *recordFile).Int("games", len(record.Games)).Msg("games recorded")
	}
	return nil
}

func writeRecord(path string, record *match.Match) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating record: %w", err)
	}
	if err := match.ExportMAT(f, record); err != nil {
		f.Close()
		return fmt.Errorf("writing record: %w", err)
	}
	return f.Close()
}

func cmdReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	file := fs.String("file", "", "MAT file to check")
	verbose := fs.Bool("v", false, "Print the final position of every game")
	fs.Parse(args)
	setupLogging(false)

	if *file == "" {
		return fmt.Errorf("-file is required")
	}
	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := match.ImportMAT(f)
	if err != nil {
		return err
	}

	bad := 0
	for _, g := range m.Games {
		st, err := g.Replay()
		if err != nil {
			bad++
			fmt.Printf("Game %d: %v\n", g.Number, err)
			continue
		}
		fmt.Printf("Game %d: %d turns, ok\n", g.Number, len(g.Turns))
		if *verbose {
			fmt.Println(st)
		}
	}
	wins := m.Wins()
	fmt.Printf("%s %d - %d %s\n", m.Black, wins[engine.Black], wins[engine.White], m.White)
	if bad > 0 {
		return fmt.Errorf("%d of %d games failed to replay", bad, len(m.Games))
	}
	return nil
}

func cmdMove(args []string) error {
	fs := flag.NewFlagSet("move", flag.ExitOnError)
	pf := addPositionFlags(fs)
	diceFlag := fs.String("dice", "", "Dice roll (e.g., 3,1 or 3-1), empty rolls at random")
	config := fs.String("player", player.DefaultPlayerConfig, "Player configuration")
	seed := fs.Uint64("seed", 0, "Random seed (0 = random)")
	numMoves := fs.Int("n", 5, "Number of scored candidates to show for lookahead players")
	verbose := fs.Bool("v", false, "Debug logging")
	fs.Parse(args)
	setupLogging(*verbose)

	st, side, err := pf.parse()
	if err != nil {
		return err
	}
	p, err := player.New(side, *config, player.NewRng(*seed))
	if err != nil {
		return err
	}

	roll := engine.RollDice(p.Rng)
	if *diceFlag != "" {
		if roll, err = engine.ParseRoll(*diceFlag); err != nil {
			return err
		}
	}

	fmt.Println(st)
	actions := engine.LegalMoves(st, roll, side)
	start := time.Now()
	action, ok := p.Action(st, actions)
	elapsed := time.Since(start)

	if !ok {
		fmt.Printf("%s rolls %s: no legal moves (forced to pass)\n", side, roll)
		return nil
	}
	fmt.Printf("%s rolls %s, %s plays %s (%d legal, %.2fs)\n",
		side, roll, p.Name(), action.Format(side), len(actions), elapsed.Seconds())

	if l, isLookahead := p.Strategy.(*search.Lookahead); isLookahead && *numMoves > 0 {
		scores := l.Scores(st, side, actions)
		order := make([]int, len(actions))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool { return scores[order[i]] > scores[order[j]] })
		for rank, i := range order {
			if rank == *numMoves {
				break
			}
			fmt.Printf("  %d. %-20s  %.4f\n", rank+1, actions[i].Format(side), scores[i])
		}
	}
	return nil
}

func cmdFeatures(args []string) error {
	fs := flag.NewFlagSet("features", flag.ExitOnError)
	pf := addPositionFlags(fs)
	perspective := fs.String("side", "", "Perspective, default is the side on roll")
	fs.Parse(args)
	setupLogging(false)

	st, side, err := pf.parse()
	if err != nil {
		return err
	}
	if *perspective != "" {
		if side, err = engine.ParseSide(*perspective); err != nil {
			return err
		}
	}

	f := engine.ExtractFeatures(st, side)
	for block, owner := range []engine.Side{side, side.Opponent()} {
		base := block * engine.FeaturesPerSide
		fmt.Printf("%s:\n", owner)
		for p := 0; p < engine.NumPoints; p++ {
			units := f[base+p*engine.UnitsPerPoint : base+(p+1)*engine.UnitsPerPoint]
			if units[0] == 0 {
				continue
			}
			fmt.Printf("  point %2d  %v\n", p+1, units)
		}
		bar := base + engine.NumPoints*engine.UnitsPerPoint
		fmt.Printf("  bar %.3f  off %.3f\n", f[bar], f[bar+1])
	}
	fmt.Printf("turn %v\n", f[engine.NumFeatures-2:])
	return nil
}

func cmdNewNet(args []string) error {
	fs := flag.NewFlagSet("newnet", flag.ExitOnError)
	out := fs.String("o", "net.txt", "Output file: .txt or .bin for TD-Gammon weights, .json for go-deep")
	hidden := fs.Int("hidden", neuralnet.DefaultHidden, "Hidden units")
	scale := fs.Float64("scale", 0.1, "Initial weights are uniform in [-scale, scale]")
	seed := fs.Uint64("seed", 0, "Random seed (0 = random)")
	fs.Parse(args)
	setupLogging(false)

	nn, err := neuralnet.NewRandom(neuralnet.DefaultInputs, *hidden, *scale, player.NewRng(*seed))
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(*out), ".json") {
		var d *value.DeepNetwork
		if d, err = value.DeepFromNet(nn); err != nil {
			return err
		}
		err = d.Save(*out)
	} else {
		err = nn.Save(*out)
	}
	if err != nil {
		return err
	}
	log.Info().Str("path", *out).Int("inputs", nn.Inputs).Int("hidden", nn.Hidden).Msg("network written")
	return nil
}
