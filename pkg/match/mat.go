package match

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/yourusername/bgsearch/pkg/engine"
)

// MAT format is the Jellyfish/gnubg match format. Black's turns are in the
// left column and White's in the right one, each written in the mover's
// own point numbers:
//
//	 ; [Player 1 "Greedy [blocker]"]
//	 ; [Player 2 "Random"]
//	 Unlimited match
//
//	 Game 1
//	 Greedy [blocker] : 0                   Random : 0
//	  1) 31: 8/5 6/5                   52: 13/8 13/11
//	  2) 64: 24/14                     66:
//	                                   Wins 1 point

// columnWidth is the width of the left column of a turn line.
const columnWidth = 28

var (
	gameHeaderRE = regexp.MustCompile(`^Game\s+(\d+)`)
	scoreLineRE  = regexp.MustCompile(`^(.+?)\s*:\s*(\d+)\s+(.+?)\s*:\s*(\d+)\s*$`)
	moveLineRE   = regexp.MustCompile(`^\s*(\d+)\)`)
	entryRE      = regexp.MustCompile(`([1-6])([1-6]):((?:\s+(?:bar|\d+)/(?:off|\d+)\*?)*)`)
	tagRE        = regexp.MustCompile(`\[([\w ]+?)\s+"([^"]*)"\]`)
)

// ExportMAT writes a match in MAT format.
func ExportMAT(w io.Writer, match *Match) error {
	bw := bufio.NewWriter(w)
	if match.Event != "" {
		fmt.Fprintf(bw, " ; [Event \"%s\"]\n", match.Event)
	}
	if match.Date != "" {
		fmt.Fprintf(bw, " ; [Date \"%s\"]\n", match.Date)
	}
	fmt.Fprintf(bw, " ; [Player 1 \"%s\"]\n", match.Black)
	fmt.Fprintf(bw, " ; [Player 2 \"%s\"]\n", match.White)
	fmt.Fprintf(bw, " Unlimited match\n\n")

	for _, game := range match.Games {
		exportGameMAT(bw, match, game)
	}
	return bw.Flush()
}

// exportGameMAT writes a single game in MAT format.
func exportGameMAT(w io.Writer, match *Match, game *Game) {
	fmt.Fprintf(w, " Game %d\n", game.Number)
	fmt.Fprintf(w, " %s : %d                   %s : %d\n",
		match.Black, game.Score[engine.Black], match.White, game.Score[engine.White])

	line := 0
	open := false // Left column written, right one pending
	for _, t := range game.Turns {
		entry := formatTurn(t)
		if t.Side == engine.Black {
			if open {
				fmt.Fprintln(w)
			}
			line++
			fmt.Fprintf(w, "%3d) %-*s ", line, columnWidth, entry)
			open = true
			continue
		}
		if !open {
			line++
			fmt.Fprintf(w, "%3d) %-*s ", line, columnWidth, "")
		}
		fmt.Fprintln(w, entry)
		open = false
	}
	if open {
		fmt.Fprintln(w)
	}

	if game.Finished {
		indent := 6
		if game.Winner == engine.White {
			indent += columnWidth + 1
		}
		fmt.Fprintf(w, "%*sWins 1 point\n", indent, "")
	}
	fmt.Fprintln(w)
}

func formatTurn(t Turn) string {
	roll := fmt.Sprintf("%d%d:", t.Roll.D1, t.Roll.D2)
	if t.Pass {
		return roll
	}
	return roll + " " + t.Action.Format(t.Side)
}

// ImportMAT reads a match in MAT format. Moves are parsed but not checked;
// use Game.Replay for that.
func ImportMAT(r io.Reader) (*Match, error) {
	scanner := bufio.NewScanner(r)
	match := &Match{}

	var game *Game
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ";") {
			if m := tagRE.FindStringSubmatch(line); m != nil {
				switch strings.ToLower(strings.ReplaceAll(m[1], " ", "")) {
				case "player1":
					match.Black = m[2]
				case "player2":
					match.White = m[2]
				case "event":
					match.Event = m[2]
				case "date":
					match.Date = m[2]
				}
			}
			continue
		}

		if m := gameHeaderRE.FindStringSubmatch(line); m != nil {
			game = match.NewGame()
			if n, err := strconv.Atoi(m[1]); err == nil {
				game.Number = n
			}
			continue
		}
		if game == nil {
			continue // Match length line or other preamble
		}

		if strings.HasPrefix(line, "Wins") {
			game.Finish(engine.Black)
			if strings.Index(raw, "Wins") > columnWidth/2 {
				game.Winner = engine.White
			}
			continue
		}

		if loc := moveLineRE.FindStringIndex(raw); loc != nil {
			if err := parseTurnLine(raw[loc[1]:], game); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			continue
		}

		if m := scoreLineRE.FindStringSubmatch(line); m != nil {
			game.Score[engine.Black], _ = strconv.Atoi(m[2])
			game.Score[engine.White], _ = strconv.Atoi(m[4])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading match: %w", err)
	}
	return match, nil
}

// parseTurnLine parses the text after "N)" of a turn line. An entry
// starting in the left half belongs to Black, otherwise to White.
func parseTurnLine(rest string, game *Game) error {
	for _, loc := range entryRE.FindAllStringSubmatchIndex(rest, -1) {
		side := engine.Black
		if loc[0] > columnWidth/2 {
			side = engine.White
		}
		d1, _ := strconv.Atoi(rest[loc[2]:loc[3]])
		d2, _ := strconv.Atoi(rest[loc[4]:loc[5]])
		t := Turn{Side: side, Roll: engine.Roll{D1: d1, D2: d2}}

		moves := strings.ReplaceAll(rest[loc[6]:loc[7]], "*", "")
		if strings.TrimSpace(moves) == "" {
			t.Pass = true
		} else {
			a, err := engine.ParseAction(moves, side)
			if err != nil {
				return err
			}
			t.Action = a
		}
		game.AddTurn(t)
	}
	return nil
}
