package external

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/bgsearch/pkg/engine"
)

// FIBSBoard represents a parsed FIBS board string.
// See: http://www.fibs.com/fibs_interface.html#board_state
type FIBSBoard struct {
	Player1      string  // Your name
	Player2      string  // Opponent's name
	MatchLength  int     // Match length (0 = unlimited)
	Score1       int     // Your score
	Score2       int     // Opponent's score
	Board        [26]int // Checker counts, positive for colour X (1), negative for O (-1)
	Turn         int     // Colour on turn
	Dice         [2]int  // Your dice (0,0 if not rolled)
	OppDice      [2]int  // Opponent's dice
	Cube         int     // Cube value
	CanDouble    bool    // Can you double?
	OppCanDouble bool    // Can opponent double?
	Doubled      bool    // Has opponent doubled?
	Color        int     // Your colour (1 or -1)
	Direction    int     // -1 if you move from 24 towards 1, +1 if from 1 towards 24
}

// fibsFields is the minimum number of fields after "board:" up to and
// including the direction.
const fibsFields = 42

// ParseFIBSBoard parses a FIBS board string.
// Format: board:player1:player2:matchlen:score1:score2:board[26]:turn:dice[4]:cube:maydouble[2]:doubled:colour:direction:...
func ParseFIBSBoard(s string) (*FIBSBoard, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "board:")

	parts := strings.Split(s, ":")
	if len(parts) < fibsFields {
		return nil, fmt.Errorf("invalid FIBS board: expected at least %d fields, got %d", fibsFields, len(parts))
	}

	fb := &FIBSBoard{Player1: parts[0], Player2: parts[1]}
	ints := make([]int, len(parts))
	for i := 2; i < fibsFields; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return nil, fmt.Errorf("invalid FIBS board: field %d is %q", i, parts[i])
		}
		ints[i] = n
	}

	fb.MatchLength, fb.Score1, fb.Score2 = ints[2], ints[3], ints[4]
	copy(fb.Board[:], ints[5:31])
	fb.Turn = ints[31]
	fb.Dice = [2]int{ints[32], ints[33]}
	fb.OppDice = [2]int{ints[34], ints[35]}
	fb.Cube = ints[36]
	fb.CanDouble = ints[37] == 1
	fb.OppCanDouble = ints[38] == 1
	fb.Doubled = ints[39] == 1
	fb.Color = ints[40]
	fb.Direction = ints[41]

	if fb.Color != 1 && fb.Color != -1 {
		return nil, fmt.Errorf("invalid FIBS board: colour %d", fb.Color)
	}
	if fb.Direction != 1 && fb.Direction != -1 {
		return nil, fmt.Errorf("invalid FIBS board: direction %d", fb.Direction)
	}
	return fb, nil
}

// point returns the board index holding your point p (1-24); 0 and 25
// are the bars.
func (fb *FIBSBoard) point(p int) int {
	if fb.Direction < 0 {
		return p
	}
	return 25 - p
}

// State converts the board to a position with you as Black, on roll.
func (fb *FIBSBoard) State() (*engine.State, error) {
	st := &engine.State{Turn: engine.Black}

	var total [2]int
	for p := 1; p <= engine.NumPoints; p++ {
		n := fb.Board[fb.point(p)] * fb.Color
		// Black's point p is index p-1
		st.Points[p-1] = int8(n)
		if n > 0 {
			total[engine.Black] += n
		} else {
			total[engine.White] -= n
		}
	}

	// Your bar is beyond your 24-point, the opponent's beyond your 1-point
	myBar := abs(fb.Board[fb.point(25)])
	oppBar := abs(fb.Board[fb.point(0)])
	st.Bar[engine.Black] = int8(myBar)
	st.Bar[engine.White] = int8(oppBar)
	total[engine.Black] += myBar
	total[engine.White] += oppBar

	for _, side := range []engine.Side{engine.Black, engine.White} {
		if total[side] > engine.NumCheckers {
			return nil, fmt.Errorf("%s has %d checkers", side, total[side])
		}
		st.Off[side] = int8(engine.NumCheckers - total[side])
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

// Roll returns your dice.
func (fb *FIBSBoard) Roll() (engine.Roll, bool) {
	r := engine.Roll{D1: fb.Dice[0], D2: fb.Dice[1]}
	return r, r.Valid()
}

// FormatMove writes a play of the board's owner in the board's numbering.
func (fb *FIBSBoard) FormatMove(a engine.Action) string {
	parts := make([]string, 0, a.N)
	for _, m := range a.SubMoves() {
		parts = append(parts, formatFIBSPoint(int(m.From), fb.Direction)+"/"+formatFIBSPoint(int(m.To), fb.Direction))
	}
	return strings.Join(parts, " ")
}

// formatFIBSPoint formats a Black point index for FIBS output.
func formatFIBSPoint(idx int, direction int) string {
	switch int8(idx) {
	case engine.BarPoint:
		return "bar"
	case engine.OffPoint:
		return "off"
	}
	p := idx + 1
	if direction > 0 {
		p = 25 - p
	}
	return strconv.Itoa(p)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
