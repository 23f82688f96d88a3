// Package api provides an HTTP/JSON and WebSocket API for choosing plays
// and running matches between search strategies.
package api

// ============================================================================
// Request Types
// ============================================================================

// MoveRequest asks a player for its play in one position.
type MoveRequest struct {
	Position string `json:"position,omitempty"`  // GNU position ID, default is the starting position
	Turn     string `json:"turn,omitempty"`      // Side on roll: "black" (default) or "white"
	Dice     [2]int `json:"dice,omitempty"`      // Dice roll, zero rolls with Seed
	Player   string `json:"player,omitempty"`    // Player configuration, e.g. "mcts:iterations=500"
	Seed     uint64 `json:"seed,omitempty"`      // Random seed (0 = random)
	NumMoves int    `json:"num_moves,omitempty"` // Scored candidates to return for lookahead players
}

// MatchRequest asks for a series of games between two players.
type MatchRequest struct {
	Black   string `json:"black"`             // Player configuration for Black
	White   string `json:"white"`             // Player configuration for White
	Games   int    `json:"games"`             // Number of games
	Seed    uint64 `json:"seed,omitempty"`    // Random seed (0 = random)
	Workers int    `json:"workers,omitempty"` // Concurrent games, capped by the server
}

// ============================================================================
// Response Types
// ============================================================================

// ScoredMove is a candidate play with its lookahead score.
type ScoredMove struct {
	Move  string  `json:"move"`  // Play in the mover's notation, e.g. "8/5 6/5"
	Score float64 `json:"score"` // Value for the mover in [0,1]
}

// MoveResponse is the chosen play.
type MoveResponse struct {
	Move       string       `json:"move,omitempty"`       // Chosen play, empty on a pass
	Pass       bool         `json:"pass"`                 // No legal play exists
	Dice       [2]int       `json:"dice"`                 // Dice used
	Turn       string       `json:"turn"`                 // Side that moved
	Player     string       `json:"player"`               // Strategy name
	NumLegal   int          `json:"num_legal"`            // Number of legal plays
	Position   string       `json:"position"`             // Position ID after the play, opponent on roll
	Candidates []ScoredMove `json:"candidates,omitempty"` // Best candidates first
}

// GameResponse is the outcome of one game of a match.
type GameResponse struct {
	Game   int    `json:"game"`   // 0-based game index
	Winner string `json:"winner"` // "black" or "white"
	First  string `json:"first"`  // Side that moved first
	Plies  int    `json:"plies"`  // Turns played
}

// MatchResponse tallies a match.
type MatchResponse struct {
	Black      string  `json:"black"`       // Black strategy name
	White      string  `json:"white"`       // White strategy name
	Games      int     `json:"games"`       // Games played
	BlackWins  int     `json:"black_wins"`  // Games won by Black
	WhiteWins  int     `json:"white_wins"`  // Games won by White
	BlackPct   float64 `json:"black_pct"`   // Black win rate as percentage
	WhitePct   float64 `json:"white_pct"`   // White win rate as percentage
	FirstWins  int     `json:"first_wins"`  // Games won by the side moving first
	AvgPlies   float64 `json:"avg_plies"`   // Mean game length
	DurationMS int64   `json:"duration_ms"` // Wall time
}

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error string `json:"error"`          // Error message
	Code  string `json:"code,omitempty"` // Error code
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status     string     `json:"status"`         // "ok"
	Version    string     `json:"version"`        // Server version
	Strategies []string   `json:"strategies"`     // Known player modules
	Pool       *PoolStats `json:"pool,omitempty"` // Worker pool statistics
}
