package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/yourusername/bgsearch/pkg/engine"
	"github.com/yourusername/bgsearch/pkg/player"
	"github.com/yourusername/bgsearch/pkg/search"
	"github.com/yourusername/bgsearch/pkg/value"
)

// Limits bounds the work a single request may ask for.
type Limits struct {
	MaxGames      int // Games per match request
	MaxWorkers    int // Concurrent games per match
	MaxIterations int // MCTS iterations per move
	MaxDepth      int // Lookahead depth in plies
	MaxTrials     int // Rollout trials per evaluation
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxGames: 1000, MaxWorkers: 4, MaxIterations: 100000, MaxDepth: 2, MaxTrials: 10000}
}

// Handlers holds the HTTP handlers.
type Handlers struct {
	version  string
	pool     *WorkerPool
	limits   Limits
	modelDir string // Directory model paths resolve against; empty disables them
}

// NewHandlers creates handlers. pool may be nil to run without limits on
// concurrency.
func NewHandlers(version string, pool *WorkerPool, limits Limits) *Handlers {
	defaults := DefaultLimits()
	if limits.MaxGames <= 0 {
		limits.MaxGames = defaults.MaxGames
	}
	if limits.MaxWorkers <= 0 {
		limits.MaxWorkers = defaults.MaxWorkers
	}
	if limits.MaxIterations <= 0 {
		limits.MaxIterations = defaults.MaxIterations
	}
	if limits.MaxDepth <= 0 {
		limits.MaxDepth = defaults.MaxDepth
	}
	if limits.MaxTrials <= 0 {
		limits.MaxTrials = defaults.MaxTrials
	}
	return &Handlers{version: version, pool: pool, limits: limits}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// requestError is a client error with its response code.
type requestError struct {
	code string
	err  error
}

func (e *requestError) Error() string { return e.err.Error() }

func badRequest(code string, err error) error {
	return &requestError{code: code, err: err}
}

// writeFailure maps err to a 400 for client errors and a 500 otherwise.
func writeFailure(w http.ResponseWriter, err error) {
	var re *requestError
	if errors.As(err, &re) {
		writeError(w, http.StatusBadRequest, re.Error(), re.code)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
}

// parseState returns the position and side on roll of req.
func parseState(req *MoveRequest) (*engine.State, engine.Side, error) {
	side := engine.Black
	if req.Turn != "" {
		s, err := engine.ParseSide(req.Turn)
		if err != nil {
			return nil, side, badRequest("INVALID_TURN", err)
		}
		side = s
	}

	if req.Position == "" {
		st := engine.StartingPosition()
		st.Turn = side
		return st, side, nil
	}
	st, err := engine.FromPositionID(req.Position, side)
	if err != nil {
		return nil, side, badRequest("INVALID_POSITION", err)
	}
	if err := st.Validate(); err != nil {
		return nil, side, badRequest("INVALID_POSITION", err)
	}
	if _, over := st.Winner(); over {
		return nil, side, badRequest("GAME_OVER", errors.New("game is already over"))
	}
	return st, side, nil
}

// resolveModel rewrites a model path in config to a file under the model
// directory. Clients may only name files directly inside it.
func (h *Handlers) resolveModel(config string) (string, error) {
	path, ok := player.ConfigParam(config, "path")
	if !ok {
		return config, nil
	}
	if h.modelDir == "" {
		return "", badRequest("INVALID_PLAYER", errors.New("model files are not enabled on this server"))
	}
	if path == "" || path == "." || path == ".." || path != filepath.Base(path) {
		return "", badRequest("INVALID_PLAYER", errors.New("model path must be a file name in the model directory"))
	}
	return player.WithParam(config, "path", filepath.Join(h.modelDir, path)), nil
}

// strategyFor builds the strategy for config and checks it against the
// limits. It returns the config with any model path resolved.
func (h *Handlers) strategyFor(config string) (string, search.Strategy, error) {
	if config == "" {
		config = player.DefaultPlayerConfig
	}
	resolved, err := h.resolveModel(config)
	if err != nil {
		return "", nil, err
	}
	strategy, err := player.NewStrategy(resolved)
	if err != nil {
		if resolved != config {
			// Keep server paths out of the response
			err = errors.Errorf("cannot load player %q", config)
		}
		return "", nil, badRequest("INVALID_PLAYER", err)
	}
	if err := h.checkBudget(strategy); err != nil {
		return "", nil, badRequest("INVALID_PLAYER", err)
	}
	return resolved, strategy, nil
}

func (h *Handlers) checkBudget(strategy search.Strategy) error {
	switch s := strategy.(type) {
	case *search.MCTS:
		if s.Iterations() > h.limits.MaxIterations {
			return fmt.Errorf("iterations must be at most %d, got %d", h.limits.MaxIterations, s.Iterations())
		}
		return h.checkValue(s.Value())
	case *search.Lookahead:
		if s.Depth > h.limits.MaxDepth {
			return fmt.Errorf("depth must be at most %d, got %d", h.limits.MaxDepth, s.Depth)
		}
		return h.checkValue(s.Value)
	}
	return nil
}

func (h *Handlers) checkValue(v value.Function) error {
	switch f := v.(type) {
	case *value.Cached:
		return h.checkValue(f.Inner())
	case *value.Rollout:
		if f.Trials() > h.limits.MaxTrials {
			return fmt.Errorf("trials must be at most %d, got %d", h.limits.MaxTrials, f.Trials())
		}
	}
	return nil
}

// chooseMove runs the requested player on the requested position.
func (h *Handlers) chooseMove(req *MoveRequest) (*MoveResponse, error) {
	st, side, err := parseState(req)
	if err != nil {
		return nil, err
	}

	config, strategy, err := h.strategyFor(req.Player)
	if err != nil {
		return nil, err
	}
	p := &player.Player{Side: side, Strategy: strategy, Rng: player.NewRng(req.Seed), Config: config}

	roll := engine.Roll{D1: req.Dice[0], D2: req.Dice[1]}
	if roll == (engine.Roll{}) {
		roll = engine.RollDice(p.Rng)
	}
	if !roll.Valid() {
		return nil, badRequest("INVALID_DICE", fmt.Errorf("dice must be 1-6, got %v", req.Dice))
	}

	actions := engine.LegalMoves(st, roll, side)
	resp := &MoveResponse{
		Dice:     [2]int{roll.D1, roll.D2},
		Turn:     side.String(),
		Player:   p.Name(),
		NumLegal: len(actions),
	}

	action, ok := p.Action(st, actions)
	if !ok {
		resp.Pass = true
		st.Pass()
		resp.Position = st.PositionID()
		return resp, nil
	}
	resp.Move = action.Format(side)

	if l, isLookahead := p.Strategy.(*search.Lookahead); isLookahead && req.NumMoves > 0 {
		resp.Candidates = rankCandidates(l, st, side, actions, req.NumMoves)
	}

	if err := st.Execute(action, side); err != nil {
		return nil, errors.Wrap(err, "executing chosen play")
	}
	resp.Position = st.PositionID()
	return resp, nil
}

// rankCandidates scores actions with l and returns the best n.
func rankCandidates(l *search.Lookahead, st *engine.State, side engine.Side, actions []engine.Action, n int) []ScoredMove {
	scores := l.Scores(st, side, actions)
	moves := make([]ScoredMove, len(actions))
	for i, a := range actions {
		moves[i] = ScoredMove{Move: a.Format(side), Score: scores[i]}
	}
	sort.SliceStable(moves, func(i, j int) bool { return moves[i].Score > moves[j].Score })
	if n < len(moves) {
		moves = moves[:n]
	}
	return moves
}

// matchConfig validates req against the limits.
func (h *Handlers) matchConfig(req *MatchRequest) (player.MatchConfig, error) {
	if req.Games < 1 || req.Games > h.limits.MaxGames {
		return player.MatchConfig{}, badRequest("INVALID_GAMES",
			fmt.Errorf("games must be between 1 and %d", h.limits.MaxGames))
	}
	black, _, err := h.strategyFor(req.Black)
	if err != nil {
		return player.MatchConfig{}, err
	}
	white, _, err := h.strategyFor(req.White)
	if err != nil {
		return player.MatchConfig{}, err
	}
	workers := req.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > h.limits.MaxWorkers {
		workers = h.limits.MaxWorkers
	}
	return player.MatchConfig{
		Black:   black,
		White:   white,
		Games:   req.Games,
		Seed:    req.Seed,
		Workers: workers,
	}, nil
}

// runMatch plays a validated match, reporting each game to onGame.
func runMatch(ctx context.Context, cfg player.MatchConfig, onGame func(GameResponse)) (*MatchResponse, error) {
	if onGame != nil {
		cfg.Progress = func(game int, r player.GameResult) {
			onGame(GameResponse{Game: game, Winner: r.Winner.String(), First: r.First.String(), Plies: r.Plies})
		}
	}
	r, err := player.PlayMatch(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return matchResponse(r), nil
}

func matchResponse(r player.MatchResult) *MatchResponse {
	resp := &MatchResponse{
		Black:      r.Black,
		White:      r.White,
		Games:      r.Games,
		BlackWins:  r.Wins[engine.Black],
		WhiteWins:  r.Wins[engine.White],
		BlackPct:   100 * r.WinRate(engine.Black),
		WhitePct:   100 * r.WinRate(engine.White),
		FirstWins:  r.FirstWins,
		DurationMS: r.Duration.Milliseconds(),
	}
	if r.Games > 0 {
		resp.AvgPlies = float64(r.Plies) / float64(r.Games)
	}
	return resp
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:     "ok",
		Version:    h.version,
		Strategies: player.Modules(),
	}
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}
	writeJSON(w, http.StatusOK, resp)
}

// Move handles POST /api/move
func (h *Handlers) Move(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireMove(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseMove()
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	resp, err := h.chooseMove(&req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Match handles POST /api/match
func (h *Handlers) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	cfg, err := h.matchConfig(&req)
	if err != nil {
		writeFailure(w, err)
		return
	}

	if h.pool != nil {
		if err := h.pool.AcquireMatch(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseMatch()
	}

	resp, err := runMatch(r.Context(), cfg, nil)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
