// Package external implements gnubg's external player protocol, so that
// gnubg or another program can play against a search strategy over a TCP
// socket.
//
// Protocol overview:
// - Server listens on a TCP port
// - Client connects and sends one command per line
// - Positions are sent in FIBS board format, with your dice rolled
// - The reply is the chosen play in the board's numbering, or "cannot move"
package external

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/yourusername/bgsearch/pkg/engine"
	"github.com/yourusername/bgsearch/pkg/player"
	"github.com/yourusername/bgsearch/pkg/search"
)

// Server implements the external player protocol server.
type Server struct {
	listener net.Listener
	mu       sync.Mutex
	running  bool
	options  ServerOptions
}

// ServerOptions configures the external player server.
type ServerOptions struct {
	Addr          string // TCP address to listen on
	Player        string // Initial player configuration of every connection
	Seed          uint64 // Random seed of every connection (0 = random)
	PromptEnabled bool   // Send prompts after responses
}

// DefaultServerOptions returns sensible defaults.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		Addr:          ":1234",
		Player:        player.DefaultPlayerConfig,
		PromptEnabled: true,
	}
}

// NewServer creates a new external player server. The player
// configuration is checked here so a bad one fails before listening.
func NewServer(opts ServerOptions) (*Server, error) {
	if _, err := player.NewStrategy(opts.Player); err != nil {
		return nil, err
	}
	return &Server{options: opts}, nil
}

// Start begins listening for connections.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.options.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.options.Addr, err)
	}

	s.listener = listener
	s.running = true
	log.Info().Str("addr", listener.Addr().String()).Str("player", s.options.Player).Msg("external player listening")

	go s.acceptLoop()
	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop stops the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// acceptLoop accepts incoming connections.
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			running := s.running
			s.mu.Unlock()
			if !running {
				return // Server stopped
			}
			log.Warn().Err(err).Msg("accept failed")
			continue
		}

		go s.handleConnection(conn)
	}
}

// session is the per-connection player state. The strategy is built once
// per configuration so loaded models and caches last across moves.
type session struct {
	config   string
	strategy search.Strategy
	rng      *rand.Rand
}

// newSession builds a session playing config.
func newSession(config string, seed uint64) (*session, error) {
	strategy, err := player.NewStrategy(config)
	if err != nil {
		return nil, err
	}
	return &session{config: config, strategy: strategy, rng: player.NewRng(seed)}, nil
}

// handleConnection handles a single client connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	logger := log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	logger.Info().Msg("external player connected")

	sess, err := newSession(s.options.Player, s.options.Seed)
	if err != nil {
		logger.Error().Err(err).Msg("invalid player configuration")
		return
	}
	reader := bufio.NewReader(conn)

	if s.options.PromptEnabled {
		conn.Write([]byte("> "))
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				logger.Warn().Err(err).Msg("read failed")
			}
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		response := sess.processCommand(line)
		conn.Write([]byte(response))

		if s.options.PromptEnabled {
			conn.Write([]byte("> "))
		}

		if cmd := strings.ToLower(line); cmd == "exit" || cmd == "quit" {
			logger.Info().Msg("external player disconnected")
			return
		}
	}
}

// processCommand processes a single command and returns the response.
func (sess *session) processCommand(cmd string) string {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return "Error: empty command\n"
	}

	if strings.HasPrefix(cmd, "board:") {
		return sess.handleFIBSBoard(cmd)
	}

	switch strings.ToLower(parts[0]) {
	case "version":
		return "bgsearch external player protocol 1.0\n"

	case "help":
		return helpResponse

	case "exit", "quit":
		return "Goodbye\n"

	case "set":
		return sess.handleSet(parts[1:])

	case "player":
		return sess.config + "\n"

	case "fibsboard", "board":
		return sess.handleFIBSBoard(cmd)

	default:
		return fmt.Sprintf("Error: unknown command '%s'\n", parts[0])
	}
}

const helpResponse = `Available commands:
  version            - Show version information
  help               - Show this help
  player             - Show the player configuration
  set player <cfg>   - Use another player, e.g. "set player mcts:iterations=500"
  set seed <n>       - Reseed the random source
  fibsboard <board>  - Choose a play for a FIBS board with your dice rolled
  exit               - Close connection
`

// handleSet handles the set command.
func (sess *session) handleSet(args []string) string {
	if len(args) < 2 {
		return "Error: set requires option and value\n"
	}

	option := strings.ToLower(args[0])
	value := args[1]

	switch option {
	case "player":
		strategy, err := player.NewStrategy(value)
		if err != nil {
			return fmt.Sprintf("Error: %v\n", err)
		}
		sess.config, sess.strategy = value, strategy
		return fmt.Sprintf("player set to %s\n", value)

	case "seed":
		seed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return "Error: seed must be a non-negative integer\n"
		}
		sess.rng = player.NewRng(seed)
		return fmt.Sprintf("seed set to %d\n", seed)

	default:
		return fmt.Sprintf("Error: unknown option '%s'\n", option)
	}
}

// handleFIBSBoard returns the chosen play for a position.
func (sess *session) handleFIBSBoard(cmd string) string {
	boardStart := strings.Index(cmd, "board:")
	if boardStart < 0 {
		return "Error: no board specified\n"
	}

	fb, err := ParseFIBSBoard(cmd[boardStart:])
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	if fb.Doubled {
		return "Error: cube decisions are not supported\n"
	}
	roll, ok := fb.Roll()
	if !ok {
		return "Error: no dice rolled\n"
	}

	st, err := fb.State()
	if err != nil {
		return fmt.Sprintf("Error: %v\n", err)
	}
	if _, over := st.Winner(); over {
		return "Error: game is over\n"
	}

	p := &player.Player{Side: engine.Black, Strategy: sess.strategy, Rng: sess.rng, Config: sess.config}
	action, ok := p.Action(st, engine.LegalMoves(st, roll, engine.Black))
	if !ok {
		return "cannot move\n"
	}
	return fb.FormatMove(action) + "\n"
}
