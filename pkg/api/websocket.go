package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// WSMessage is a generic WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`    // Message type: "move", "match", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a generic WebSocket response.
type WSResponse struct {
	Type    string `json:"type"`              // Response type: "result", "game", "error", "pong"
	ID      string `json:"id,omitempty"`      // Request ID
	Payload any    `json:"payload,omitempty"` // Response data
	Error   string `json:"error,omitempty"`   // Error message if any
}

// WSClient is a connected WebSocket client. Requests are served in order;
// a match streams one "game" message per finished game before its result.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	ctx      context.Context
	sendChan chan WSResponse
}

// WebSocket handles WebSocket connections.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := &WSClient{conn: conn, handlers: h, ctx: ctx, sendChan: make(chan WSResponse, 256)}
	go client.writePump(cancel)
	client.readPump()
}

func (c *WSClient) writePump(cancel context.CancelFunc) {
	defer c.conn.Close()
	for msg := range c.sendChan {
		if err := c.conn.WriteJSON(msg); err != nil {
			// Stop any running match; keep draining so the reader never blocks
			cancel()
			for range c.sendChan {
			}
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer func() { close(c.sendChan); c.conn.Close() }()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "move":
		c.handleMove(msg)
	case "match":
		c.handleMatch(msg)
	case "ping":
		c.sendChan <- WSResponse{Type: "pong", ID: msg.ID}
	default:
		c.sendError(msg.ID, "unknown message type")
	}
}

func (c *WSClient) sendError(id, text string) {
	c.sendChan <- WSResponse{Type: "error", ID: id, Error: text}
}

func (c *WSClient) handleMove(msg WSMessage) {
	var req MoveRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendError(msg.ID, "invalid payload")
		return
	}

	pool := c.handlers.pool
	if pool != nil {
		if err := pool.AcquireMove(c.ctx); err != nil {
			c.sendError(msg.ID, "server busy")
			return
		}
		defer pool.ReleaseMove()
	}

	resp, err := c.handlers.chooseMove(&req)
	if err != nil {
		c.sendError(msg.ID, err.Error())
		return
	}
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
}

func (c *WSClient) handleMatch(msg WSMessage) {
	var req MatchRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendError(msg.ID, "invalid payload")
		return
	}
	cfg, err := c.handlers.matchConfig(&req)
	if err != nil {
		c.sendError(msg.ID, err.Error())
		return
	}

	pool := c.handlers.pool
	if pool != nil {
		if !pool.TryAcquireMatch() {
			c.sendError(msg.ID, "server busy")
			return
		}
		defer pool.ReleaseMatch()
	}

	resp, err := runMatch(c.ctx, cfg, func(g GameResponse) {
		c.sendChan <- WSResponse{Type: "game", ID: msg.ID, Payload: g}
	})
	if err != nil {
		c.sendError(msg.ID, err.Error())
		return
	}
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
}
