package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// MatchSSE streams a match as Server-Sent Events: one "game" event per
// finished game, then "result" and "done".
// GET /api/match/stream?black=...&white=...&games=...&seed=...&workers=...
func (h *Handlers) MatchSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeSSEError(w, "streaming not supported")
		return
	}

	query := r.URL.Query()
	req := MatchRequest{
		Black:   query.Get("black"),
		White:   query.Get("white"),
		Games:   parseIntParam(query.Get("games"), 1),
		Workers: parseIntParam(query.Get("workers"), 1),
	}
	if s := query.Get("seed"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeSSEError(w, "invalid seed")
			return
		}
		req.Seed = seed
	}

	cfg, err := h.matchConfig(&req)
	if err != nil {
		writeSSEError(w, err.Error())
		return
	}

	if h.pool != nil {
		if err := h.pool.AcquireMatch(r.Context()); err != nil {
			writeSSEError(w, "server busy")
			return
		}
		defer h.pool.ReleaseMatch()
	}

	// Progress callbacks are serialised by the match runner
	resp, err := runMatch(r.Context(), cfg, func(g GameResponse) {
		writeSSEEvent(w, "game", g)
		flusher.Flush()
	})
	if err != nil {
		writeSSEError(w, "match failed: "+err.Error())
		return
	}

	writeSSEEvent(w, "result", resp)
	writeSSEEvent(w, "done", nil)
	flusher.Flush()
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data any) {
	fmt.Fprintf(w, "event: %s\n", event)
	if data != nil {
		jsonData, _ := json.Marshal(data)
		fmt.Fprintf(w, "data: %s\n", jsonData)
	}
	fmt.Fprintf(w, "\n")
}

// writeSSEError writes an error event and flushes the stream.
func writeSSEError(w http.ResponseWriter, message string) {
	writeSSEEvent(w, "error", ErrorResponse{Error: message})
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// parseIntParam parses an integer from a string with a default value.
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}
