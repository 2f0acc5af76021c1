package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mathmentor/mentor/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is the outgoing WebSocket message format. Exactly one of
// Event, Result or Error is set.
type wsMessage struct {
	Type   string          `json:"type"` // "progress", "result" or "error"
	Event  *pipeline.Event `json:"event,omitempty"`
	Result *solveResponse  `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// handleSolveSocket streams stage transitions to the client while a
// problem is being solved. The client sends one solveRequest per
// message and receives progress events followed by the final trace.
func (s *Server) handleSolveSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	// Gorilla connections allow one concurrent writer.
	var mu sync.Mutex
	send := func(msg wsMessage) {
		mu.Lock()
		defer mu.Unlock()
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("server: websocket write: %v", err)
		}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req solveRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			send(wsMessage{Type: "error", Error: "invalid message format"})
			continue
		}
		if req.Input == "" {
			send(wsMessage{Type: "error", Error: "input is required"})
			continue
		}
		inputType, err := parseInputType(req.InputType)
		if err != nil {
			send(wsMessage{Type: "error", Error: err.Error()})
			continue
		}

		trace, err := s.orch.RunWithNotify(r.Context(), req.Input, inputType, func(e pipeline.Event) {
			ev := e
			send(wsMessage{Type: "progress", Event: &ev})
		})
		if err != nil {
			send(wsMessage{Type: "error", Error: err.Error()})
			continue
		}

		send(wsMessage{Type: "result", Result: &solveResponse{
			Trace:           trace,
			ExplanationHTML: renderMarkdown(trace.Explanation),
		}})
	}
}
