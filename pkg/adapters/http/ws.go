package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
)

// ChatSocket handles GET /ws. Each text frame is a ChatRequest and is answered with a ChatResponse
// or {"error": ".."}. Frames are processed in order, one at a time.
func (s *Server) ChatSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.originAllowed(origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	sessionID := r.URL.Query().Get("session_id")
	ctx := r.Context()
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				s.logger.Debug("WebSocket read ended", "err", err)
			}
			return
		}
		var req ChatRequest
		if err := json.Unmarshal(frame, &req); err != nil {
			if werr := conn.WriteJSON(socketError{Error: "Invalid request body"}); werr != nil {
				return
			}
			continue
		}
		if req.SessionID == "" {
			req.SessionID = sessionID
		}

		resp, err := s.chat(ctx, req)
		if err != nil {
			s.logger.Warn("WebSocket chat failed", "err", err, "session_id", req.SessionID)
			if werr := conn.WriteJSON(socketError{Error: err.Error()}); werr != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Warn("WebSocket write failed", "err", err)
			return
		}
	}
}
