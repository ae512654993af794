package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/readcomp/internal/session"
	"github.com/gorilla/websocket"
)

// wsMessage is the outgoing WebSocket message format.
type wsMessage struct {
	Type     string            `json:"type"` // "snapshot", "error" or "closed"
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// handleSessionWS streams snapshots for a session and accepts events in the
// same JSON form as the events endpoint. Every connected client sees the
// snapshots caused by any client.
func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	log := s.log.With("session_id", sess.ID)
	snaps, cancel := sess.Watch()
	defer cancel()

	first, err := sess.Snapshot(r.Context())
	if err != nil {
		conn.WriteJSON(wsMessage{Type: "error", Error: err.Error()})
		return
	}
	if err := conn.WriteJSON(wsMessage{Type: "snapshot", Snapshot: &first}); err != nil {
		return
	}

	// gorilla connections allow one concurrent writer.
	errs := make(chan string, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case snap, ok := <-snaps:
				if !ok {
					conn.WriteJSON(wsMessage{Type: "closed"})
					conn.Close()
					return
				}
				if err := conn.WriteJSON(wsMessage{Type: "snapshot", Snapshot: &snap}); err != nil {
					return
				}
			case msg := <-errs:
				if err := conn.WriteJSON(wsMessage{Type: "error", Error: msg}); err != nil {
					return
				}
			case <-r.Context().Done():
				return
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", "error", err)
			}
			break
		}

		var ev session.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			select {
			case errs <- "invalid message format":
			default:
			}
			continue
		}
		if _, err := sess.Dispatch(r.Context(), ev); err != nil {
			select {
			case errs <- err.Error():
			default:
			}
		}
	}

	cancel()
	<-writerDone
}
