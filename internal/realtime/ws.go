package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const writeTimeout = 5 * time.Second

// SessionServer streams a group's events to a WebSocket client.
type SessionServer struct {
	hub            *Hub
	log            *slog.Logger
	originPatterns []string
}

// NewSessionServer creates a WebSocket session server on top of hub.
func NewSessionServer(hub *Hub, log *slog.Logger, originPatterns []string) *SessionServer {
	return &SessionServer{hub: hub, log: log, originPatterns: originPatterns}
}

// Serve upgrades the request and keeps the session subscribed to groupID
// until the client disconnects or the hub closes.
func (s *SessionServer) Serve(w http.ResponseWriter, r *http.Request, groupID string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns,
	})
	if err != nil {
		s.log.Warn("websocket accept failed", "group_id", groupID, "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	sub := s.hub.Subscribe(groupID)
	defer sub.Close()

	s.log.Debug("session subscribed", "group_id", groupID)

	// Inbound frames are not expected; CloseRead handles pings and close frames.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("session ended", "group_id", groupID)
			return
		case ev, ok := <-sub.Events():
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if err := write(ctx, conn, ev); err != nil {
				s.log.Debug("session write failed", "group_id", groupID, "error", err)
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, ev Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}
