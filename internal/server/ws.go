package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/haasonsaas/easel/internal/board"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 45 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The command API is CORS-open; the stream follows suit.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleStream upgrades to a websocket and pushes the board's events until
// the client goes away. Events the hub drops for slow consumers are gone;
// clients reconcile by refetching the board snapshot.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request, boardID string) {
	if _, err := s.manager.Store().GetBoard(r.Context(), boardID); err != nil {
		if errors.Is(err, board.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "Board not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to load board"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.Warn(r.Context(), "stream upgrade failed", "error", err)
		return
	}

	events, cancel := s.manager.Hub().Subscribe(boardID)
	s.manager.Metrics().SubscriberConnected()
	s.logger.Info(r.Context(), "stream subscriber connected", "remote_addr", r.RemoteAddr)

	done := make(chan struct{})
	go s.streamReader(conn, done)
	s.streamWriter(conn, events, done)

	cancel()
	s.manager.Metrics().SubscriberDisconnected()
	_ = conn.Close()
	s.logger.Info(r.Context(), "stream subscriber disconnected", "remote_addr", r.RemoteAddr)
}

// streamReader drains the connection to process close frames and pongs. The
// stream is one-way; inbound text is discarded.
func (s *Server) streamReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// streamWriter pushes hub events and keepalive pings until the subscription
// closes or the reader reports the peer gone.
func (s *Server) streamWriter(conn *websocket.Conn, events <-chan board.Event, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
