// Package server exposes the lab engine over a websocket. Each connection
// drives its own session.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/predprey/config"
	"github.com/pthm-cable/predprey/telemetry"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Server upgrades /ws requests and serves one session per connection.
type Server struct {
	cfg      *config.Config
	seed     int64
	upgrader websocket.Upgrader

	mu       sync.Mutex // guards exporter
	exporter *telemetry.Exporter
}

// New creates a server. exporter may be nil.
func New(cfg *config.Config, seed int64, exporter *telemetry.Exporter) *Server {
	return &Server{
		cfg:  cfg,
		seed: seed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		exporter: exporter,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.serveWs)
	return mux
}

// ListenAndServe serves until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	slog.Info("server listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) exportGame(rec *telemetry.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exporter.WriteGame(rec)
}

func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	session := NewSession(s.cfg, s.seed, s.exportGame)
	slog.Info("session opened", "remote", r.RemoteAddr)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("session read failed", "remote", r.RemoteAddr, "error", err)
			}
			break
		}

		var cmd Command
		var replies []Reply
		if err := json.Unmarshal(message, &cmd); err != nil {
			replies = []Reply{errorReply("malformed command: %v", err)}
		} else {
			replies = session.Handle(cmd)
		}

		for _, reply := range replies {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(reply); err != nil {
				slog.Warn("session write failed", "remote", r.RemoteAddr, "error", err)
				return
			}
		}
	}
	slog.Info("session closed", "remote", r.RemoteAddr)
}
