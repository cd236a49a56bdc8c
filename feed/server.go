package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Reply is sent for every received message
type Reply struct {
	Type  string `json:"type"` // "ack" or "error"
	Error string `json:"error,omitempty"`
}

// Server accepts scene commands on /ws
type Server struct {
	queue    *Queue
	log      zerolog.Logger
	upgrader websocket.Upgrader
	srv      *http.Server

	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
}

// NewServer serves the feed on addr once ListenAndServe is called
func NewServer(addr string, queue *Queue, log zerolog.Logger) *Server {
	s := &Server{
		queue: queue,
		conns: make(map[*websocket.Conn]struct{}),
		log:   log.With().Str("component", "feed").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local control surface
			},
		},
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler routes /ws to the websocket endpoint
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe blocks until the server stops. A clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("scene feed listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("scene feed: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and closes every open websocket.
// Hijacked connections are not tracked by http.Server, so they are closed here.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
	for _, c := range conns {
		_ = c.WriteControl(websocket.CloseMessage, msg, deadline)
		c.Close()
	}
	return s.srv.Shutdown(ctx)
}

// track registers conn; it reports false once the server is shutting down
func (s *Server) track(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// Connections returns the number of open websockets
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	if !s.track(conn) {
		return
	}
	defer s.untrack(conn)

	remote := conn.RemoteAddr().String()
	s.log.Debug().Str("remote", remote).Msg("client connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn().Err(err).Str("remote", remote).Msg("websocket read error")
			}
			return
		}

		reply := Reply{Type: "ack"}
		if err := s.accept(data); err != nil {
			reply = Reply{Type: "error", Error: err.Error()}
			s.log.Debug().Err(err).Str("remote", remote).Msg("command refused")
		}
		if err := conn.WriteJSON(reply); err != nil {
			s.log.Warn().Err(err).Str("remote", remote).Msg("websocket write error")
			return
		}
	}
}

func (s *Server) accept(data []byte) error {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("malformed command: %w", err)
	}
	if err := cmd.Validate(); err != nil {
		return err
	}
	return s.queue.Push(cmd)
}
