package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/fullweasel/server/internal/config"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DebugKind selects what a debug request asks the game loop to do.
type DebugKind int

const (
	DebugState DebugKind = iota
	DebugAdvance
)

// DebugRequest is answered by the game loop with a snapshot JSON payload.
type DebugRequest struct {
	Kind      DebugKind
	AdvanceMs int64
	Reply     chan []byte
}

const debugReplyTimeout = 2 * time.Second

// Server accepts websocket connections over HTTP and creates Sessions.
// New sessions and debug requests reach the game loop via channels.
type Server struct {
	listener net.Listener
	http     *http.Server
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	newConns chan *Session
	debugCh  chan DebugRequest
	cfg      config.NetworkConfig
	log      *zap.Logger
}

// NewServer binds the listener. publicDir is served as static files when
// non-empty.
func NewServer(cfg config.NetworkConfig, publicDir string, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", cfg.BindAddress)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.BindAddress, err)
	}
	s := &Server{
		listener: ln,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		newConns: make(chan *Session, 64),
		debugCh:  make(chan DebugRequest, 8),
		cfg:      cfg,
		log:      log,
	}
	s.http = &http.Server{
		Handler:           s.Handler(publicDir),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler builds the HTTP routes.
func (s *Server) Handler(publicDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	if s.cfg.DebugHooks {
		mux.HandleFunc("/debug/state", s.handleDebugState)
		mux.HandleFunc("/debug/advance", s.handleDebugAdvance)
	}
	if publicDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(publicDir)))
	}
	return mux
}

// Serve runs in its own goroutine until Shutdown.
func (s *Server) Serve() {
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("http server stopped", zap.Error(err))
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	id := s.nextID.Add(1)
	sess := NewSession(conn, id, s.cfg.InQueueSize, s.cfg.OutQueueSize, s.cfg.ReadTimeout, s.cfg.WriteTimeout, s.log)
	sess.Start()

	s.log.Info("client connected", zap.Uint64("session", id), zap.String("ip", sess.IP))

	select {
	case s.newConns <- sess:
	default:
		s.log.Warn("connection queue full, rejecting client")
		sess.Close()
	}
}

func (s *Server) handleDebugState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.debug(w, r, DebugRequest{Kind: DebugState})
}

func (s *Server) handleDebugAdvance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ms, err := strconv.ParseInt(r.URL.Query().Get("ms"), 10, 64)
	if err != nil {
		http.Error(w, "ms must be an integer", http.StatusBadRequest)
		return
	}
	s.debug(w, r, DebugRequest{Kind: DebugAdvance, AdvanceMs: ms})
}

func (s *Server) debug(w http.ResponseWriter, r *http.Request, req DebugRequest) {
	req.Reply = make(chan []byte, 1)
	ctx, cancel := context.WithTimeout(r.Context(), debugReplyTimeout)
	defer cancel()

	select {
	case s.debugCh <- req:
	case <-ctx.Done():
		http.Error(w, "game loop busy", http.StatusServiceUnavailable)
		return
	}
	select {
	case body := <-req.Reply:
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	case <-ctx.Done():
		http.Error(w, "game loop did not answer", http.StatusGatewayTimeout)
	}
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// DebugRequests returns the channel of pending debug hook calls.
func (s *Server) DebugRequests() <-chan DebugRequest {
	return s.debugCh
}

// Shutdown stops accepting connections and waits for handlers to return.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
