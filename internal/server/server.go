package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/cribbage/internal/protocol"
	"golang.org/x/sync/errgroup"
)

// Server accepts participant connections, seats them in lobbies of the
// configured size and hosts one game per full lobby.
type Server struct {
	cfg      *Config
	logger   *log.Logger
	clock    quartz.Clock
	upgrader websocket.Upgrader

	mu       sync.Mutex
	listener net.Listener
	lobby    []string
	results  []*Result

	joined chan Seat
}

// Option configures a Server
type Option func(*Server)

// WithClock sets the clock used for game event timestamps
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// NewServer creates a server for a validated configuration
func NewServer(cfg *Config, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger.WithPrefix("server"),
		clock:  quartz.NewReal(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  protocol.MaxRecordSize,
			WriteBufferSize: protocol.MaxRecordSize,
		},
		joined: make(chan Seat),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen binds the configured address. Run calls it if needed.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}
	l, err := net.Listen("tcp", s.cfg.GetServerAddress())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.GetServerAddress(), err)
	}
	s.listener = l
	return nil
}

// Addr returns the bound address, or "" before Listen
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Results returns the games completed so far
func (s *Server) Results() []*Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Result(nil), s.results...)
}

// Run accepts connections and hosts games until ctx is cancelled or the
// configured number of games has been played
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		_ = s.listener.Close()
		return nil
	})
	g.Go(func() error {
		return s.accept(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return s.host(ctx)
	})

	s.logger.Info("Listening", "addr", s.Addr(), "transport", s.cfg.Server.Transport, "players", s.cfg.Game.Players)
	return g.Wait()
}

func (s *Server) accept(ctx context.Context) error {
	if s.cfg.Server.Transport == protocol.TransportWebSocket {
		return s.serveWebSocket(ctx)
	}

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.handshake(ctx, protocol.NewConn(conn))
	}
}

func (s *Server) serveWebSocket(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Error("Failed to upgrade connection", "error", err)
			return
		}
		go s.handshake(ctx, protocol.NewWSConn(conn))
	})
	mux.HandleFunc("/health", s.handleHealth)

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	stop := context.AfterFunc(ctx, func() { _ = srv.Close() })
	defer stop()

	if err := srv.Serve(s.listener); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serve websocket: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// handshake reads the participant's name and offers the seat to the lobby
func (s *Server) handshake(ctx context.Context, t protocol.Transport) {
	logger := s.logger.With("remote", t.RemoteAddr())
	f, err := protocol.Expect[protocol.Name](t)
	if err != nil {
		logger.Warn("Rejected connection", "error", err)
		_ = t.Close()
		return
	}
	if err := protocol.ValidateName(f.Name); err != nil {
		logger.Warn("Rejected connection", "error", err)
		_ = t.Close()
		return
	}

	select {
	case s.joined <- Seat{Name: f.Name, Transport: t}:
	case <-ctx.Done():
		_ = t.Close()
	}
}
