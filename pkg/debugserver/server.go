package debugserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/realmbridge/pkg/log"
)

const (
	// DefaultPort is the port the debugger expects the bridge on.
	DefaultPort = 8083

	// DefaultAllowedOrigin is the origin of the development bundler.
	DefaultAllowedOrigin = "http://localhost:8081"

	// DefaultMaxBodyBytes bounds a single command payload.
	DefaultMaxBodyBytes = 32 << 20
)

// CommandProcessor executes one debugger command.
type CommandProcessor interface {
	ProcessDebugCommand(ctx context.Context, cmd, args string) (string, error)
}

// Config holds listener settings.
type Config struct {
	// Host to bind; empty binds every interface.
	Host string

	// Port to bind; 0 picks a free port.
	Port int

	// AllowedOrigin is sent as Access-Control-Allow-Origin.
	// Default: DefaultAllowedOrigin
	AllowedOrigin string

	// MaxBodyBytes bounds request bodies.
	// Default: DefaultMaxBodyBytes
	MaxBodyBytes int64
}

// Server is the debug bridge HTTP server.
type Server struct {
	cfg       Config
	processor CommandProcessor
	logger    log.Logger
	origin    atomic.Value

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	serveErr chan error
	cancel   context.CancelFunc

	sessionsMu sync.Mutex
	sessions   map[*session]struct{}
}

// New creates a server. It does not listen until Start is called.
func New(processor CommandProcessor, cfg Config, logger log.Logger) *Server {
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = DefaultAllowedOrigin
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	s := &Server{
		cfg:       cfg,
		processor: processor,
		logger:    logger,
	}
	s.origin.Store(cfg.AllowedOrigin)
	return s
}

// AllowedOrigin returns the origin currently sent in CORS headers.
func (s *Server) AllowedOrigin() string {
	return s.origin.Load().(string)
}

// SetAllowedOrigin changes the CORS origin of subsequent responses.
func (s *Server) SetAllowedOrigin(origin string) {
	if origin == "" {
		origin = DefaultAllowedOrigin
	}
	s.origin.Store(origin)
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return errors.New("debug server already started")
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	// Request contexts derive from baseCtx so Stop can end hijacked
	// websocket sessions, which Shutdown does not track.
	baseCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	s.srv = srv
	s.cancel = cancel
	s.listener = ln
	s.serveErr = make(chan error, 1)

	go func(errCh chan<- error) {
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("debug server stopped unexpectedly", log.Err(err))
		}
		errCh <- err
		close(errCh)
	}(s.serveErr)

	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx
// expires, and closes open websocket sessions. Stopping a server that is not
// running only closes sessions.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, errCh, cancel := s.srv, s.serveErr, s.cancel
	s.srv = nil
	s.listener = nil
	s.cancel = nil
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
		<-errCh
	}
	if cancel != nil {
		cancel()
	}
	s.closeSessions()
	return err
}

// Addr returns the bound address, or "" when not listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Port returns the bound port, falling back to the configured one.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return tcp.Port
		}
	}
	return s.cfg.Port
}

// ServeHTTP answers one debugger request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", s.AllowedOrigin())

	if isWebSocketUpgrade(r) {
		s.serveWebSocket(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html")

	postData, ok := s.postData(r)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}

	result, err := s.processor.ProcessDebugCommand(r.Context(), r.URL.Path, postData)
	if err != nil {
		s.logger.Error("debug command failed",
			log.String("cmd", r.URL.Path),
			log.Err(err),
		)
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(result)))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result)
}

// postData extracts the raw command payload. Only POST bodies that are not
// form encoded carry one. The body is trimmed and a blank body carries none.
func (s *Server) postData(r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		return "", false
	}

	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err == nil && (strings.HasPrefix(mediaType, "multipart/") || mediaType == "application/x-www-form-urlencoded") {
			return "", false
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxBodyBytes+1))
	if err != nil {
		s.logger.Warn("failed to read debug request body", log.String("cmd", r.URL.Path), log.Err(err))
		return "", false
	}
	if int64(len(body)) > s.cfg.MaxBodyBytes {
		s.logger.Warn("debug request body too large",
			log.String("cmd", r.URL.Path),
			log.Int64("limit", s.cfg.MaxBodyBytes),
		)
		return "", false
	}
	data := strings.TrimSpace(string(body))
	if data == "" {
		return "", false
	}
	return data, true
}
