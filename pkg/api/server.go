package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/uhyunpark/hyperlicked-mcp/params"
)

const (
	sessionHeader   = "Mcp-Session-Id"
	maxRequestBytes = 1 << 20

	sseEndpoint     = "/sse"
	messageEndpoint = "/messages"
)

// Server serves the MCP dispatcher over streamable HTTP, SSE and WebSocket
// on one router.
type Server struct {
	cfg        params.Server
	dispatcher *Dispatcher
	router     *mux.Router
	hub        *Hub
	logger     *zap.SugaredLogger

	sessions   *sessionStore
	streamable *server.StreamableHTTPServer
	sse        *server.SSEServer
}

func NewServer(cfg params.Server, d *Dispatcher, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if cfg.StreamableHTTPPath == "" {
		cfg.StreamableHTTPPath = "/mcp"
	}
	s := &Server{
		cfg:        cfg,
		dispatcher: d,
		router:     mux.NewRouter(),
		hub:        NewHub(logger),
		logger:     logger,
		sessions:   newSessionStore(sessionIdleTTL, maxSessions),
	}
	s.streamable = server.NewStreamableHTTPServer(d.MCPServer(),
		server.WithEndpointPath(cfg.StreamableHTTPPath),
		server.WithSessionIdManager(s.sessions),
	)
	s.sse = server.NewSSEServer(d.MCPServer(),
		server.WithStaticBasePath(s.mountBase()),
		server.WithSSEEndpoint(sseEndpoint),
		server.WithMessageEndpoint(messageEndpoint),
		server.WithKeepAlive(true),
	)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.headerGuard)

	// Streamable HTTP: POST requests, GET notification stream, DELETE session
	s.router.Handle(s.cfg.StreamableHTTPPath, s.streamable).
		Methods(http.MethodPost, http.MethodGet, http.MethodDelete)

	// SSE: event stream plus the endpoint clients post messages to
	s.router.Handle(s.SSEPath(), s.sse.SSEHandler()).Methods(http.MethodGet)
	s.router.Handle(s.MessagePath(), s.sse.MessageHandler()).Methods(http.MethodPost)

	// WebSocket endpoint
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
}

// mountBase is the mount path without its trailing slash ("" for "/").
func (s *Server) mountBase() string {
	return strings.TrimRight(s.cfg.MountPath, "/")
}

func (s *Server) SSEPath() string     { return s.mountBase() + sseEndpoint }
func (s *Server) MessagePath() string { return s.mountBase() + messageEndpoint }

// Handler returns the router wrapped in the CORS policy.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept", s.authHeaderName(), sessionHeader, "Mcp-Protocol-Version"},
		ExposedHeaders:   []string{sessionHeader},
		AllowCredentials: true,
	})
	return c.Handler(s.router)
}

// Start serves until ctx is cancelled, then drains connections.
func (s *Server) Start(ctx context.Context, addr string) error {
	go s.hub.Run(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// SSE and streamable GET streams end with ctx.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("http_server_starting", "addr", addr,
			"streamable_http", s.cfg.StreamableHTTPPath, "sse", s.SSEPath(), "ws", "/ws")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Infow("http_server_stopping")
		if err := s.sse.Shutdown(shutdownCtx); err != nil {
			s.logger.Warnw("sse_shutdown_failed", "err", err)
		}
		if err := s.streamable.Shutdown(shutdownCtx); err != nil {
			s.logger.Warnw("streamable_shutdown_failed", "err", err)
		}
		return srv.Shutdown(shutdownCtx)
	}
}

// ==============================
// Handlers
// ==============================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// SessionCount reports the live streamable HTTP sessions.
func (s *Server) SessionCount() int {
	return s.sessions.Len()
}

// ==============================
// Middleware
// ==============================

func (s *Server) authHeaderName() string {
	if s.cfg.AuthHeaderName == "" {
		return "Authorization"
	}
	return s.cfg.AuthHeaderName
}

// headerGuard requires "<name>: Bearer <value>" on every route except
// /health when an auth value is configured.
func (s *Server) headerGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AuthHeaderValue == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		got := r.Header.Get(s.authHeaderName())
		if subtle.ConstantTimeCompare([]byte(got), []byte("Bearer "+s.cfg.AuthHeaderValue)) != 1 {
			s.logger.Warnw("request_rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
			respondError(w, http.StatusForbidden, "missing or invalid request header")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ==============================
// Helper Functions
// ==============================

func respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}

// ErrorResponse is returned for transport-level errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
