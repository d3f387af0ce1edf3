package dashboard

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/adanbank/signal-sentinel/internal/audit"
	"github.com/adanbank/signal-sentinel/internal/config"
	"github.com/adanbank/signal-sentinel/internal/enrich"
	"github.com/adanbank/signal-sentinel/internal/logger"
	"github.com/adanbank/signal-sentinel/internal/store"
	"github.com/adanbank/signal-sentinel/internal/websocket"
)

// Archiver persists resolved signals to long-term storage. Optional; a
// nil Archiver disables archiving.
type Archiver interface {
	InsertResolved(ctx context.Context, signal enrich.ReviewSignal, entry audit.Entry) error
}

// Server is the review dashboard: REST endpoints plus the websocket hub.
type Server struct {
	router   *mux.Router
	server   *http.Server
	hub      *websocket.Hub
	review   *store.Store
	auditLog audit.Log
	archive  Archiver
	cfg      config.DashboardConfig
	logger   *logger.Logger
	webFile  string
}

// NewServer creates the dashboard server. archive may be nil.
func NewServer(review *store.Store, auditLog audit.Log, archive Archiver, hub *websocket.Hub, webFile string, cfg config.DashboardConfig, log *logger.Logger) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		hub:      hub,
		review:   review,
		auditLog: auditLog,
		archive:  archive,
		cfg:      cfg,
		logger:   log.WithComponent("dashboard"),
		webFile:  webFile,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/", s.handleDashboard).Methods("GET")
	s.router.HandleFunc("/dashboard", s.handleDashboard).Methods("GET")

	if s.cfg.WebSocket.Enabled && s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.ServeWS)
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/signals", s.handleSignals).Methods("GET")
	api.HandleFunc("/resolve-signal", s.handleResolveSignal).Methods("POST")
	api.HandleFunc("/audit-log", s.handleAuditLog).Methods("GET")
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until it fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("dashboard listening", zap.Int("port", s.cfg.Port))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
