package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/raaihank/scandidate/internal/analysis"
	"github.com/raaihank/scandidate/internal/config"
	"github.com/raaihank/scandidate/internal/identity"
	"github.com/raaihank/scandidate/internal/logger"
	"github.com/raaihank/scandidate/internal/privacy"
	"github.com/raaihank/scandidate/internal/security"
	"github.com/raaihank/scandidate/internal/session"
	"github.com/raaihank/scandidate/internal/web"
	"github.com/raaihank/scandidate/internal/websocket"
	"go.uber.org/zap"
)

const version = "0.1.0"

// Options holds the components the HTTP API serves
type Options struct {
	Config   *config.Config
	Logger   *logger.Logger
	Detector *privacy.Detector
	Sessions *session.Manager
	Analyzer analysis.Provider
	Identity *identity.Service
	Hub      *websocket.Hub
	// ClientIP resolves client addresses; nil uses the peer address
	ClientIP *security.IPResolver
}

// Server represents the HTTP API server
type Server struct {
	config    *config.Config
	logger    *logger.Logger
	detector  *privacy.Detector
	sessions  *session.Manager
	analyzer  analysis.Provider
	identity  *identity.Service
	limiter   *security.RateLimiter
	ips       *security.IPResolver
	wsHub     *websocket.Hub
	router    *mux.Router
	server    *http.Server
	startedAt time.Time
}

// New creates a new server instance
func New(opts Options) *Server {
	cfg := opts.Config
	log := opts.Logger.WithComponent("server")

	s := &Server{
		config:   cfg,
		logger:   log,
		detector: opts.Detector,
		sessions: opts.Sessions,
		analyzer: opts.Analyzer,
		identity: opts.Identity,
		limiter: security.NewRateLimiter(security.RateLimitConfig{
			Enabled:        cfg.Analysis.RateLimit.Enabled,
			RequestsPerMin: cfg.Analysis.RateLimit.RequestsPerMin,
			Burst:          cfg.Analysis.RateLimit.Burst,
			Resolver:       opts.ClientIP,
		}, opts.Logger.WithComponent("ratelimit").Logger),
		ips:       opts.ClientIP,
		wsHub:     opts.Hub,
		router:    mux.NewRouter(),
		startedAt: time.Now(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)
	s.router.HandleFunc("/", web.ServeDashboard).Methods(http.MethodGet)

	if s.wsHub != nil && s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.wsHub.HandleWebSocket).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/redact", s.handleRedact).Methods(http.MethodPost)

	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.HandleFunc("", s.handleCreateSession).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}", s.handleGetSession).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/content", s.handleEditContent).Methods(http.MethodPut)
	sessions.HandleFunc("/{id}/content", s.handleClearContent).Methods(http.MethodDelete)
	sessions.HandleFunc("/{id}/privacy", s.handleSetPrivacy).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/auto-delete", s.handleSetAutoDelete).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/reveal", s.handleToggleReveal).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/download", s.handleDownload).Methods(http.MethodGet)

	analyze := api.NewRoute().Subrouter()
	analyze.Use(s.limiter.Middleware)
	analyze.HandleFunc("/analyze-cv", s.handleAnalyzeCV).Methods(http.MethodPost)
	analyze.HandleFunc("/job-match", s.handleJobMatch).Methods(http.MethodPost)
	analyze.HandleFunc("/ats-simulator", s.handleATSSimulator).Methods(http.MethodPost)
	analyze.HandleFunc("/career-suggestion", s.handleCareerSuggestion).Methods(http.MethodPost)
	analyze.HandleFunc("/rewrite-section", s.handleRewriteSection).Methods(http.MethodPost)

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	auth.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and the rate limiter cleanup
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting Scandidate server",
		zap.Int("port", s.config.Server.Port),
		zap.String("store_backend", s.config.Store.Backend),
		zap.Bool("websocket_enabled", s.config.WebSocket.Enabled),
	)

	s.limiter.StartCleanupRoutine(ctx)

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping Scandidate server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":            "scandidate",
		"version":         version,
		"uptime":          time.Since(s.startedAt).Round(time.Second).String(),
		"detectors":       s.detector.EnabledRules(),
		"activeSessions":  s.sessions.Len(),
		"storeBackend":    s.config.Store.Backend,
		"mockAnalysis":    s.config.Analysis.UseMockData || s.config.Analysis.APIKey == "",
		"retentionWindow": s.config.Retention.Window.String(),
	}
	if s.wsHub != nil {
		info["connectedClients"] = s.wsHub.GetStats().ActiveConnections
	}
	writeJSON(w, http.StatusOK, info)
}
