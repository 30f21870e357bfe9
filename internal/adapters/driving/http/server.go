package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/cloud-integration/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionTokens signs and verifies the browser-session cookie value.
type SessionTokens interface {
	GenerateToken(sessionID string, ttl time.Duration) (string, error)
	ParseToken(token string) (string, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	oauthService       driving.OAuthService
	notionService      driving.NotionService
	integrationService driving.IntegrationService

	// Browser sessions
	session *SessionMiddleware

	// Callback redirects
	successRedirect string
	failureRedirect string

	maxUploadBytes int64

	// Infrastructure
	db           Pinger // credential store health check
	sessionStore Pinger // OAuth session store health check (optional)
	cleanup      Pinger // expired session cleanup (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// AuthSuccessRedirect and AuthFailureRedirect are where the OAuth
	// callback sends the browser.
	AuthSuccessRedirect string
	AuthFailureRedirect string

	MaxUploadBytes     int64
	CORSAllowedOrigins []string
	Session            SessionConfig
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:                "0.0.0.0",
		Port:                8080,
		Version:             "dev",
		AuthSuccessRedirect: "http://localhost:3000/integrations?status=success",
		AuthFailureRedirect: "http://localhost:3000/integrations?status=error",
		MaxUploadBytes:      10 << 20,
		CORSAllowedOrigins:  []string{"*"},
		Session:             DefaultSessionConfig(),
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	oauthService driving.OAuthService,
	notionService driving.NotionService,
	integrationService driving.IntegrationService,
	tokens SessionTokens,
	db Pinger,
	sessionStore Pinger, // can be nil
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:             http.NewServeMux(),
		version:            cfg.Version,
		logger:             logger.With("component", "http"),
		oauthService:       oauthService,
		notionService:      notionService,
		integrationService: integrationService,
		session:            NewSessionMiddleware(tokens, cfg.Session, logger),
		successRedirect:    cfg.AuthSuccessRedirect,
		failureRedirect:    cfg.AuthFailureRedirect,
		maxUploadBytes:     cfg.MaxUploadBytes,
		db:                 db,
		sessionStore:       sessionStore,
	}

	s.setupRoutes()

	var handler http.Handler = s.router
	handler = NewCORSMiddleware(cfg.CORSAllowedOrigins).Handler(handler)
	handler = NewLoggingMiddleware(logger).Handler(handler)
	handler = NewRecoveryMiddleware(logger).Handler(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// SetSessionCleanup adds the session cleanup worker to the readiness checks.
// Only set it when the worker runs in this process.
func (s *Server) SetSessionCleanup(p Pinger) {
	s.cleanup = p
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwaggerDoc)

	// OAuth flow endpoints. Both ends of the round trip need the browser
	// session that keys the pending attempt.
	s.router.Handle("GET /api/v1/cloud/notion/auth",
		s.session.Handler(http.HandlerFunc(s.handleNotionAuth)))
	s.router.Handle("GET /api/v1/cloud/notion/callback",
		s.session.Handler(http.HandlerFunc(s.handleNotionCallback)))
	s.router.HandleFunc("POST /api/v1/cloud/notion/disconnect", s.handleNotionDisconnect)
	s.router.HandleFunc("GET /api/v1/cloud/notion/check-auth", s.handleNotionCheckAuth)

	// Page endpoints
	s.router.HandleFunc("POST /api/v1/cloud/notion/pages", s.handleCreatePage)
	s.router.HandleFunc("GET /api/v1/cloud/notion/pages", s.handleListPages)
	s.router.HandleFunc("GET /api/v1/cloud/notion/status", s.handleNotionStatus)

	// File endpoints
	s.router.HandleFunc("POST /api/v1/cloud/notion/upload", s.handleUploadFile)
	s.router.HandleFunc("GET /api/v1/cloud/notion/{first}/{second}", s.handleNotionNested)
	s.router.HandleFunc("DELETE /api/v1/cloud/notion/{fileId}", s.handleDeleteFile)
	s.router.HandleFunc("PUT /api/v1/cloud/notion/{fileId}", s.handleUpdateFile)

	// Stored credential endpoints
	s.router.HandleFunc("POST /api/v1/cloud", s.handleCreateIntegration)
	s.router.HandleFunc("GET /api/v1/cloud/{id}", s.handleGetIntegration)
	s.router.HandleFunc("GET /api/v1/cloud/user/{userId}", s.handleListUserIntegrations)
	s.router.HandleFunc("PUT /api/v1/cloud/{id}", s.handleUpdateIntegration)
	s.router.HandleFunc("DELETE /api/v1/cloud/{id}", s.handleDeleteIntegration)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
