// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the composition root: New opens the database, builds the
// services and handlers, and mounts them on a chi router. Nothing else in the
// module constructs dependencies.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → sqlite.DB ─┬→ AuthService     → AuthHandler
//	                           ├→ TemplateService → TemplateHandler
//	                           └→ ProjectService  → ProjectHandler
//	              → TokenService → RequireBearer, AuthService
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/project-studio/internal/auth"
	"github.com/sakif/project-studio/internal/config"
	"github.com/sakif/project-studio/internal/handler"
	"github.com/sakif/project-studio/internal/middleware"
	sqliteRepo "github.com/sakif/project-studio/internal/repository/sqlite"
	"github.com/sakif/project-studio/internal/service"
)

// shutdownTimeout is how long in-flight requests get to finish after a
// shutdown signal.
const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database pool and closes it on shutdown, after the
// HTTP listener has drained.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server from cfg, opening and migrating the database.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it is not confused with the
// modernc.org/sqlite driver.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.TokenIssuer,
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	db, err := sqliteRepo.New(cfg.DB.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens)

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /healthz                    → liveness + database ping
//	POST /api/users/register         → create account
//	POST /api/users/login            → password login, returns bearer token
//	GET  /api/users/me               → current user            [bearer]
//	GET  /api/templates?featured=    → template catalogue
//	POST /api/projects               → create project          [bearer]
//	GET  /api/projects               → caller's projects       [bearer]
//	GET  /api/auth/github/login      → redirect to GitHub      [if configured]
//	GET  /api/auth/github/callback   → GitHub sign-in          [if configured]
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: assigns an ID to each request, echoed in the logs
//  2. RealIP: extracts the client IP from proxy headers
//  3. Logger: logs each request; sits outside Recoverer so panics log as 500
//  4. Recoverer: turns panics into a JSON 500
//  5. Timeout: cancels the request context after SERVER_REQUEST_TIMEOUT
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Recoverer(s.logger))
	s.router.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))

	passwords := auth.NewPasswordService(s.config.Auth.BcryptCost)

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	templateService := service.NewTemplateService(s.db, s.logger)
	projectService := service.NewProjectService(s.db, s.logger)

	var github handler.GitHubAuthenticator
	if s.config.GitHub.Enabled() {
		github = auth.NewGitHubProvider(auth.GitHubConfig{
			ClientID:     s.config.GitHub.ClientID,
			ClientSecret: s.config.GitHub.ClientSecret,
			CallbackURL:  s.config.GitHub.CallbackURL,
		})
	}

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	templateHandler := handler.NewTemplateHandler(templateService, s.logger)
	projectHandler := handler.NewProjectHandler(projectService, s.logger)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/users/register", authHandler.HandleRegister)
		r.Post("/users/login", authHandler.HandleLogin)
		r.Get("/templates", templateHandler.HandleList)

		if github != nil {
			r.Get("/auth/github/login", authHandler.HandleGitHubLogin)
			r.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
		} else {
			s.logger.Info("GitHub sign-in disabled: GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET not set")
		}

		// === Protected routes ===
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireBearer(tokens, s.logger))

			r.Get("/users/me", authHandler.HandleMe)
			r.Post("/projects", projectHandler.HandleCreate)
			r.Get("/projects", projectHandler.HandleList)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Handler returns the fully wired router. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database pool.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves HTTP until SIGINT/SIGTERM, then shuts down gracefully.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections
//  2. Wait up to shutdownTimeout for in-flight requests
//  3. Close the database (flushes the WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.Port),
		Handler: s.router,
		// Write deadline leaves room for the per-request timeout to fire first.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.config.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("database", s.config.DB.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
