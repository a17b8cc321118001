// Package server wires the application together: database, services,
// handlers, middleware, and routes. It is the composition root — every
// dependency is assembled here and nowhere else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/project-phoenix/internal/auth"
	"github.com/sakif/project-phoenix/internal/githubapi"
	"github.com/sakif/project-phoenix/internal/handler"
	"github.com/sakif/project-phoenix/internal/middleware"
	sqliteRepo "github.com/sakif/project-phoenix/internal/repository/sqlite"
	"github.com/sakif/project-phoenix/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port   int
	DBPath string

	// FrontendBaseURL is where OAuth redirects land (login errors, the
	// post-login dashboard).
	FrontendBaseURL string

	// SessionSecret signs session tokens. At least 16 characters.
	SessionSecret string
	// SecureCookies marks cookies Secure; on everywhere except local dev.
	SecureCookies bool

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
	// GitHubToken authenticates import-time API calls. Optional; without it
	// imports run against GitHub's anonymous rate limit.
	GitHubToken string
}

// Server owns the router and the resources that must be released on
// shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	codec, err := auth.NewJWTCodec(s.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating session codec: %w", err)
	}
	sessions := auth.NewSessionManager(codec, s.config.SecureCookies)
	provider := auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	ghClient := githubapi.New(s.config.GitHubToken)

	authService := service.NewAuthService(s.db)
	importService := service.NewImportService(s.db, s.db, ghClient, s.logger)
	squadService := service.NewSquadService(s.db, s.db, s.db, s.logger)
	userService := service.NewUserService(s.db, s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(provider, sessions, authService, userService,
		s.config.FrontendBaseURL, s.config.SecureCookies, s.logger)
	repoHandler := handler.NewRepoHandler(importService, squadService)
	squadHandler := handler.NewSquadHandler(squadService)
	userHandler := handler.NewUserHandler(userService)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/auth/github", authHandler.Login)
		r.Get("/auth/callback/github", authHandler.Callback)
		r.Post("/auth/logout", authHandler.Logout)
		r.With(sessions.RequireSession).Get("/auth/me", authHandler.Me)

		r.Group(func(r chi.Router) {
			r.Use(sessions.OptionalSession)
			r.Post("/repositories/import", repoHandler.Import)
			r.Get("/repositories", repoHandler.List)
			r.Get("/repositories/{id}", repoHandler.Get)
			r.Get("/repositories/{id}/squads", repoHandler.Squads)
			r.Get("/squads", squadHandler.List)
			r.Get("/squads/{squadId}", squadHandler.Get)
			r.Get("/squads/{squadId}/members", squadHandler.Members)
		})

		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireSession)
			r.Post("/squads", squadHandler.Create)
			r.Patch("/squads/{squadId}", squadHandler.Update)
			r.Delete("/squads/{squadId}", squadHandler.Delete)
			r.Post("/squads/{squadId}/members", squadHandler.Join)
			r.Delete("/squads/{squadId}/members", squadHandler.Leave)

			r.Get("/users/me/projects", userHandler.Projects)
			r.Get("/users/me/squads", userHandler.Squads)
			r.Get("/users/me/stats", userHandler.Stats)
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
