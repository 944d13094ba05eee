// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: New opens the database and wires
//
//	sqlite.DB → services → handlers → chi routes
//
// so no other package constructs its own dependencies.
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

	"github.com/sakif/violets/internal/auth"
	"github.com/sakif/violets/internal/config"
	"github.com/sakif/violets/internal/handler"
	"github.com/sakif/violets/internal/middleware"
	sqliteRepo "github.com/sakif/violets/internal/repository/sqlite"
	"github.com/sakif/violets/internal/service"
	"github.com/sakif/violets/web"
)

const (
	loginPath       = "/login"
	shutdownTimeout = 30 * time.Second
)

// Server owns the router and the database connection. The connection is
// closed when Start returns, or by Close for a server that never started.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database at cfg.DBPath and builds the router.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
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

// setupRoutes configures middleware and routes.
//
// GET  /                        → list (?q= filters by name)
// GET  /cultivars/new           → create form
// POST /cultivars/new           → create
// GET  /cultivars/{id}          → detail
// POST /cultivars/{id}/care     → add care log
// POST /cultivars/{id}/delete   → delete cultivar and its logs
// POST /care_logs/{id}/delete   → delete one care log
// GET  /export                  → snapshot download (json or yaml)
// GET  /export/care_logs.csv    → care history CSV
// GET  /login, POST /login      → keeper login (auth enabled only)
// POST /logout                  → keeper logout (auth enabled only)
// GET  /static/*                → embedded assets
//
// Middleware order: RequestID, RealIP, Logger, Recoverer. Logger sits
// outside Recoverer so recovered panics are logged with their 500.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	var tokens *auth.TokenService
	if s.config.Auth.Enabled() {
		var err error
		tokens, err = auth.NewTokenService(s.config.Auth.JWTSecret, s.config.Auth.SessionTTL)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
	}

	render, err := handler.NewRenderer(web.Templates, tokens, s.logger)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	s.router.NotFound(render.NotFound)

	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.Static())))

	cultivarHandler := handler.NewCultivarHandler(service.NewCultivarService(s.db, s.logger), render, s.logger)
	backupHandler := handler.NewBackupHandler(service.NewBackupService(s.db, s.logger), render, s.logger)

	s.router.Get("/", cultivarHandler.HandleList)
	s.router.Get("/cultivars/new", cultivarHandler.HandleNewForm)
	s.router.Get("/cultivars/{id}", cultivarHandler.HandleShow)
	s.router.Get("/cultivars/{id}/edit", cultivarHandler.HandleEditForm)
	s.router.Get("/care_logs", cultivarHandler.HandleCareHistory)
	s.router.Get("/export", backupHandler.HandleExport)
	s.router.Get("/export/care_logs.csv", backupHandler.HandleCareCSV)
	s.router.Get("/import", backupHandler.HandleImportForm)

	// Journal edits. RequireSession is a no-op when tokens is nil.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(tokens, loginPath))
		r.Post("/cultivars/new", cultivarHandler.HandleCreate)
		r.Post("/cultivars/{id}/edit", cultivarHandler.HandleUpdate)
		r.Post("/cultivars/{id}/care", cultivarHandler.HandleAddCare)
		r.Post("/cultivars/{id}/delete", cultivarHandler.HandleDelete)
		r.Post("/care_logs/{id}/delete", cultivarHandler.HandleDeleteCareLog)
		r.Post("/import", backupHandler.HandleImport)
	})

	if tokens != nil {
		keeper := service.NewKeeperService(s.config.Auth.PasswordHash, auth.NewPasswordService(), tokens, s.logger)
		keeperHandler := handler.NewKeeperHandler(keeper, tokens, render, s.logger)
		s.router.Get(loginPath, keeperHandler.HandleLoginForm)
		s.router.Post(loginPath, keeperHandler.HandleLogin)
		s.router.Post("/logout", keeperHandler.HandleLogout)
	}

	return nil
}

// Handler exposes the router, for tests and for embedding in another server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on the way out.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves HTTP until SIGINT or SIGTERM, then shuts down gracefully:
// stop accepting connections, give in-flight requests up to 30 seconds, and
// close the database.
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
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Bool("keeper_auth", s.config.Auth.Enabled()),
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
