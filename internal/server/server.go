// Package server wires the sync API together: store, services, handlers,
// middleware and routes.
//
// DEPENDENCY FLOW:
//
//	config.Config ─► sqlstore.Store ─► services ─► handlers ─► chi routes
//
// main builds a Config and a logger and calls New. Tests call NewWithStore
// with an in-memory store and drive Handler() through httptest.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/mediaplay-sync/internal/auth"
	"github.com/sakif/mediaplay-sync/internal/config"
	"github.com/sakif/mediaplay-sync/internal/handler"
	"github.com/sakif/mediaplay-sync/internal/middleware"
	"github.com/sakif/mediaplay-sync/internal/repository"
	"github.com/sakif/mediaplay-sync/internal/repository/sqlstore"
	"github.com/sakif/mediaplay-sync/internal/service"
)

// Server owns the router and the store. The store is closed when Start
// returns.
type Server struct {
	router    *chi.Mux
	config    config.Config
	logger    *slog.Logger
	store     repository.Store
	passwords *auth.PasswordService
}

// Option tweaks a Server before its routes are built.
type Option func(*Server)

// WithPasswordService replaces the production argon2 parameters. Tests use
// auth.NewPasswordServiceForTest to keep signups fast.
func WithPasswordService(p *auth.PasswordService) Option {
	return func(s *Server) { s.passwords = p }
}

// New opens the store named by cfg.Database and builds the server on it.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	store, err := sqlstore.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	s, err := NewWithStore(cfg, store, logger, opts...)
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

// NewWithStore builds the server on an already opened store. The server
// takes ownership of the store.
func NewWithStore(cfg config.Config, store repository.Store, logger *slog.Logger, opts ...Option) (*Server, error) {
	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		store:     store,
		passwords: auth.NewPasswordService(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store. Start calls it on the way out.
func (s *Server) Close() error {
	return s.store.Close()
}

// setupRoutes registers middleware and routes.
//
// ROUTES:
//
//	GET    /health /debug/db /playground
//	POST   /auth/signup /auth/signin           no token
//	GET    /auth/me   DELETE /auth/me          token required
//
//	GET    list endpoints                      token optional (see ReadScope)
//	POST/PUT/DELETE everything else            token required
//
// MIDDLEWARE ORDER: RequestID, RealIP, Recoverer, Logger, CORS. The guard
// is applied per route group.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"WWW-Authenticate"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	tokens, err := auth.NewTokenService(s.config.Auth.SecretKey, s.config.Auth.TokenTTL, s.config.Auth.Issuer)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	guard := auth.NewGuard(tokens, s.store, s.logger)
	scope := handler.ReadScope{PublicReads: s.config.Access.PublicReads}

	authHandler := handler.NewAuthHandler(service.NewAuthService(s.store, s.passwords, tokens, s.logger), s.logger)
	mediaHandler := handler.NewMediaHandler(service.NewMediaService(s.store, s.logger), scope, s.logger)
	playlistHandler := handler.NewPlaylistHandler(service.NewPlaylistService(s.store, s.logger), scope, s.logger)
	tagHandler := handler.NewTagHandler(service.NewTagService(s.store, s.logger), scope, s.logger)
	prefsHandler := handler.NewPreferencesHandler(service.NewPreferencesService(s.store, s.logger), scope, s.logger)
	healthHandler := handler.NewHealthHandler(s.store, s.config.App, s.logger)

	playgroundHandler, err := handler.NewPlaygroundHandler(s.config.App, s.config.Access.PublicReads, s.logger)
	if err != nil {
		return fmt.Errorf("creating playground handler: %w", err)
	}

	s.router.Get("/health", healthHandler.HandleHealth)
	s.router.Get("/debug/db", healthHandler.HandleDebugDB)
	s.router.Get("/debug/smoke", healthHandler.HandleSmoke)
	s.router.Get("/playground", playgroundHandler.HandlePlayground)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/signin", authHandler.HandleSignin)

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireUser)
			r.Get("/me", authHandler.HandleMe)
			r.Delete("/me", authHandler.HandleDeleteMe)
		})
	})

	// Reads: the handler's ReadScope decides what an anonymous caller sees.
	s.router.Group(func(r chi.Router) {
		r.Use(guard.OptionalUser)

		r.Get("/favorites", mediaHandler.HandleListFavorites)
		r.Get("/history", mediaHandler.HandleListHistory)

		r.Get("/playlists", playlistHandler.HandleList)
		r.Get("/playlists/{id}", playlistHandler.HandleGet)
		r.Get("/playlists/{id}/items", playlistHandler.HandleListItems)

		r.Get("/tags", tagHandler.HandleList)
		r.Get("/tags/media", tagHandler.HandleListMedia)

		r.Get("/settings", prefsHandler.HandleGetSettings)
		r.Get("/statistics", prefsHandler.HandleGetStatistics)
	})

	// Writes always act on the caller's own rows.
	s.router.Group(func(r chi.Router) {
		r.Use(guard.RequireUser)

		r.Post("/favorites", mediaHandler.HandleAddFavorite)
		r.Delete("/favorites", mediaHandler.HandleRemoveFavorite)
		r.Post("/history", mediaHandler.HandleRecordPlay)

		r.Post("/playlists", playlistHandler.HandleCreate)
		r.Put("/playlists/{id}", playlistHandler.HandleUpdate)
		r.Delete("/playlists/{id}", playlistHandler.HandleDelete)
		r.Post("/playlists/{id}/items", playlistHandler.HandleAddItem)
		r.Delete("/playlists/{id}/items/{item_id}", playlistHandler.HandleRemoveItem)

		// /tags/media before /tags/{id}
		r.Post("/tags/media", tagHandler.HandleLinkMedia)
		r.Delete("/tags/media/{id}", tagHandler.HandleUnlinkMedia)
		r.Post("/tags", tagHandler.HandleCreate)
		r.Delete("/tags/{id}", tagHandler.HandleDelete)

		r.Post("/settings", prefsHandler.HandleUpdateSettings)
		r.Post("/statistics", prefsHandler.HandleUpdateStatistics)
	})

	return nil
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then
// drains in-flight requests for up to ShutdownTimeout and closes the store.
func (s *Server) Start(ctx context.Context) error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	cfg := s.config.Server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	if s.config.Access.PublicReads {
		s.logger.Warn("public reads enabled: anonymous callers can list every user's data")
	}

	go func() {
		s.logger.Info("server starting",
			slog.String("name", s.config.App.Name),
			slog.String("version", s.config.App.Version),
			slog.Int("port", cfg.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", cfg.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	case <-ctx.Done():
		s.logger.Info("shutdown requested", slog.String("reason", context.Cause(ctx).Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
