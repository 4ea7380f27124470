// Package server wires configuration, store, service, handlers and
// middleware into one HTTP server.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → OpenStore → repository.Store
//	Store → service.UserService → handler.UserHandler → routes
//
// This is the composition root; no other package constructs dependencies.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/users-api/internal/config"
	"github.com/sakif/users-api/internal/handler"
	"github.com/sakif/users-api/internal/middleware"
	"github.com/sakif/users-api/internal/observability"
	"github.com/sakif/users-api/internal/repository"
	"github.com/sakif/users-api/internal/service"
	"github.com/sakif/users-api/internal/validation"
)

// Server owns the store, which is closed when Run or Serve returns.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   repository.Store
	metrics *observability.Metrics
	router  *chi.Mux
	http    *http.Server
}

// New opens the configured store and builds the server.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return NewWithStore(cfg, logger, store), nil
}

// NewWithStore builds the server around an already-open store.
func NewWithStore(cfg *config.Config, logger *slog.Logger, store repository.Store) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		store:  store,
		router: chi.NewRouter(),
	}
	if cfg.MetricsEnabled {
		s.metrics = observability.NewMetrics()
	}
	s.setupRoutes()

	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	return s
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes installs middleware and routes.
//
// ROUTES ({prefix} is API_PREFIX, default /api/v1):
//
//	GET    /                      → API description
//	GET    /metrics               → Prometheus (when METRICS_ENABLED)
//	GET    {prefix}/health        → liveness, never touches the store
//	GET    {prefix}/users         → list
//	GET    {prefix}/users/{id}    → get
//	POST   {prefix}/users         → ValidateCreate → create
//	PUT    {prefix}/users/{id}    → ValidateUpdate → update
//	DELETE {prefix}/users/{id}    → delete
//	anything else                 → 404 "Route not found"
//
// MIDDLEWARE ORDER: request id first so every later layer can log it, the
// logger outside the recoverer so a recovered panic is logged as a 500, and
// CORS before routing so preflight requests never reach a handler.
func (s *Server) setupRoutes() {
	expose := s.cfg.ExposeErrors()

	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Recoverer(s.logger, expose))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	s.router.Use(middleware.SecureHeaders(s.logger, s.cfg.IsProduction()))
	s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
	s.router.Use(s.metrics.Middleware)

	userService := service.NewUserService(s.store, s.logger)
	users := handler.NewUserHandler(userService, validation.New(), s.logger, expose)
	system := handler.NewSystemHandler(s.cfg.APIPrefix)

	s.router.NotFound(system.HandleNotFound)
	s.router.MethodNotAllowed(system.HandleNotFound)

	s.router.Get("/", system.HandleRoot)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	prefix := s.cfg.APIPrefix
	s.router.Get(prefix+"/health", system.HandleHealth)
	s.router.Get(prefix+"/users", users.HandleList)
	s.router.Get(prefix+"/users/{id}", users.HandleGetByID)
	s.router.With(users.ValidateCreate).Post(prefix+"/users", users.HandleCreate)
	s.router.With(users.ValidateUpdate).Put(prefix+"/users/{id}", users.HandleUpdate)
	s.router.Delete(prefix+"/users/{id}", users.HandleDelete)
}

// Run listens on the configured port and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		s.closeStore()
		return fmt.Errorf("listening on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within SHUTDOWN_TIMEOUT:
//  1. stop accepting connections and drain in-flight requests
//  2. close the store
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.closeStore()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting",
			slog.String("addr", ln.Addr().String()),
			slog.String("prefix", s.cfg.APIPrefix),
			slog.String("env", s.cfg.AppEnv),
			slog.String("driver", s.cfg.DBDriver),
		)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down", slog.Duration("timeout", s.cfg.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}

func (s *Server) closeStore() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("failed to close store", slog.String("error", err.Error()))
	}
}
