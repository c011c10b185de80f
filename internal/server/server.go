// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/vuenetcrud-server/internal/auth"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/config"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/handler"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/middleware"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/openapi"
	"github.com/vyrodovalexey/vuenetcrud-server/internal/store"
)

// APITitle is the title of the published OpenAPI document.
const APITitle = "VueNetCrud.Server"

// TokenService issues tokens at login and verifies them on protected routes.
type TokenService interface {
	handler.TokenIssuer
	auth.TokenVerifier
}

// Dependencies are the collaborators the server routes requests to.
type Dependencies struct {
	Items       store.ItemRepository
	Products    store.ProductRepository
	Validator   handler.Validator
	Credentials handler.CredentialVerifier
	Tokens      TokenService
}

// Server represents the HTTP server.
type Server struct {
	httpServer    *http.Server
	probeServer   *http.Server
	router        *mux.Router
	probeRouter   *mux.Router
	config        *config.Config
	logger        *zap.Logger
	healthHandler *handler.HealthHandler
	wsHandler     *handler.WebSocketHandler
}

// New creates a new Server instance.
func New(cfg *config.Config, logger *zap.Logger, deps Dependencies) (*Server, error) {
	s := &Server{
		router:        mux.NewRouter(),
		probeRouter:   mux.NewRouter(),
		config:        cfg,
		logger:        logger,
		healthHandler: handler.NewHealthHandler(logger),
	}

	s.setupMiddleware()
	if err := s.setupRoutes(deps); err != nil {
		return nil, err
	}
	s.setupProbeRoutes()
	s.setupHTTPServers()

	return s, nil
}

// setupMiddleware configures the router-level middleware chain.
func (s *Server) setupMiddleware() {
	// Apply middleware in order (first applied = outermost)
	s.router.Use(mux.MiddlewareFunc(middleware.Recovery(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.RequestID()))

	if s.config.Metrics.Enabled {
		s.router.Use(mux.MiddlewareFunc(middleware.Metrics()))
	}

	s.router.Use(mux.MiddlewareFunc(middleware.Logging(s.logger)))
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes(deps Dependencies) error {
	requireToken := mux.MiddlewareFunc(middleware.Auth(auth.NewBearerAuthenticator(deps.Tokens), s.logger))

	s.healthHandler.RegisterRoutes(s.router)

	handler.NewLoginHandler(deps.Credentials, deps.Tokens, s.logger).RegisterRoutes(s.router)
	handler.NewProductsHandler(deps.Products, deps.Validator, s.logger).RegisterRoutes(s.router)

	// WebSocket feed
	s.wsHandler = handler.NewWebSocketHandler(s.logger, s.config.CORS.AllowedOrigins)
	feed := s.router.NewRoute().Subrouter()
	feed.Use(requireToken)
	s.wsHandler.RegisterRoutes(feed)

	items := s.router.PathPrefix(handler.ItemsBasePath).Subrouter()
	items.Use(requireToken)
	handler.NewItemsHandler(deps.Items, s.wsHandler, s.logger).RegisterRoutes(s.router, items)

	if s.config.Metrics.Enabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	if !s.config.IsProduction() {
		doc, err := openapi.Build(APITitle, "v1")
		if err != nil {
			return fmt.Errorf("building openapi document: %w", err)
		}
		docHandler, err := openapi.Handler(doc, s.logger)
		if err != nil {
			return err
		}
		s.router.Handle(openapi.DocumentPath, docHandler).Methods(http.MethodGet)
	}

	return nil
}

// setupProbeRoutes configures the unauthenticated probe router served on
// the probe port.
func (s *Server) setupProbeRoutes() {
	s.healthHandler.RegisterRoutes(s.probeRouter)

	if s.config.Metrics.Enabled {
		s.probeRouter.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
}

// setupHTTPServers configures the API server and, when a probe port is
// set, the probe server.
func (s *Server) setupHTTPServers() {
	cors := middleware.CORS(middleware.CORSOptions{
		AllowedOrigins: s.config.CORS.AllowedOrigins,
		MaxAge:         s.config.CORS.MaxAge,
	})

	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           cors(s.router),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	if s.config.Server.ProbePort == 0 {
		return
	}

	s.probeServer = &http.Server{
		Addr:              s.config.ProbeAddress(),
		Handler:           s.probeRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       30 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// Start starts the HTTP server, and the probe server when configured. It
// blocks until either stops.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.String("environment", s.config.Environment),
		zap.Bool("metrics_enabled", s.config.Metrics.Enabled),
		zap.Bool("openapi_enabled", !s.config.IsProduction()),
	)

	errCh := make(chan error, 2)

	if s.probeServer != nil {
		s.logger.Info("starting probe server", zap.String("address", s.config.ProbeAddress()))
		go func() {
			errCh <- serve(s.probeServer, "probe server")
		}()
	}

	go func() {
		errCh <- serve(s.httpServer, "server")
	}()

	return <-errCh
}

func serve(srv *http.Server, name string) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s listen and serve: %w", name, err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	s.healthHandler.SetReady(false)

	// Close all WebSocket connections first
	if s.wsHandler != nil {
		s.wsHandler.CloseAllConnections()
	}

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	if s.probeServer != nil {
		if err := s.probeServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("probe server shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Handler returns the complete API handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Router returns the server's router for testing purposes.
func (s *Server) Router() *mux.Router {
	return s.router
}
