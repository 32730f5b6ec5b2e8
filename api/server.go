package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/paw-chain/pawswap/app"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server serves read-only pool and ledger queries over HTTP.
type Server struct {
	logger log.Logger
	app    *app.App
	config app.APIConfig
	router *gin.Engine

	// mu serializes access to the app's working state.
	mu sync.Mutex
}

// NewServer creates a query server over a.
func NewServer(logger log.Logger, a *app.App, config app.APIConfig) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		logger: logger.With("module", "api"),
		app:    a,
		config: config,
	}
	if err := s.setupRouter(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) setupRouter() error {
	tracing, err := TelemetryMiddleware()
	if err != nil {
		return fmt.Errorf("failed to create telemetry middleware: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(tracing)
	router.Use(SecurityHeadersMiddleware())
	router.Use(LoggerMiddleware(s.logger))
	if s.config.RateLimitRPS > 0 {
		router.Use(RateLimitMiddleware(s.config.RateLimitRPS))
	}

	s.router = router
	s.setupRoutes()
	return nil
}

// RegisterMetrics serves h at GET /metrics.
func (s *Server) RegisterMetrics(h http.Handler) {
	s.router.GET("/metrics", gin.WrapH(h))
}

// Handler returns the root handler, with CORS applied when origins are
// configured.
func (s *Server) Handler() http.Handler {
	if len(s.config.CORSOrigins) == 0 {
		return s.router
	}
	c := cors.New(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         86400,
	})
	return c.Handler(s.router)
}

// Start listens on the configured address until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.ListenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "address", s.config.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down API server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown: %w", err)
	}
	return nil
}

// query runs fn against a fresh context over the latest state.
func (s *Server) query(fn func(ctx sdk.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.app.NewBlockContext())
}
