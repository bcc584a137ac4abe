// file: internal/server/server.go
// version: 2.0.0
// guid: 4c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdfalk/movie-recommender/internal/logging"
	"github.com/jdfalk/movie-recommender/internal/metrics"
	"github.com/jdfalk/movie-recommender/internal/models"
	"github.com/jdfalk/movie-recommender/internal/operations"
	"github.com/jdfalk/movie-recommender/internal/realtime"
	"github.com/jdfalk/movie-recommender/internal/server/middleware"
	"github.com/jdfalk/movie-recommender/internal/service"
)

// Version is reported by the health endpoint.
var Version = "dev"

// PosterWarmer pre-resolves posters in the background.
type PosterWarmer interface {
	Warm(ctx context.Context, movies []models.Movie, progress func(models.Movie, string)) int
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	svc        *service.Recommender
	warmer     PosterWarmer
	queue      *operations.OperationQueue
	events     *realtime.EventHub
	startedAt  time.Time
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RateLimitPerMin int
	RateLimitBurst  int
}

// NewServer creates a new server instance. warmer may be nil when posters
// are disabled.
func NewServer(svc *service.Recommender, warmer PosterWarmer, cfg ServerConfig) *Server {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog())
	router.Use(corsMiddleware())

	// Register metrics (idempotent)
	metrics.Register()

	server := &Server{
		router:    router,
		svc:       svc,
		warmer:    warmer,
		queue:     operations.NewOperationQueue(1, 50),
		events:    realtime.NewEventHub(),
		startedAt: time.Now(),
	}
	server.queue.SetNotifier(server.events)

	server.setupRoutes(cfg)

	return server
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start(cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.httpServer.Addr).Msg("starting server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		_ = s.queue.Shutdown(5 * time.Second)
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	logging.Info().Msg("shutting down server")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if err := s.queue.Shutdown(10 * time.Second); err != nil {
		logging.Warn().Err(err).Msg("operation queue did not stop cleanly")
	}

	logging.Info().Msg("server exited")
	return nil
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes(cfg ServerConfig) {
	// Prometheus metrics endpoint (standard path)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/api/health", s.healthCheck)
	s.router.GET("/api/v1/health", s.healthCheck)

	api := s.router.Group("/api/v1")
	if cfg.RateLimitPerMin > 0 {
		api.Use(middleware.NewIPRateLimiter(cfg.RateLimitPerMin, cfg.RateLimitBurst).Middleware())
	}
	{
		api.GET("/recommendations", s.getRecommendations)
		api.GET("/movies", s.searchMovies)

		api.GET("/genres", s.listGenres)
		api.GET("/genres/:genre/movies", s.listGenreMovies)

		api.GET("/posters", s.getPoster)
		api.POST("/posters/warm", s.startPosterWarm)

		api.GET("/operations/active", s.listActiveOperations)
		api.GET("/operations/:id", s.getOperationStatus)
		api.DELETE("/operations/:id", s.cancelOperation)

		api.GET("/events", s.events.HandleSSE)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
