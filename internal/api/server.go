// Package api exposes the triage engine over HTTP: on-demand evaluation,
// verdict history and a websocket stream of live vitals.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Rhyred/smart-triage-system/internal/domain"
	"github.com/Rhyred/smart-triage-system/internal/history"
	"github.com/Rhyred/smart-triage-system/internal/middleware"
	"github.com/Rhyred/smart-triage-system/internal/triage"
	"github.com/Rhyred/smart-triage-system/internal/vision"
)

// Server represents the HTTP server.
type Server struct {
	config   *domain.Config
	engine   *triage.Engine
	provider domain.SensorProvider
	analyzer *vision.Analyzer
	store    history.Store
	log      *logrus.Logger

	router *gin.Engine
	server *http.Server
}

// NewServer creates a new HTTP server instance.
func NewServer(
	config *domain.Config,
	engine *triage.Engine,
	provider domain.SensorProvider,
	analyzer *vision.Analyzer,
	store history.Store,
	logger *logrus.Logger,
) *Server {
	if config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.AuditLogger())
	router.Use(corsMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())

	rl := middleware.NewClientRateLimiter(config.Server.RateLimitPerSec, config.Server.RateLimitBurst)
	router.Use(rl.Middleware())

	s := &Server{
		config:   config,
		engine:   engine,
		provider: provider,
		analyzer: analyzer,
		store:    store,
		log:      logger,
		router:   router,
	}

	s.setupRoutes()

	return s
}

// Router exposes the gin engine for testing.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.log.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes. The websocket route stays outside
// the request timeout: streams are long-lived by design.
func (s *Server) setupRoutes() {
	s.router.GET("/ws/vitals", s.handleVitalsStream)

	timeout := middleware.RequestTimeout(s.config.Server.RequestTimeout)

	s.router.GET("/health", timeout, s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.Use(timeout)
	{
		v1.POST("/analyze", s.handleAnalyze)
		v1.GET("/history", s.handleListHistory)
		v1.GET("/history/:id", s.handleGetHistory)
	}
}

// corsMiddleware adds CORS headers to responses.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Correlation-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
