// Package server exposes the assistant over HTTP: a chat endpoint, the
// pending-action endpoints mirroring the conversation tools, a voice
// websocket, and operational endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"aria/internal/assistant"
	"aria/internal/confirm"
	"aria/internal/observability"
	"aria/internal/tools"
	"aria/internal/voice"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// Config configures the HTTP server.
type Config struct {
	Host       string
	Port       int
	EnableCORS bool
	Debug      bool

	// SweepInterval is how often expired pending actions are removed.
	SweepInterval time.Duration
	// ActionMaxAge is the pending-action expiry horizon.
	ActionMaxAge time.Duration
}

// Server wires the HTTP layer to the assistant and confirmation engines.
type Server struct {
	config      Config
	engine      *assistant.Engine
	confirms    *confirm.Engine
	dispatcher  *tools.Dispatcher
	transcriber voice.Transcriber
	synthesizer voice.Synthesizer
	logger      *observability.Logger
	metrics     *observability.MetricsCollector

	router *gin.Engine
}

// New assembles the server and its routes.
func New(config Config, engine *assistant.Engine, confirms *confirm.Engine, dispatcher *tools.Dispatcher,
	transcriber voice.Transcriber, synthesizer voice.Synthesizer,
	logger *observability.Logger, metrics *observability.MetricsCollector) *Server {
	if config.SweepInterval <= 0 {
		config.SweepInterval = 5 * time.Minute
	}
	if config.ActionMaxAge <= 0 {
		config.ActionMaxAge = confirm.DefaultMaxAge
	}
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:      config,
		engine:      engine,
		confirms:    confirms,
		dispatcher:  dispatcher,
		transcriber: transcriber,
		synthesizer: synthesizer,
		logger:      observability.OrNop(logger).With("component", "server"),
		metrics:     metrics,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if s.config.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
		router.Use(cors.New(corsConfig))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := router.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.GET("/actions/:id", s.handleGetAction)
		api.POST("/actions/:id/confirm", s.handleConfirmAction)
		api.POST("/actions/:id/edit", s.handleEditAction)
		api.POST("/actions/:id/cancel", s.handleCancelAction)
	}

	if s.transcriber != nil && s.synthesizer != nil {
		router.GET("/ws/voice", s.handleVoiceWS)
	}
	return router
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, sweeping expired pending actions in the
// background. Shutdown is graceful.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		s.logger.Info("http server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		ticker := time.NewTicker(s.config.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.confirms.SweepExpired(ctx, s.config.ActionMaxAge)
			}
		}
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
