// Package http exposes the session controller and memory store to the
// agent orchestrator over HTTP.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/designd/internal/memory"
	"github.com/fyrsmithlabs/designd/internal/session"
)

// Server provides the HTTP API for designd.
type Server struct {
	echo       *echo.Echo
	controller *session.Controller
	store      *memory.Store
	logger     *zap.Logger
	config     *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// RateLimit caps requests per second per client; zero disables limiting.
	RateLimit rate.Limit
}

// NewServer creates the HTTP server over a controller and store.
func NewServer(controller *session.Controller, store *memory.Store, logger *zap.Logger, cfg *Config) (*Server, error) {
	if controller == nil {
		return nil, fmt.Errorf("controller cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 9290}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(cfg.RateLimit)))
	}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:       e,
		controller: controller,
		store:      store,
		logger:     logger,
		config:     cfg,
	}
	s.registerRoutes()
	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")

	v1.GET("/status", s.handleStatus)
	v1.POST("/sessions", s.handleStartSession)
	v1.GET("/sessions/:id", s.handleGetSession)
	v1.GET("/sessions/:id/continue", s.handleCanContinue)
	v1.GET("/sessions/:id/summary", s.handleSessionSummary)
	v1.POST("/sessions/:id/proposals", s.handleAddProposal)
	v1.POST("/sessions/:id/proposals/:pid/approve", s.handleApprove)
	v1.POST("/sessions/:id/proposals/:pid/reject", s.handleReject)
	v1.POST("/sessions/:id/proposals/:pid/revise", s.handleRevise)

	v1.POST("/memory/approvals", s.handleRecordApproval)
	v1.POST("/memory/rejections", s.handleRecordRejection)
	v1.POST("/memory/sessions", s.handleRecordSession)
	v1.POST("/memory/principles", s.handleAddPrinciple)
	v1.GET("/memory/context", s.handleDesignContext)
	v1.GET("/memory/stats", s.handleMemoryStats)
	v1.GET("/memory/conflicts", s.handleConflicts)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
