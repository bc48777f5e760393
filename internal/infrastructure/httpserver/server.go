package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/summarybot/summarybot/internal/core/ports"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ServerDeps groups the collaborators the server needs.
type ServerDeps struct {
	Summaries      ports.SummaryService
	HealthCheckers []ports.HealthChecker
}

// Server exposes the operational endpoints of the bot process: liveness,
// readiness, prometheus metrics and cache administration. The chat traffic
// itself does not go through HTTP.
type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	summaries      ports.SummaryService
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		summaries:      deps.Summaries,
		healthCheckers: deps.HealthCheckers,
	}

	e.GET("/health", server.healthCheck)
	e.GET("/ready", server.readyCheck)
	e.GET("/metrics", server.metricsEndpoint)
	e.DELETE("/admin/cache", server.invalidateSummary)

	return server
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)

	server := &http.Server{
		Addr:         addr,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Infof("Starting HTTP server on %s", addr)
	return s.echo.StartServer(server)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}
