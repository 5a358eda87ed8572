package ops

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Check reports whether a dependency is healthy
type Check func(ctx context.Context) error

// Server exposes metrics and a health check over HTTP
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *zap.Logger
}

// NewServer creates the ops server. Nil checks are skipped.
func NewServer(addr string, checks map[string]Check, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Any("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/status", func(c echo.Context) error {
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(c.Request().Context()); err != nil {
				logger.Error("Health check failed", zap.String("check", name), zap.Error(err))
				return c.String(http.StatusInternalServerError, name+" error")
			}
		}
		return c.String(http.StatusOK, "OK")
	})

	return &Server{echo: e, addr: addr, logger: logger}
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting ops listener", zap.String("addr", s.addr))
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
