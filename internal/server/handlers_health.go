package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ibrahimansoor/location-bot/internal/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status":  "ok",
		"uptime":  uptime,
		"version": version.Version,
	})
}

// handleReadiness reports ready when the configured dependencies answer.
// Redis is the only probed dependency; the Places and Discord APIs are not
// probed, their circuit breakers handle outages at request time.
func (s *Server) handleReadiness(c echo.Context) error {
	if s.redis == nil {
		return c.JSON(200, map[string]string{"status": "ready"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := s.redis.Ping(ctx); err != nil {
		return c.JSON(503, map[string]any{
			"status":       "unhealthy",
			"failed_check": "redis",
			"error":        err.Error(),
		})
	}

	return c.JSON(200, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}
