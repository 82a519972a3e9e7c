package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Portal rate limits, per client IP. Searches hit the Places API so they are
// limited tighter than check-ins.
const (
	searchRequestsPerMinute  = 20
	checkinRequestsPerMinute = 50
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Bot-facing: session issuance (API key protected)
	s.echo.POST("/api/sessions", s.handleCreateSession, s.requireAPIKey)

	// Portal-facing: session token carried in the request body
	s.echo.POST("/api/search", s.handleSearch, newRateLimiter(searchRequestsPerMinute, 5))
	s.echo.POST("/api/checkin", s.handleCheckIn, newRateLimiter(checkinRequestsPerMinute, 10))
}
