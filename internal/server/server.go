// Package server exposes the HTTP surface: the bot-facing session endpoint,
// the portal-facing search and check-in endpoints, and the observability
// endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ibrahimansoor/location-bot/internal/checkin"
	"github.com/ibrahimansoor/location-bot/internal/config"
	"github.com/ibrahimansoor/location-bot/internal/domain"
	apperrors "github.com/ibrahimansoor/location-bot/internal/errors"
)

// storeLocator is the search capability the handlers depend on.
type storeLocator interface {
	Search(ctx context.Context, center domain.Coordinates, radiusMiles, limit int) ([]domain.Candidate, error)
}

// checkInService runs the check-in state machine.
type checkInService interface {
	CheckIn(ctx context.Context, token, placeID string, coords domain.Coordinates, accuracy float64) (*checkin.Result, error)
}

// RedisPinger is the readiness probe for the optional cache backend.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	sessions    domain.SessionStore
	locator     storeLocator
	coordinator checkInService
	redis       RedisPinger // nil when Redis is not configured
	startTime   time.Time
}

func NewServer(cfg *config.Config, sessions domain.SessionStore, locator storeLocator, coordinator checkInService, redis RedisPinger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:        e,
		config:      cfg,
		sessions:    sessions,
		locator:     locator,
		coordinator: coordinator,
		redis:       redis,
		startTime:   time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
