package server

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/ibrahimansoor/location-bot/internal/domain"
	apperrors "github.com/ibrahimansoor/location-bot/internal/errors"
)

type searchRequest struct {
	SessionToken string  `json:"session_token"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMiles  int     `json:"radius,omitempty"`
	Limit        int     `json:"limit,omitempty"`
}

type searchResponse struct {
	Status     string             `json:"status"`
	Stores     []domain.Candidate `json:"stores"`
	TotalFound int                `json:"total_found"`
}

// handleSearch runs a nearby-store search for the portal and snapshots the
// results on the session so the subsequent check-in can be verified.
func (s *Server) handleSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.SessionToken == "" {
		return apperrors.ValidationError("session_token is required")
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		return apperrors.ValidationError("latitude must be between -90 and 90")
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return apperrors.ValidationError("longitude must be between -180 and 180")
	}

	radius := req.RadiusMiles
	if radius == 0 {
		radius = s.config.SearchRadiusMiles
	}
	if radius < 1 || radius > 50 {
		return apperrors.ValidationError("radius must be between 1 and 50 miles")
	}

	limit := req.Limit
	if limit == 0 {
		limit = s.config.SearchLimit
	}

	ctx := c.Request().Context()

	sess, err := s.sessions.Validate(ctx, req.SessionToken)
	if err != nil {
		return apperrors.FromDomain(err)
	}

	center := domain.Coordinates{Lat: req.Latitude, Lng: req.Longitude}
	stores, err := s.locator.Search(ctx, center, radius, limit)
	if err != nil {
		return apperrors.FromDomain(err).WithField("user_id", sess.UserID)
	}

	if err := s.sessions.StoreCandidates(ctx, req.SessionToken, stores); err != nil {
		return apperrors.FromDomain(err)
	}

	if stores == nil {
		stores = []domain.Candidate{}
	}
	if err := c.JSON(200, searchResponse{
		Status:     "success",
		Stores:     stores,
		TotalFound: len(stores),
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type checkInRequest struct {
	SessionToken string  `json:"session_token"`
	PlaceID      string  `json:"place_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Accuracy     float64 `json:"accuracy,omitempty"`
}

type checkInResponse struct {
	Status    string         `json:"status"`
	MessageID string         `json:"message_id"`
	CheckIn   domain.CheckIn `json:"checkin"`
}

// handleCheckIn posts the user's check-in to their channel, replacing any
// previous check-in notification.
func (s *Server) handleCheckIn(c echo.Context) error {
	var req checkInRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.SessionToken == "" {
		return apperrors.ValidationError("session_token is required")
	}
	if req.PlaceID == "" {
		return apperrors.ValidationError("place_id is required")
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		return apperrors.ValidationError("latitude must be between -90 and 90")
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return apperrors.ValidationError("longitude must be between -180 and 180")
	}

	coords := domain.Coordinates{Lat: req.Latitude, Lng: req.Longitude}
	result, err := s.coordinator.CheckIn(c.Request().Context(), req.SessionToken, req.PlaceID, coords, req.Accuracy)
	if err != nil {
		return apperrors.FromDomain(err)
	}

	if err := c.JSON(200, checkInResponse{
		Status:    "success",
		MessageID: result.MessageID,
		CheckIn:   result.CheckIn,
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
