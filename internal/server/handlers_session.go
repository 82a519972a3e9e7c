package server

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/ibrahimansoor/location-bot/internal/errors"
	"github.com/ibrahimansoor/location-bot/internal/metrics"
)

// requireAPIKey guards the bot-facing endpoints. The key comparison is
// constant time.
func (s *Server) requireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get("X-API-Key")
		if key == "" {
			return apperrors.UnauthorizedError("missing API key")
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.config.BotAPIKey)) != 1 {
			return apperrors.UnauthorizedError("invalid API key")
		}
		return next(c)
	}
}

type createSessionRequest struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
}

type createSessionResponse struct {
	Status    string    `json:"status"`
	Token     string    `json:"token"`
	PortalURL string    `json:"portal_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleCreateSession issues a portal session for a chat user. The bot embeds
// the returned URL in its ephemeral reply to the /location command.
func (s *Server) handleCreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.UserID == "" {
		return apperrors.ValidationError("user_id is required")
	}
	if req.ChannelID == "" {
		return apperrors.ValidationError("channel_id is required")
	}

	sess, err := s.sessions.Create(c.Request().Context(), req.UserID, req.ChannelID)
	if err != nil {
		return apperrors.InternalError("failed to create session", err).
			WithField("user_id", req.UserID)
	}
	metrics.SessionsCreatedTotal.Inc()

	if err := c.JSON(200, createSessionResponse{
		Status:    "success",
		Token:     sess.Token,
		PortalURL: fmt.Sprintf("%s/?session=%s", s.config.PortalBaseURL, sess.Token),
		ExpiresAt: sess.ExpiresAt,
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
