package server

import (
	"context"
	"testing"
	"time"

	"github.com/ibrahimansoor/location-bot/internal/checkin"
	"github.com/ibrahimansoor/location-bot/internal/config"
	"github.com/ibrahimansoor/location-bot/internal/domain"
)

type mockSessionStore struct {
	createFn          func(ctx context.Context, userID, channelID string) (*domain.Session, error)
	validateFn        func(ctx context.Context, token string) (*domain.Session, error)
	expireFn          func(ctx context.Context, token string) error
	recordMessageFn   func(ctx context.Context, token, messageID string) (string, error)
	storeCandidatesFn func(ctx context.Context, token string, candidates []domain.Candidate) error
	candidateFn       func(ctx context.Context, token, placeID string) (domain.Candidate, error)
}

func (m *mockSessionStore) Create(ctx context.Context, userID, channelID string) (*domain.Session, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, channelID)
	}
	return &domain.Session{
		Token:     "tok-abc123",
		UserID:    userID,
		ChannelID: channelID,
		IssuedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2025, 6, 1, 12, 15, 0, 0, time.UTC),
	}, nil
}

func (m *mockSessionStore) Validate(ctx context.Context, token string) (*domain.Session, error) {
	if m.validateFn != nil {
		return m.validateFn(ctx, token)
	}
	return &domain.Session{Token: token, UserID: "U1", ChannelID: "C1"}, nil
}

func (m *mockSessionStore) Expire(ctx context.Context, token string) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, token)
	}
	return nil
}

func (m *mockSessionStore) RecordMessage(ctx context.Context, token, messageID string) (string, error) {
	if m.recordMessageFn != nil {
		return m.recordMessageFn(ctx, token, messageID)
	}
	return "", nil
}

func (m *mockSessionStore) StoreCandidates(ctx context.Context, token string, candidates []domain.Candidate) error {
	if m.storeCandidatesFn != nil {
		return m.storeCandidatesFn(ctx, token, candidates)
	}
	return nil
}

func (m *mockSessionStore) Candidate(ctx context.Context, token, placeID string) (domain.Candidate, error) {
	if m.candidateFn != nil {
		return m.candidateFn(ctx, token, placeID)
	}
	return domain.Candidate{PlaceID: placeID}, nil
}

type mockLocator struct {
	searchFn func(ctx context.Context, center domain.Coordinates, radiusMiles, limit int) ([]domain.Candidate, error)
}

func (m *mockLocator) Search(ctx context.Context, center domain.Coordinates, radiusMiles, limit int) ([]domain.Candidate, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, center, radiusMiles, limit)
	}
	return nil, nil
}

type mockCoordinator struct {
	checkInFn func(ctx context.Context, token, placeID string, coords domain.Coordinates, accuracy float64) (*checkin.Result, error)
}

func (m *mockCoordinator) CheckIn(ctx context.Context, token, placeID string, coords domain.Coordinates, accuracy float64) (*checkin.Result, error) {
	if m.checkInFn != nil {
		return m.checkInFn(ctx, token, placeID, coords, accuracy)
	}
	return &checkin.Result{MessageID: "m1"}, nil
}

type mockRedisPinger struct {
	pingErr error
}

func (m *mockRedisPinger) Ping(ctx context.Context) error {
	return m.pingErr
}

type serverOption func(*Server)

func withRedis(p RedisPinger) serverOption {
	return func(s *Server) { s.redis = p }
}

func newTestServer(t *testing.T, sessions domain.SessionStore, locator storeLocator, coordinator checkInService, opts ...serverOption) *Server {
	t.Helper()

	cfg := &config.Config{
		AppEnv:            "development",
		Port:              "8080",
		PortalBaseURL:     "https://portal.example.com",
		BotAPIKey:         "test-api-key",
		SessionTTL:        15 * time.Minute,
		SearchRadiusMiles: 5,
		SearchLimit:       8,
	}

	srv := NewServer(cfg, sessions, locator, coordinator, nil)
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}
