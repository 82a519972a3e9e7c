package discord

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimansoor/location-bot/internal/domain"
)

func testNotification() domain.Notification {
	return domain.Notification{
		UserID:        "U1",
		VenueName:     "Target",
		VenueAddress:  "123 Main St",
		DistanceMiles: 1.27,
		Coordinates:   domain.Coordinates{Lat: 42.36, Lng: -71.06},
		PlaceID:       "p1",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("bot-token")
	c.baseURL = srv.URL
	return c
}

func TestPostCreatesMessage(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "m42"})
	})

	id, err := c.Post(context.Background(), "C1", testNotification())
	require.NoError(t, err)
	assert.Equal(t, "m42", id)
	assert.Equal(t, "/channels/C1/messages", gotPath)
	assert.Equal(t, "Bot bot-token", gotAuth)

	assert.Equal(t, "<@U1> checked in!", gotBody["content"])
	embeds, ok := gotBody["embeds"].([]any)
	require.True(t, ok)
	require.Len(t, embeds, 1)
	embed := embeds[0].(map[string]any)
	assert.Equal(t, "📍 Target", embed["title"])
	assert.Equal(t, "123 Main St", embed["description"])
	assert.Contains(t, embed["url"], "query_place_id=p1")

	fields := embed["fields"].([]any)
	require.Len(t, fields, 1)
	assert.Equal(t, "1.3 miles away", fields[0].(map[string]any)["value"])
}

func TestPostRateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Post(context.Background(), "C1", testNotification())
	require.Error(t, err)

	var rl *domain.RateLimitedError
	assert.True(t, errors.As(err, &rl))
}

func TestPostServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Post(context.Background(), "C1", testNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestPostMissingMessageID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{})
	})

	_, err := c.Post(context.Background(), "C1", testNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no message id")
}

func TestDeleteRemovesMessage(t *testing.T) {
	var gotMethod, gotPath string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.Delete(context.Background(), "C1", "m42")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/channels/C1/messages/m42", gotPath)
}

func TestDeleteNotFoundIsAnError(t *testing.T) {
	// The coordinator tolerates this; the client still reports it.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := c.Delete(context.Background(), "C1", "gone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestDeleteRateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	err := c.Delete(context.Background(), "C1", "m42")
	require.Error(t, err)

	var rl *domain.RateLimitedError
	assert.True(t, errors.As(err, &rl))
}
