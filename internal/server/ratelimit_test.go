package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchRateLimit(t *testing.T) {
	srv := newTestServer(t, &mockSessionStore{}, &mockLocator{}, &mockCoordinator{})
	body := `{"session_token":"tok-abc123","latitude":42.36,"longitude":-71.06}`

	limited := 0
	for i := 0; i < 10; i++ {
		rec := postJSON(srv, "/api/search", body, nil)
		if rec.Code == http.StatusTooManyRequests {
			limited++
			assert.Contains(t, rec.Body.String(), "rate limit exceeded")
		}
	}

	assert.Greater(t, limited, 0, "burst of 10 searches must trip the limiter")
}

func TestCheckInRateLimitAllowsLargerBurst(t *testing.T) {
	srv := newTestServer(t, &mockSessionStore{}, &mockLocator{}, &mockCoordinator{})
	body := `{"session_token":"tok-abc123","place_id":"p1","latitude":42.36,"longitude":-71.06}`

	for i := 0; i < 8; i++ {
		rec := postJSON(srv, "/api/checkin", body, nil)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
}

func TestRateLimitsAreIndependentPerEndpoint(t *testing.T) {
	srv := newTestServer(t, &mockSessionStore{}, &mockLocator{}, &mockCoordinator{})

	// Exhaust the search burst.
	searchBody := `{"session_token":"tok-abc123","latitude":42.36,"longitude":-71.06}`
	for i := 0; i < 10; i++ {
		postJSON(srv, "/api/search", searchBody, nil)
	}

	// Check-ins still go through.
	checkinBody := `{"session_token":"tok-abc123","place_id":"p1","latitude":42.36,"longitude":-71.06}`
	rec := postJSON(srv, "/api/checkin", checkinBody, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
