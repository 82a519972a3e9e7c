package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimansoor/location-bot/internal/domain"
)

func placesResponse(status string, results ...map[string]any) map[string]any {
	if results == nil {
		results = []map[string]any{}
	}
	return map[string]any{"status": status, "results": results}
}

func placeFixture(id, name string, lat, lng float64) map[string]any {
	return map[string]any{
		"place_id": id,
		"name":     name,
		"vicinity": "123 Main St",
		"geometry": map[string]any{
			"location": map[string]any{"lat": lat, "lng": lng},
		},
		"rating":             4.2,
		"user_ratings_total": 1500,
		"opening_hours":      map[string]any{"open_now": true},
		"business_status":    "OPERATIONAL",
	}
}

// newTestProvider starts an httptest server answering nearby searches from the
// given keyword fixtures and returns a provider pointed at it.
func newTestProvider(t *testing.T, byKeyword map[string]map[string]any) (*Provider, *requestLog) {
	t.Helper()

	log := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keyword := r.URL.Query().Get("keyword")
		log.record(r)

		resp, ok := byKeyword[keyword]
		if !ok {
			resp = placesResponse("ZERO_RESULTS")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	p := NewProvider("test-key")
	p.baseURL = srv.URL
	return p, log
}

type requestLog struct {
	mu       sync.Mutex
	keywords []string
	radii    []string
	keys     []string
}

func (l *requestLog) record(r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	q := r.URL.Query()
	l.keywords = append(l.keywords, q.Get("keyword"))
	l.radii = append(l.radii, q.Get("radius"))
	l.keys = append(l.keys, q.Get("key"))
}

func TestFindCombinesChains(t *testing.T) {
	p, log := newTestProvider(t, map[string]map[string]any{
		"Target":  placesResponse("OK", placeFixture("t1", "Target", 42.36, -71.06)),
		"Walmart": placesResponse("OK", placeFixture("w1", "Walmart Supercenter", 42.38, -71.08)),
	})

	center := domain.Coordinates{Lat: 42.36, Lng: -71.06}
	places, err := p.Find(context.Background(), center, 8047)
	require.NoError(t, err)
	require.Len(t, places, 2)

	byID := make(map[string]domain.RawPlace)
	for _, pl := range places {
		byID[pl.PlaceID] = pl
	}
	assert.Equal(t, "Department", byID["t1"].Category)
	assert.Equal(t, "🎯", byID["t1"].Icon)
	assert.Equal(t, "Superstore", byID["w1"].Category)
	assert.Equal(t, 4.2, byID["t1"].Rating)
	assert.Equal(t, 1500, byID["t1"].RatingCount)
	assert.True(t, byID["t1"].OpenNow)
	assert.Equal(t, "123 Main St", byID["t1"].Address)

	log.mu.Lock()
	defer log.mu.Unlock()
	assert.Contains(t, log.radii, "8047")
	assert.Contains(t, log.keys, "test-key")
}

func TestFindSkipsClosedStores(t *testing.T) {
	closed := placeFixture("t2", "Target", 42.37, -71.07)
	closed["business_status"] = "CLOSED_PERMANENTLY"

	p, _ := newTestProvider(t, map[string]map[string]any{
		"Target": placesResponse("OK", placeFixture("t1", "Target", 42.36, -71.06), closed),
	})

	places, err := p.Find(context.Background(), domain.Coordinates{Lat: 42.36, Lng: -71.06}, 8047)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "t1", places[0].PlaceID)
}

func TestFindFallsBackToAlternateSearchTerm(t *testing.T) {
	// First Walmart term returns nothing, the supercenter term hits.
	p, log := newTestProvider(t, map[string]map[string]any{
		"Walmart Supercenter": placesResponse("OK", placeFixture("w1", "Walmart Supercenter", 42.38, -71.08)),
	})

	places, err := p.Find(context.Background(), domain.Coordinates{Lat: 42.36, Lng: -71.06}, 8047)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "w1", places[0].PlaceID)

	log.mu.Lock()
	defer log.mu.Unlock()
	assert.Contains(t, log.keywords, "Walmart")
	assert.Contains(t, log.keywords, "Walmart Supercenter")
}

func TestFindEmptyAreaIsNotAnError(t *testing.T) {
	p, _ := newTestProvider(t, nil)

	places, err := p.Find(context.Background(), domain.Coordinates{Lat: 0, Lng: 0}, 8047)
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestFindToleratesSingleChainFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keyword := r.URL.Query().Get("keyword")
		w.Header().Set("Content-Type", "application/json")
		if keyword == "Target" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if keyword == "Walmart" {
			_ = json.NewEncoder(w).Encode(placesResponse("OK", placeFixture("w1", "Walmart", 42.38, -71.08)))
			return
		}
		_ = json.NewEncoder(w).Encode(placesResponse("ZERO_RESULTS"))
	}))
	defer srv.Close()

	p := NewProvider("test-key")
	p.baseURL = srv.URL

	places, err := p.Find(context.Background(), domain.Coordinates{Lat: 42.36, Lng: -71.06}, 8047)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "w1", places[0].PlaceID)
}

func TestFindFailsWhenAllChainsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewProvider("test-key")
	p.baseURL = srv.URL

	_, err := p.Find(context.Background(), domain.Coordinates{Lat: 42.36, Lng: -71.06}, 8047)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all chain searches failed")
}

func TestFindRejectsUnexpectedAPIStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(placesResponse("REQUEST_DENIED"))
	}))
	defer srv.Close()

	p := NewProvider("bad-key")
	p.baseURL = srv.URL

	_, err := p.Find(context.Background(), domain.Coordinates{Lat: 42.36, Lng: -71.06}, 8047)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestCategoriesAreDistinct(t *testing.T) {
	cats := Categories()
	assert.ElementsMatch(t, []string{"Department", "Superstore", "Wholesale", "Electronics"}, cats)
}
