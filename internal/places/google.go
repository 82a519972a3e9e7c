// Package places implements the store search against the Google Places API.
//
// Searches run per chain with a keyword query, so results stay focused on the
// store brands the portal offers instead of whatever Google considers nearby.
// A shared circuit breaker protects all outbound calls; when it opens, searches
// fail fast instead of piling up on a degraded upstream.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"

	"github.com/ibrahimansoor/location-bot/internal/domain"
	"github.com/ibrahimansoor/location-bot/internal/metrics"
)

const (
	nearbySearchURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	httpCallTimeout = 10 * time.Second
)

// Provider queries the Google Places nearby search API, one request per store
// chain. It implements domain.LocationProvider.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cb      circuitbreaker.CircuitBreaker[any]
}

var _ domain.LocationProvider = (*Provider)(nil)

// NewProvider creates a Places provider with the given API key.
func NewProvider(apiKey string) *Provider {
	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 10*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "places",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			metrics.CircuitBreakerState.WithLabelValues("places").Set(stateToFloat(e.NewState))
		}).
		Build()

	return &Provider{
		apiKey:  apiKey,
		baseURL: nearbySearchURL,
		client:  &http.Client{Timeout: httpCallTimeout},
		cb:      cb,
	}
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

// Find searches every configured chain around center and returns the combined
// raw places. A single chain failing is tolerated; Find errors only when no
// chain could be queried successfully.
func (p *Provider) Find(ctx context.Context, center domain.Coordinates, radiusMeters int) ([]domain.RawPlace, error) {
	var (
		places  []domain.RawPlace
		failed  int
		lastErr error
	)

	chains := storeChains()
	for _, chain := range chains {
		results, err := p.searchChain(ctx, chain, center, radiusMeters)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("Chain search failed", "chain", chain.Chain, "error", err)
			failed++
			lastErr = err
			continue
		}
		places = append(places, results...)
	}

	if failed == len(chains) {
		return nil, fmt.Errorf("all chain searches failed: %w", lastErr)
	}
	return places, nil
}

// searchChain tries the chain's search terms in order and returns the first
// non-empty result set. ZERO_RESULTS is a valid answer, not an error.
func (p *Provider) searchChain(ctx context.Context, chain chainConfig, center domain.Coordinates, radiusMeters int) ([]domain.RawPlace, error) {
	for _, term := range chain.SearchTerms {
		results, err := p.nearbySearch(ctx, term, center, radiusMeters)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			continue
		}

		places := make([]domain.RawPlace, 0, len(results))
		for _, r := range results {
			if r.BusinessStatus == "CLOSED_PERMANENTLY" || r.BusinessStatus == "CLOSED_TEMPORARILY" {
				continue
			}
			place := domain.RawPlace{
				PlaceID:     r.PlaceID,
				Name:        r.Name,
				Address:     r.Vicinity,
				Coordinates: domain.Coordinates{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
				Category:    chain.Category,
				Icon:        chain.Icon,
				Rating:      r.Rating,
				RatingCount: r.UserRatingsTotal,
			}
			if r.OpeningHours != nil {
				place.OpenNow = r.OpeningHours.OpenNow
			}
			places = append(places, place)
		}
		return places, nil
	}
	return nil, nil
}

type placeResult struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	Vicinity         string  `json:"vicinity"`
	BusinessStatus   string  `json:"business_status"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	OpeningHours *struct {
		OpenNow bool `json:"open_now"`
	} `json:"opening_hours"`
}

func (p *Provider) nearbySearch(ctx context.Context, keyword string, center domain.Coordinates, radiusMeters int) ([]placeResult, error) {
	if !p.cb.TryAcquirePermit() {
		metrics.ProviderRequestsTotal.WithLabelValues("circuit_open").Inc()
		return nil, fmt.Errorf("places circuit breaker open: %w", circuitbreaker.ErrOpen)
	}

	query := url.Values{}
	query.Set("location", fmt.Sprintf("%f,%f", center.Lat, center.Lng))
	query.Set("radius", strconv.Itoa(radiusMeters))
	query.Set("keyword", keyword)
	query.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", p.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create places request: %w", err)
	}
	req.URL.RawQuery = query.Encode()

	resp, err := p.client.Do(req)
	if err != nil {
		p.cb.RecordError(err)
		metrics.ProviderRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to execute places request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("places api returned status %d", resp.StatusCode)
		p.cb.RecordError(err)
		metrics.ProviderRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	var body struct {
		Status  string        `json:"status"`
		Results []placeResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		p.cb.RecordError(err)
		metrics.ProviderRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode places response: %w", err)
	}

	if body.Status != "OK" && body.Status != "ZERO_RESULTS" {
		err := fmt.Errorf("places api status %s", body.Status)
		p.cb.RecordError(err)
		metrics.ProviderRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	p.cb.RecordSuccess()
	metrics.ProviderRequestsTotal.WithLabelValues("ok").Inc()
	return body.Results, nil
}
