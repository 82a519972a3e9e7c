// Package locator ranks nearby venues for a geolocation sample.
//
// Each search queries the location provider once (retried at most once),
// de-duplicates the raw results, computes distance and a deterministic quality
// score, and returns candidates in a fully reproducible order. Searches are
// stateless and safe to run in parallel across users; identical concurrent
// queries are collapsed through singleflight.
package locator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ibrahimansoor/location-bot/internal/domain"
	"github.com/ibrahimansoor/location-bot/internal/metrics"
	"github.com/ibrahimansoor/location-bot/internal/retry"
)

const (
	// DefaultLimit is the number of candidates offered when the caller does not say.
	DefaultLimit = 8
	// MaxLimit bounds how many candidates a single search may return.
	MaxLimit = 25

	// duplicateProximityMeters collapses venues the provider lists twice under
	// different place ids.
	duplicateProximityMeters = 100
)

type Locator struct {
	provider domain.LocationProvider
	cache    domain.PlaceCache // nil when no cache is configured
	group    singleflight.Group
}

func New(provider domain.LocationProvider, cache domain.PlaceCache) *Locator {
	return &Locator{provider: provider, cache: cache}
}

// Search returns up to limit candidates within radiusMiles of center, ordered
// by distance ascending, quality score descending, then name. Zero matches is
// an empty slice, not an error.
func (l *Locator) Search(ctx context.Context, center domain.Coordinates, radiusMiles, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	start := time.Now()
	candidates, err := l.search(ctx, center, radiusMiles)
	metrics.SearchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, err
	case len(candidates) == 0:
		metrics.SearchesTotal.WithLabelValues("empty").Inc()
	default:
		metrics.SearchesTotal.WithLabelValues("success").Inc()
	}

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (l *Locator) search(ctx context.Context, center domain.Coordinates, radiusMiles int) ([]domain.Candidate, error) {
	if l.cache != nil {
		if cached, ok := l.cache.Get(ctx, center, radiusMiles); ok {
			metrics.PlaceCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.PlaceCacheTotal.WithLabelValues("miss").Inc()
	}

	key := searchKey(center, radiusMiles)
	v, err, _ := l.group.Do(key, func() (any, error) {
		raw, err := l.findOnce(ctx, center, radiusMiles)
		if err != nil {
			return nil, err
		}

		candidates := Rank(center, raw)
		if l.cache != nil {
			l.cache.Set(ctx, center, radiusMiles, candidates)
		}
		return candidates, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Candidate), nil
}

// findOnce calls the provider with at most one internal retry and no added
// backoff. Further retrying is the caller's decision.
func (l *Locator) findOnce(ctx context.Context, center domain.Coordinates, radiusMiles int) ([]domain.RawPlace, error) {
	policy := retry.Policy{
		MaxAttempts: 2,
		OnRetry: func(attempt int, err error, _ time.Duration) {
			slog.Warn("Store search failed, retrying", "attempt", attempt, "error", err)
		},
	}
	classify := func(err error) retry.Action {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return retry.Stop
		}
		return retry.Transient
	}

	radiusMeters := int(float64(radiusMiles) * metersPerMile)
	raw, err := retry.Do(ctx, policy, classify, func() ([]domain.RawPlace, error) {
		return l.provider.Find(ctx, center, radiusMeters)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	return raw, nil
}

// Rank turns raw provider places into scored, de-duplicated, deterministically
// ordered candidates.
func Rank(center domain.Coordinates, raw []domain.RawPlace) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(raw))
	for _, p := range raw {
		distance := DistanceMiles(center, p.Coordinates)
		candidates = append(candidates, domain.Candidate{
			PlaceID:       p.PlaceID,
			Name:          p.Name,
			Address:       p.Address,
			Coordinates:   p.Coordinates,
			DistanceMiles: distance,
			Category:      p.Category,
			Icon:          p.Icon,
			Rating:        p.Rating,
			RatingCount:   p.RatingCount,
			OpenNow:       p.OpenNow,
			QualityScore:  qualityScore(p.Rating, p.RatingCount, distance, p.OpenNow),
		})
	}

	candidates = dedupe(candidates)

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.DistanceMiles != b.DistanceMiles {
			return a.DistanceMiles < b.DistanceMiles
		}
		if a.QualityScore != b.QualityScore {
			return a.QualityScore > b.QualityScore
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PlaceID < b.PlaceID
	})

	return candidates
}

// dedupe removes duplicate venues: exact place_id repeats, then near-identical
// locations within duplicateProximityMeters where the preferred candidate wins.
func dedupe(candidates []domain.Candidate) []domain.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	unique := make([]domain.Candidate, 0, len(candidates))

	for _, c := range candidates {
		if _, dup := seen[c.PlaceID]; dup {
			continue
		}

		replaced := false
		drop := false
		for i, existing := range unique {
			meters := DistanceMiles(c.Coordinates, existing.Coordinates) * metersPerMile
			if meters >= duplicateProximityMeters {
				continue
			}
			if preferred(c, existing) {
				unique[i] = c
				replaced = true
			} else {
				drop = true
			}
			break
		}

		if !drop {
			seen[c.PlaceID] = struct{}{}
			if !replaced {
				unique = append(unique, c)
			}
		}
	}

	return unique
}

// preferred decides which of two near-identical venues survives dedupe: the
// higher quality score, with score ties broken by name then place id so the
// survivor never depends on input order.
func preferred(a, b domain.Candidate) bool {
	if a.QualityScore != b.QualityScore {
		return a.QualityScore > b.QualityScore
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.PlaceID < b.PlaceID
}

func searchKey(center domain.Coordinates, radiusMiles int) string {
	// 3 decimal places ~ 110m grid, enough to collapse concurrent repeats
	return fmt.Sprintf("%.3f:%.3f:%d", center.Lat, center.Lng, radiusMiles)
}
