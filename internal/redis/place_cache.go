package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ibrahimansoor/location-bot/internal/domain"
	"github.com/ibrahimansoor/location-bot/internal/metrics"
)

const (
	// placeCacheTTL keeps a result set around long enough for the same user
	// (and their neighbors) to search again without a fresh provider call.
	placeCacheTTL = 30 * time.Minute
	// emptyCacheTTL is shorter so an area with no stores recovers quickly
	// when a new one opens or the provider had a bad moment.
	emptyCacheTTL = 5 * time.Minute
)

// PlaceCache memoizes ranked search results in Redis. It implements
// domain.PlaceCache; all failures degrade to a cache miss.
type PlaceCache struct {
	rdb *goredis.Client
}

var _ domain.PlaceCache = (*PlaceCache)(nil)

// NewPlaceCache creates a place cache on top of the given client.
func NewPlaceCache(client *Client) *PlaceCache {
	return &PlaceCache{rdb: client.Underlying()}
}

// Get returns the cached candidates for this search, if present. An empty
// cached result set is a valid hit.
func (c *PlaceCache) Get(ctx context.Context, center domain.Coordinates, radiusMiles int) ([]domain.Candidate, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(center, radiusMiles)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		metrics.PlaceCacheTotal.WithLabelValues("error").Inc()
		slog.Warn("Place cache read failed", "error", err)
		return nil, false
	}

	var candidates []domain.Candidate
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		metrics.PlaceCacheTotal.WithLabelValues("error").Inc()
		slog.Warn("Place cache entry corrupt, ignoring", "error", err)
		return nil, false
	}
	return candidates, true
}

// Set stores the candidates for this search. Empty result sets are cached too,
// with a shorter TTL.
func (c *PlaceCache) Set(ctx context.Context, center domain.Coordinates, radiusMiles int, candidates []domain.Candidate) {
	if candidates == nil {
		candidates = []domain.Candidate{}
	}

	raw, err := json.Marshal(candidates)
	if err != nil {
		slog.Warn("Place cache encode failed", "error", err)
		return
	}

	ttl := placeCacheTTL
	if len(candidates) == 0 {
		ttl = emptyCacheTTL
	}

	if err := c.rdb.Set(ctx, cacheKey(center, radiusMiles), raw, ttl).Err(); err != nil {
		metrics.PlaceCacheTotal.WithLabelValues("error").Inc()
		slog.Warn("Place cache write failed", "error", err)
	}
}

// cacheKey buckets coordinates to 3 decimal places (~110m) so searches from
// the same parking lot share an entry.
func cacheKey(center domain.Coordinates, radiusMiles int) string {
	return fmt.Sprintf("stores:%.3f:%.3f:%d", center.Lat, center.Lng, radiusMiles)
}
