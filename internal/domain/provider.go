package domain

import "context"

// LocationProvider is the external location-search capability. The provider's
// wire format is its own business; the core only depends on the RawPlace fields.
type LocationProvider interface {
	Find(ctx context.Context, center Coordinates, radiusMeters int) ([]RawPlace, error)
}

// PlaceCache optionally memoizes provider results for nearby repeat searches.
// A cache miss is never an error.
type PlaceCache interface {
	Get(ctx context.Context, center Coordinates, radiusMiles int) ([]Candidate, bool)
	Set(ctx context.Context, center Coordinates, radiusMiles int, candidates []Candidate)
}
