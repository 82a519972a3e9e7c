package domain

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Candidate is a ranked venue produced by a store search. Candidates are
// ephemeral: produced fresh per search and identified by PlaceID for the
// lifetime of the session that received them.
type Candidate struct {
	PlaceID       string      `json:"place_id"`
	Name          string      `json:"name"`
	Address       string      `json:"address"`
	Coordinates   Coordinates `json:"coordinates"`
	DistanceMiles float64     `json:"distance"`
	Category      string      `json:"category"`
	Icon          string      `json:"icon"`
	Rating        float64     `json:"rating,omitempty"`
	RatingCount   int         `json:"rating_count,omitempty"`
	OpenNow       bool        `json:"open_now"`
	QualityScore  float64     `json:"quality_score"`
}

// RawPlace is a single venue as returned by a LocationProvider, before
// distance, scoring, and de-duplication.
type RawPlace struct {
	PlaceID     string
	Name        string
	Address     string
	Coordinates Coordinates
	Category    string
	Icon        string
	Rating      float64
	RatingCount int
	OpenNow     bool
}
