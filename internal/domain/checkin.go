package domain

import "time"

// CheckIn is a user's confirmed selection of a candidate venue. Immutable once
// posted; a later check-in by the same user supersedes it rather than mutating it.
type CheckIn struct {
	UserID      string      `json:"user_id"`
	ChannelID   string      `json:"channel_id"`
	Place       Candidate   `json:"place"`
	Coordinates Coordinates `json:"coordinates"`
	Accuracy    float64     `json:"accuracy,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}
