package domain

import "context"

// Notification is the channel message representing a user's current check-in.
// At most one is live per (user, channel) pair at any time.
type Notification struct {
	UserID        string
	VenueName     string
	VenueAddress  string
	DistanceMiles float64
	Coordinates   Coordinates
	PlaceID       string
}

// NotificationSink posts and deletes the channel messages that represent
// check-ins. Transport (bot API, webhook) is an adapter concern.
type NotificationSink interface {
	Post(ctx context.Context, channelID string, n Notification) (messageID string, err error)
	Delete(ctx context.Context, channelID, messageID string) error
}
