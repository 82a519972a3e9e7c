package domain

import (
	"context"
	"time"
)

// Session binds a portal token to the chat user and channel that requested it.
// Exactly one session is live per (user, channel) pair: creating a new one
// supersedes the previous one for that pair.
type Session struct {
	Token         string    `json:"token"`
	UserID        string    `json:"user_id"`
	ChannelID     string    `json:"channel_id"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	LastMessageID string    `json:"last_message_id,omitempty"`
}

type SessionStore interface {
	// Session lifecycle

	Create(ctx context.Context, userID, channelID string) (*Session, error)
	Validate(ctx context.Context, token string) (*Session, error)
	Expire(ctx context.Context, token string) error

	// RecordMessage stores messageID as the session's last posted notification
	// and returns the value it replaced, atomically. An empty messageID clears
	// the field (read-and-clear).
	RecordMessage(ctx context.Context, token, messageID string) (previous string, err error)

	// Candidate snapshot

	// StoreCandidates remembers the session's most recent search results so a
	// later check-in can be re-derived server-side.
	StoreCandidates(ctx context.Context, token string, candidates []Candidate) error

	// Candidate resolves a place id against the session's last search snapshot.
	// Fails with ErrUnknownCandidate if the id was never offered to this session.
	Candidate(ctx context.Context, token, placeID string) (Candidate, error)
}
