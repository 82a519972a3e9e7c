// Package checkin coordinates the check-in state machine.
//
// For a given (user, channel) pair at most one notification message is live.
// Posting a new check-in reads-and-clears the previous message id, deletes the
// old message (failure tolerated), posts the replacement, and records its id.
// The read-clear-delete-post sequence runs inside a per-pair critical section
// so concurrent check-ins for the same user cannot double-delete or orphan a
// notification. Check-ins by different users proceed in parallel.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ibrahimansoor/location-bot/internal/domain"
	"github.com/ibrahimansoor/location-bot/internal/metrics"
	"github.com/ibrahimansoor/location-bot/internal/retry"
)

// Result is the outcome of a successful check-in.
type Result struct {
	CheckIn   domain.CheckIn `json:"checkin"`
	MessageID string         `json:"message_id"`
}

type Coordinator struct {
	sessions  domain.SessionStore
	sink      domain.NotificationSink
	clock     clockwork.Clock
	singleUse bool

	mu    sync.Mutex
	locks map[string]*pairLock
}

type pairLock struct {
	mu   sync.Mutex
	refs int
}

// NewCoordinator creates the coordinator. singleUse controls the session
// policy after a successful check-in: false leaves the session valid until TTL
// so the user can check in again (the default), true expires it immediately.
func NewCoordinator(sessions domain.SessionStore, sink domain.NotificationSink, clock clockwork.Clock, singleUse bool) *Coordinator {
	return &Coordinator{
		sessions:  sessions,
		sink:      sink,
		clock:     clock,
		singleUse: singleUse,
		locks:     make(map[string]*pairLock),
	}
}

// CheckIn validates the session, re-derives the selected candidate from the
// session's last search, and atomically replaces the user's current
// notification with a new one.
func (c *Coordinator) CheckIn(ctx context.Context, token, placeID string, coords domain.Coordinates, accuracy float64) (*Result, error) {
	sess, err := c.sessions.Validate(ctx, token)
	if err != nil {
		metrics.CheckInsTotal.WithLabelValues("invalid_session").Inc()
		return nil, err
	}

	// The client only echoes display data; the candidate itself must come from
	// the search this server performed for this session.
	place, err := c.sessions.Candidate(ctx, token, placeID)
	if err != nil {
		metrics.CheckInsTotal.WithLabelValues("unknown_candidate").Inc()
		return nil, err
	}

	unlock := c.lockPair(sess.UserID, sess.ChannelID)
	defer unlock()

	previous, err := c.sessions.RecordMessage(ctx, token, "")
	if err != nil {
		metrics.CheckInsTotal.WithLabelValues("invalid_session").Inc()
		return nil, err
	}

	if previous != "" {
		if err := c.sink.Delete(ctx, sess.ChannelID, previous); err != nil {
			// Tolerated: the message may already be gone or permissions revoked.
			// Never blocks the new check-in.
			metrics.NotificationDeleteFailures.Inc()
			slog.Warn("Failed to delete previous check-in notification",
				"user_id", sess.UserID,
				"channel_id", sess.ChannelID,
				"message_id", previous,
				"error", err,
			)
		}
	}

	messageID, err := c.post(ctx, sess.ChannelID, domain.Notification{
		UserID:        sess.UserID,
		VenueName:     place.Name,
		VenueAddress:  place.Address,
		DistanceMiles: place.DistanceMiles,
		Coordinates:   place.Coordinates,
		PlaceID:       place.PlaceID,
	})
	if err != nil {
		// The previous notification may already be deleted and is not
		// recreated. The session stays valid so the user can retry without
		// re-sharing their location.
		metrics.CheckInsTotal.WithLabelValues("sink_error").Inc()
		metrics.NotificationPostsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrSinkUnavailable, err)
	}
	metrics.NotificationPostsTotal.WithLabelValues("success").Inc()

	if _, err := c.sessions.RecordMessage(ctx, token, messageID); err != nil {
		// The message is posted either way; a session that expired mid-flight
		// just loses the replacement linkage.
		slog.Warn("Failed to record posted message id", "user_id", sess.UserID, "error", err)
	}

	if c.singleUse {
		if err := c.sessions.Expire(ctx, token); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			slog.Warn("Failed to expire single-use session", "user_id", sess.UserID, "error", err)
		}
	}

	metrics.CheckInsTotal.WithLabelValues("success").Inc()
	return &Result{
		MessageID: messageID,
		CheckIn: domain.CheckIn{
			UserID:      sess.UserID,
			ChannelID:   sess.ChannelID,
			Place:       place,
			Coordinates: coords,
			Accuracy:    accuracy,
			Timestamp:   c.clock.Now().UTC(),
		},
	}, nil
}

// post sends the notification with at most one automatic retry.
func (c *Coordinator) post(ctx context.Context, channelID string, n domain.Notification) (string, error) {
	policy := retry.Policy{
		MaxAttempts:      2,
		RateLimitBackoff: time.Second,
		OnRetry: func(attempt int, err error, _ time.Duration) {
			slog.Warn("Notification post failed, retrying", "attempt", attempt, "error", err)
		},
	}
	classify := func(err error) retry.Action {
		var rl *domain.RateLimitedError
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return retry.Stop
		case errors.As(err, &rl):
			return retry.RateLimited
		default:
			return retry.Transient
		}
	}

	return retry.Do(ctx, policy, classify, func() (string, error) {
		return c.sink.Post(ctx, channelID, n)
	})
}

// lockPair acquires the critical section for a (user, channel) pair. The
// returned function releases it and frees the lock entry once unused.
func (c *Coordinator) lockPair(userID, channelID string) func() {
	key := userID + ":" + channelID

	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &pairLock{}
		c.locks[key] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, key)
		}
		c.mu.Unlock()
	}
}
