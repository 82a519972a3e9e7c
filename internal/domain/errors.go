package domain

import "errors"

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionExpired      = errors.New("session expired")
	ErrUnknownCandidate    = errors.New("unknown candidate")
	ErrProviderUnavailable = errors.New("location provider unavailable")
	ErrSinkUnavailable     = errors.New("notification sink unavailable")
)

// RateLimitedError marks a sink failure caused by upstream rate limiting.
// Retrying callers should wait longer before a second attempt.
type RateLimitedError struct {
	Err error
}

func (e *RateLimitedError) Error() string { return e.Err.Error() }
func (e *RateLimitedError) Unwrap() error { return e.Err }
