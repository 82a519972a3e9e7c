// Package session implements the in-memory SessionStore.
//
// Expiry is lazy: expired sessions are dropped when accessed, so no sweeping
// goroutine is needed. All state is guarded by a single mutex; individual
// operations are short map manipulations.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ibrahimansoor/location-bot/internal/domain"
)

// tokenBytes is the raw entropy per token. 32 bytes, hex-encoded.
const tokenBytes = 32

const DefaultTTL = 15 * time.Minute

type entry struct {
	session    domain.Session
	candidates map[string]domain.Candidate
}

type Store struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu      sync.Mutex
	byToken map[string]*entry
	byPair  map[string]string // (user, channel) pair -> live token
}

var _ domain.SessionStore = (*Store)(nil)

func NewStore(clock clockwork.Clock, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		clock:   clock,
		ttl:     ttl,
		byToken: make(map[string]*entry),
		byPair:  make(map[string]string),
	}
}

func pairKey(userID, channelID string) string {
	return userID + ":" + channelID
}

// Create issues a fresh session for the pair. Any prior session for the same
// pair is superseded: its token validates as ErrSessionNotFound afterwards.
func (s *Store) Create(_ context.Context, userID, channelID string) (*domain.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.clock.Now()
	sess := domain.Session{
		Token:     token,
		UserID:    userID,
		ChannelID: channelID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pk := pairKey(userID, channelID)
	if old, ok := s.byPair[pk]; ok {
		delete(s.byToken, old)
	}
	s.byPair[pk] = token
	s.byToken[token] = &entry{session: sess}

	out := sess
	return &out, nil
}

// Validate looks up a token and checks expiry. It never mutates session state
// beyond dropping entries whose TTL has passed.
func (s *Store) Validate(_ context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(token)
	if err != nil {
		return nil, err
	}
	out := e.session
	return &out, nil
}

func (s *Store) Expire(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byToken[token]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.drop(e)
	return nil
}

// RecordMessage swaps the session's last message id and returns the value it
// replaced. The read and write happen under one lock so two concurrent callers
// can never observe the same previous id.
func (s *Store) RecordMessage(_ context.Context, token, messageID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(token)
	if err != nil {
		return "", err
	}
	previous := e.session.LastMessageID
	e.session.LastMessageID = messageID
	return previous, nil
}

func (s *Store) StoreCandidates(_ context.Context, token string, candidates []domain.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(token)
	if err != nil {
		return err
	}
	snapshot := make(map[string]domain.Candidate, len(candidates))
	for _, c := range candidates {
		snapshot[c.PlaceID] = c
	}
	e.candidates = snapshot
	return nil
}

func (s *Store) Candidate(_ context.Context, token, placeID string) (domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(token)
	if err != nil {
		return domain.Candidate{}, err
	}
	c, ok := e.candidates[placeID]
	if !ok {
		return domain.Candidate{}, domain.ErrUnknownCandidate
	}
	return c, nil
}

// lookup resolves a token, evicting it if expired. Caller must hold s.mu.
func (s *Store) lookup(token string) (*entry, error) {
	e, ok := s.byToken[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if s.clock.Now().After(e.session.ExpiresAt) {
		s.drop(e)
		return nil, domain.ErrSessionExpired
	}
	return e, nil
}

// drop removes an entry from both indexes. Caller must hold s.mu.
func (s *Store) drop(e *entry) {
	delete(s.byToken, e.session.Token)
	pk := pairKey(e.session.UserID, e.session.ChannelID)
	if s.byPair[pk] == e.session.Token {
		delete(s.byPair, pk)
	}
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
