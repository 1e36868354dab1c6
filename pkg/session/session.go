// Package session tracks running and finished comparisons for the API server.
//
// A [Session] wraps one [crawl.Session] with a random ID and an expiry. The
// [Store] interface keeps sessions addressable between requests; the only
// implementation is [MemoryStore], since comparisons do not outlive the
// process.
//
// # Usage
//
//	store := session.NewMemoryStore()
//	go store.RunCleanup(ctx, time.Minute, logger)
//
//	sess := session.New(crawler.Start(ctx, "express", "4.17.1", "4.18.2"), session.DefaultTTL)
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, session.ErrNotFound) {
//	    // unknown or expired
//	}
//
// Removing a session, explicitly or through expiry, cancels its comparison.
//
// [crawl.Session]: github.com/matzehuels/stackdiff/pkg/crawl.Session
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stackdiff/pkg/crawl"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is the default lifetime of a comparison session.
const DefaultTTL = 30 * time.Minute

// Session is a comparison addressable by ID.
type Session struct {
	ID         string
	Comparison *crawl.Session
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// New wraps a comparison in a session with a fresh random ID.
func New(c *crawl.Session, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Session{
		ID:         uuid.NewString(),
		Comparison: c,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s.expiredAt(time.Now())
}

func (s *Session) expiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session doesn't exist and ErrExpired if it
	// has expired; expired sessions are removed.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session and cancels its comparison.
	// Returns ErrNotFound if the session doesn't exist.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and cancels their comparisons.
	Cleanup(ctx context.Context) error
}

// ValidID reports whether id has the form produced by [New].
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}
