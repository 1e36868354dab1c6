package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// MemoryStore is an in-memory [Store]. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if sess.expiredAt(s.now()) {
		s.remove(id)
		return nil, ErrExpired
	}
	return sess, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if !s.remove(id) {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	now := s.now()

	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if sess.expiredAt(now) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		cancelComparison(sess)
	}
	return nil
}

// Len returns the number of stored sessions, including expired ones that
// have not been cleaned up yet.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *MemoryStore) RunCleanup(ctx context.Context, interval time.Duration, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			before := s.Len()
			if err := s.Cleanup(ctx); err != nil {
				logger.Warn("session cleanup failed", "err", err)
				continue
			}
			if removed := before - s.Len(); removed > 0 {
				logger.Debug("expired sessions removed", "count", removed)
			}
		}
	}
}

func (s *MemoryStore) remove(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		cancelComparison(sess)
	}
	return ok
}

func cancelComparison(sess *Session) {
	if sess.Comparison != nil {
		sess.Comparison.Cancel()
	}
}
