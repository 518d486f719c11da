package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Harshitk-cp/coref/internal/belief"
)

// Session is a live belief state bound to a context set. Sessions hold
// in-memory lattice objects and are not persisted; they expire after
// inactivity.
type Session struct {
	ID           uuid.UUID
	ContextSetID uuid.UUID
	State        *belief.State
	CreatedAt    time.Time
	LastAccess   time.Time
}

// SessionStore is an in-memory session registry, safe for concurrent use.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]*Session)}
}

// Put registers a session.
func (s *SessionStore) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// Get returns the session and refreshes its last-access time.
func (s *SessionStore) Get(id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.LastAccess = time.Now().UTC()
	return sess, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// DeleteIdle evicts sessions whose last access is older than ttl and
// returns how many were removed.
func (s *SessionStore) DeleteIdle(ttl time.Duration) int {
	cutoff := time.Now().UTC().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastAccess.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
