package chat

import (
	"sync"
	"time"
)

// Store is a thread-safe in-memory session registry with TTL eviction.
// Sessions live for the process lifetime at most; nothing is persisted.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers and returns a new session seeded with the greeting turn.
func (s *Store) Create() *Session {
	sess := NewSession()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess
	return sess
}

// Get returns the session with the given ID, or nil.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup evicts sessions idle for longer than the TTL and reports how
// many were removed.
func (s *Store) Cleanup() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.UpdatedAt()) > s.ttl {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}
