package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Greeting seeds every new session's transcript. It is part of the
// displayed log and, being non-blank, is included in outbound history like
// any other turn.
const Greeting = "Ask me anything about the document!"

// Session is one user's process-lifetime transcript. The turn list is
// append-only; failed exchanges never touch it.
type Session struct {
	id string

	mu        sync.Mutex
	turns     []Turn
	createdAt time.Time
	updatedAt time.Time

	// exchange serializes model calls: one in-flight exchange per session.
	exchange sync.Mutex
}

func NewSession() *Session {
	now := time.Now()
	return &Session{
		id:        uuid.NewString(),
		turns:     []Turn{{Role: RoleAssistant, Content: Greeting}},
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() string { return s.id }

// Turns returns a copy of the transcript.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the current turn count.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// Append adds turns to the transcript.
func (s *Session) Append(turns ...Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turns...)
	s.updatedAt = time.Now()
}

// TryAcquire claims the session for one exchange. It returns false when a
// call is already outstanding; the caller must then reject or queue the new
// question.
func (s *Session) TryAcquire() bool {
	return s.exchange.TryLock()
}

// Release ends the exchange claimed by TryAcquire.
func (s *Session) Release() {
	s.exchange.Unlock()
}

// UpdatedAt reports the last transcript mutation, used for TTL eviction.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}
