package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionTTL bounds how long an abandoned study or quiz session is kept.
const sessionTTL = 12 * time.Hour

type storedSession[T any] struct {
	value     T
	createdAt time.Time
}

// sessionStore keeps live sessions in memory, keyed by a random UUID.
type sessionStore[T any] struct {
	mu       sync.Mutex
	sessions map[string]storedSession[T]
}

func newSessionStore[T any]() *sessionStore[T] {
	return &sessionStore[T]{sessions: make(map[string]storedSession[T])}
}

// add stores v and drops sessions older than sessionTTL.
func (s *sessionStore[T]) add(v T, now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, st := range s.sessions {
		if now.Sub(st.createdAt) > sessionTTL {
			delete(s.sessions, id)
		}
	}
	id := uuid.NewString()
	s.sessions[id] = storedSession[T]{value: v, createdAt: now}
	return id
}

func (s *sessionStore[T]) get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[id]
	return st.value, ok
}

func (s *sessionStore[T]) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
