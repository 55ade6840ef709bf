package server

import (
	"sync"

	"github.com/google/uuid"
)

// sessionStore keeps ephemeral sign-in state. Everything here is lost on
// restart; the harness never persists.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]Session)}
}

// NewID generates a random identifier.
func (s *sessionStore) NewID() string {
	return uuid.NewString()
}

// Save stores or replaces a session.
func (s *sessionStore) Save(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// Get retrieves a session by ID.
func (s *sessionStore) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete removes a session.
func (s *sessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
