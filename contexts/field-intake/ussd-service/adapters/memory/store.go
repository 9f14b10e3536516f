package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"tallyroom/contexts/field-intake/ussd-service/domain/entities"
)

// Store is an in-memory session store for tests and local runs. Expired
// sessions are returned as-is; the engine decides what expiry means.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entities.Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]entities.Session)}
}

func (s *Store) GetSession(_ context.Context, sessionID string) (entities.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	return session, ok, nil
}

func (s *Store) SaveSession(_ context.Context, session entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[strings.TrimSpace(session.SessionID)] = session
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
