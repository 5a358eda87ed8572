package memory

import (
	"context"
	"sync"

	"ffbot/internal/domain"
)

// SessionRepo implements repository.SessionRepository in process memory
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[int64]domain.Session
}

// NewSessionRepo creates an empty session store
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[int64]domain.Session)}
}

// Get returns a copy of the user's session
func (r *SessionRepo) Get(_ context.Context, userID int64) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[userID]
	if !ok {
		return &domain.Session{}, nil
	}
	return &s, nil
}

// Save overwrites the user's session
func (r *SessionRepo) Save(_ context.Context, userID int64, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.Idle() {
		delete(r.sessions, userID)
		return nil
	}
	r.sessions[userID] = *s
	return nil
}

// Clear drops the user's session
func (r *SessionRepo) Clear(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	return nil
}

// Len returns the number of active sessions
func (r *SessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
