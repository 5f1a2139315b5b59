package session

import (
	"sync"

	"github.com/coverdash/coverdash-server/internal/errors"
)

// defaultMaxSessions bounds registry growth. Each new batch creates a
// session, so the cap only matters for long-running deployments.
const defaultMaxSessions = 256

// Registry is an in-memory session store keyed by session ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
}

// NewRegistry creates an empty registry. max <= 0 uses the default cap.
func NewRegistry(max int) *Registry {
	if max <= 0 {
		max = defaultMaxSessions
	}
	return &Registry{
		sessions: make(map[string]*Session),
		max:      max,
	}
}

// Put stores a session, evicting the oldest one when the cap is hit.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.sessions) >= r.max {
		r.evictOldestLocked()
	}
	r.sessions[s.ID] = s
}

// Get returns the session with the given ID.
func (r *Registry) Get(sessionID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, errors.NotFoundf("session %s not found", sessionID)
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown ID is not an error.
func (r *Registry) Delete(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Len returns the number of stored sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) evictOldestLocked() {
	var oldestID string
	for id, s := range r.sessions {
		if oldestID == "" || s.CreatedAt.Before(r.sessions[oldestID].CreatedAt) {
			oldestID = id
		}
	}
	if oldestID != "" {
		delete(r.sessions, oldestID)
	}
}
