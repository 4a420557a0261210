package session

import (
	"sync"
	"time"
)

// Registry holds live sessions by ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

type entry struct {
	session  *Session
	lastUsed time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Add registers s under its ID.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = &entry{session: s, lastUsed: r.now()}
}

// Get returns the session with id, or ErrNotFound.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastUsed = r.now()
	return e.session, nil
}

// Remove drops the session with id. Unknown IDs are ignored.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Expire removes sessions not used within ttl and returns how many
// were removed.
func (r *Registry) Expire(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-ttl)
	n := 0
	for id, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
