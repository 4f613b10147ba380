package session

import (
	"errors"
	"sync"
)

// ErrSessionNotFound is returned when a registry lookup misses.
var ErrSessionNotFound = errors.New("session not found")

// Registry holds the live sessions for this process. Filter mutations and
// reads go through View/Update so a toggle never races a scoring pass.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Put registers a session, replacing any previous session with the same id.
func (r *Registry) Put(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = sess
}

// View calls fn with the session under a read lock. fn must not mutate
// the session.
func (r *Registry) View(id string, fn func(*Session) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	return fn(sess)
}

// Update calls fn with the session under the write lock.
func (r *Registry) Update(id string, fn func(*Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	return fn(sess)
}

// Remove drops a session from the registry.
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
