package editor

import (
	"sync"

	"github.com/google/uuid"
)

// Sessions keeps one editor session per open dashboard view.
type Sessions struct {
	store Store

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessions(store Store) *Sessions {
	return &Sessions{
		store:    store,
		sessions: make(map[string]*Session),
	}
}

// Open starts a new session with a generated id.
func (r *Sessions) Open() *Session {
	session := NewSession(uuid.New().String(), r.store)

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	return session
}

// Get returns the session with the given id.
func (r *Sessions) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]

	return session, ok
}

// Close forgets a session. It reports whether the session existed.
func (r *Sessions) Close(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[id]
	delete(r.sessions, id)

	return ok
}

func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
