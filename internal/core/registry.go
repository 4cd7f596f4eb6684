package core

import (
	"sync"

	"github.com/google/uuid"

	"pocket-wellness/internal/llm"
)

// Registry holds the live sessions, keyed by UUID. Sessions are independent
// of one another; the only shared state is the map itself. Each session has
// its own lock so one slow completion call never blocks other sessions.
type Registry struct {
	mu       sync.Mutex
	client   llm.Client
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session *Session
}

// NewRegistry constructs a registry whose sessions share the given
// completion client.
func NewRegistry(client llm.Client) *Registry {
	return &Registry{
		client:   client,
		sessions: make(map[string]*sessionEntry),
	}
}

// Create allocates a new session and returns its ID.
func (r *Registry) Create() string {
	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = &sessionEntry{session: NewSession(id, r.client)}
	r.mu.Unlock()
	return id
}

// With runs fn against the named session while holding its lock, so session
// events execute one at a time in arrival order. It returns
// ErrSessionNotFound for unknown IDs.
func (r *Registry) With(id string, fn func(*Session) error) error {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

// Remove drops a session from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
