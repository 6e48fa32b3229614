// Package presence maps user identities to their live connections. The
// registry is the sole owner of the membership sets; transports only
// call Register/Unregister around a connection's lifetime.
package presence

import (
	"sync"

	"github.com/someoxygen/chat-app/internal/domain"
)

// Conn is an opaque handle to one live client transport session. It is
// used only for push delivery and set membership; equality is pointer
// identity plus ID.
type Conn interface {
	// ID identifies the handle within a user's set.
	ID() string
	// Push enqueues an event for the client without blocking. An error
	// means the handle is dead and should be unregistered.
	Push(event string, msg *domain.Message) error
}

type Registry struct {
	mu    sync.RWMutex
	conns map[string]map[string]Conn // userID -> connID -> conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]map[string]Conn)}
}

// Register adds the handle to the user's live set. Re-registering the
// same handle is a no-op.
func (r *Registry) Register(userID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[userID]
	if !ok {
		set = make(map[string]Conn)
		r.conns[userID] = set
	}
	set[c.ID()] = c
}

// Unregister removes the handle. When the set empties the user is
// offline; absence is the signal, no event is raised.
func (r *Registry) Unregister(userID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[userID]
	if !ok {
		return
	}
	delete(set, c.ID())
	if len(set) == 0 {
		delete(r.conns, userID)
	}
}

// LiveConnections returns a point-in-time snapshot of the user's
// handles. A handle may close between snapshot and use; delivery to it
// must be treated as a no-op by the caller.
func (r *Registry) LiveConnections(userID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.conns[userID]
	out := make([]Conn, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// Online reports whether the user has at least one live handle.
func (r *Registry) Online(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID]) > 0
}
