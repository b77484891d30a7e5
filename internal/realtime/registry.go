package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Registry tracks live connections and the rooms each one holds, so a
// disconnect can leave every room without the client asking.
type Registry struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*registryEntry
}

type registryEntry struct {
	conn  *Conn
	rooms map[uuid.UUID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]*registryEntry)}
}

// Register records a new connection. Registering twice is a no-op.
func (r *Registry) Register(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[c.ID()]; ok {
		return
	}
	r.conns[c.ID()] = &registryEntry{conn: c, rooms: make(map[uuid.UUID]struct{})}
}

// Track notes that the connection holds boardID. It returns false when the
// connection is unknown (already removed).
func (r *Registry) Track(connID, boardID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[connID]
	if !ok {
		return false
	}
	e.rooms[boardID] = struct{}{}
	return true
}

func (r *Registry) Untrack(connID, boardID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.conns[connID]; ok {
		delete(e.rooms, boardID)
	}
}

// Remove forgets the connection and returns the rooms it still held.
func (r *Registry) Remove(connID uuid.UUID) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[connID]
	if !ok {
		return nil
	}
	delete(r.conns, connID)
	return lo.Keys(e.rooms)
}

// Rooms returns the boards the connection currently holds.
func (r *Registry) Rooms(connID uuid.UUID) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[connID]
	if !ok {
		return nil
	}
	return lo.Keys(e.rooms)
}

func (r *Registry) Get(connID uuid.UUID) (*Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[connID]
	if !ok {
		return nil, false
	}
	return e.conn, true
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
