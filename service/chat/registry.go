package chat

import (
	"sync"
)

// Predicate selects connections from a snapshot.
type Predicate func(*Conn) bool

// All matches every connection.
func All(*Conn) bool { return true }

// InRoom matches connections currently present in roomID.
func InRoom(roomID int64) Predicate {
	return func(c *Conn) bool { return c.inRoomID(roomID) }
}

// OwnedBy matches every connection of userID.
func OwnedBy(userID int64) Predicate {
	return func(c *Conn) bool { return c.userID == userID }
}

// Or matches connections matched by any of ps.
func Or(ps ...Predicate) Predicate {
	return func(c *Conn) bool {
		for _, p := range ps {
			if p(c) {
				return true
			}
		}
		return false
	}
}

// Registry is the set of live connections of this gateway.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]*Conn
	byUser map[int64]map[string]*Conn
}

func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*Conn),
		byUser: make(map[int64]map[string]*Conn),
	}
}

func (r *Registry) Add(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.id] = c
	m := r.byUser[c.userID]
	if m == nil {
		m = make(map[string]*Conn)
		r.byUser[c.userID] = m
	}
	m[c.id] = c
}

// Remove drops c and reports whether it was registered.
func (r *Registry) Remove(c *Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[c.id]; !ok {
		return false
	}
	delete(r.byID, c.id)
	if m := r.byUser[c.userID]; m != nil {
		delete(m, c.id)
		if len(m) == 0 {
			delete(r.byUser, c.userID)
		}
	}
	return true
}

func (r *Registry) Get(id string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	return c, ok
}

// Snapshot copies the open connections matching p. A connection that started
// closing is left out even before Remove runs. The result is safe to use after
// the registry changes.
func (r *Registry) Snapshot(p Predicate) []*Conn {
	r.mu.RLock()
	all := make([]*Conn, 0, len(r.byID))
	for _, c := range r.byID {
		all = append(all, c)
	}
	r.mu.RUnlock()

	out := all[:0]
	for _, c := range all {
		if c.Closed() {
			continue
		}
		if p == nil || p(c) {
			out = append(out, c)
		}
	}
	return out
}

// ByUser returns the connections of userID.
func (r *Registry) ByUser(userID int64) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.byUser[userID]
	out := make([]*Conn, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Stats counts connections, distinct users and rooms with at least one
// present connection.
func (r *Registry) Stats() (conns, users, rooms int) {
	r.mu.RLock()
	conns, users = len(r.byID), len(r.byUser)
	r.mu.RUnlock()

	seen := make(map[int64]struct{})
	for _, c := range r.Snapshot(nil) {
		if id, ok := c.Room(); ok {
			seen[id] = struct{}{}
		}
	}
	return conns, users, len(seen)
}

// CloseAll asks every live connection to close with code.
func (r *Registry) CloseAll(code int, reason string) int {
	conns := r.Snapshot(nil)
	for _, c := range conns {
		c.CloseWith(code, reason)
	}
	return len(conns)
}
