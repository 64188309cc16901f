// Package registry keeps track of connected clients.
package registry

import (
	"sort"
	"sync"

	"github.com/forest33/sockserver/business/entity"
)

// Registry map of client ID to client record guarded by a RWMutex.
// Records are never copied, a pointer returned by Get stays valid after removal.
type Registry struct {
	clients map[string]*entity.Client
	mux     sync.RWMutex
}

func New() *Registry {
	return &Registry{
		clients: make(map[string]*entity.Client),
	}
}

func (r *Registry) Add(c *entity.Client) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if _, ok := r.clients[c.ID]; ok {
		return entity.ErrClientExists
	}
	r.clients[c.ID] = c
	return nil
}

func (r *Registry) Get(id string) (c *entity.Client, exists bool) {
	r.mux.RLock()
	c, exists = r.clients[id]
	r.mux.RUnlock()
	return
}

// RemoveConnection removes the record only if it still belongs to conn, so a
// late teardown can't drop a newer client that reused the same address.
func (r *Registry) RemoveConnection(conn entity.Connection) bool {
	r.mux.Lock()
	defer r.mux.Unlock()
	if c, ok := r.clients[conn.ID()]; ok && c.Conn == conn {
		delete(r.clients, conn.ID())
		return true
	}
	return false
}

// Range calls f for every client of a snapshot sorted by ID. The lock is not
// held while f runs.
func (r *Registry) Range(f func(c *entity.Client) bool) {
	for _, c := range r.Snapshot() {
		if !f(c) {
			return
		}
	}
}

func (r *Registry) Snapshot() []*entity.Client {
	r.mux.RLock()
	list := make([]*entity.Client, 0, len(r.clients))
	for _, c := range r.clients {
		list = append(list, c)
	}
	r.mux.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	return list
}

func (r *Registry) Len() int {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return len(r.clients)
}

// CloseAll closes every registered connection and empties the registry.
// Returns the number of closed connections.
func (r *Registry) CloseAll() int {
	r.mux.Lock()
	clients := r.clients
	r.clients = make(map[string]*entity.Client)
	r.mux.Unlock()

	for _, c := range clients {
		_ = c.Conn.Close()
	}

	return len(clients)
}
