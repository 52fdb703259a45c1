package registry

import "sync"

// Registry maps a live connection id to the username it joined with.
// Uniqueness of usernames is enforced by the caller, not here.
type Registry struct {
	mu    sync.RWMutex
	names map[string]string
}

func New() *Registry {
	return &Registry{names: make(map[string]string)}
}

func (r *Registry) Set(connID, username string) {
	r.mu.Lock()
	r.names[connID] = username
	r.mu.Unlock()
}

func (r *Registry) Get(connID string) (string, bool) {
	r.mu.RLock()
	name, ok := r.names[connID]
	r.mu.RUnlock()
	return name, ok
}

// Remove is a no-op for unknown connection ids.
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	delete(r.names, connID)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
