package server

import (
	"sync"

	"portfolio-stream/src/logger"
)

// -----------------------------------------------------------------------------
// Registry exclusively owns the live connection records. Every mutation is
// atomic with respect to the broadcast iteration and the union-of-symbols
// computation.
// -----------------------------------------------------------------------------

type Registry struct {
	clients map[string]*Client
	Logger  *logger.Logger
	mu      sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Register adds a record for the client.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	r.clients[c.ID()] = c
	count := len(r.clients)
	r.mu.Unlock()

	r.Logger.Info("Client %s registered (%d connected)", c.ID(), count)
}

// -----------------------------------------------------------------------------

// Unregister removes the record and releases the transport handle.
// Idempotent: unknown ids are no-ops.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	c, ok := r.clients[id]
	if ok {
		delete(r.clients, id)
	}
	count := len(r.clients)
	r.mu.Unlock()

	if !ok {
		return
	}

	c.close()
	r.Logger.Info("Client %s unregistered (%d connected)", id, count)
}

// -----------------------------------------------------------------------------

// Count returns the current number of live records.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// -----------------------------------------------------------------------------

// Snapshot returns the current records. Mutations after the call do not
// affect the returned slice, so broadcasts iterate a consistent view.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		list = append(list, c)
	}
	return list
}

// -----------------------------------------------------------------------------

// ForEach calls fn for every snapshotted record matching the predicate.
// A nil predicate matches everything.
func (r *Registry) ForEach(pred func(*Client) bool, fn func(*Client)) {
	for _, c := range r.Snapshot() {
		if pred == nil || pred(c) {
			fn(c)
		}
	}
}

// -----------------------------------------------------------------------------

// UnionSymbols computes the union of subscribed symbol keys across all
// records.
func (r *Registry) UnionSymbols() []string {
	union := make(map[string]struct{})
	for _, c := range r.Snapshot() {
		for _, key := range c.Symbols() {
			union[key] = struct{}{}
		}
	}

	keys := make([]string, 0, len(union))
	for key := range union {
		keys = append(keys, key)
	}
	return keys
}

// -----------------------------------------------------------------------------

// Shutdown terminates every connection and empties the registry.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*Client)
	r.mu.Unlock()

	for _, c := range clients {
		c.close()
	}

	if len(clients) > 0 {
		r.Logger.Info("Terminated %d connections on shutdown", len(clients))
	}
}
