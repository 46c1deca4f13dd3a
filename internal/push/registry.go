// Package push delivers best-effort live notifications to connected clients.
// Events are at-most-once: a user with no registered connection simply does
// not receive them, and a broken connection never fails the business
// operation that triggered the event.
package push

import (
	"sync"
	"time"
)

// Conn is the transport handle the registry holds per user. *websocket.Conn
// wrapped with a write lock satisfies it; tests use fakes.
type Conn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Registry maps a user login to at most one live connection.
// Last registration wins, so a reconnecting client displaces its old socket.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]Conn),
	}
}

func (r *Registry) Register(login string, conn Conn) {
	r.mu.Lock()
	prev := r.conns[login]
	r.conns[login] = conn
	r.mu.Unlock()

	if prev != nil && prev != conn {
		prev.Close()
	}
}

// Unregister removes the mapping, idempotent if absent.
func (r *Registry) Unregister(login string) {
	r.mu.Lock()
	delete(r.conns, login)
	r.mu.Unlock()
}

// UnregisterConn removes the mapping only if it still points at conn,
// so a stale socket closing does not evict its replacement.
func (r *Registry) UnregisterConn(login string, conn Conn) {
	r.mu.Lock()
	if r.conns[login] == conn {
		delete(r.conns, login)
	}
	r.mu.Unlock()
}

func (r *Registry) Lookup(login string) (Conn, bool) {
	r.mu.RLock()
	conn, ok := r.conns[login]
	r.mu.RUnlock()
	return conn, ok
}

// Close drops all registrations and closes the connections.
func (r *Registry) Close() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]Conn)
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}
