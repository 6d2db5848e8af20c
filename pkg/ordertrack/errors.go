// Package ordertrack wires the record store client, the session context and
// the list engine into the application: mutation coordinators that own the
// collection state, the transient notice center, and the CLI that renders
// it all.
package ordertrack

import (
	"errors"
	"sync"
)

var (
	// ErrBusy means a mutation for the same record is already in flight.
	// The snapshot reports the record as busy so its controls render
	// disabled.
	ErrBusy = errors.New("a change to this record is already in flight")

	// ErrNoChanges means the submitted update matches the known record
	// field for field. No request is issued.
	ErrNoChanges = errors.New("no changes to save")

	// ErrNotPermitted means the current role lacks the capability for the
	// attempted action. No request is issued.
	ErrNotPermitted = errors.New("your role does not permit this action")
)

// Confirmer answers a yes/no question before a destructive action. A false
// answer aborts the action silently.
type Confirmer func(prompt string) bool

// ConfirmAll answers yes to everything; tests and --yes flags use it.
func ConfirmAll(string) bool { return true }

// inflight tracks which record keys have a mutation in progress.
type inflight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// begin claims key, reporting false when it is already claimed.
func (g *inflight) begin(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys == nil {
		g.keys = make(map[string]struct{})
	}
	if _, taken := g.keys[key]; taken {
		return false
	}
	g.keys[key] = struct{}{}
	return true
}

func (g *inflight) end(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
}

func (g *inflight) snapshot() map[string]bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]bool, len(g.keys))
	for k := range g.keys {
		out[k] = true
	}
	return out
}
