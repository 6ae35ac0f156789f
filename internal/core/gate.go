package core

import (
	"sync"
	"sync/atomic"
)

// Gate runs callbacks until it is closed. Once Close returns no callback
// starts. Close does not wait for a callback that is already running, which
// lets the callback itself call Close, so wrap the consumer call directly
// rather than work done before it.
type Gate struct {
	mu      sync.Mutex
	closed  atomic.Bool
	running atomic.Bool
}

// Run calls fn unless the gate is closed. Callbacks never overlap.
func (g *Gate) Run(fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed.Load() {
		return false
	}
	g.running.Store(true)
	defer g.running.Store(false)
	fn()
	return true
}

// Close stops the gate. A Run that has passed its closed check is waited
// for unless its callback is already running.
func (g *Gate) Close() {
	g.closed.Store(true)
	if g.running.Load() {
		return
	}
	g.mu.Lock()
	g.mu.Unlock()
}

func (g *Gate) Closed() bool {
	return g.closed.Load()
}
