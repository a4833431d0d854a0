// Package admission serializes mint requests per signing identity. Two
// concurrent mints under one wallet would select overlapping UTxOs and race
// to a ledger-side double-spend rejection; the gate admits one at a time so
// the second request sees a fresh UTxO snapshot instead.
package admission

import (
	"context"
	"sync"
)

type Gate struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewGate() *Gate {
	return &Gate{locks: make(map[string]chan struct{})}
}

// Acquire blocks until the key is free or the context ends. The returned
// release function must be called exactly once.
func (g *Gate) Acquire(ctx context.Context, key string) (func(), error) {
	g.mu.Lock()
	ch, ok := g.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		g.locks[key] = ch
	}
	g.mu.Unlock()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() { <-ch })
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
