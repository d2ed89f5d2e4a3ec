package reconcile

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Group collapses concurrent runs that share a key into one, and keeps the
// result of a finished run for a TTL. A zero TTL disables caching, so only
// runs that overlap in time are shared.
type Group[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]entry[V]
	sf      singleflight.Group
}

type entry[V any] struct {
	value V
	built time.Time
}

// NewGroup creates a group.
func NewGroup[V any](ttl time.Duration) *Group[V] {
	return &Group[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[V]),
	}
}

func (g *Group[V]) fresh(key string) (V, bool) {
	g.mu.RLock()
	e, ok := g.entries[key]
	g.mu.RUnlock()

	if !ok || g.ttl <= 0 || g.now().Sub(e.built) > g.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Do runs fn once for all concurrent callers with the same key. shared is true
// when the value came from another caller's run or from the cache. Failed runs
// are not cached; the value fn returned with the error is passed through.
func (g *Group[V]) Do(key string, fn func() (V, error)) (value V, shared bool, err error) {
	// Fast path: check if a result exists and is fresh
	if v, ok := g.fresh(key); ok {
		return v, true, nil
	}

	result, err, shared := g.sf.Do(key, func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		if v, ok := g.fresh(key); ok {
			return v, nil
		}

		v, err := fn()
		if err != nil {
			return v, err
		}

		if g.ttl > 0 {
			g.mu.Lock()
			g.entries[key] = entry[V]{value: v, built: g.now()}
			g.mu.Unlock()
		}
		return v, nil
	})
	v, _ := result.(V)
	return v, shared, err
}

// Forget drops the cached result for key.
func (g *Group[V]) Forget(key string) {
	g.mu.Lock()
	delete(g.entries, key)
	g.mu.Unlock()
	g.sf.Forget(key)
}
