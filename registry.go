package cloak

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// Registry maps strategy names to strategies.
//
// Reads take a snapshot without locking; writers copy the current map,
// modify the copy and publish it. A registration therefore never disturbs
// a traversal that is already running.
type Registry struct {
	mu         sync.Mutex
	strategies atomic.Pointer[map[string]Strategy]
}

// NewRegistry returns a registry holding the given strategies.
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{}
	m := make(map[string]Strategy, len(strategies))
	for _, s := range strategies {
		if s == nil || s.Name() == "" {
			continue
		}
		m[s.Name()] = s
	}
	r.strategies.Store(&m)
	return r
}

// NewBuiltinRegistry returns a registry seeded with every built-in strategy
// and the legacy ID_CAR alias.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry(Builtins()...)
	r.Alias(StrategyIDCar, StrategyIDCard)
	return r
}

// Register adds s under s.Name(). The last registration for a name wins.
// Nil strategies and strategies without a name are ignored.
func (r *Registry) Register(s Strategy) *Registry {
	if s == nil || s.Name() == "" {
		return r
	}
	r.update(func(m map[string]Strategy) {
		m[s.Name()] = s
	})
	emitStrategyRegistered(context.Background(), s.Name())
	return r
}

// Alias registers the strategy currently held under target as alias.
// Returns false when target is not registered.
func (r *Registry) Alias(alias, target string) bool {
	s, ok := r.Get(target)
	if !ok || alias == "" {
		return false
	}
	r.Register(&aliasStrategy{name: alias, target: s})
	return true
}

// Unregister removes the strategy held under name, if any.
func (r *Registry) Unregister(name string) *Registry {
	r.update(func(m map[string]Strategy) {
		delete(m, name)
	})
	return r
}

// Get returns the strategy registered under name.
// An absent name is a normal outcome, not an error.
func (r *Registry) Get(name string) (Strategy, bool) {
	m := r.strategies.Load()
	if m == nil {
		return nil, false
	}
	s, ok := (*m)[name]
	return s, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	m := r.strategies.Load()
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(*m))
	for name := range *m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	m := r.strategies.Load()
	if m == nil {
		return 0
	}
	return len(*m)
}

func (r *Registry) update(fn func(map[string]Strategy)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.strategies.Load()
	next := make(map[string]Strategy)
	if current != nil {
		next = make(map[string]Strategy, len(*current)+1)
		for k, v := range *current {
			next[k] = v
		}
	}
	fn(next)
	r.strategies.Store(&next)
}

var defaultRegistry = NewBuiltinRegistry()

// DefaultRegistry returns the process-wide registry used by engines that
// were not given one explicitly.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds s to the process-wide registry.
func Register(s Strategy) {
	defaultRegistry.Register(s)
}

// LookupStrategy returns the strategy registered under name in the
// process-wide registry.
func LookupStrategy(name string) (Strategy, bool) {
	return defaultRegistry.Get(name)
}
