package datasource

import "sync"

// ResourceState tracks the lifecycle of an async fetch backing a selector.
type ResourceState string

const (
	ResourceIdle    ResourceState = "idle"
	ResourceLoading ResourceState = "loading"
	ResourceLoaded  ResourceState = "loaded"
	ResourceError   ResourceState = "error"
)

// Resource holds an asynchronously loaded value together with its fetch
// state. Selector UIs render spinners/errors from the state and the last
// loaded value otherwise. Safe for concurrent use.
type Resource[T any] struct {
	mu    sync.RWMutex
	state ResourceState
	value T
	err   error
}

// NewResource returns a resource in the idle state.
func NewResource[T any]() *Resource[T] {
	return &Resource[T]{state: ResourceIdle}
}

// SetLoading marks the resource as in flight. A previously loaded value is
// retained so consumers can keep rendering stale data during a refresh.
func (r *Resource[T]) SetLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = ResourceLoading
	r.err = nil
}

// SetValue stores a successful result.
func (r *Resource[T]) SetValue(value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = ResourceLoaded
	r.value = value
	r.err = nil
}

// SetError records a failed fetch. The previous value is retained.
func (r *Resource[T]) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = ResourceError
	r.err = err
}

// State returns the current fetch state.
func (r *Resource[T]) State() ResourceState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Value returns the last loaded value and whether one has been stored.
func (r *Resource[T]) Value() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value, r.state == ResourceLoaded
}

// Err returns the error from the last failed fetch, if any.
func (r *Resource[T]) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}
