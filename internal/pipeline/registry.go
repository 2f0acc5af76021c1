package pipeline

import "sync"

// Registry holds traces that finished solving and are waiting for a
// human verdict. Traces live in memory only; an unjudged trace is
// simply discarded.
type Registry struct {
	mu      sync.Mutex
	pending map[string]*Trace
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[string]*Trace)}
}

// Put stores a trace awaiting feedback, keyed by its id.
func (r *Registry) Put(t *Trace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[t.ID] = t
}

// Get returns the pending trace with the given id, if any.
func (r *Registry) Get(id string) (*Trace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.pending[id]
	return t, ok
}

// Take removes and returns the pending trace with the given id.
func (r *Registry) Take(id string) (*Trace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	return t, ok
}

// Len returns the number of pending traces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
