package cart

import "sync"

// Registry tracks the live drafts by ID. A terminal usually has one, but
// parked orders each get their own draft.
type Registry struct {
	mu   sync.RWMutex
	byID map[string]*Draft
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Draft)}
}

func (r *Registry) Create(storeID int) *Draft {
	draft := NewDraft(storeID)
	r.mu.Lock()
	r.byID[draft.ID] = draft
	r.mu.Unlock()
	return draft
}

func (r *Registry) Get(id string) (*Draft, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	draft, ok := r.byID[id]
	return draft, ok
}

func (r *Registry) Discard(id string) {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}
