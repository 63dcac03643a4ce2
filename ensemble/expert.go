// Package ensemble fans a routing decision out to the selected experts,
// validates and compares the surviving candidates, and resolves them into a
// single ensemble decision with calibrated confidence metrics.
package ensemble

import (
	"context"
	"sort"
	"sync"

	"github.com/BaSui01/coachflow/types"
)

// Expert is one specialized response-generation strategy. Generate must be
// safe to call concurrently with other experts and must honor the deadline on
// ctx.
type Expert interface {
	ID() types.ExpertID
	Generate(ctx context.Context, utterance string, rctx *types.RouterContext) (*types.CandidateResponse, error)
}

// Registry maps expert identifiers to implementations. Registration usually
// happens once at startup, but the registry is safe for concurrent use so
// experts can be swapped under test.
type Registry struct {
	mu      sync.RWMutex
	experts map[types.ExpertID]Expert
}

// NewRegistry creates a registry holding the given experts.
func NewRegistry(experts ...Expert) *Registry {
	r := &Registry{experts: make(map[types.ExpertID]Expert, len(experts))}
	for _, e := range experts {
		r.Register(e)
	}
	return r
}

// Register adds or replaces the expert under its own ID. Nil experts are
// ignored.
func (r *Registry) Register(e Expert) {
	if e == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.experts[e.ID()] = e
}

// Get returns the expert registered under id.
func (r *Registry) Get(id types.ExpertID) (Expert, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.experts[id]
	return e, ok
}

// IDs returns the registered expert identifiers in sorted order.
func (r *Registry) IDs() []types.ExpertID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ExpertID, 0, len(r.experts))
	for id := range r.experts {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
