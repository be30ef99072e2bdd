package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/millrace/flume/pkg/config"
)

// Registry maps domain ids to their runners.
type Registry struct {
	mu      sync.RWMutex
	runners map[string]Runner
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		runners: make(map[string]Runner),
	}
}

// Register adds a runner for a domain id.
// If the id is already registered, it is overwritten.
func (r *Registry) Register(id string, runner Runner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runners[id] = runner
}

// RegisterFunc is shorthand for Register with a RunnerFunc.
func (r *Registry) RegisterFunc(id string, fn func(ctx context.Context, cfg config.Domain) error) {
	r.Register(id, RunnerFunc(fn))
}

// Resolve looks up the runner for a domain id. An absent id yields a
// *NotFoundError, a nil registration an *InterfaceError.
func (r *Registry) Resolve(id string) (Runner, error) {
	r.mu.RLock()
	runner, ok := r.runners[id]
	r.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Domain: id}
	}
	if runner == nil {
		return nil, &InterfaceError{Domain: id, Reason: "registered runner is nil"}
	}
	return runner, nil
}

// IDs returns the registered domain ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.runners))
	for id := range r.runners {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate reports nil registrations, which would otherwise only surface at
// the first resolve of the affected domain.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var broken []string
	for id, runner := range r.runners {
		if runner == nil {
			broken = append(broken, id)
		}
	}
	if len(broken) == 0 {
		return nil
	}
	sort.Strings(broken)
	return fmt.Errorf("nil runners registered for: %s", strings.Join(broken, ", "))
}
