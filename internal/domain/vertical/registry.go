package vertical

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/kailas-cloud/matchdex/internal/domain"
)

// Registry maps vertical names to scoring policies.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]ScoringPolicy
}

// NewRegistry creates a registry holding the given policies.
func NewRegistry(policies ...ScoringPolicy) *Registry {
	r := &Registry{policies: make(map[string]ScoringPolicy, len(policies))}
	for _, p := range policies {
		r.policies[p.Name()] = p
	}
	return r
}

// Register adds or replaces a policy.
func (r *Registry) Register(p ScoringPolicy) error {
	if p == nil || p.Name() == "" {
		return fmt.Errorf("policy name is required: %w", domain.ErrInvalidConfig)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[p.Name()] = p
	return nil
}

// Get returns the policy for name or ErrUnknownVertical.
func (r *Registry) Get(name string) (ScoringPolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("vertical %q: %w", name, domain.ErrUnknownVertical)
	}
	return p, nil
}

// Names returns registered vertical names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.policies))
}
