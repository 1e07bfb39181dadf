package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/agentrouter/core"
)

// entry couples a descriptor with its implementation so both are swapped
// atomically on re-registration.
type entry struct {
	descriptor core.Descriptor
	agent      core.Agent
}

// Registry is a thread-safe mapping from normalized agent id to Agent. It is
// read-mostly after startup; registration and default designation are
// administrative operations.
type Registry struct {
	mu        sync.RWMutex
	entries   map[string]entry
	order     []string // insertion order of first registration, drives deterministic listings
	defaultID string
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// NormalizeID returns the canonical form of an agent id used as registry key.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Register adds or replaces the agent under the descriptor's normalized id.
// Re-registration with the same id overwrites without error (last write
// wins). The descriptor id must be non-empty and the implementation non-nil.
func (r *Registry) Register(desc core.Descriptor, impl core.Agent) error {
	id := NormalizeID(desc.ID)
	if id == "" {
		return fmt.Errorf("register: empty agent id")
	}
	if impl == nil {
		return fmt.Errorf("register %q: nil agent implementation", id)
	}
	desc.ID = id

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[id]; !exists {
		r.order = append(r.order, id)
	}
	r.entries[id] = entry{descriptor: desc, agent: impl}
	return nil
}

// Lookup returns the agent registered under id. It never falls back to the
// default agent; use Resolve for the routing path.
func (r *Registry) Lookup(id string) (core.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[NormalizeID(id)]; ok {
		return e.agent, nil
	}
	return nil, fmt.Errorf("lookup %q: %w", id, core.ErrAgentNotFound)
}

// Resolve returns the agent for id, falling back to the default agent when id
// is unregistered and a default is configured. The returned flag reports
// whether the fallback was taken, so callers can surface it explicitly.
func (r *Registry) Resolve(id string) (core.Agent, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[NormalizeID(id)]; ok {
		return e.agent, false, nil
	}
	if r.defaultID != "" {
		if e, ok := r.entries[r.defaultID]; ok {
			return e.agent, true, nil
		}
	}
	return nil, false, fmt.Errorf("resolve %q: %w", id, core.ErrAgentNotFound)
}

// SetDefault designates the agent used when classification is inconclusive.
// The id must already be registered.
func (r *Registry) SetDefault(id string) error {
	norm := NormalizeID(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[norm]; !ok {
		return fmt.Errorf("set default %q: %w", id, core.ErrAgentNotFound)
	}
	r.defaultID = norm
	return nil
}

// Default returns the configured default agent id, if any.
func (r *Registry) Default() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultID, r.defaultID != ""
}

// List returns a read-only snapshot of the registered descriptors keyed by id.
func (r *Registry) List() map[string]core.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]core.Descriptor, len(r.entries))
	for id, e := range r.entries {
		out[id] = e.descriptor
	}
	return out
}

// Descriptors returns the registered descriptors in first-registration order.
// The stable ordering keeps classifier prompts (and therefore tie-breaks)
// reproducible across calls.
func (r *Registry) Descriptors() []core.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Descriptor, 0, len(r.order))
	for _, id := range r.order {
		if e, ok := r.entries[id]; ok {
			out = append(out, e.descriptor)
		}
	}
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
