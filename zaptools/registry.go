package zaptools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/jeeves-cluster-organization/zapcore/commbus"
)

// Registry holds Adapters keyed by their normalized Name. Registration
// is first-registered-wins: a later Register call for a name already
// present is a no-op, so canonical tools registered up front cannot be
// shadowed by a same-named tool discovered later from a less trusted
// endpoint. The collision is logged, not silently dropped.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]*Adapter
	byToolID map[string]*Adapter
	logger   commbus.BusLogger
}

// NewRegistry returns an empty Registry that logs duplicate
// registrations through the standard library logger.
func NewRegistry() *Registry {
	return NewRegistryWithLogger(nil)
}

// NewRegistryWithLogger returns an empty Registry that logs duplicate
// registrations through logger. A nil logger falls back to the
// package's default standard-library logger.
func NewRegistryWithLogger(logger commbus.BusLogger) *Registry {
	if logger == nil {
		logger = commbus.DefaultBusLogger()
	}
	return &Registry{
		adapters: make(map[string]*Adapter),
		byToolID: make(map[string]*Adapter),
		logger:   logger,
	}
}

// adapterForToolID returns the adapter previously memoized for toolID, if
// any, so repeated discovery of the same catalog tool reuses the same
// *Adapter instance instead of re-wrapping it.
func (r *Registry) adapterForToolID(toolID string) (*Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byToolID[toolID]
	return a, ok
}

// rememberToolAdapter memoizes adapter under toolID for future
// adapterForToolID lookups.
func (r *Registry) rememberToolAdapter(toolID string, adapter *Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byToolID[toolID] = adapter
}

// Register adds adapter under adapter.Name. It reports whether the
// adapter was newly registered; false means a prior registration for
// the same name already won and the collision was logged.
func (r *Registry) Register(adapter *Adapter) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.adapters[adapter.Name]; exists {
		r.logger.Warn("duplicate_tool_adapter_name",
			"name", adapter.Name, "existing_tool_id", existing.ToolID, "rejected_tool_id", adapter.ToolID)
		return false
	}
	r.adapters[adapter.Name] = adapter
	return true
}

// Get looks up an adapter by its normalized name.
func (r *Registry) Get(name string) (*Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns every registered adapter, sorted by name for stable
// iteration order.
func (r *Registry) List() []*Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Adapter, 0, len(names))
	for _, name := range names {
		out = append(out, r.adapters[name])
	}
	return out
}

// Invoke resolves name and runs it against rawArgs.
func (r *Registry) Invoke(ctx context.Context, name string, rawArgs json.RawMessage) (string, error) {
	adapter, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("zaptools: tool not found: %s", name)
	}
	return adapter.invoke(ctx, rawArgs)
}
