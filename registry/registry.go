// Package registry implements the component catalog that magma models,
// tools, and prompts are registered into and discovered from.
//
// A Registry keeps one independent name → instance mapping per component
// kind. Names are unique within a mapping; re-registering a taken name is a
// hard failure, never a silent overwrite. Registries are constructed
// explicitly and handed to the owning orchestrator, so independent
// orchestrators (and tests) never share mutable catalog state.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Kind identifies one of the registry's independent component mappings.
type Kind string

const (
	KindModel  Kind = "model"
	KindTool   Kind = "tool"
	KindPrompt Kind = "prompt"
)

// DuplicateError reports a name collision within a single kind's mapping.
// Names are unique per kind, not across kinds: a model and a tool may share
// a name.
type DuplicateError struct {
	Kind Kind
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q is already registered", e.Kind, e.Name)
}

// Registry is an append-only catalog of named components. Apart from Clear,
// which exists for test isolation, entries are never removed or replaced.
//
// All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[Kind]map[string]any
}

// New creates an empty Registry with the three component mappings in place.
func New() *Registry {
	return &Registry{
		entries: map[Kind]map[string]any{
			KindModel:  {},
			KindTool:   {},
			KindPrompt: {},
		},
	}
}

// Add stores component under name in kind's mapping. It returns a
// *DuplicateError if the name is already taken there; the mapping is left
// unchanged in that case.
func (r *Registry) Add(kind Kind, name string, component any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.entries[kind]
	if !ok {
		m = make(map[string]any)
		r.entries[kind] = m
	}
	if _, exists := m[name]; exists {
		return &DuplicateError{Kind: kind, Name: name}
	}
	m[name] = component

	return nil
}

// View returns a snapshot of kind's mapping. The snapshot is detached from
// the registry: registrations made after the call do not show up in it, and
// it offers no way to mutate the registry.
func (r *Registry) View(kind Kind) View {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make(map[string]any, len(r.entries[kind]))
	for name, c := range r.entries[kind] {
		entries[name] = c
	}

	return View{entries: entries}
}

// Models is shorthand for View(KindModel).
func (r *Registry) Models() View { return r.View(KindModel) }

// Tools is shorthand for View(KindTool).
func (r *Registry) Tools() View { return r.View(KindTool) }

// Prompts is shorthand for View(KindPrompt).
func (r *Registry) Prompts() View { return r.View(KindPrompt) }

// Clear empties every mapping. It is idempotent and intended for test
// isolation, not for production lifecycles.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for kind := range r.entries {
		r.entries[kind] = make(map[string]any)
	}
}

// View is a read-only snapshot of one kind's mapping.
type View struct {
	entries map[string]any
}

// Get returns the component registered under name.
func (v View) Get(name string) (any, bool) {
	c, ok := v.entries[name]
	return c, ok
}

// Len returns the number of entries in the snapshot.
func (v View) Len() int { return len(v.entries) }

// Names returns the registered names in sorted order.
func (v View) Names() []string {
	names := make([]string, 0, len(v.entries))
	for name := range v.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
