// SPDX-License-Identifier: MPL-2.0

// Package unloaded tracks the modules a project keeps out of its live model.
// Unloaded modules stay declared: their content roots are still indexed so
// their files classify as belonging to an unloaded module, and their
// dependency edges stay in the graph so loaded modules can learn which
// unloaded modules still need them.
package unloaded

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/exp/maps"

	"github.com/invowk/rootindex/internal/dag"
	"github.com/invowk/rootindex/internal/registry"
	"github.com/invowk/rootindex/pkg/projectmodel"
	"github.com/invowk/rootindex/pkg/types"
)

type (
	// RebuildFunc is called after the unloaded set changed.
	RebuildFunc func(ctx context.Context) error

	// Registry holds the current unloaded set. It is safe for concurrent use.
	Registry struct {
		mu      sync.RWMutex
		names   map[types.ModuleName]bool
		rebuild RebuildFunc
	}
)

// New creates an empty Registry. rebuild may be nil.
func New(rebuild RebuildFunc) *Registry {
	return &Registry{names: make(map[types.ModuleName]bool), rebuild: rebuild}
}

// Seed adds every module flagged as unloaded in project. It does not
// trigger a rebuild.
func (r *Registry) Seed(project projectmodel.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range project.Modules {
		if m.Unloaded {
			r.names[m.Name] = true
		}
	}
}

// SetUnloaded replaces the unloaded set with names and rebuilds the index.
// Names are validated before anything changes. Setting the same set again
// skips the rebuild.
func (r *Registry) SetUnloaded(ctx context.Context, names []types.ModuleName) error {
	next := make(map[types.ModuleName]bool, len(names))
	for _, name := range names {
		if err := name.Validate(); err != nil {
			return fmt.Errorf("set unloaded modules: %w", err)
		}
		next[name] = true
	}

	r.mu.Lock()
	if maps.Equal(r.names, next) {
		r.mu.Unlock()
		return nil
	}
	r.names = next
	r.mu.Unlock()

	if r.rebuild == nil {
		return nil
	}
	return r.rebuild(ctx)
}

// IsUnloaded reports whether name is in the unloaded set.
func (r *Registry) IsUnloaded(name types.ModuleName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names[name]
}

// Names returns the unloaded modules in sorted order.
func (r *Registry) Names() []types.ModuleName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := maps.Keys(r.names)
	slices.Sort(names)
	return names
}

// Set returns a copy of the unloaded set, ready for registry.Input.
func (r *Registry) Set() map[types.ModuleName]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.names)
}

// DependentUnloadedModules returns the unloaded modules that depend on
// module in snap, directly or through exported module edges, in sorted order.
// Propagation follows the same rule as order entries: a dependent is always
// reported, and its own dependents are reached only through an exported edge.
func DependentUnloadedModules(snap *registry.Snapshot, module types.ModuleName) []types.ModuleName {
	if _, ok := snap.Module(module); !ok {
		return nil
	}

	seen := make(map[types.ModuleName]bool)
	follow := func(e dag.Edge) bool { return e.Exported }
	snap.Graph().WalkDependents(projectmodel.ModuleRef(module).ID(), follow, func(e dag.Edge) {
		m, ok := snap.ModuleForNode(e.From)
		if ok && m.Unloaded && m.Name != module {
			seen[m.Name] = true
		}
	})

	names := maps.Keys(seen)
	slices.Sort(names)
	return names
}
