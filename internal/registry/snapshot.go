// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"slices"
	"strings"

	"github.com/invowk/rootindex/internal/dag"
	"github.com/invowk/rootindex/internal/trie"
	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/projectmodel"
	"github.com/invowk/rootindex/pkg/types"
)

type (
	// Snapshot is the immutable result of one rebuild. All accessors are safe
	// for concurrent use.
	Snapshot struct {
		generation    uint64
		cs            fspath.Case
		trie          *trie.Trie[Marker]
		graph         *dag.Graph
		modules       []*ModuleEntry
		moduleIdx     map[types.ModuleName]*ModuleEntry
		libraries     []*LibraryEntry
		libraryIdx    map[string]*LibraryEntry
		projectSdk    types.SdkName
		projectOutput fspath.Path
		errors        []*projectmodel.ConfigurationError
	}

	// ModuleEntry is the indexed view of one module. Entries are shared by
	// every reader of the snapshot; callers must not modify them or the
	// slices they hold.
	ModuleEntry struct {
		Name types.ModuleName
		// Ordinal is the module's position in the project declaration order.
		Ordinal  int
		Unloaded bool
		// ContentRoots lists the accepted content roots. Unloaded modules keep
		// only these.
		ContentRoots []fspath.Path
		SourceRoots  []SourceRootEntry
		// Dependencies is the declared dependency list, dangling edges included.
		Dependencies []projectmodel.DependencyEdge
	}

	// SourceRootEntry is an accepted source root and its content root.
	SourceRootEntry struct {
		projectmodel.SourceRoot
		ContentRoot fspath.Path
	}

	// LibraryEntry is the indexed view of one library or SDK. Like
	// ModuleEntry it is read-only.
	LibraryEntry struct {
		Ref projectmodel.EntityRef
		// Ordinal is the declaration position among libraries and SDKs.
		Ordinal  int
		Classes  []fspath.Path
		Sources  []fspath.Path
		Excluded []fspath.Path
		// Exclude is evaluated lazily by the resolver. Nil means none.
		Exclude projectmodel.ExclusionPredicate
	}
)

// Generation returns the rebuild counter value that produced the snapshot.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Case returns the path case sensitivity of the snapshot.
func (s *Snapshot) Case() fspath.Case { return s.cs }

// MarkersOnPathTo returns the root markers found on p and its ancestors,
// root-first.
func (s *Snapshot) MarkersOnPathTo(p fspath.Path, families trie.Family) []trie.Hit[Marker] {
	return s.trie.MarkersOnPathTo(p, families)
}

// MarkersAt returns the markers stored exactly on p.
func (s *Snapshot) MarkersAt(p fspath.Path, families trie.Family) []Marker {
	return s.trie.MarkersAt(p, families)
}

// RootCount returns the number of markers in the trie.
func (s *Snapshot) RootCount() int { return s.trie.Len() }

// Graph returns the dependency graph. It covers loaded and unloaded modules.
func (s *Snapshot) Graph() *dag.Graph { return s.graph }

// Modules returns every module in declaration order. The slice is a copy;
// the entries are shared.
func (s *Snapshot) Modules() []*ModuleEntry { return slices.Clone(s.modules) }

// Module returns the module named name.
func (s *Snapshot) Module(name types.ModuleName) (*ModuleEntry, bool) {
	m, ok := s.moduleIdx[name]
	return m, ok
}

// ModuleForNode returns the module behind a graph node identifier.
func (s *Snapshot) ModuleForNode(id string) (*ModuleEntry, bool) {
	name, ok := strings.CutPrefix(id, "module:")
	if !ok {
		return nil, false
	}
	return s.Module(types.ModuleName(name))
}

// IsUnloaded reports whether name is a declared, unloaded module.
func (s *Snapshot) IsUnloaded(name types.ModuleName) bool {
	m, ok := s.moduleIdx[name]
	return ok && m.Unloaded
}

// Libraries returns every library and SDK in declaration order. The slice is
// a copy; the entries are shared.
func (s *Snapshot) Libraries() []*LibraryEntry { return slices.Clone(s.libraries) }

// Library returns the library or SDK identified by ref.
func (s *Snapshot) Library(ref projectmodel.EntityRef) (*LibraryEntry, bool) {
	l, ok := s.libraryIdx[ref.ID()]
	return l, ok
}

// ProjectSdk returns the SDK inherited by modules without their own.
func (s *Snapshot) ProjectSdk() types.SdkName { return s.projectSdk }

// ProjectOutput returns the project compiler output root, or the zero Path.
func (s *Snapshot) ProjectOutput() fspath.Path { return s.projectOutput }

// ConfigurationErrors returns the problems found while building the snapshot.
func (s *Snapshot) ConfigurationErrors() []*projectmodel.ConfigurationError {
	return slices.Clone(s.errors)
}

// IndexableRoots returns every root iteration starts from: content roots of
// loaded modules followed by library and SDK classes and sources roots.
func (s *Snapshot) IndexableRoots() []fspath.Path {
	var roots []fspath.Path
	for _, m := range s.modules {
		if !m.Unloaded {
			roots = append(roots, m.ContentRoots...)
		}
	}
	for _, l := range s.libraries {
		roots = append(roots, l.Classes...)
		roots = append(roots, l.Sources...)
	}
	return roots
}

// Ref returns the entity reference of the module.
func (m *ModuleEntry) Ref() projectmodel.EntityRef { return projectmodel.ModuleRef(m.Name) }

// IsSdk reports whether the entry is an SDK.
func (l *LibraryEntry) IsSdk() bool { return l.Ref.Kind == projectmodel.EntitySdk }
