// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/invowk/rootindex/internal/dag"
	"github.com/invowk/rootindex/internal/trie"
	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/projectmodel"
	"github.com/invowk/rootindex/pkg/types"
)

// builder accumulates one snapshot. It is discarded after a single build.
type builder struct {
	snap   *Snapshot
	logger *log.Logger
}

func newBuilder(cs fspath.Case, generation uint64, logger *log.Logger) *builder {
	snap := emptySnapshot(cs)
	snap.generation = generation
	return &builder{snap: snap, logger: logger}
}

func (b *builder) snapshot() *Snapshot { return b.snap }

func (b *builder) build(ctx context.Context, in Input) error {
	p := in.Project
	b.snap.projectSdk = p.ProjectSdk

	for i, m := range p.Modules {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.addModule(i, m, in.Unloaded[m.Name])
	}

	for _, lib := range p.Libraries {
		if lib.Level == projectmodel.LevelModule {
			b.fail(projectmodel.LibraryRef(lib.Level, lib.Name), fspath.Path{},
				"module-level libraries must be declared on a module dependency")
			continue
		}
		b.addLibrary(projectmodel.LibraryRef(lib.Level, lib.Name), lib)
	}
	for i, m := range p.Modules {
		if entry := b.accepted(i, m.Name); entry == nil || entry.Unloaded {
			continue
		}
		for ref, lib := range m.ModuleLibraries() {
			b.addLibrary(ref, lib)
		}
	}
	for _, sdk := range p.Sdks {
		b.addSdk(sdk)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	b.addEdges()
	b.addOutputs(p)
	b.checkCycles()
	return nil
}

// accepted returns the entry built from the i-th declared module, or nil when
// that declaration was rejected.
func (b *builder) accepted(i int, name types.ModuleName) *ModuleEntry {
	entry, ok := b.snap.moduleIdx[name]
	if !ok || entry.Ordinal != i {
		return nil
	}
	return entry
}

func (b *builder) fail(entity projectmodel.EntityRef, root fspath.Path, reason string) {
	b.snap.errors = append(b.snap.errors, &projectmodel.ConfigurationError{
		Entity: entity,
		Root:   root,
		Reason: reason,
	})
}

// checkRoot reports why p cannot be used as a root, or "" when it can.
func checkRoot(p fspath.Path) string {
	switch {
	case p.IsZero():
		return "empty root path"
	case !p.IsAbs():
		return "root path must be absolute"
	default:
		return ""
	}
}

func (b *builder) addModule(ordinal int, m projectmodel.Module, unloaded bool) {
	ref := projectmodel.ModuleRef(m.Name)
	if err := m.Name.Validate(); err != nil {
		b.fail(ref, fspath.Path{}, err.Error())
		return
	}
	if _, dup := b.snap.moduleIdx[m.Name]; dup {
		b.fail(ref, fspath.Path{}, "duplicate module name")
		return
	}

	entry := &ModuleEntry{
		Name:         m.Name,
		Ordinal:      ordinal,
		Unloaded:     unloaded,
		Dependencies: slices.Clone(m.Dependencies),
	}
	b.snap.modules = append(b.snap.modules, entry)
	b.snap.moduleIdx[m.Name] = entry
	cs := b.snap.cs

	for _, cr := range m.ContentRoots {
		if reason := checkRoot(cr.Path); reason != "" {
			b.fail(ref, cr.Path, reason)
			continue
		}
		b.snap.trie.Insert(cr.Path, Marker{Kind: KindContent, Owner: ref, Index: len(entry.ContentRoots)})
		entry.ContentRoots = append(entry.ContentRoots, cr.Path)

		if unloaded {
			continue
		}
		for _, sr := range cr.SourceRoots {
			if reason := checkRoot(sr.Path); reason != "" {
				b.fail(ref, sr.Path, reason)
				continue
			}
			if !sr.Path.HasPrefix(cr.Path, cs) {
				b.fail(ref, sr.Path, "source root outside content root "+cr.Path.String())
				continue
			}
			if err := sr.PackagePrefix.Validate(); err != nil {
				b.fail(ref, sr.Path, err.Error())
				continue
			}
			b.snap.trie.Insert(sr.Path, Marker{Kind: KindSource, Owner: ref, Index: len(entry.SourceRoots)})
			entry.SourceRoots = append(entry.SourceRoots, SourceRootEntry{SourceRoot: sr, ContentRoot: cr.Path})
		}
		for _, ex := range cr.ExcludedRoots {
			if reason := checkRoot(ex); reason != "" {
				b.fail(ref, ex, reason)
				continue
			}
			if !ex.HasPrefix(cr.Path, cs) {
				b.fail(ref, ex, "excluded root outside content root "+cr.Path.String())
				continue
			}
			b.snap.trie.Insert(ex, Marker{Kind: KindExcluded, Owner: ref})
		}
	}
}

// addLibrary indexes lib under ref. Unnamed module-level libraries are
// identified by their owner and edge position instead of a name.
func (b *builder) addLibrary(ref projectmodel.EntityRef, lib projectmodel.Library) {
	if !ref.IsUnnamed() {
		if err := lib.Name.Validate(); err != nil {
			b.fail(ref, fspath.Path{}, err.Error())
			return
		}
	}
	if _, dup := b.snap.libraryIdx[ref.ID()]; dup {
		b.fail(ref, fspath.Path{}, "duplicate library")
		return
	}
	entry := &LibraryEntry{Ref: ref, Ordinal: len(b.snap.libraries), Exclude: lib.Exclude}
	entry.Classes = b.insertRoots(ref, lib.Classes, KindLibraryClasses)
	entry.Sources = b.insertRoots(ref, lib.Sources, KindLibrarySources)
	entry.Excluded = b.insertRoots(ref, lib.Excluded, KindLibraryExcluded)
	b.snap.libraries = append(b.snap.libraries, entry)
	b.snap.libraryIdx[ref.ID()] = entry
}

func (b *builder) addSdk(sdk projectmodel.Sdk) {
	ref := projectmodel.SdkRef(sdk.Name)
	if err := sdk.Name.Validate(); err != nil {
		b.fail(ref, fspath.Path{}, err.Error())
		return
	}
	if _, dup := b.snap.libraryIdx[ref.ID()]; dup {
		b.fail(ref, fspath.Path{}, "duplicate sdk")
		return
	}
	entry := &LibraryEntry{Ref: ref, Ordinal: len(b.snap.libraries)}
	entry.Classes = b.insertRoots(ref, sdk.Classes, KindSdkClasses)
	entry.Sources = b.insertRoots(ref, sdk.Sources, KindSdkSources)
	b.snap.libraries = append(b.snap.libraries, entry)
	b.snap.libraryIdx[ref.ID()] = entry
}

func (b *builder) insertRoots(ref projectmodel.EntityRef, roots []fspath.Path, kind RootKind) []fspath.Path {
	var accepted []fspath.Path
	for _, p := range roots {
		if reason := checkRoot(p); reason != "" {
			b.fail(ref, p, reason)
			continue
		}
		b.snap.trie.Insert(p, Marker{Kind: kind, Owner: ref})
		accepted = append(accepted, p)
	}
	return accepted
}

// addEdges fills the dependency graph. Edges whose target is not declared are
// left out so traversals never meet a dangling node.
func (b *builder) addEdges() {
	g := b.snap.graph
	for _, m := range b.snap.modules {
		g.AddNode(m.Ref().ID())
	}
	for _, m := range b.snap.modules {
		from := m.Ref().ID()
		for i, e := range m.Dependencies {
			target, ok := e.Target(m.Name, i, b.snap.projectSdk)
			if !ok {
				b.logger.Debug("edge without target", "module", m.Name, "index", i, "kind", e.Kind)
				continue
			}
			if !b.exists(target) {
				b.logger.Debug("dangling edge", "module", m.Name, "target", target.ID())
				continue
			}
			g.AddEdge(dag.Edge{
				From:     from,
				To:       target.ID(),
				Scope:    e.Scope,
				Exported: e.Exported,
				Index:    i,
			})
		}
	}
}

func (b *builder) exists(ref projectmodel.EntityRef) bool {
	if ref.Kind == projectmodel.EntityModule {
		_, ok := b.snap.moduleIdx[types.ModuleName(ref.Name)]
		return ok
	}
	_, ok := b.snap.libraryIdx[ref.ID()]
	return ok
}

// addOutputs excludes compiler output. The project output root is excluded
// for the module whose content holds it, or project-wide when no loaded
// content root holds it. Module outputs are excluded for their own module.
func (b *builder) addOutputs(p projectmodel.Project) {
	if !p.OutputPath.IsZero() {
		if reason := checkRoot(p.OutputPath); reason != "" {
			b.fail(projectmodel.EntityRef{}, p.OutputPath, "project output: "+reason)
		} else {
			b.snap.projectOutput = p.OutputPath
			b.snap.trie.Insert(p.OutputPath, Marker{Kind: KindOutput, Owner: b.contentOwner(p.OutputPath)})
		}
	}

	for i, m := range p.Modules {
		entry := b.accepted(i, m.Name)
		if entry == nil || entry.Unloaded || !m.Output.Exclude {
			continue
		}
		for _, dir := range m.OutputDirs(p.OutputPath) {
			if reason := checkRoot(dir); reason != "" {
				b.fail(entry.Ref(), dir, "output: "+reason)
				continue
			}
			owner := entry.Ref()
			if b.contentOwner(dir) == (projectmodel.EntityRef{}) {
				owner = projectmodel.EntityRef{}
			}
			b.snap.trie.Insert(dir, Marker{Kind: KindOutput, Owner: owner})
		}
	}
}

// contentOwner returns the loaded module with the deepest content root
// holding p, or the zero reference.
func (b *builder) contentOwner(p fspath.Path) projectmodel.EntityRef {
	var owner projectmodel.EntityRef
	for _, hit := range b.snap.trie.MarkersOnPathTo(p, trie.FamilyModule) {
		for _, mk := range hit.Markers {
			if mk.Kind != KindContent || b.snap.IsUnloaded(types.ModuleName(mk.Owner.Name)) {
				continue
			}
			owner = mk.Owner
			break
		}
	}
	return owner
}

func (b *builder) checkCycles() {
	modules := b.snap.graph.Subgraph(func(n string) bool {
		return strings.HasPrefix(n, "module:")
	})
	if _, err := modules.TopologicalSort(); err != nil {
		var cycleErr *dag.CycleError
		if errors.As(err, &cycleErr) {
			b.logger.Warn("module dependency cycle", "modules", cycleErr.Cycle)
		}
	}
}
