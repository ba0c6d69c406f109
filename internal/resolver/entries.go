// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"cmp"
	"slices"

	"github.com/invowk/rootindex/internal/dag"
	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/projectmodel"
)

// OrderEntriesFor returns the order entries through which modules see p.
// Excluded, unloaded and out-of-project paths have none.
//
// A path in module source yields the module's own source entry. Every
// library or SDK that sees the path yields one entry per module reaching it:
// its direct dependents, plus modules that reach a dependent through exported
// module edges. Entries are grouped by owner in declaration order.
func (r *Resolver) OrderEntriesFor(p fspath.Path) []projectmodel.OrderEntry {
	res := r.resolve(p)
	if !isVisible(res) {
		return nil
	}

	var entries []projectmodel.OrderEntry
	if c, ok := res.class.(InProject); ok && c.InSource {
		m := res.module.module
		entries = append(entries, projectmodel.OrderEntry{
			Owner:    m.Name,
			Kind:     projectmodel.EntryModuleSource,
			Target:   m.Ref(),
			Position: len(m.Dependencies),
		})
		if r.opts.ModuleDependentEntries {
			entries = append(entries, r.dependentEntries(m.Ref())...)
		}
	}
	for _, h := range res.libs {
		entries = append(entries, r.dependentEntries(h.entry.Ref)...)
	}
	return r.sortEntries(dedupEntries(entries))
}

// dependentEntries walks the graph backwards from target. Unloaded modules
// neither own entries nor propagate visibility.
func (r *Resolver) dependentEntries(target projectmodel.EntityRef) []projectmodel.OrderEntry {
	var entries []projectmodel.OrderEntry
	id := target.ID()
	graph := r.snap.Graph()

	follow := func(e dag.Edge) bool {
		m, ok := r.snap.ModuleForNode(e.From)
		return ok && !m.Unloaded && e.Exported
	}
	graph.WalkDependents(id, follow, func(e dag.Edge) {
		owner, ok := r.snap.ModuleForNode(e.From)
		if !ok || owner.Unloaded {
			return
		}
		entry := projectmodel.OrderEntry{
			Owner:    owner.Name,
			Scope:    e.Scope,
			Exported: e.Exported,
			Position: e.Index,
		}
		if e.To == id {
			entry.Kind = entryKind(target)
			entry.Target = target
		} else {
			via, found := r.snap.ModuleForNode(e.To)
			if !found {
				return
			}
			entry.Kind = projectmodel.EntryModule
			entry.Target = via.Ref()
		}
		entries = append(entries, entry)
	})
	return entries
}

func entryKind(ref projectmodel.EntityRef) projectmodel.OrderEntryKind {
	switch ref.Kind {
	case projectmodel.EntitySdk:
		return projectmodel.EntrySdk
	case projectmodel.EntityModule:
		return projectmodel.EntryModule
	default:
		return projectmodel.EntryLibrary
	}
}

func dedupEntries(entries []projectmodel.OrderEntry) []projectmodel.OrderEntry {
	type key struct {
		owner  string
		kind   projectmodel.OrderEntryKind
		target string
	}
	seen := make(map[key]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		k := key{string(e.Owner), e.Kind, e.Target.ID()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

func (r *Resolver) sortEntries(entries []projectmodel.OrderEntry) []projectmodel.OrderEntry {
	ordinal := func(e projectmodel.OrderEntry) int {
		if m, ok := r.snap.Module(e.Owner); ok {
			return m.Ordinal
		}
		return -1
	}
	prec := r.opts.OwnerPrecedence
	slices.SortStableFunc(entries, func(a, b projectmodel.OrderEntry) int {
		return cmp.Or(
			cmp.Compare(ordinal(a), ordinal(b)),
			cmp.Compare(prec.entryRank(a), prec.entryRank(b)),
			cmp.Compare(a.Position, b.Position),
		)
	})
	return entries
}
