// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"cmp"
	"slices"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/invowk/rootindex/internal/ignore"
	"github.com/invowk/rootindex/internal/registry"
	"github.com/invowk/rootindex/internal/trie"
	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/types"
)

// defaultPackageCacheSize bounds the DirectoriesForPackage cache.
const defaultPackageCacheSize = 256

type (
	// Options tunes a Resolver.
	Options struct {
		// Fs is used for predicate checks, package directory enumeration and
		// iteration. Nil means the OS filesystem.
		Fs afero.Fs
		// Ignore decides ignored names. Nil means ignore.Default().
		Ignore *ignore.Matcher
		// OwnerPrecedence picks the winning library among several owners.
		OwnerPrecedence OwnerPrecedence
		// ModuleDependentEntries adds the dependents of a module to the order
		// entries of its source paths.
		ModuleDependentEntries bool
		// PackageCacheSize bounds the DirectoriesForPackage cache. Zero means
		// the default; a negative value disables caching.
		PackageCacheSize int
	}

	// Resolver answers queries against one snapshot.
	Resolver struct {
		snap     *registry.Snapshot
		fs       afero.Fs
		ignore   *ignore.Matcher
		opts     Options
		packages *lru.Cache[packageKey, []fspath.Path]
	}

	packageKey struct {
		name                  types.PackageName
		includeLibrarySources bool
	}

	// moduleVerdict is the module side of a resolution.
	moduleVerdict struct {
		module      *registry.ModuleEntry
		contentRoot fspath.Path
		source      *registry.SourceRootEntry
		sourceRoot  fspath.Path
		excluded    bool
		ignored     bool
	}

	// libraryHit is one library that sees the path. Depths are -1 when the
	// library does not see the path through that kind of root.
	libraryHit struct {
		entry        *registry.LibraryEntry
		classesDepth int
		sourcesDepth int
	}

	// resolution is everything computed for one path.
	resolution struct {
		path   fspath.Path
		module moduleVerdict
		libs   []libraryHit
		// hidden is set when a library root holds the path but every library
		// holding it excludes it.
		hidden bool
		class  Classification
	}
)

// New binds a resolver to snap.
func New(snap *registry.Snapshot, opts Options) *Resolver {
	r := &Resolver{snap: snap, fs: opts.Fs, ignore: opts.Ignore, opts: opts}
	if r.fs == nil {
		r.fs = afero.NewOsFs()
	}
	if r.ignore == nil {
		r.ignore = ignore.Default()
	}
	size := opts.PackageCacheSize
	if size == 0 {
		size = defaultPackageCacheSize
	}
	if size > 0 {
		// lru.New only fails for non-positive sizes.
		r.packages, _ = lru.New[packageKey, []fspath.Path](size)
	}
	return r
}

// Snapshot returns the snapshot the resolver reads.
func (r *Resolver) Snapshot() *registry.Snapshot { return r.snap }

// Classify returns the verdict for p. Relative paths are never in the project.
func (r *Resolver) Classify(p fspath.Path) Classification {
	return r.resolve(p).class
}

// IsExcluded reports whether p is excluded or ignored.
func (r *Resolver) IsExcluded(p fspath.Path) bool {
	_, ok := r.Classify(p).(Excluded)
	return ok
}

// IsUnderIgnored reports whether p or one of its ancestors has an ignored
// name that no deeper root re-includes.
func (r *Resolver) IsUnderIgnored(p fspath.Path) bool {
	if !p.IsAbs() {
		return false
	}
	return r.moduleSide(p).ignored
}

// IsInContent reports whether p is content of a loaded module.
func (r *Resolver) IsInContent(p fspath.Path) bool {
	_, ok := r.Classify(p).(InProject)
	return ok
}

// IsInSource reports whether p is module source or visible library source.
func (r *Resolver) IsInSource(p fspath.Path) bool {
	switch c := r.Classify(p).(type) {
	case InProject:
		return c.InSource || c.InLibrarySource
	case InLibrary:
		return c.InSource
	default:
		return false
	}
}

// IsInLibrary reports whether some library or SDK sees p.
func (r *Resolver) IsInLibrary(p fspath.Path) bool {
	res := r.resolve(p)
	return isVisible(res) && len(res.libs) > 0
}

// IsInLibraryClasses reports whether some library or SDK sees p through a
// classes root.
func (r *Resolver) IsInLibraryClasses(p fspath.Path) bool {
	res := r.resolve(p)
	return isVisible(res) && slices.ContainsFunc(res.libs, func(h libraryHit) bool { return h.classesDepth >= 0 })
}

// IsInLibrarySource reports whether some library or SDK sees p through a
// sources root.
func (r *Resolver) IsInLibrarySource(p fspath.Path) bool {
	res := r.resolve(p)
	return isVisible(res) && slices.ContainsFunc(res.libs, func(h libraryHit) bool { return h.sourcesDepth >= 0 })
}

// ModuleFor returns the loaded module whose content holds p. With
// honorExclusion false, excluded paths still report their module; ignored
// paths never do.
func (r *Resolver) ModuleFor(p fspath.Path, honorExclusion bool) (types.ModuleName, bool) {
	mv, ok := r.owningModule(p, honorExclusion)
	if !ok {
		return "", false
	}
	return mv.module.Name, true
}

// ContentRootFor returns the content root holding p, under the same rules as
// ModuleFor.
func (r *Resolver) ContentRootFor(p fspath.Path, honorExclusion bool) (fspath.Path, bool) {
	mv, ok := r.owningModule(p, honorExclusion)
	if !ok {
		return fspath.Path{}, false
	}
	return mv.contentRoot, true
}

// SourceRootFor returns the module source root holding p when p is module source.
func (r *Resolver) SourceRootFor(p fspath.Path) (fspath.Path, bool) {
	c, ok := r.Classify(p).(InProject)
	if !ok || !c.InSource {
		return fspath.Path{}, false
	}
	return c.SourceRoot, true
}

func (r *Resolver) owningModule(p fspath.Path, honorExclusion bool) (moduleVerdict, bool) {
	if !p.IsAbs() {
		return moduleVerdict{}, false
	}
	mv := r.moduleSide(p)
	switch {
	case mv.module == nil, mv.module.Unloaded, mv.ignored:
		return moduleVerdict{}, false
	case honorExclusion && mv.excluded:
		return moduleVerdict{}, false
	default:
		return mv, true
	}
}

func isVisible(res resolution) bool {
	switch res.class.(type) {
	case InProject, InLibrary:
		return true
	default:
		return false
	}
}

func (r *Resolver) resolve(p fspath.Path) resolution {
	res := resolution{path: p, class: NotInProject{}}
	if !p.IsAbs() {
		return res
	}
	res.module = r.moduleSide(p)
	res.libs, res.hidden = r.librarySide(p)
	res.class = classify(res)
	return res
}

func classify(res resolution) Classification {
	mv := res.module
	switch {
	case mv.ignored:
		if len(res.libs) > 0 {
			return inLibrary(res.libs)
		}
		return Excluded{Ignored: true}
	case mv.module != nil && mv.module.Unloaded && !mv.excluded:
		return InUnloadedModule{Name: mv.module.Name}
	case mv.module != nil && !mv.excluded:
		return inProject(mv, res.libs)
	case len(res.libs) > 0:
		return inLibrary(res.libs)
	case mv.excluded || res.hidden:
		var name types.ModuleName
		if mv.module != nil && !mv.module.Unloaded {
			name = mv.module.Name
		}
		return Excluded{Module: name}
	default:
		return NotInProject{}
	}
}

func inProject(mv moduleVerdict, libs []libraryHit) InProject {
	c := InProject{Module: mv.module.Name, ContentRoot: mv.contentRoot}
	if mv.source != nil {
		c.SourceRoot = mv.sourceRoot
		c.InSource = true
		c.IsTestSource = mv.source.IsTest
		c.SourceKind = mv.source.Kind
		c.PackagePrefix = mv.source.PackagePrefix
	}
	for _, h := range libs {
		c.InLibraryClasses = c.InLibraryClasses || h.classesDepth >= 0
		c.InLibrarySource = c.InLibrarySource || h.sourcesDepth >= 0
	}
	c.InLibrarySourceOnly = c.InLibrarySource && !c.InSource && !c.InLibraryClasses
	return c
}

func inLibrary(libs []libraryHit) InLibrary {
	c := InLibrary{Library: libs[0].entry.Ref}
	for _, h := range libs {
		c.InClasses = c.InClasses || h.classesDepth >= 0
		c.InSource = c.InSource || h.sourcesDepth >= 0
	}
	return c
}

// moduleSide walks the module-family markers of p root-first.
func (r *Resolver) moduleSide(p fspath.Path) moduleVerdict {
	hits := r.snap.MarkersOnPathTo(p, trie.FamilyModule)
	var v moduleVerdict
	next := 0
	for depth := 0; depth <= p.Len(); depth++ {
		if depth > 0 && r.ignore.IsIgnored(p.Segment(depth-1)) {
			v.ignored = true
		}
		if next < len(hits) && hits[next].Path.Len() == depth {
			r.applyModuleMarkers(&v, hits[next])
			next++
		}
	}
	return v
}

func (r *Resolver) applyModuleMarkers(v *moduleVerdict, hit trie.Hit[registry.Marker]) {
	// Several modules may declare the same content root; the first declared wins.
	for _, mk := range hit.Markers {
		if mk.Kind != registry.KindContent {
			continue
		}
		if m, ok := r.snap.Module(types.ModuleName(mk.Owner.Name)); ok {
			*v = moduleVerdict{module: m, contentRoot: hit.Path}
			break
		}
	}

	if v.module != nil && !v.module.Unloaded {
		for _, mk := range hit.Markers {
			if mk.Kind == registry.KindSource && mk.Owner == v.module.Ref() {
				v.source = &v.module.SourceRoots[mk.Index]
				v.sourceRoot = hit.Path
				v.excluded = false
				v.ignored = false
				break
			}
		}
	}

	for _, mk := range hit.Markers {
		switch {
		case mk.IsProjectWide():
			v.excluded = true
		case mk.Kind == registry.KindExcluded || mk.Kind == registry.KindOutput:
			if v.module != nil && mk.Owner == v.module.Ref() {
				v.excluded = true
			}
		}
	}
}

// librarySide returns the libraries that see p, best first.
func (r *Resolver) librarySide(p fspath.Path) ([]libraryHit, bool) {
	hits := r.snap.MarkersOnPathTo(p, trie.FamilyLibrary)
	if len(hits) == 0 {
		return nil, false
	}

	type roots struct {
		entry    *registry.LibraryEntry
		classes  []int
		sources  []int
		excluded []int
	}
	var order []*roots
	byID := make(map[string]*roots)
	for _, hit := range hits {
		depth := hit.Path.Len()
		for _, mk := range hit.Markers {
			id := mk.Owner.ID()
			acc, ok := byID[id]
			if !ok {
				entry, found := r.snap.Library(mk.Owner)
				if !found {
					continue
				}
				acc = &roots{entry: entry}
				byID[id] = acc
				order = append(order, acc)
			}
			switch {
			case mk.IsClasses():
				acc.classes = append(acc.classes, depth)
			case mk.IsSources():
				acc.sources = append(acc.sources, depth)
			case mk.Kind == registry.KindLibraryExcluded:
				acc.excluded = append(acc.excluded, depth)
			}
		}
	}

	var (
		visible []libraryHit
		hidden  bool
	)
	for _, acc := range order {
		if len(acc.classes) == 0 && len(acc.sources) == 0 {
			continue
		}
		h := libraryHit{
			entry:        acc.entry,
			classesDepth: r.deepestVisible(p, acc.entry, acc.classes, acc.excluded),
			sourcesDepth: r.deepestVisible(p, acc.entry, acc.sources, acc.excluded),
		}
		if h.classesDepth < 0 && h.sourcesDepth < 0 {
			hidden = true
			continue
		}
		visible = append(visible, h)
	}

	slices.SortStableFunc(visible, func(a, b libraryHit) int {
		return cmp.Or(
			cmp.Compare(max(b.classesDepth, b.sourcesDepth), max(a.classesDepth, a.sourcesDepth)),
			cmp.Compare(r.opts.OwnerPrecedence.rank(a.entry.Ref), r.opts.OwnerPrecedence.rank(b.entry.Ref)),
			cmp.Compare(a.entry.Ordinal, b.entry.Ordinal),
		)
	})
	return visible, hidden
}

// deepestVisible returns the depth of the deepest root in rootDepths through
// which lib still sees p, or -1.
func (r *Resolver) deepestVisible(p fspath.Path, lib *registry.LibraryEntry, rootDepths, excluded []int) int {
	for i := len(rootDepths) - 1; i >= 0; i-- {
		dr := rootDepths[i]
		if slices.ContainsFunc(excluded, func(de int) bool { return de >= dr }) {
			continue
		}
		if r.hiddenBelow(p, lib, dr) {
			continue
		}
		return dr
	}
	return -1
}

// hiddenBelow reports whether an ignored name or the library predicate
// matches any path strictly below the root at depth dr, down to p.
func (r *Resolver) hiddenBelow(p fspath.Path, lib *registry.LibraryEntry, dr int) bool {
	for d := dr + 1; d <= p.Len(); d++ {
		if r.ignore.IsIgnored(p.Segment(d - 1)) {
			return true
		}
		if lib.Exclude == nil {
			continue
		}
		// A predicate that cannot be evaluated does not match.
		if matched, err := lib.Exclude.Matches(p.Prefix(d)); err == nil && matched {
			return true
		}
	}
	return false
}
