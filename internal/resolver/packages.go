// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/types"
)

const (
	packageRootModuleSource packageRootKind = iota
	packageRootLibraryClasses
	packageRootLibrarySources
)

type (
	packageRootKind uint8

	// packageRoot is the root a package name is derived from.
	packageRoot struct {
		kind   packageRootKind
		depth  int
		prefix types.PackageName
	}
)

// PackageNameFor returns the package name of p: the prefix of its nearest
// package root joined with the segments below that root. Module source roots,
// visible library classes roots and visible library sources roots are package
// roots. Paths without one have no package name. A segment containing dots
// stays one component, so "foo.bar/goo" and "foo/bar/goo" share a name.
func (r *Resolver) PackageNameFor(p fspath.Path) (string, bool) {
	name, _, ok := r.packageName(r.resolve(p))
	return string(name), ok
}

func (r *Resolver) packageName(res resolution) (types.PackageName, packageRootKind, bool) {
	root, ok := nearestPackageRoot(res)
	if !ok {
		return "", 0, false
	}
	name := root.prefix
	for d := root.depth; d < res.path.Len(); d++ {
		name = name.Child(res.path.Segment(d))
	}
	return name, root.kind, true
}

func nearestPackageRoot(res resolution) (packageRoot, bool) {
	if !isVisible(res) {
		return packageRoot{}, false
	}
	best := packageRoot{depth: -1}
	consider := func(kind packageRootKind, depth int, prefix types.PackageName) {
		// Ties keep the earlier candidate: module source, then classes, then sources.
		if depth > best.depth {
			best = packageRoot{kind: kind, depth: depth, prefix: prefix}
		}
	}
	if c, ok := res.class.(InProject); ok && c.InSource {
		consider(packageRootModuleSource, c.SourceRoot.Len(), c.PackagePrefix)
	}
	for _, h := range res.libs {
		if h.classesDepth >= 0 {
			consider(packageRootLibraryClasses, h.classesDepth, "")
		}
	}
	for _, h := range res.libs {
		if h.sourcesDepth >= 0 {
			consider(packageRootLibrarySources, h.sourcesDepth, "")
		}
	}
	return best, best.depth >= 0
}

// DirectoriesForPackage returns the directories whose package name is name,
// sorted by path. Directories whose package root is a library sources root
// are included only with includeLibrarySources. Invalid names have no
// directories. Results are cached for the lifetime of the resolver.
func (r *Resolver) DirectoriesForPackage(name string, includeLibrarySources bool) []fspath.Path {
	pkg := types.PackageName(name)
	if pkg.Validate() != nil {
		return nil
	}
	key := packageKey{name: pkg, includeLibrarySources: includeLibrarySources}
	if r.packages != nil {
		if dirs, ok := r.packages.Get(key); ok {
			return slices.Clone(dirs)
		}
	}

	dirs := r.findPackageDirectories(pkg, includeLibrarySources)
	if r.packages != nil {
		r.packages.Add(key, dirs)
	}
	return slices.Clone(dirs)
}

func (r *Resolver) findPackageDirectories(pkg types.PackageName, includeLibrarySources bool) []fspath.Path {
	type seed struct {
		root   fspath.Path
		prefix types.PackageName
	}
	var seeds []seed
	for _, m := range r.snap.Modules() {
		if m.Unloaded {
			continue
		}
		for _, sr := range m.SourceRoots {
			seeds = append(seeds, seed{root: sr.Path, prefix: sr.PackagePrefix})
		}
	}
	for _, l := range r.snap.Libraries() {
		for _, root := range l.Classes {
			seeds = append(seeds, seed{root: root})
		}
		if includeLibrarySources {
			for _, root := range l.Sources {
				seeds = append(seeds, seed{root: root})
			}
		}
	}

	cs := r.snap.Case()
	seen := make(map[string]bool)
	var dirs []fspath.Path
	for _, s := range seeds {
		rest, ok := pkg.TrimPrefix(s.prefix)
		if !ok {
			continue
		}
		for _, dir := range r.matchComponents(s.root, string(rest)) {
			if seen[dir.Key(cs)] {
				continue
			}
			seen[dir.Key(cs)] = true
			got, kind, ok := r.packageName(r.resolve(dir))
			if !ok || got != pkg {
				continue
			}
			if kind == packageRootLibrarySources && !includeLibrarySources {
				continue
			}
			dirs = append(dirs, dir)
		}
	}
	slices.SortFunc(dirs, fspath.Compare)
	return dirs
}

// matchComponents returns the directories below dir whose relative segments,
// dot-joined, equal rest. A directory named "a.b" consumes two components.
func (r *Resolver) matchComponents(dir fspath.Path, rest string) []fspath.Path {
	if rest == "" {
		if isDir, _ := afero.IsDir(r.fs, dir.OS()); isDir {
			return []fspath.Path{dir}
		}
		return nil
	}
	infos, err := afero.ReadDir(r.fs, dir.OS())
	if err != nil {
		return nil
	}
	var out []fspath.Path
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		n := info.Name()
		switch {
		case n == rest:
			out = append(out, r.matchComponents(dir.Join(n), "")...)
		case strings.HasPrefix(rest, n+"."):
			out = append(out, r.matchComponents(dir.Join(n), rest[len(n)+1:])...)
		}
	}
	return out
}
