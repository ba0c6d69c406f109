// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"

	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/types"
)

type (
	// IndexableFile is one path reported by iteration.
	IndexableFile struct {
		Path           fspath.Path
		IsDir          bool
		Classification Classification
	}

	// VisitFunc receives each indexable path. Returning an error stops the
	// iteration and the error is returned to the caller.
	VisitFunc func(IndexableFile) error
)

// IterateIndexableFiles visits every file and directory that is module or
// library content exactly once. Excluded, unloaded and out-of-project
// subtrees are not descended into; roots nested inside them are visited from
// their own root. The context is checked between files.
func (r *Resolver) IterateIndexableFiles(ctx context.Context, visit VisitFunc) error {
	seeds := r.snap.IndexableRoots()
	for _, m := range r.snap.Modules() {
		if m.Unloaded {
			continue
		}
		for _, sr := range m.SourceRoots {
			seeds = append(seeds, sr.Path)
		}
	}
	accept := func(c Classification) bool {
		switch c.(type) {
		case InProject, InLibrary:
			return true
		default:
			return false
		}
	}
	return r.walkSeeds(ctx, seeds, accept, visit)
}

// IterateModuleContent visits the content of one loaded module, stopping at
// excluded directories and at content nested from other modules.
func (r *Resolver) IterateModuleContent(ctx context.Context, module types.ModuleName, visit VisitFunc) error {
	m, ok := r.snap.Module(module)
	if !ok || m.Unloaded {
		return nil
	}
	seeds := slices.Clone(m.ContentRoots)
	for _, sr := range m.SourceRoots {
		seeds = append(seeds, sr.Path)
	}
	accept := func(c Classification) bool {
		ip, ok := c.(InProject)
		return ok && ip.Module == module
	}
	return r.walkSeeds(ctx, seeds, accept, visit)
}

func (r *Resolver) walkSeeds(ctx context.Context, seeds []fspath.Path, accept func(Classification) bool, visit VisitFunc) error {
	slices.SortFunc(seeds, fspath.Compare)
	cs := r.snap.Case()
	visited := make(map[string]bool)

	for _, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if visited[seed.Key(cs)] {
			continue
		}
		err := afero.Walk(r.fs, seed.OS(), func(osPath string, info os.FileInfo, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if walkErr != nil {
				// Missing or unreadable roots are skipped.
				return nil //nolint:nilerr // best-effort walk
			}
			p := fspath.Parse(filepath.ToSlash(osPath))
			key := p.Key(cs)
			if visited[key] {
				return skip(info)
			}
			c := r.Classify(p)
			if !accept(c) {
				return skip(info)
			}
			visited[key] = true
			return visit(IndexableFile{Path: p, IsDir: info.IsDir(), Classification: c})
		})
		if err != nil && !errors.Is(err, filepath.SkipDir) {
			return err
		}
	}
	return nil
}

func skip(info os.FileInfo) error {
	if info.IsDir() {
		return filepath.SkipDir
	}
	return nil
}
