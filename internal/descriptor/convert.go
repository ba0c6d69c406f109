// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"fmt"

	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/projectmodel"
	"github.com/invowk/rootindex/pkg/types"
)

func (d *document) project(base fspath.Path) (*projectmodel.Project, error) {
	var errs []error

	project := &projectmodel.Project{ProjectSdk: types.SdkName(d.ProjectSdk)}
	if d.Output != "" {
		project.OutputPath = resolvePath(base, d.Output)
	}

	seen := make(map[string]bool, len(d.Modules))
	for i, m := range d.Modules {
		if seen[m.Name] {
			errs = append(errs, fmt.Errorf("modules[%d]: duplicate module name %q", i, m.Name))
			continue
		}
		seen[m.Name] = true

		module, err := m.module(base)
		if err != nil {
			errs = append(errs, fmt.Errorf("modules[%d] (%s): %w", i, m.Name, err))
			continue
		}
		project.Modules = append(project.Modules, module)
	}

	seenLibs := make(map[string]bool, len(d.Libraries))
	for i, l := range d.Libraries {
		level, err := projectmodel.ParseLibraryLevel(l.Level)
		if err != nil {
			errs = append(errs, fmt.Errorf("libraries[%d]: %w", i, err))
			continue
		}
		key := level.String() + ":" + l.Name
		if seenLibs[key] {
			errs = append(errs, fmt.Errorf("libraries[%d]: duplicate %s library %q", i, level, l.Name))
			continue
		}
		seenLibs[key] = true

		lib, err := l.library(base, level)
		if err != nil {
			errs = append(errs, fmt.Errorf("libraries[%d] (%s): %w", i, l.Name, err))
			continue
		}
		project.Libraries = append(project.Libraries, lib)
	}

	seenSdks := make(map[string]bool, len(d.Sdks))
	for i, s := range d.Sdks {
		if seenSdks[s.Name] {
			errs = append(errs, fmt.Errorf("sdks[%d]: duplicate sdk name %q", i, s.Name))
			continue
		}
		seenSdks[s.Name] = true
		project.Sdks = append(project.Sdks, projectmodel.Sdk{
			Name:    types.SdkName(s.Name),
			Classes: resolvePaths(base, s.Classes),
			Sources: resolvePaths(base, s.Sources),
		})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return project, nil
}

func (m moduleDoc) module(base fspath.Path) (projectmodel.Module, error) {
	var errs []error

	module := projectmodel.Module{
		Name:     types.ModuleName(m.Name),
		Unloaded: m.Unloaded,
		Output:   m.Output.paths(base),
	}

	for i, cr := range m.ContentRoots {
		root := projectmodel.ContentRoot{
			Path:          resolvePath(base, cr.Path),
			ExcludedRoots: resolvePaths(base, cr.Excluded),
		}
		for j, sr := range cr.SourceRoots {
			prefix := types.PackageName(sr.PackagePrefix)
			if prefix != "" {
				if err := prefix.Validate(); err != nil {
					errs = append(errs, fmt.Errorf("content_roots[%d].source_roots[%d]: %w", i, j, err))
					continue
				}
			}
			kind := projectmodel.SourceKindSource
			if sr.Kind == "resource" {
				kind = projectmodel.SourceKindResource
			}
			root.SourceRoots = append(root.SourceRoots, projectmodel.SourceRoot{
				Path:          resolvePath(base, sr.Path),
				IsTest:        sr.Test,
				Kind:          kind,
				PackagePrefix: prefix,
			})
		}
		module.ContentRoots = append(module.ContentRoots, root)
	}

	for i, d := range m.Dependencies {
		edge, err := d.edge(base)
		if err != nil {
			errs = append(errs, fmt.Errorf("dependencies[%d]: %w", i, err))
			continue
		}
		module.Dependencies = append(module.Dependencies, edge)
	}

	return module, errors.Join(errs...)
}

// paths applies the output defaults: an omitted block inherits the project
// output, and output directories are excluded unless exclude is false.
func (o *outputDoc) paths(base fspath.Path) projectmodel.OutputPaths {
	if o == nil {
		return projectmodel.OutputPaths{InheritProject: true, Exclude: true}
	}
	out := projectmodel.OutputPaths{Exclude: o.Exclude == nil || *o.Exclude}
	if o.Inherit != nil {
		out.InheritProject = *o.Inherit
	} else {
		out.InheritProject = o.Production == "" && o.Test == ""
	}
	if !out.InheritProject {
		if o.Production != "" {
			out.Production = resolvePath(base, o.Production)
		}
		if o.Test != "" {
			out.Test = resolvePath(base, o.Test)
		}
	}
	return out
}

func (d dependencyDoc) edge(base fspath.Path) (projectmodel.DependencyEdge, error) {
	switch {
	case d.InheritSdk:
		return projectmodel.InheritedSdkDependency(), nil
	case d.Sdk != "":
		return projectmodel.SdkDependency(types.SdkName(d.Sdk)), nil
	}

	scope, err := projectmodel.ParseScope(d.Scope)
	if err != nil {
		return projectmodel.DependencyEdge{}, err
	}

	switch {
	case d.Module != "":
		return projectmodel.ModuleDependency(types.ModuleName(d.Module), scope, d.Exported), nil
	case d.Library != "":
		level, err := projectmodel.ParseLibraryLevel(d.Level)
		if err != nil {
			return projectmodel.DependencyEdge{}, err
		}
		return projectmodel.LibraryDependency(level, types.LibraryName(d.Library), scope, d.Exported), nil
	case d.ModuleLibrary != nil:
		lib, err := d.ModuleLibrary.library(base, projectmodel.LevelModule)
		if err != nil {
			return projectmodel.DependencyEdge{}, fmt.Errorf("module_library %q: %w", d.ModuleLibrary.Name, err)
		}
		return projectmodel.ModuleLibraryDependency(lib, scope, d.Exported), nil
	default:
		return projectmodel.DependencyEdge{}, errors.New("dependency names no target")
	}
}

func (l libraryDoc) library(base fspath.Path, level projectmodel.LibraryLevel) (projectmodel.Library, error) {
	lib := projectmodel.Library{
		Name:     types.LibraryName(l.Name),
		Level:    level,
		Classes:  resolvePaths(base, l.Classes),
		Sources:  resolvePaths(base, l.Sources),
		Excluded: resolvePaths(base, l.Excluded),
	}
	if len(l.ExcludeGlobs) > 0 {
		pred, err := projectmodel.NewGlobPredicate(l.ExcludeGlobs...)
		if err != nil {
			return projectmodel.Library{}, err
		}
		lib.Exclude = pred
	}
	return lib, nil
}

// resolvePath returns raw as an absolute Path, joining relative input to base.
func resolvePath(base fspath.Path, raw string) fspath.Path {
	p := fspath.Parse(raw)
	if p.IsAbs() {
		return p
	}
	return base.Join(raw)
}

func resolvePaths(base fspath.Path, raws []string) []fspath.Path {
	if len(raws) == 0 {
		return nil
	}
	out := make([]fspath.Path, len(raws))
	for i, raw := range raws {
		out[i] = resolvePath(base, raw)
	}
	return out
}
