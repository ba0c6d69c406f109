// SPDX-License-Identifier: MPL-2.0

package projectmodel

import (
	"iter"

	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/types"
)

type (
	// Project is the complete input of one registry rebuild.
	Project struct {
		// Modules lists every declared module, loaded or not, in declaration order.
		Modules []Module
		// Libraries lists project, application and synthetic libraries.
		// Module-level libraries live on their owning module's edges.
		Libraries []Library
		// Sdks lists the SDKs modules may reference.
		Sdks []Sdk
		// ProjectSdk is the SDK used by modules that inherit the project SDK.
		ProjectSdk types.SdkName
		// OutputPath is the project compiler output root. The zero Path means none.
		OutputPath fspath.Path
	}

	// Module is one unit of the project: its content roots, its dependency
	// list and its compiler output settings.
	Module struct {
		Name         types.ModuleName
		ContentRoots []ContentRoot
		Dependencies []DependencyEdge
		Output       OutputPaths
		// Unloaded marks a module declared but kept out of the live model.
		Unloaded bool
	}

	// ContentRoot is a directory (or single file) a module claims, with the
	// source and excluded roots nested inside it.
	ContentRoot struct {
		Path          fspath.Path
		SourceRoots   []SourceRoot
		ExcludedRoots []fspath.Path
	}

	// SourceRoot is a directory of sources or resources inside a content root.
	SourceRoot struct {
		Path          fspath.Path
		IsTest        bool
		Kind          SourceKind
		PackagePrefix types.PackageName
	}

	// OutputPaths describes where a module's compiler output goes.
	OutputPaths struct {
		// InheritProject derives both paths from the project output root as
		// <output>/production/<module> and <output>/test/<module>.
		InheritProject bool
		Production     fspath.Path
		Test           fspath.Path
		// Exclude excludes the output directories from the module's content.
		Exclude bool
	}

	// Library is a named set of classes and sources roots with optional
	// exclusions. Exclude, when set, is evaluated lazily per query.
	Library struct {
		Name     types.LibraryName
		Level    LibraryLevel
		Classes  []fspath.Path
		Sources  []fspath.Path
		Excluded []fspath.Path
		Exclude  ExclusionPredicate
	}

	// Sdk is a named set of classes and sources roots.
	Sdk struct {
		Name    types.SdkName
		Classes []fspath.Path
		Sources []fspath.Path
	}

	// DependencyEdge is one entry of a module's ordered dependency list.
	DependencyEdge struct {
		Kind TargetKind
		// Module is set for TargetModule.
		Module types.ModuleName
		// Library and LibraryLevel are set for TargetLibrary.
		Library      types.LibraryName
		LibraryLevel LibraryLevel
		// ModuleLibrary is set for TargetModuleLibrary.
		ModuleLibrary *Library
		// Sdk is set for TargetSdk.
		Sdk      types.SdkName
		Scope    Scope
		Exported bool
	}
)

// ModuleDependency returns an edge to another module.
func ModuleDependency(name types.ModuleName, scope Scope, exported bool) DependencyEdge {
	return DependencyEdge{Kind: TargetModule, Module: name, Scope: scope, Exported: exported}
}

// LibraryDependency returns an edge to a project or application library.
func LibraryDependency(level LibraryLevel, name types.LibraryName, scope Scope, exported bool) DependencyEdge {
	return DependencyEdge{Kind: TargetLibrary, Library: name, LibraryLevel: level, Scope: scope, Exported: exported}
}

// ModuleLibraryDependency returns an edge carrying an inline module-level library.
func ModuleLibraryDependency(lib Library, scope Scope, exported bool) DependencyEdge {
	lib.Level = LevelModule
	return DependencyEdge{Kind: TargetModuleLibrary, ModuleLibrary: &lib, Scope: scope, Exported: exported}
}

// SdkDependency returns an edge to a named SDK.
func SdkDependency(name types.SdkName) DependencyEdge {
	return DependencyEdge{Kind: TargetSdk, Sdk: name}
}

// InheritedSdkDependency returns an edge to the project SDK.
func InheritedSdkDependency() DependencyEdge {
	return DependencyEdge{Kind: TargetInheritedSdk}
}

// Target returns the entity the edge at position index of owner's dependency
// list points at, resolving an inherited SDK against projectSdk. The second
// result is false when the edge cannot name a target (inherited SDK with no
// project SDK, module library without a body).
func (e DependencyEdge) Target(owner types.ModuleName, index int, projectSdk types.SdkName) (EntityRef, bool) {
	switch e.Kind {
	case TargetModule:
		return ModuleRef(e.Module), true
	case TargetLibrary:
		return LibraryRef(e.LibraryLevel, e.Library), true
	case TargetModuleLibrary:
		if e.ModuleLibrary == nil {
			return EntityRef{}, false
		}
		if e.ModuleLibrary.Name == "" {
			return UnnamedModuleLibraryRef(owner, index), true
		}
		return ModuleLibraryRef(owner, e.ModuleLibrary.Name), true
	case TargetSdk:
		return SdkRef(e.Sdk), true
	case TargetInheritedSdk:
		if projectSdk == "" {
			return EntityRef{}, false
		}
		return SdkRef(projectSdk), true
	default:
		return EntityRef{}, false
	}
}

// OutputDirs returns the module's production and test output directories,
// resolving inheritance against the project output root. Zero paths are omitted.
func (m Module) OutputDirs(projectOutput fspath.Path) []fspath.Path {
	var dirs []fspath.Path
	if m.Output.InheritProject {
		if projectOutput.IsZero() {
			return nil
		}
		return []fspath.Path{
			projectOutput.Join("production", string(m.Name)),
			projectOutput.Join("test", string(m.Name)),
		}
	}
	for _, p := range []fspath.Path{m.Output.Production, m.Output.Test} {
		if !p.IsZero() {
			dirs = append(dirs, p)
		}
	}
	return dirs
}

// ModuleLibraries yields the inline libraries declared on the module's edges
// together with their references.
func (m Module) ModuleLibraries() iter.Seq2[EntityRef, Library] {
	return func(yield func(EntityRef, Library) bool) {
		for i, e := range m.Dependencies {
			if e.Kind != TargetModuleLibrary || e.ModuleLibrary == nil {
				continue
			}
			ref, _ := e.Target(m.Name, i, "")
			if !yield(ref, *e.ModuleLibrary) {
				return
			}
		}
	}
}
