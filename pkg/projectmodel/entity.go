// SPDX-License-Identifier: MPL-2.0

package projectmodel

import (
	"fmt"

	"github.com/invowk/rootindex/pkg/types"
)

const (
	// EntityModule is a module.
	EntityModule EntityKind = iota + 1
	// EntityLibrary is a library at any level.
	EntityLibrary
	// EntitySdk is an SDK.
	EntitySdk
)

type (
	// EntityKind tags the declaring entity of a root.
	EntityKind uint8

	// EntityRef identifies a module, library or SDK. It is a comparable value
	// so snapshots can key tables by it; it never holds a pointer into the model.
	EntityRef struct {
		Kind  EntityKind
		Name  string
		Level LibraryLevel
		// Owner is the declaring module of a module-level library.
		Owner types.ModuleName
		// Index is the dependency list position of an unnamed module-level
		// library, which has no other identity.
		Index int
	}
)

// ModuleRef returns the reference of a module.
func ModuleRef(name types.ModuleName) EntityRef {
	return EntityRef{Kind: EntityModule, Name: string(name)}
}

// LibraryRef returns the reference of a project, application or synthetic library.
func LibraryRef(level LibraryLevel, name types.LibraryName) EntityRef {
	return EntityRef{Kind: EntityLibrary, Name: string(name), Level: level}
}

// ModuleLibraryRef returns the reference of a named library declared on owner.
func ModuleLibraryRef(owner types.ModuleName, name types.LibraryName) EntityRef {
	return EntityRef{Kind: EntityLibrary, Name: string(name), Level: LevelModule, Owner: owner}
}

// UnnamedModuleLibraryRef returns the reference of the unnamed library at
// position index of owner's dependency list.
func UnnamedModuleLibraryRef(owner types.ModuleName, index int) EntityRef {
	return EntityRef{Kind: EntityLibrary, Level: LevelModule, Owner: owner, Index: index}
}

// IsUnnamed reports whether r is an unnamed module-level library.
func (r EntityRef) IsUnnamed() bool {
	return r.Kind == EntityLibrary && r.Level == LevelModule && r.Name == ""
}

// SdkRef returns the reference of an SDK.
func SdkRef(name types.SdkName) EntityRef {
	return EntityRef{Kind: EntitySdk, Name: string(name)}
}

// ID returns the graph node identifier of the entity. The owner and name of
// a module-level library are quoted so names containing "/" cannot collide.
func (r EntityRef) ID() string {
	switch r.Kind {
	case EntityModule:
		return "module:" + r.Name
	case EntityLibrary:
		if r.IsUnnamed() {
			return fmt.Sprintf("library:module:%q/#%d", r.Owner, r.Index)
		}
		if r.Level == LevelModule {
			return fmt.Sprintf("library:module:%q/%q", r.Owner, r.Name)
		}
		return fmt.Sprintf("library:%s:%s", r.Level, r.Name)
	case EntitySdk:
		return "sdk:" + r.Name
	default:
		return "unknown:" + r.Name
	}
}

// String returns a human-readable form of the reference.
func (r EntityRef) String() string {
	switch r.Kind {
	case EntityModule:
		return "module " + r.Name
	case EntityLibrary:
		if r.IsUnnamed() {
			return fmt.Sprintf("library #%d (module %s)", r.Index, r.Owner)
		}
		if r.Level == LevelModule {
			return fmt.Sprintf("library %s (module %s)", r.Name, r.Owner)
		}
		return fmt.Sprintf("library %s (%s)", r.Name, r.Level)
	case EntitySdk:
		return "sdk " + r.Name
	default:
		return r.ID()
	}
}
