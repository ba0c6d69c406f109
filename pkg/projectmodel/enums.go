// SPDX-License-Identifier: MPL-2.0

package projectmodel

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ScopeCompile makes a dependency visible everywhere.
	ScopeCompile Scope = iota
	// ScopeTest makes a dependency visible to test sources only.
	ScopeTest
	// ScopeRuntime makes a dependency visible at run time only.
	ScopeRuntime
	// ScopeProvided makes a dependency visible at compile time but not packaged.
	ScopeProvided
)

const (
	// LevelProject is a library declared once for the whole project.
	LevelProject LibraryLevel = iota
	// LevelApplication is a library shared by every project of the application.
	LevelApplication
	// LevelModule is a library declared inline on one module's dependency list.
	LevelModule
	// LevelSynthetic is a library contributed programmatically rather than by
	// project configuration. It classifies paths as library content but yields
	// order entries only for modules that depend on it by name.
	LevelSynthetic
)

const (
	// SourceKindSource is a directory of compilable sources.
	SourceKindSource SourceKind = iota
	// SourceKindResource is a directory of resources copied next to compiled output.
	SourceKindResource
)

const (
	// TargetModule points at another module.
	TargetModule TargetKind = iota
	// TargetLibrary points at a project or application library by name.
	TargetLibrary
	// TargetModuleLibrary carries an inline module-level library.
	TargetModuleLibrary
	// TargetSdk points at a named SDK.
	TargetSdk
	// TargetInheritedSdk points at whatever SDK the project declares.
	TargetInheritedSdk
)

var (
	// ErrInvalidScope is returned when a scope name is not recognized.
	ErrInvalidScope = errors.New("invalid dependency scope")
	// ErrInvalidLibraryLevel is returned when a library level name is not recognized.
	ErrInvalidLibraryLevel = errors.New("invalid library level")
)

type (
	// Scope restricts where a dependency is visible.
	Scope uint8

	// LibraryLevel says where a library is declared.
	LibraryLevel uint8

	// SourceKind distinguishes source roots from resource roots.
	SourceKind uint8

	// TargetKind tags the target of a DependencyEdge.
	TargetKind uint8
)

var (
	scopeNames = [...]string{"COMPILE", "TEST", "RUNTIME", "PROVIDED"}
	levelNames = [...]string{"project", "application", "module", "synthetic"}
)

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return fmt.Sprintf("Scope(%d)", s)
}

// ParseScope parses a case-insensitive scope name. The empty string is COMPILE.
func ParseScope(name string) (Scope, error) {
	if name == "" {
		return ScopeCompile, nil
	}
	for i, n := range scopeNames {
		if strings.EqualFold(n, name) {
			return Scope(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidScope, name)
}

func (l LibraryLevel) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("LibraryLevel(%d)", l)
}

// ParseLibraryLevel parses a case-insensitive level name. The empty string is project.
func ParseLibraryLevel(name string) (LibraryLevel, error) {
	if name == "" {
		return LevelProject, nil
	}
	for i, n := range levelNames {
		if strings.EqualFold(n, name) {
			return LibraryLevel(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLibraryLevel, name)
}

func (k SourceKind) String() string {
	if k == SourceKindResource {
		return "resource"
	}
	return "source"
}

func (k TargetKind) String() string {
	switch k {
	case TargetModule:
		return "module"
	case TargetLibrary:
		return "library"
	case TargetModuleLibrary:
		return "module-library"
	case TargetSdk:
		return "sdk"
	case TargetInheritedSdk:
		return "inherited-sdk"
	default:
		return fmt.Sprintf("TargetKind(%d)", k)
	}
}
