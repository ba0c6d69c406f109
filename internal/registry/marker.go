// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"

	"github.com/invowk/rootindex/internal/trie"
	"github.com/invowk/rootindex/pkg/projectmodel"
)

const (
	// KindContent marks a module content root.
	KindContent RootKind = iota + 1
	// KindSource marks a module source root.
	KindSource
	// KindExcluded marks an excluded root declared by a module.
	KindExcluded
	// KindOutput marks a compiler output directory. A zero Owner excludes it
	// project-wide; a module Owner excludes it for that module only.
	KindOutput
	// KindLibraryClasses marks a library classes root.
	KindLibraryClasses
	// KindLibrarySources marks a library sources root.
	KindLibrarySources
	// KindLibraryExcluded marks a root hidden from one library.
	KindLibraryExcluded
	// KindSdkClasses marks an SDK classes root.
	KindSdkClasses
	// KindSdkSources marks an SDK sources root.
	KindSdkSources
)

type (
	// RootKind tags a Marker.
	RootKind uint8

	// Marker is the value stored in the snapshot trie for every root.
	Marker struct {
		Kind  RootKind
		Owner projectmodel.EntityRef
		// Index points into the owner's ContentRoots (KindContent) or
		// SourceRoots (KindSource) table. It is zero for other kinds.
		Index int
	}
)

// Family implements trie.Marker.
func (m Marker) Family() trie.Family {
	switch m.Kind {
	case KindContent, KindSource, KindExcluded, KindOutput:
		return trie.FamilyModule
	default:
		return trie.FamilyLibrary
	}
}

// IsClasses reports whether the marker is a library or SDK classes root.
func (m Marker) IsClasses() bool { return m.Kind == KindLibraryClasses || m.Kind == KindSdkClasses }

// IsSources reports whether the marker is a library or SDK sources root.
func (m Marker) IsSources() bool { return m.Kind == KindLibrarySources || m.Kind == KindSdkSources }

// IsProjectWide reports whether the marker is an output exclusion applying to
// every module.
func (m Marker) IsProjectWide() bool {
	return m.Kind == KindOutput && m.Owner == (projectmodel.EntityRef{})
}

func (k RootKind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindSource:
		return "source"
	case KindExcluded:
		return "excluded"
	case KindOutput:
		return "output"
	case KindLibraryClasses:
		return "library-classes"
	case KindLibrarySources:
		return "library-sources"
	case KindLibraryExcluded:
		return "library-excluded"
	case KindSdkClasses:
		return "sdk-classes"
	case KindSdkSources:
		return "sdk-sources"
	default:
		return fmt.Sprintf("RootKind(%d)", k)
	}
}
