// SPDX-License-Identifier: MPL-2.0

package projectmodel

import (
	"fmt"

	"github.com/invowk/rootindex/pkg/types"
)

const (
	// EntryModuleSource is a module's view of its own sources.
	EntryModuleSource OrderEntryKind = iota
	// EntryModule is a dependency on another module's sources.
	EntryModule
	// EntryLibrary is a dependency on a library.
	EntryLibrary
	// EntrySdk is a dependency on an SDK.
	EntrySdk
)

type (
	// OrderEntryKind tags an OrderEntry.
	OrderEntryKind uint8

	// OrderEntry is a materialized dependency edge: Owner can see the path
	// through the entry's target. Entries are produced on demand and never stored.
	OrderEntry struct {
		Owner types.ModuleName
		Kind  OrderEntryKind
		// Target is the entity the owner depends on. For EntryModuleSource it is
		// the owner itself.
		Target   EntityRef
		Scope    Scope
		Exported bool
		// Position is the index of the edge in the owner's dependency list.
		// Module-source entries sort after every edge.
		Position int
	}
)

func (k OrderEntryKind) String() string {
	switch k {
	case EntryModuleSource:
		return "module-source"
	case EntryModule:
		return "module"
	case EntryLibrary:
		return "library"
	case EntrySdk:
		return "sdk"
	default:
		return fmt.Sprintf("OrderEntryKind(%d)", k)
	}
}

// LibraryName returns the target library name, or "" for non-library entries.
func (e OrderEntry) LibraryName() types.LibraryName {
	if e.Kind != EntryLibrary {
		return ""
	}
	return types.LibraryName(e.Target.Name)
}

// String renders the entry as "owner -> target [scope]".
func (e OrderEntry) String() string {
	if e.Kind == EntryModuleSource {
		return fmt.Sprintf("%s -> <module source>", e.Owner)
	}
	exported := ""
	if e.Exported {
		exported = ", exported"
	}
	return fmt.Sprintf("%s -> %s [%s%s]", e.Owner, e.Target, e.Scope, exported)
}
