// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"

	"github.com/invowk/rootindex/pkg/projectmodel"
)

const (
	// ModuleLevelFirst ranks module-level libraries ahead of project and
	// application libraries.
	ModuleLevelFirst OwnerPrecedence = iota
	// ProjectLevelFirst ranks project and application libraries ahead of
	// module-level libraries.
	ProjectLevelFirst
)

// ErrInvalidOwnerPrecedence is returned when a precedence name is not recognized.
var ErrInvalidOwnerPrecedence = errors.New("invalid owner precedence")

// OwnerPrecedence decides which library wins when several claim the same
// directory, and orders the entries of one owner module.
type OwnerPrecedence uint8

// ParseOwnerPrecedence parses "module-level-first" or "project-level-first".
// The empty string is ModuleLevelFirst.
func ParseOwnerPrecedence(name string) (OwnerPrecedence, error) {
	switch name {
	case "", "module-level-first":
		return ModuleLevelFirst, nil
	case "project-level-first":
		return ProjectLevelFirst, nil
	default:
		return 0, fmt.Errorf("%w: %q (expected module-level-first or project-level-first)", ErrInvalidOwnerPrecedence, name)
	}
}

func (o OwnerPrecedence) String() string {
	if o == ProjectLevelFirst {
		return "project-level-first"
	}
	return "module-level-first"
}

// rank orders entity references: lower ranks win.
func (o OwnerPrecedence) rank(ref projectmodel.EntityRef) int {
	switch ref.Kind {
	case projectmodel.EntityLibrary:
		switch ref.Level {
		case projectmodel.LevelModule:
			if o == ProjectLevelFirst {
				return 2
			}
			return 0
		case projectmodel.LevelProject:
			if o == ProjectLevelFirst {
				return 0
			}
			return 1
		case projectmodel.LevelApplication:
			if o == ProjectLevelFirst {
				return 1
			}
			return 2
		default:
			return 3
		}
	case projectmodel.EntitySdk:
		return 4
	default:
		return 5
	}
}

// entryRank orders the entries of one owner: libraries and SDKs by rank,
// then module dependencies, then the module's own sources.
func (o OwnerPrecedence) entryRank(e projectmodel.OrderEntry) int {
	if e.Kind == projectmodel.EntryModuleSource {
		return 6
	}
	return o.rank(e.Target)
}
