// SPDX-License-Identifier: MPL-2.0

package projectmodel

import (
	"errors"
	"fmt"

	"github.com/invowk/rootindex/pkg/fspath"
)

// ErrConfiguration is the sentinel error wrapped by ConfigurationError.
var ErrConfiguration = errors.New("invalid project configuration")

// ConfigurationError reports one malformed declaration. The registry skips the
// offending root and keeps indexing everything else.
type ConfigurationError struct {
	Entity EntityRef
	// Root is the offending root path. It is zero for entity-level problems.
	Root   fspath.Path
	Reason string
}

// Error implements the error interface for ConfigurationError.
func (e *ConfigurationError) Error() string {
	if e.Root.IsZero() {
		return fmt.Sprintf("%s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("%s: root %s: %s", e.Entity, e.Root, e.Reason)
}

// Unwrap returns ErrConfiguration for errors.Is() compatibility.
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }
