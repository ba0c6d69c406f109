// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"
	"strings"

	"github.com/invowk/rootindex/pkg/projectmodel"
)

// RebuildError aggregates the configuration errors found during one rebuild.
// The snapshot is still published when a RebuildError is returned.
type RebuildError struct {
	Generation uint64
	Errors     []*projectmodel.ConfigurationError
}

// Error implements the error interface for RebuildError.
func (e *RebuildError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("rebuild %d: %v", e.Generation, e.Errors[0])
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "rebuild %d: %d configuration errors:", e.Generation, len(e.Errors))
	for _, ce := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(ce.Error())
	}
	return sb.String()
}

// Unwrap returns the individual configuration errors for errors.Is/As.
func (e *RebuildError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, ce := range e.Errors {
		errs[i] = ce
	}
	return errs
}
