// SPDX-License-Identifier: MPL-2.0

// Package types defines the identity value types shared by the project model,
// the registry and the resolver: module, library and SDK names and package
// names. Each type validates itself and reports failures through a typed
// error wrapping a package-level sentinel.
//
// This package is a leaf dependency: it imports only the standard library.
package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidModuleName is the sentinel error wrapped by InvalidEntityNameError
	// for module names.
	ErrInvalidModuleName = errors.New("invalid module name")
	// ErrInvalidLibraryName is the sentinel error wrapped by InvalidEntityNameError
	// for library names.
	ErrInvalidLibraryName = errors.New("invalid library name")
	// ErrInvalidSdkName is the sentinel error wrapped by InvalidEntityNameError
	// for SDK names.
	ErrInvalidSdkName = errors.New("invalid sdk name")
)

type (
	// ModuleName identifies a module within a project. Names are unique per
	// project and compared case-sensitively.
	ModuleName string

	// LibraryName identifies a library within its level (project, application,
	// module or synthetic).
	LibraryName string

	// SdkName identifies an SDK.
	SdkName string

	// InvalidEntityNameError is returned when a module, library or SDK name is
	// empty, whitespace-only or spans several lines.
	InvalidEntityNameError struct {
		Kind  string
		Value string
		base  error
	}
)

// String returns the string representation of the ModuleName.
func (n ModuleName) String() string { return string(n) }

// Validate returns an error if the module name is not usable as an identifier.
func (n ModuleName) Validate() error {
	return validateEntityName("module", string(n), ErrInvalidModuleName)
}

// String returns the string representation of the LibraryName.
func (n LibraryName) String() string { return string(n) }

// Validate returns an error if the library name is not usable as an identifier.
func (n LibraryName) Validate() error {
	return validateEntityName("library", string(n), ErrInvalidLibraryName)
}

// String returns the string representation of the SdkName.
func (n SdkName) String() string { return string(n) }

// Validate returns an error if the SDK name is not usable as an identifier.
func (n SdkName) Validate() error {
	return validateEntityName("sdk", string(n), ErrInvalidSdkName)
}

func validateEntityName(kind, value string, sentinel error) error {
	if strings.TrimSpace(value) == "" || strings.ContainsAny(value, "\n\r") {
		return &InvalidEntityNameError{Kind: kind, Value: value, base: sentinel}
	}
	return nil
}

// Error implements the error interface for InvalidEntityNameError.
func (e *InvalidEntityNameError) Error() string {
	return fmt.Sprintf("invalid %s name %q: must be non-empty and single-line", e.Kind, e.Value)
}

// Unwrap returns the kind-specific sentinel for errors.Is() compatibility.
func (e *InvalidEntityNameError) Unwrap() error { return e.base }
