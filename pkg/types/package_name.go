// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPackageName is the sentinel error wrapped by InvalidPackageNameError.
var ErrInvalidPackageName = errors.New("invalid package name")

type (
	// PackageName is a dot-separated package name such as "com.example.util".
	// The zero value ("") is valid and names the default package. Components
	// may themselves contain no dots only by convention: a directory literally
	// named "pack.foo" produces the component "pack.foo", which is
	// indistinguishable from the nested "pack/foo".
	PackageName string

	// InvalidPackageNameError is returned when a PackageName has an empty
	// component (leading, trailing or doubled dots) or contains whitespace.
	InvalidPackageNameError struct {
		Value PackageName
	}
)

// String returns the string representation of the PackageName.
func (p PackageName) String() string { return string(p) }

// Validate returns an error if the package name has empty components.
func (p PackageName) Validate() error {
	if p == "" {
		return nil
	}
	if strings.ContainsAny(string(p), " \t\r\n/\\") {
		return &InvalidPackageNameError{Value: p}
	}
	for _, part := range strings.Split(string(p), ".") {
		if part == "" {
			return &InvalidPackageNameError{Value: p}
		}
	}
	return nil
}

// Child returns the package name with component appended.
func (p PackageName) Child(component string) PackageName {
	if p == "" {
		return PackageName(component)
	}
	return PackageName(string(p) + "." + component)
}

// Components splits the package name on dots. The default package has no
// components.
func (p PackageName) Components() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), ".")
}

// TrimPrefix reports the remainder of p after the package prefix and whether
// prefix is a component-wise prefix of p.
func (p PackageName) TrimPrefix(prefix PackageName) (PackageName, bool) {
	switch {
	case prefix == "":
		return p, true
	case p == prefix:
		return "", true
	case strings.HasPrefix(string(p), string(prefix)+"."):
		return p[len(prefix)+1:], true
	default:
		return "", false
	}
}

// Error implements the error interface for InvalidPackageNameError.
func (e *InvalidPackageNameError) Error() string {
	return fmt.Sprintf("invalid package name %q: components must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidPackageName for errors.Is() compatibility.
func (e *InvalidPackageNameError) Unwrap() error { return ErrInvalidPackageName }
