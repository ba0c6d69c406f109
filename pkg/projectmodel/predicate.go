// SPDX-License-Identifier: MPL-2.0

package projectmodel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/invowk/rootindex/pkg/fspath"
)

// ErrInvalidPattern is returned when an exclusion glob cannot be compiled.
var ErrInvalidPattern = errors.New("invalid exclusion pattern")

type (
	// ExclusionPredicate hides paths under a library root from that library.
	// The resolver calls Matches for every path between the library root
	// (exclusive) and the queried path (inclusive). An error means the
	// predicate could not be evaluated and is treated as "does not match".
	ExclusionPredicate interface {
		Matches(p fspath.Path) (bool, error)
	}

	// PredicateFunc adapts a function to ExclusionPredicate.
	PredicateFunc func(p fspath.Path) (bool, error)

	// GlobPredicate matches doublestar patterns. Patterns without a slash are
	// matched against the last path segment ("a.txt", "*.class"); patterns
	// with a slash are matched against the whole slash-separated path
	// ("**/generated/**").
	GlobPredicate struct {
		patterns []string
	}

	// DirectoryNamedPredicate matches directories with the given name. It
	// stats the filesystem, so non-directories and unreadable paths never match.
	DirectoryNamedPredicate struct {
		Name string
		Fs   afero.Fs
	}

	anyOf []ExclusionPredicate
)

// Matches calls f(p).
func (f PredicateFunc) Matches(p fspath.Path) (bool, error) { return f(p) }

// NewGlobPredicate validates patterns and returns the predicate.
func NewGlobPredicate(patterns ...string) (*GlobPredicate, error) {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pat)
		}
	}
	return &GlobPredicate{patterns: append([]string(nil), patterns...)}, nil
}

// Patterns returns the configured patterns.
func (g *GlobPredicate) Patterns() []string { return append([]string(nil), g.patterns...) }

// Matches reports whether any pattern matches p.
func (g *GlobPredicate) Matches(p fspath.Path) (bool, error) {
	for _, pat := range g.patterns {
		subject := p.Name()
		if strings.Contains(pat, "/") {
			subject = p.String()
		}
		matched, err := doublestar.Match(pat, subject)
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// Matches reports whether p is a directory named d.Name.
func (d DirectoryNamedPredicate) Matches(p fspath.Path) (bool, error) {
	if p.Name() != d.Name {
		return false, nil
	}
	fs := d.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	info, err := fs.Stat(p.OS())
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", p, err)
	}
	return info.IsDir(), nil
}

// AnyOf combines predicates; the result matches when any member matches.
// Members that fail are skipped, and the first error is reported only when
// no member matched.
func AnyOf(preds ...ExclusionPredicate) ExclusionPredicate {
	return anyOf(preds)
}

func (a anyOf) Matches(p fspath.Path) (bool, error) {
	var firstErr error
	for _, pred := range a {
		if pred == nil {
			continue
		}
		matched, err := pred.Matches(p)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if matched {
			return true, nil
		}
	}
	return false, firstErr
}
