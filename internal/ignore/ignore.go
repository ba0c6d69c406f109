// SPDX-License-Identifier: MPL-2.0

// Package ignore decides which file names are ignored: version-control
// metadata, interpreter caches and editor leftovers that are never project
// content. Ignoring is distinct from exclusion: an excluded directory is a
// project decision, an ignored name is a global one.
package ignore

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultNames lists the patterns ignored when no list is configured.
var defaultNames = []string{
	"*.pyc",
	"*.pyo",
	"*.rbc",
	"*.yarb",
	"*~",
	".DS_Store",
	".git",
	".hg",
	".svn",
	"CVS",
	"__pycache__",
	"_svn",
	"vssver.scc",
	"vssver2.scc",
}

// Matcher tests single path segments against doublestar name patterns.
// The zero value ignores nothing. A Matcher is immutable and safe for
// concurrent use.
type Matcher struct {
	patterns []string
}

// DefaultNames returns a copy of the built-in ignored name patterns.
func DefaultNames() []string {
	out := make([]string, len(defaultNames))
	copy(out, defaultNames)
	return out
}

// Default returns a Matcher using DefaultNames.
func Default() *Matcher {
	return &Matcher{patterns: DefaultNames()}
}

// New returns a Matcher for patterns. Patterns match a single file name and
// must not contain a separator.
func New(patterns []string) (*Matcher, error) {
	for _, pat := range patterns {
		if strings.Contains(pat, "/") {
			return nil, fmt.Errorf("ignored name pattern %q must not contain '/'", pat)
		}
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid ignored name pattern %q", pat)
		}
	}
	return &Matcher{patterns: append([]string(nil), patterns...)}, nil
}

// Parse splits a semicolon-separated list ("CVS;.git;*.pyc") and returns the
// Matcher for it. Empty entries are dropped.
func Parse(list string) (*Matcher, error) {
	var patterns []string
	for _, part := range strings.Split(list, ";") {
		if part = strings.TrimSpace(part); part != "" {
			patterns = append(patterns, part)
		}
	}
	return New(patterns)
}

// IsIgnored reports whether name matches any pattern.
func (m *Matcher) IsIgnored(name string) bool {
	if m == nil || name == "" {
		return false
	}
	for _, pat := range m.patterns {
		if matched, err := doublestar.Match(pat, name); err == nil && matched {
			return true
		}
	}
	return false
}

// Patterns returns a copy of the configured patterns.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}

// String renders the patterns as a semicolon-separated list.
func (m *Matcher) String() string {
	return strings.Join(m.Patterns(), ";")
}
