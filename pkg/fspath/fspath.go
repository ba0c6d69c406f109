// SPDX-License-Identifier: MPL-2.0

// Package fspath provides Path, the normalized unit of every index lookup.
//
// A Path is an immutable sequence of segments plus an absolute flag. Parsing
// converts separators to forward slashes and cleans "." and ".." elements so
// two spellings of the same location compare equal. Comparison helpers take a
// Case so callers choose case-sensitive or case-insensitive semantics per
// index rather than per call site.
package fspath

import (
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/invowk/rootindex/pkg/types"
)

const (
	// CaseSensitive compares segments byte for byte.
	CaseSensitive Case = iota
	// CaseInsensitive compares segments after Unicode lower-casing.
	CaseInsensitive
)

type (
	// Case selects how path segments are compared.
	Case uint8

	// Path is a normalized, slash-separated path split into segments.
	// The zero value is the empty relative path and is reported by IsZero.
	Path struct {
		segs []string
		abs  bool
	}
)

// Fold returns the comparison key of a single segment.
func (c Case) Fold(seg string) string {
	if c == CaseInsensitive {
		return strings.ToLower(seg)
	}
	return seg
}

// String returns "case-sensitive" or "case-insensitive".
func (c Case) String() string {
	if c == CaseInsensitive {
		return "case-insensitive"
	}
	return "case-sensitive"
}

// Parse normalizes raw into a Path. Backslashes are treated as separators so
// Windows-style input is accepted on every platform. A leading drive letter
// ("C:", "/C:") makes the path absolute with the upper-cased drive as its
// first segment, which ".." never removes. An empty or "." input yields the
// zero Path.
func Parse(raw string) Path {
	if raw == "" {
		return Path{}
	}
	s := strings.ReplaceAll(raw, "\\", "/")
	if drive, rest, ok := cutDrive(s); ok {
		segs := []string{drive}
		if rest = strings.Trim(path.Clean("/"+rest), "/"); rest != "" {
			segs = append(segs, strings.Split(rest, "/")...)
		}
		return Path{segs: segs, abs: true}
	}
	s = path.Clean(s)
	abs := strings.HasPrefix(s, "/")
	s = strings.Trim(s, "/")
	if s == "" || s == "." {
		return Path{abs: abs}
	}
	return Path{segs: strings.Split(s, "/"), abs: abs}
}

// cutDrive splits a slash-separated path that starts with a drive letter,
// optionally behind one slash, into the normalized drive and the remainder.
func cutDrive(s string) (drive, rest string, ok bool) {
	s = strings.TrimPrefix(s, "/")
	head, rest, _ := strings.Cut(s, "/")
	if !isDriveLetter(head) {
		return "", "", false
	}
	return strings.ToUpper(head), rest, true
}

// FromFilesystem validates p, resolves it against the working directory and
// returns the normalized Path.
func FromFilesystem(p types.FilesystemPath) (Path, error) {
	if err := p.Validate(); err != nil {
		return Path{}, err
	}
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return Path{}, fmt.Errorf("resolving absolute path: %w", err)
	}
	return Parse(abs), nil
}

// New builds an absolute Path from already-split segments.
func New(segments ...string) Path {
	return Parse("/" + strings.Join(segments, "/"))
}

// IsZero reports whether p is the empty relative path.
func (p Path) IsZero() bool { return !p.abs && len(p.segs) == 0 }

// IsAbs reports whether p is rooted.
func (p Path) IsAbs() bool { return p.abs }

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segs) }

// Segment returns the i-th segment.
func (p Path) Segment(i int) string { return p.segs[i] }

// Segments returns a copy of the segments.
func (p Path) Segments() []string { return slices.Clone(p.segs) }

// Name returns the last segment, or "" for a root or zero path.
func (p Path) Name() string {
	if len(p.segs) == 0 {
		return ""
	}
	return p.segs[len(p.segs)-1]
}

// String returns the slash-separated form.
func (p Path) String() string {
	joined := strings.Join(p.segs, "/")
	if p.abs {
		return "/" + joined
	}
	if joined == "" {
		return "."
	}
	return joined
}

// OS returns the path using the platform separator, suitable for os and afero calls.
func (p Path) OS() string {
	s := p.String()
	if len(p.segs) > 0 && isDriveLetter(p.segs[0]) {
		s = strings.TrimPrefix(s, "/")
	}
	return filepath.FromSlash(s)
}

// Prefix returns the ancestor made of the first n segments.
func (p Path) Prefix(n int) Path {
	if n >= len(p.segs) {
		return p
	}
	return Path{segs: p.segs[:n:n], abs: p.abs}
}

// Parent returns the parent path and false when p has no segments left.
func (p Path) Parent() (Path, bool) {
	if len(p.segs) == 0 {
		return p, false
	}
	return p.Prefix(len(p.segs) - 1), true
}

// Join appends elem to p. Each element is parsed, so "a/b" adds two segments
// and ".." removes one.
func (p Path) Join(elem ...string) Path {
	if len(elem) == 0 {
		return p
	}
	return Parse(p.String() + "/" + strings.Join(elem, "/"))
}

// Equal reports whether p and q name the same location under c.
func (p Path) Equal(q Path, c Case) bool {
	if p.abs != q.abs || len(p.segs) != len(q.segs) {
		return false
	}
	return p.hasSegmentPrefix(q, c)
}

// HasPrefix reports whether q is p itself or one of its ancestors.
func (p Path) HasPrefix(q Path, c Case) bool {
	if p.abs != q.abs || len(q.segs) > len(p.segs) {
		return false
	}
	return p.hasSegmentPrefix(q, c)
}

func (p Path) hasSegmentPrefix(q Path, c Case) bool {
	for i, seg := range q.segs {
		if c.Fold(seg) != c.Fold(p.segs[i]) {
			return false
		}
	}
	return true
}

// Rel returns the segments of p below base, and false when base is not an
// ancestor of p.
func (p Path) Rel(base Path, c Case) ([]string, bool) {
	if !p.HasPrefix(base, c) {
		return nil, false
	}
	return slices.Clone(p.segs[len(base.segs):]), true
}

// Key returns a string usable as a map key under c.
func (p Path) Key(c Case) string {
	s := p.String()
	if c == CaseInsensitive {
		return strings.ToLower(s)
	}
	return s
}

// Compare orders paths lexicographically by segment, shorter first on ties.
func Compare(a, b Path) int {
	if a.abs != b.abs {
		if a.abs {
			return 1
		}
		return -1
	}
	return slices.Compare(a.segs, b.segs)
}

func isDriveLetter(seg string) bool {
	return len(seg) == 2 && seg[1] == ':' &&
		((seg[0] >= 'a' && seg[0] <= 'z') || (seg[0] >= 'A' && seg[0] <= 'Z'))
}
