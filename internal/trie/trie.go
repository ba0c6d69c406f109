// SPDX-License-Identifier: MPL-2.0

// Package trie provides a path-segment trie holding root markers.
//
// Every registered root is stored as a marker on the node of its path. A
// lookup walks from the trie root towards the queried path and returns the
// markers found on each ancestor, root-first, so callers can apply
// "deepest marker wins" precedence in a single pass. Markers are grouped in
// families (module roots, library roots); a lookup names the families it
// wants and never sees the others.
//
// A Trie is not safe for concurrent mutation. The registry builds a fresh
// trie per rebuild and only reads it afterwards, which is safe from any
// number of goroutines.
package trie

import (
	"github.com/invowk/rootindex/pkg/fspath"
)

const (
	// FamilyModule holds content, source and excluded roots of modules plus
	// compiler output exclusions.
	FamilyModule Family = 1 << iota
	// FamilyLibrary holds library and SDK classes, sources and excluded roots.
	FamilyLibrary

	// AllFamilies selects every family.
	AllFamilies = FamilyModule | FamilyLibrary
)

type (
	// Family is a bit set of marker families.
	Family uint8

	// Marker is the constraint for values stored in a Trie.
	Marker interface {
		comparable
		Family() Family
	}

	// Hit is the set of matching markers found on one ancestor of a query.
	Hit[M Marker] struct {
		// Path is the ancestor carrying the markers.
		Path fspath.Path
		// Markers lists the markers in insertion order.
		Markers []M
	}

	// Trie maps path prefixes to markers.
	Trie[M Marker] struct {
		cs    fspath.Case
		root  *node[M]
		count int
	}

	node[M Marker] struct {
		children map[string]*node[M]
		markers  []M
	}
)

// Has reports whether f shares any bit with other.
func (f Family) Has(other Family) bool { return f&other != 0 }

// New creates an empty trie. Keys are folded according to cs.
func New[M Marker](cs fspath.Case) *Trie[M] {
	return &Trie[M]{cs: cs, root: &node[M]{}}
}

// Case returns the case sensitivity the trie was built with.
func (t *Trie[M]) Case() fspath.Case { return t.cs }

// Len returns the number of stored markers.
func (t *Trie[M]) Len() int { return t.count }

// Insert adds marker m on path p. Inserting the same marker twice on the same
// path is a no-op.
func (t *Trie[M]) Insert(p fspath.Path, m M) {
	n := t.root
	for i := range p.Len() {
		key := t.cs.Fold(p.Segment(i))
		child, ok := n.children[key]
		if !ok {
			if n.children == nil {
				n.children = make(map[string]*node[M])
			}
			child = &node[M]{}
			n.children[key] = child
		}
		n = child
	}
	for _, existing := range n.markers {
		if existing == m {
			return
		}
	}
	n.markers = append(n.markers, m)
	t.count++
}

// Remove deletes marker m from path p and prunes nodes left with neither
// markers nor children. It reports whether the marker was present.
func (t *Trie[M]) Remove(p fspath.Path, m M) bool {
	path := make([]*node[M], 0, p.Len()+1)
	n := t.root
	path = append(path, n)
	for i := range p.Len() {
		child, ok := n.children[t.cs.Fold(p.Segment(i))]
		if !ok {
			return false
		}
		n = child
		path = append(path, n)
	}

	idx := -1
	for i, existing := range n.markers {
		if existing == m {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	n.markers = append(n.markers[:idx], n.markers[idx+1:]...)
	t.count--

	for i := len(path) - 1; i > 0; i-- {
		cur := path[i]
		if len(cur.markers) > 0 || len(cur.children) > 0 {
			break
		}
		delete(path[i-1].children, t.cs.Fold(p.Segment(i-1)))
	}
	return true
}

// MarkersOnPathTo returns the markers of the requested families found on p
// and its ancestors, ordered root-first so the nearest hit is last. Ancestors
// without matching markers are omitted.
func (t *Trie[M]) MarkersOnPathTo(p fspath.Path, families Family) []Hit[M] {
	var hits []Hit[M]
	n := t.root
	for depth := 0; ; depth++ {
		if matched := filter(n.markers, families); len(matched) > 0 {
			hits = append(hits, Hit[M]{Path: p.Prefix(depth), Markers: matched})
		}
		if depth == p.Len() {
			break
		}
		child, ok := n.children[t.cs.Fold(p.Segment(depth))]
		if !ok {
			break
		}
		n = child
	}
	return hits
}

// MarkersAt returns the markers of the requested families stored exactly on p.
func (t *Trie[M]) MarkersAt(p fspath.Path, families Family) []M {
	n := t.root
	for i := range p.Len() {
		child, ok := n.children[t.cs.Fold(p.Segment(i))]
		if !ok {
			return nil
		}
		n = child
	}
	return filter(n.markers, families)
}

func filter[M Marker](markers []M, families Family) []M {
	var out []M
	for _, m := range markers {
		if m.Family().Has(families) {
			out = append(out, m)
		}
	}
	return out
}
