// SPDX-License-Identifier: MPL-2.0

// Package dag provides the dependency graph between modules, libraries and
// SDKs. Nodes are plain string identifiers and edges point from a module to
// the entity it depends on. The graph supports forward and reverse lookups,
// reverse breadth-first traversal with export propagation, and topological
// sorting for cycle diagnostics.
//
// Module-level cycles are legal input: traversals terminate through visited
// sets and only TopologicalSort reports them.
package dag

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/invowk/rootindex/pkg/projectmodel"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle contains the nodes that form the cycle (not necessarily all of them,
		// but enough to identify the problem).
		Cycle []string
	}

	// Edge is one dependency: From depends on To.
	Edge struct {
		From     string
		To       string
		Scope    projectmodel.Scope
		Exported bool
		// Index is the position of the edge in the declaring module's dependency list.
		Index int
	}

	// Graph is a directed dependency graph.
	// Nodes are identified by string keys. An edge from A to B means A depends on B.
	Graph struct {
		// successors maps each node to its outgoing edges in insertion order.
		successors map[string][]Edge
		// predecessors maps each node to its incoming edges in insertion order.
		predecessors map[string][]Edge
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []string
		// nodeSet provides O(1) lookup for node existence.
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		successors:   make(map[string][]Edge),
		predecessors: make(map[string][]Edge),
		nodeSet:      make(map[string]bool),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge adds the edge e. Both endpoints are implicitly added if they don't exist.
func (g *Graph) AddEdge(e Edge) {
	g.AddNode(e.From)
	g.AddNode(e.To)
	g.successors[e.From] = append(g.successors[e.From], e)
	g.predecessors[e.To] = append(g.predecessors[e.To], e)
}

// HasNode reports whether name is a node of the graph.
func (g *Graph) HasNode(name string) bool { return g.nodeSet[name] }

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []string { return slices.Clone(g.nodes) }

// SortedNodes returns every node in lexical order.
func (g *Graph) SortedNodes() []string {
	keys := maps.Keys(g.nodeSet)
	slices.Sort(keys)
	return keys
}

// Successors returns the outgoing edges of name: what it depends on.
func (g *Graph) Successors(name string) []Edge { return slices.Clone(g.successors[name]) }

// Predecessors returns the incoming edges of name: who depends on it.
func (g *Graph) Predecessors(name string) []Edge { return slices.Clone(g.predecessors[name]) }

// WalkDependents visits, breadth-first, every node that reaches start
// through reverse edges. Each dependent is visited once, through the first
// edge that reaches it. The walk continues past a dependent only when follow
// returns true for an edge leading into it; a dependent first reached through
// a non-followed edge is still expanded later if a followed edge reaches it.
func (g *Graph) WalkDependents(start string, follow func(Edge) bool, visit func(Edge)) {
	visited := map[string]bool{start: true}
	expanded := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range g.predecessors[cur] {
			if !visited[e.From] {
				visited[e.From] = true
				visit(e)
			}
			if !expanded[e.From] && follow(e) {
				expanded[e.From] = true
				queue = append(queue, e.From)
			}
		}
	}
}

// Subgraph returns a graph keeping only the nodes for which keep returns true
// and the edges between them.
func (g *Graph) Subgraph(keep func(node string) bool) *Graph {
	sub := New()
	for _, n := range g.nodes {
		if keep(n) {
			sub.AddNode(n)
		}
	}
	for _, n := range g.nodes {
		for _, e := range g.successors[n] {
			if sub.nodeSet[e.From] && sub.nodeSet[e.To] {
				sub.AddEdge(e)
			}
		}
	}
	return sub
}

// TopologicalSort returns a dependency order using Kahn's algorithm: for every
// edge A -> B, A comes before B.
// Returns CycleError if the graph contains a cycle.
// The returned order is deterministic: nodes at the same topological level
// appear in the order they were first added to the graph.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	// Compute in-degrees.
	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = len(g.predecessors[node])
	}

	// Seed the queue with nodes that have no incoming edges, in insertion order.
	queue := make([]string, 0)
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, e := range g.successors[node] {
			inDegree[e.To]--
			if inDegree[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}

	if len(result) != len(g.nodes) {
		// Remaining nodes with non-zero in-degree form the cycle.
		var cycleNodes []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycleNodes = append(cycleNodes, node)
			}
		}
		return nil, &CycleError{Cycle: cycleNodes}
	}

	return result, nil
}
