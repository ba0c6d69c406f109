// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/invowk/rootindex/pkg/projectmodel"
)

func TestTopologicalSort_EmptyGraph(t *testing.T) {
	t.Parallel()
	g := New()
	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil, got %v", order)
	}
}

func TestTopologicalSort_SingleNode(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddNode("A")
	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{"A"}) {
		t.Errorf("expected [A], got %v", order)
	}
}

func TestTopologicalSort_LinearChain(t *testing.T) {
	t.Parallel()
	g := New()
	// A -> B -> C (A depends on B, B depends on C)
	g.AddEdge(Edge{From: "A", To: "B"})
	g.AddEdge(Edge{From: "B", To: "C"})

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"A", "B", "C"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestTopologicalSort_Diamond(t *testing.T) {
	t.Parallel()
	g := New()
	// A -> B, A -> C, B -> D, C -> D
	g.AddEdge(Edge{From: "A", To: "B"})
	g.AddEdge(Edge{From: "A", To: "C"})
	g.AddEdge(Edge{From: "B", To: "D"})
	g.AddEdge(Edge{From: "C", To: "D"})

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A must be first, D must be last
	if order[0] != "A" {
		t.Errorf("expected A first, got %v", order)
	}
	if order[len(order)-1] != "D" {
		t.Errorf("expected D last, got %v", order)
	}
	if len(order) != 4 {
		t.Errorf("expected 4 nodes, got %d: %v", len(order), order)
	}
}

func TestTopologicalSort_SimpleCycle(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge(Edge{From: "A", To: "B"})
	g.AddEdge(Edge{From: "B", To: "A"})

	_, err := g.TopologicalSort()
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
	if len(cycleErr.Cycle) < 2 {
		t.Errorf("expected at least 2 nodes in cycle, got %v", cycleErr.Cycle)
	}
}

func TestTopologicalSort_SelfLoop(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge(Edge{From: "A", To: "A"})

	_, err := g.TopologicalSort()
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
}

func TestTopologicalSort_ComplexCycle(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge(Edge{From: "A", To: "B"})
	g.AddEdge(Edge{From: "B", To: "C"})
	g.AddEdge(Edge{From: "C", To: "A"})

	_, err := g.TopologicalSort()
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
	if len(cycleErr.Cycle) < 3 {
		t.Errorf("expected at least 3 nodes in cycle, got %v", cycleErr.Cycle)
	}
}

func TestTopologicalSort_DisconnectedComponents(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge(Edge{From: "A", To: "B"})
	g.AddNode("C")
	g.AddNode("D")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 4 {
		t.Errorf("expected 4 nodes, got %d: %v", len(order), order)
	}
	// A must come before B
	aIdx := slices.Index(order, "A")
	bIdx := slices.Index(order, "B")
	if aIdx >= bIdx {
		t.Errorf("A (idx %d) must come before B (idx %d) in %v", aIdx, bIdx, order)
	}
}

func TestTopologicalSort_DuplicateEdges(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge(Edge{From: "A", To: "B"})
	g.AddEdge(Edge{From: "A", To: "B"}) // duplicate

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Duplicates just increase in-degree; Kahn's algorithm handles them.
	if !slices.Equal(order, []string{"A", "B"}) {
		t.Errorf("expected [A, B], got %v", order)
	}
}

func TestCycleError_Message(t *testing.T) {
	t.Parallel()
	err := &CycleError{Cycle: []string{"A", "B", "C"}}
	expected := "dependency cycle detected: A -> B -> C"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestPredecessorsAndSuccessors(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge(Edge{From: "module:a", To: "library:project:guava", Index: 0})
	g.AddEdge(Edge{From: "module:b", To: "library:project:guava", Index: 2, Scope: projectmodel.ScopeTest})

	preds := g.Predecessors("library:project:guava")
	if len(preds) != 2 || preds[0].From != "module:a" || preds[1].From != "module:b" {
		t.Errorf("Predecessors() = %v", preds)
	}
	if preds[1].Scope != projectmodel.ScopeTest || preds[1].Index != 2 {
		t.Errorf("edge attributes lost: %+v", preds[1])
	}
	if succ := g.Successors("module:a"); len(succ) != 1 || succ[0].To != "library:project:guava" {
		t.Errorf("Successors() = %v", succ)
	}
	if !g.HasNode("module:b") || g.HasNode("module:c") {
		t.Error("HasNode() mismatch")
	}
	if got := g.SortedNodes(); !slices.Equal(got, []string{"library:project:guava", "module:a", "module:b"}) {
		t.Errorf("SortedNodes() = %v", got)
	}
}

func walk(g *Graph, start string) []string {
	var got []string
	g.WalkDependents(start, func(e Edge) bool { return e.Exported }, func(e Edge) {
		got = append(got, e.From)
	})
	return got
}

func TestWalkDependents_ExportPropagation(t *testing.T) {
	t.Parallel()
	g := New()
	// unloaded -> main -> util, main -(exported)-> common
	g.AddEdge(Edge{From: "unloaded", To: "main"})
	g.AddEdge(Edge{From: "main", To: "util"})
	g.AddEdge(Edge{From: "main", To: "common", Exported: true})

	tests := []struct {
		start string
		want  []string
	}{
		{"main", []string{"unloaded"}},
		{"util", []string{"main"}},
		{"common", []string{"main", "unloaded"}},
		{"unloaded", nil},
	}
	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			t.Parallel()
			if got := walk(g, tt.start); !slices.Equal(got, tt.want) {
				t.Errorf("WalkDependents(%q) = %v, want %v", tt.start, got, tt.want)
			}
		})
	}
}

func TestWalkDependents_Cycle(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge(Edge{From: "A", To: "B", Exported: true})
	g.AddEdge(Edge{From: "B", To: "A", Exported: true})
	g.AddEdge(Edge{From: "B", To: "lib", Exported: true})

	got := walk(g, "lib")
	if !slices.Equal(got, []string{"B", "A"}) {
		t.Errorf("WalkDependents(lib) = %v, want [B A]", got)
	}
}

func TestWalkDependents_LateExportedEdgeExpands(t *testing.T) {
	t.Parallel()
	g := New()
	// N reaches lib directly (not exported) and through M (exported both ways).
	g.AddEdge(Edge{From: "N", To: "lib"})
	g.AddEdge(Edge{From: "M", To: "lib", Exported: true})
	g.AddEdge(Edge{From: "N", To: "M", Exported: true})
	g.AddEdge(Edge{From: "X", To: "N"})

	got := walk(g, "lib")
	if !slices.Equal(got, []string{"N", "M", "X"}) {
		t.Errorf("WalkDependents(lib) = %v, want [N M X]", got)
	}
}

func TestSubgraph(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge(Edge{From: "module:a", To: "module:b"})
	g.AddEdge(Edge{From: "module:b", To: "module:a"})
	g.AddEdge(Edge{From: "module:a", To: "sdk:jdk"})

	sub := g.Subgraph(func(n string) bool { return strings.HasPrefix(n, "module:") })
	if sub.HasNode("sdk:jdk") {
		t.Error("Subgraph kept a filtered node")
	}
	if _, err := sub.TopologicalSort(); err == nil {
		t.Error("expected the module cycle to survive in the subgraph")
	}
}
