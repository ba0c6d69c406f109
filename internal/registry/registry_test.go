// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/invowk/rootindex/internal/trie"
	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/projectmodel"
	"github.com/invowk/rootindex/pkg/types"
)

func path(s string) fspath.Path { return fspath.Parse(s) }

func kindsAt(snap *Snapshot, p string) []RootKind {
	var kinds []RootKind
	for _, m := range snap.MarkersAt(path(p), trie.AllFamilies) {
		kinds = append(kinds, m.Kind)
	}
	return kinds
}

func sampleProject() projectmodel.Project {
	return projectmodel.Project{
		Modules: []projectmodel.Module{
			{
				Name: "module1",
				ContentRoots: []projectmodel.ContentRoot{{
					Path:          path("/root/module1"),
					SourceRoots:   []projectmodel.SourceRoot{{Path: path("/root/module1/src")}},
					ExcludedRoots: []fspath.Path{path("/root/module1/excluded")},
				}},
				Dependencies: []projectmodel.DependencyEdge{
					projectmodel.ModuleDependency("module2", projectmodel.ScopeCompile, true),
					projectmodel.LibraryDependency(projectmodel.LevelProject, "guava", projectmodel.ScopeCompile, false),
					projectmodel.LibraryDependency(projectmodel.LevelProject, "missing", projectmodel.ScopeCompile, false),
					projectmodel.InheritedSdkDependency(),
				},
			},
			{
				Name:         "module2",
				ContentRoots: []projectmodel.ContentRoot{{Path: path("/root/module2")}},
				Dependencies: []projectmodel.DependencyEdge{
					projectmodel.ModuleLibraryDependency(projectmodel.Library{
						Name:    "lib.js",
						Classes: []fspath.Path{path("/root/module2/lib")},
					}, projectmodel.ScopeTest, false),
				},
			},
		},
		Libraries: []projectmodel.Library{{
			Name:    "guava",
			Level:   projectmodel.LevelProject,
			Classes: []fspath.Path{path("/repo/guava.jar")},
			Sources: []fspath.Path{path("/repo/guava-src")},
		}},
		Sdks:       []projectmodel.Sdk{{Name: "jdk", Classes: []fspath.Path{path("/jdk/rt")}}},
		ProjectSdk: "jdk",
		OutputPath: path("/root/out"),
	}
}

func TestRebuild_PublishesSnapshot(t *testing.T) {
	t.Parallel()

	r := New(Config{})
	if r.Current().Generation() != 0 {
		t.Fatalf("initial generation = %d, want 0", r.Current().Generation())
	}

	snap, err := r.Rebuild(context.Background(), Input{Project: sampleProject()})
	if err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}
	if r.Current() != snap || snap.Generation() != 1 {
		t.Errorf("Current() not published or wrong generation %d", snap.Generation())
	}

	if got := kindsAt(snap, "/root/module1"); len(got) != 1 || got[0] != KindContent {
		t.Errorf("markers at content root = %v", got)
	}
	if got := kindsAt(snap, "/root/module1/excluded"); len(got) != 1 || got[0] != KindExcluded {
		t.Errorf("markers at excluded root = %v", got)
	}
	if got := kindsAt(snap, "/root/module2/lib"); len(got) != 1 || got[0] != KindLibraryClasses {
		t.Errorf("markers at module library root = %v", got)
	}
	if _, ok := snap.Library(projectmodel.ModuleLibraryRef("module2", "lib.js")); !ok {
		t.Error("module-level library not registered")
	}

	edges := snap.Graph().Successors("module:module1")
	if len(edges) != 3 {
		t.Fatalf("module1 edges = %v, want 3 (dangling edge dropped)", edges)
	}
	if edges[2].To != "sdk:jdk" || edges[2].Index != 3 {
		t.Errorf("inherited sdk edge = %+v", edges[2])
	}

	second, err := r.Rebuild(context.Background(), Input{Project: sampleProject()})
	if err != nil {
		t.Fatalf("second Rebuild() error: %v", err)
	}
	if second.Generation() != 2 {
		t.Errorf("second generation = %d, want 2", second.Generation())
	}
	if snap.RootCount() != second.RootCount() {
		t.Error("rebuild of identical input changed the root count")
	}
}

func TestRebuild_ConfigurationErrorsAreIsolated(t *testing.T) {
	t.Parallel()

	project := sampleProject()
	project.Modules[0].ContentRoots[0].SourceRoots = append(project.Modules[0].ContentRoots[0].SourceRoots,
		projectmodel.SourceRoot{Path: path("/elsewhere/src")},
		projectmodel.SourceRoot{Path: path("relative/src")},
	)
	project.Modules = append(project.Modules, projectmodel.Module{Name: "module1"})

	r := New(Config{})
	snap, err := r.Rebuild(context.Background(), Input{Project: project})

	var rebuildErr *RebuildError
	if !errors.As(err, &rebuildErr) {
		t.Fatalf("error = %v, want *RebuildError", err)
	}
	if len(rebuildErr.Errors) != 3 {
		t.Errorf("got %d configuration errors, want 3: %v", len(rebuildErr.Errors), err)
	}
	if !errors.Is(err, projectmodel.ErrConfiguration) {
		t.Error("RebuildError should unwrap to ErrConfiguration")
	}
	if !IsConfigurationOnly(err) {
		t.Error("IsConfigurationOnly() = false")
	}
	if snap == nil || r.Current() != snap {
		t.Fatal("snapshot must be published despite configuration errors")
	}

	m, _ := snap.Module("module1")
	if len(m.SourceRoots) != 1 {
		t.Errorf("module1 source roots = %d, want the valid one only", len(m.SourceRoots))
	}
	if len(snap.Modules()) != 2 {
		t.Errorf("duplicate module was not skipped: %d modules", len(snap.Modules()))
	}
}

func TestRebuild_CancelledContextKeepsCurrent(t *testing.T) {
	t.Parallel()

	r := New(Config{})
	first, _ := r.Rebuild(context.Background(), Input{Project: sampleProject()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap, err := r.Rebuild(ctx, Input{Project: sampleProject()})
	if !errors.Is(err, context.Canceled) || snap != nil {
		t.Fatalf("Rebuild() = (%v, %v), want (nil, context.Canceled)", snap, err)
	}
	if r.Current() != first {
		t.Error("cancelled rebuild replaced the current snapshot")
	}
}

func TestRebuild_ProjectOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		output      string
		wantProject bool
	}{
		{"outside every content root", "/root/out", true},
		{"inside module1 content", "/root/module1/out", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			project := sampleProject()
			project.OutputPath = path(tt.output)

			snap, err := New(Config{}).Rebuild(context.Background(), Input{Project: project})
			if err != nil {
				t.Fatalf("Rebuild() error: %v", err)
			}
			markers := snap.MarkersAt(path(tt.output), trie.FamilyModule)
			if len(markers) != 1 || markers[0].Kind != KindOutput {
				t.Fatalf("markers = %v", markers)
			}
			if markers[0].IsProjectWide() != tt.wantProject {
				t.Errorf("IsProjectWide() = %v, want %v", markers[0].IsProjectWide(), tt.wantProject)
			}
			if !tt.wantProject && markers[0].Owner.Name != "module1" {
				t.Errorf("owner = %v, want module1", markers[0].Owner)
			}
		})
	}
}

func TestRebuild_ModuleOutputExcluded(t *testing.T) {
	t.Parallel()

	project := sampleProject()
	project.Modules[1].Output = projectmodel.OutputPaths{InheritProject: true, Exclude: true}

	snap, err := New(Config{}).Rebuild(context.Background(), Input{Project: project})
	if err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}
	for _, dir := range []string{"/root/out/production/module2", "/root/out/test/module2"} {
		if got := kindsAt(snap, dir); len(got) != 1 || got[0] != KindOutput {
			t.Errorf("markers at %s = %v", dir, got)
		}
	}
}

func TestRebuild_UnloadedModuleKeepsContentRootsOnly(t *testing.T) {
	t.Parallel()

	snap, err := New(Config{}).Rebuild(context.Background(), Input{
		Project:  sampleProject(),
		Unloaded: map[types.ModuleName]bool{"module1": true},
	})
	if err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}
	if !snap.IsUnloaded("module1") || snap.IsUnloaded("module2") {
		t.Error("IsUnloaded() mismatch")
	}
	if got := kindsAt(snap, "/root/module1/src"); got != nil {
		t.Errorf("unloaded module source root indexed: %v", got)
	}
	if got := kindsAt(snap, "/root/module1"); len(got) != 1 || got[0] != KindContent {
		t.Errorf("unloaded module content root = %v", got)
	}
	if len(snap.Graph().Successors("module:module1")) == 0 {
		t.Error("unloaded module edges must stay in the graph")
	}
	for _, root := range snap.IndexableRoots() {
		if root.String() == "/root/module1" {
			t.Error("unloaded content root listed as indexable")
		}
	}
}

func TestRebuild_CycleIsNotAnError(t *testing.T) {
	t.Parallel()

	project := projectmodel.Project{Modules: []projectmodel.Module{
		{Name: "a", Dependencies: []projectmodel.DependencyEdge{projectmodel.ModuleDependency("b", projectmodel.ScopeCompile, true)}},
		{Name: "b", Dependencies: []projectmodel.DependencyEdge{projectmodel.ModuleDependency("a", projectmodel.ScopeCompile, true)}},
	}}
	if _, err := New(Config{}).Rebuild(context.Background(), Input{Project: project}); err != nil {
		t.Errorf("Rebuild() with a module cycle returned %v", err)
	}
}

func TestRebuild_ModuleLevelLibraryInProjectList(t *testing.T) {
	t.Parallel()

	project := projectmodel.Project{Libraries: []projectmodel.Library{{Name: "x", Level: projectmodel.LevelModule}}}
	_, err := New(Config{}).Rebuild(context.Background(), Input{Project: project})
	if !errors.Is(err, projectmodel.ErrConfiguration) {
		t.Errorf("error = %v, want configuration error", err)
	}
}

func TestRebuild_UnnamedModuleLibraries(t *testing.T) {
	t.Parallel()

	project := projectmodel.Project{Modules: []projectmodel.Module{{
		Name:         "a",
		ContentRoots: []projectmodel.ContentRoot{{Path: path("/root/a")}},
		Dependencies: []projectmodel.DependencyEdge{
			projectmodel.ModuleLibraryDependency(projectmodel.Library{Classes: []fspath.Path{path("/repo/a.jar")}},
				projectmodel.ScopeCompile, false),
			projectmodel.ModuleLibraryDependency(projectmodel.Library{Classes: []fspath.Path{path("/repo/b.jar")}},
				projectmodel.ScopeTest, false),
		},
	}}}

	snap, err := New(Config{}).Rebuild(context.Background(), Input{Project: project})
	if err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}
	for i, root := range []string{"/repo/a.jar", "/repo/b.jar"} {
		lib, ok := snap.Library(projectmodel.UnnamedModuleLibraryRef("a", i))
		if !ok {
			t.Fatalf("unnamed library %d not registered", i)
		}
		if len(lib.Classes) != 1 || lib.Classes[0].String() != root {
			t.Errorf("library %d classes = %v, want [%s]", i, lib.Classes, root)
		}
		if got := kindsAt(snap, root); len(got) != 1 || got[0] != KindLibraryClasses {
			t.Errorf("markers at %s = %v", root, got)
		}
	}
	if edges := snap.Graph().Successors("module:a"); len(edges) != 2 {
		t.Errorf("module a edges = %v, want 2", edges)
	}
}

func TestSnapshot_AccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	project := sampleProject()
	snap, err := New(Config{}).Rebuild(context.Background(), Input{Project: project})
	if err != nil {
		t.Fatalf("Rebuild() error: %v", err)
	}

	modules := snap.Modules()
	first := modules[0]
	modules[0] = nil
	if snap.Modules()[0] != first || len(snap.Modules()) != len(project.Modules) {
		t.Error("modifying Modules() changed the snapshot")
	}

	libraries := snap.Libraries()
	libraries[0] = nil
	if snap.Libraries()[0] == nil {
		t.Error("modifying Libraries() changed the snapshot")
	}

	m, _ := snap.Module(project.Modules[0].Name)
	deps := len(m.Dependencies)
	project.Modules[0].Dependencies[0] = projectmodel.ModuleDependency("other", projectmodel.ScopeTest, false)
	if len(m.Dependencies) != deps || m.Dependencies[0].Module == "other" {
		t.Error("modifying the input project changed the snapshot")
	}
}
