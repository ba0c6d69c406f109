// SPDX-License-Identifier: MPL-2.0

package projectmodel

import (
	"errors"
	"testing"

	"github.com/invowk/rootindex/pkg/fspath"
)

func TestParseScope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{"", ScopeCompile, false},
		{"compile", ScopeCompile, false},
		{"TEST", ScopeTest, false},
		{"Runtime", ScopeRuntime, false},
		{"provided", ScopeProvided, false},
		{"system", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseScope(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseScope(%q) error = %v", tt.in, err)
			}
			if err != nil && !errors.Is(err, ErrInvalidScope) {
				t.Errorf("error should wrap ErrInvalidScope: %v", err)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseScope(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDependencyEdge_Target(t *testing.T) {
	t.Parallel()

	lib := Library{Name: "lib.js", Classes: []fspath.Path{fspath.Parse("/lib/file.cls")}}

	tests := []struct {
		name   string
		edge   DependencyEdge
		want   string
		wantOK bool
	}{
		{"module", ModuleDependency("module2", ScopeCompile, false), "module:module2", true},
		{"project library", LibraryDependency(LevelProject, "guava", ScopeCompile, false), "library:project:guava", true},
		{"module library", ModuleLibraryDependency(lib, ScopeTest, false), `library:module:"module1"/"lib.js"`, true},
		{"unnamed module library", ModuleLibraryDependency(Library{Classes: lib.Classes}, ScopeTest, false), `library:module:"module1"/#3`, true},
		{"sdk", SdkDependency("jdk"), "sdk:jdk", true},
		{"inherited sdk", InheritedSdkDependency(), "sdk:project-jdk", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ref, ok := tt.edge.Target("module1", 3, "project-jdk")
			if ok != tt.wantOK || ref.ID() != tt.want {
				t.Errorf("Target() = (%q, %v), want (%q, %v)", ref.ID(), ok, tt.want, tt.wantOK)
			}
		})
	}

	if _, ok := InheritedSdkDependency().Target("module1", 0, ""); ok {
		t.Error("inherited sdk without project sdk should have no target")
	}
}

func TestEntityRef_ModuleLibraryIDsDoNotCollide(t *testing.T) {
	t.Parallel()

	refs := []EntityRef{
		ModuleLibraryRef("a/b", "c"),
		ModuleLibraryRef("a", "b/c"),
		ModuleLibraryRef("a", "#0"),
		UnnamedModuleLibraryRef("a", 0),
		UnnamedModuleLibraryRef("a", 1),
		LibraryRef(LevelProject, "a/b/c"),
	}
	seen := make(map[string]EntityRef)
	for _, ref := range refs {
		if prev, dup := seen[ref.ID()]; dup {
			t.Errorf("%v and %v share the id %q", prev, ref, ref.ID())
		}
		seen[ref.ID()] = ref
	}

	if got := UnnamedModuleLibraryRef("a", 1).String(); got != "library #1 (module a)" {
		t.Errorf("String() = %q", got)
	}
}

func TestModule_OutputDirs(t *testing.T) {
	t.Parallel()

	out := fspath.Parse("/root/out")
	inherit := Module{Name: "module1", Output: OutputPaths{InheritProject: true}}
	dirs := inherit.OutputDirs(out)
	if len(dirs) != 2 || dirs[0].String() != "/root/out/production/module1" || dirs[1].String() != "/root/out/test/module1" {
		t.Errorf("inherited OutputDirs() = %v", dirs)
	}
	if got := inherit.OutputDirs(fspath.Path{}); got != nil {
		t.Errorf("inherited OutputDirs() without project output = %v, want nil", got)
	}

	explicit := Module{Name: "module2", Output: OutputPaths{Production: fspath.Parse("/root/m2out")}}
	if got := explicit.OutputDirs(out); len(got) != 1 || got[0].String() != "/root/m2out" {
		t.Errorf("explicit OutputDirs() = %v", got)
	}
}

func TestOrderEntry_LibraryName(t *testing.T) {
	t.Parallel()

	e := OrderEntry{Owner: "module1", Kind: EntryLibrary, Target: ModuleLibraryRef("module1", "lib.js"), Scope: ScopeTest}
	if e.LibraryName() != "lib.js" {
		t.Errorf("LibraryName() = %q", e.LibraryName())
	}
	src := OrderEntry{Owner: "module1", Kind: EntryModuleSource, Target: ModuleRef("module1")}
	if src.LibraryName() != "" {
		t.Errorf("module-source LibraryName() = %q, want empty", src.LibraryName())
	}
}
