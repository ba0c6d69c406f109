// SPDX-License-Identifier: MPL-2.0

package fspath_test

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/invowk/rootindex/pkg/fspath"
	"github.com/invowk/rootindex/pkg/types"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		want     string
		segments []string
		abs      bool
	}{
		{"/root/module1/src1", "/root/module1/src1", []string{"root", "module1", "src1"}, true},
		{"/root//module1/./src1/", "/root/module1/src1", []string{"root", "module1", "src1"}, true},
		{"/root/module1/../module3", "/root/module3", []string{"root", "module3"}, true},
		{`C:\work\lib`, "/C:/work/lib", []string{"C:", "work", "lib"}, true},
		{"/C:/work/lib", "/C:/work/lib", []string{"C:", "work", "lib"}, true},
		{`c:\work\..\lib`, "/C:/lib", []string{"C:", "lib"}, true},
		{"C:/../..", "/C:", []string{"C:"}, true},
		{"C:", "/C:", []string{"C:"}, true},
		{"/", "/", nil, true},
		{"relative/dir", "relative/dir", []string{"relative", "dir"}, false},
		{"", ".", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			p := fspath.Parse(tt.raw)
			if got := p.String(); got != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.raw, got, tt.want)
			}
			if got := p.Segments(); !slices.Equal(got, tt.segments) {
				t.Errorf("Parse(%q).Segments() = %v, want %v", tt.raw, got, tt.segments)
			}
			if p.IsAbs() != tt.abs {
				t.Errorf("Parse(%q).IsAbs() = %v, want %v", tt.raw, p.IsAbs(), tt.abs)
			}
		})
	}
}

func TestPath_ParentAndName(t *testing.T) {
	t.Parallel()

	p := fspath.Parse("/root/module1/src1")
	if p.Name() != "src1" {
		t.Errorf("Name() = %q, want src1", p.Name())
	}
	parent, ok := p.Parent()
	if !ok || parent.String() != "/root/module1" {
		t.Errorf("Parent() = (%q, %v), want (/root/module1, true)", parent, ok)
	}
	root := fspath.Parse("/")
	if _, ok := root.Parent(); ok {
		t.Error("root path should have no parent")
	}
}

func TestPath_DriveLetter(t *testing.T) {
	t.Parallel()

	root := fspath.New("C:", "work", "m")
	file := fspath.Parse(`C:\work\m\src\A.java`)
	if !file.IsAbs() {
		t.Fatalf("Parse(%q).IsAbs() = false", file)
	}
	rel, ok := file.Rel(root, fspath.CaseSensitive)
	if !ok || !slices.Equal(rel, []string{"src", "A.java"}) {
		t.Errorf("Rel() = (%v, %v), want ([src A.java], true)", rel, ok)
	}
	if got := root.Join("src").String(); got != "/C:/work/m/src" {
		t.Errorf("Join() = %q", got)
	}
	if got, want := root.OS(), filepath.FromSlash("C:/work/m"); got != want {
		t.Errorf("OS() = %q, want %q", got, want)
	}
	if !fspath.Parse(root.OS()).Equal(root, fspath.CaseSensitive) {
		t.Errorf("Parse(OS()) does not round-trip %q", root)
	}
}

func TestPath_Join(t *testing.T) {
	t.Parallel()

	base := fspath.Parse("/root/module1")
	if got := base.Join("src1", "pack1").String(); got != "/root/module1/src1/pack1" {
		t.Errorf("Join() = %q", got)
	}
	if got := base.Join("lib/cls").Len(); got != 4 {
		t.Errorf("Join(\"lib/cls\").Len() = %d, want 4", got)
	}
	if got := base.Join(); !got.Equal(base, fspath.CaseSensitive) {
		t.Errorf("Join() with no elements = %q, want %q", got, base)
	}
}

func TestPath_HasPrefixAndRel(t *testing.T) {
	t.Parallel()

	p := fspath.Parse("/root/Module1/src1/pack1")
	base := fspath.Parse("/root/module1")

	if p.HasPrefix(base, fspath.CaseSensitive) {
		t.Error("case-sensitive prefix should not match differently-cased segment")
	}
	if !p.HasPrefix(base, fspath.CaseInsensitive) {
		t.Error("case-insensitive prefix should match")
	}
	rel, ok := p.Rel(base, fspath.CaseInsensitive)
	if !ok || !slices.Equal(rel, []string{"src1", "pack1"}) {
		t.Errorf("Rel() = (%v, %v)", rel, ok)
	}
	if _, ok := base.Rel(p, fspath.CaseInsensitive); ok {
		t.Error("descendant is not a prefix of its ancestor")
	}
	if fspath.Parse("/root/module10").HasPrefix(fspath.Parse("/root/module1"), fspath.CaseSensitive) {
		t.Error("prefix must match whole segments")
	}
}

func TestPath_Key(t *testing.T) {
	t.Parallel()

	a := fspath.Parse("/Root/A")
	b := fspath.Parse("/root/a")
	if a.Key(fspath.CaseSensitive) == b.Key(fspath.CaseSensitive) {
		t.Error("case-sensitive keys should differ")
	}
	if a.Key(fspath.CaseInsensitive) != b.Key(fspath.CaseInsensitive) {
		t.Error("case-insensitive keys should be equal")
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	paths := []fspath.Path{
		fspath.Parse("/b"),
		fspath.Parse("/a/b"),
		fspath.Parse("/a"),
	}
	slices.SortFunc(paths, fspath.Compare)
	got := []string{paths[0].String(), paths[1].String(), paths[2].String()}
	want := []string{"/a", "/a/b", "/b"}
	if !slices.Equal(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
}

func TestFromFilesystem(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p, err := fspath.FromFilesystem(types.FilesystemPath(dir))
	if err != nil {
		t.Fatalf("FromFilesystem() error: %v", err)
	}
	if p.OS() != filepath.Clean(dir) {
		t.Errorf("OS() = %q, want %q", p.OS(), filepath.Clean(dir))
	}

	_, err = fspath.FromFilesystem("  ")
	if !errors.Is(err, types.ErrInvalidFilesystemPath) {
		t.Errorf("whitespace path error = %v, want ErrInvalidFilesystemPath", err)
	}
}
