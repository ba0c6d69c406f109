// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func allIds() []Id {
	return []Id{
		DescriptorNotFoundId,
		DescriptorParseErrorId,
		ConfigLoadFailedId,
		InvalidRootId,
		DependencyCycleId,
		ModuleNotFoundId,
		WatchFailedId,
	}
}

func TestGet(t *testing.T) {
	for _, id := range allIds() {
		i := Get(id)
		if i == nil {
			t.Fatalf("Get(%d) returned nil", id)
		}
		if i.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, i.Id())
		}
		if strings.TrimSpace(string(i.MarkdownMsg())) == "" {
			t.Errorf("issue %d has no guidance", id)
		}
	}

	if Get(0) != nil {
		t.Error("Get(0) should return nil")
	}
	if got := len(Values()); got != len(allIds()) {
		t.Errorf("Values() has %d issues, want %d", got, len(allIds()))
	}
}

func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	var gotStyle string
	render = func(in string, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	out, err := Get(DescriptorNotFoundId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(out, "No project descriptor found") {
		t.Errorf("rendered output lacks the title: %q", out)
	}
	if strings.Contains(out, "See also") {
		t.Error("issue without links rendered a See also section")
	}
	if gotStyle != "notty" {
		t.Errorf("style = %q", gotStyle)
	}

	withLinks := &Issue{id: 99, mdMsg: "# Title", docLinks: []HttpLink{"https://example.com/docs"}}
	out, err = withLinks.Render("notty")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "## See also") || !strings.Contains(out, "https://example.com/docs") {
		t.Errorf("links missing from %q", out)
	}

	links := withLinks.DocLinks()
	links[0] = "modified"
	if withLinks.DocLinks()[0] != "https://example.com/docs" {
		t.Error("DocLinks() should return a clone")
	}
}

func TestAllIssuesAreRenderable(t *testing.T) {
	for _, i := range Values() {
		if _, err := i.Render("notty"); err != nil {
			t.Errorf("issue %d: Render() error: %v", i.Id(), err)
		}
	}
}

func TestIssue_Title(t *testing.T) {
	t.Parallel()

	if got := Get(DescriptorNotFoundId).Title(); got != "No project descriptor found" {
		t.Errorf("Title() = %q", got)
	}
	for _, i := range Values() {
		if i.Title() == "" {
			t.Errorf("issue %d has no heading", i.Id())
		}
	}
	if got := (&Issue{mdMsg: "no heading here"}).Title(); got != "" {
		t.Errorf("Title() = %q, want empty", got)
	}
}
