// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
)

const testSchema = `
#Root: {
	path:     string & !=""
	kind:     *"content" | "source"
	test:     bool | *false
	prefix?:  string
}
`

type testRoot struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"`
	Test   bool   `json:"test"`
	Prefix string `json:"prefix,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    testRoot
		wantErr string
	}{
		{
			name: "all fields",
			data: `path: "/repo/src", kind: "source", test: true, prefix: "com.example"`,
			want: testRoot{Path: "/repo/src", Kind: "source", Test: true, Prefix: "com.example"},
		},
		{
			name: "defaults fill omitted fields",
			data: `path: "/repo"`,
			want: testRoot{Path: "/repo", Kind: "content"},
		},
		{
			name:    "disallowed enum value",
			data:    `path: "/repo", kind: "output"`,
			wantErr: "kind",
		},
		{
			name:    "missing required field",
			data:    `kind: "source"`,
			wantErr: "path",
		},
		{
			name:    "syntax error",
			data:    `path: "/repo`,
			wantErr: "root.cue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := ParseAndDecodeString[testRoot](testSchema, []byte(tt.data), "#Root", WithFilename("root.cue"))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q does not mention %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAndDecode failed: %v", err)
			}
			if *result.Value != tt.want {
				t.Errorf("decoded %+v, want %+v", *result.Value, tt.want)
			}
			if result.Unified.Err() != nil {
				t.Errorf("unified value has error: %v", result.Unified.Err())
			}
		})
	}
}

func TestParseAndDecode_NonConcrete(t *testing.T) {
	t.Parallel()

	schema := `#Opt: { name?: string, size?: int }`
	if _, err := ParseAndDecodeString[map[string]any](schema, []byte(`size: int`), "#Opt"); err == nil {
		t.Error("expected an error for a non-concrete value")
	}
	result, err := ParseAndDecodeString[map[string]any](schema, []byte(`name: "x"`), "#Opt", WithConcrete(false))
	if err != nil {
		t.Fatalf("ParseAndDecode failed: %v", err)
	}
	if (*result.Value)["name"] != "x" {
		t.Errorf("decoded %v", *result.Value)
	}
}

func TestFileSizeLimit(t *testing.T) {
	t.Parallel()

	data := []byte(strings.Repeat("a", 200))
	_, err := ParseAndDecodeString[testRoot](testSchema, data, "#Root", WithMaxFileSize(100))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("expected size limit error, got %v", err)
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/repo/root.cue", []byte(`path: "/repo"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/repo/bad.cue", []byte(`path: ""`), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := ParseFile[testRoot](fs, "/repo/root.cue", []byte(testSchema), "#Root")
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if result.Value.Path != "/repo" {
		t.Errorf("Path = %q", result.Value.Path)
	}

	_, err = ParseFile[testRoot](fs, "/repo/bad.cue", []byte(testSchema), "#Root")
	if err == nil || !strings.Contains(err.Error(), "/repo/bad.cue") {
		t.Errorf("expected error naming the file, got %v", err)
	}

	if _, err := ParseFile[testRoot](fs, "/repo/missing.cue", []byte(testSchema), "#Root"); err == nil {
		t.Error("expected error for a missing file")
	}

	if _, err := ParseFile[testRoot](fs, "/repo/root.cue", []byte(testSchema), "#Root", WithMaxFileSize(4)); err == nil {
		t.Error("expected size limit error")
	}
}

func TestParseValue(t *testing.T) {
	t.Parallel()

	result, err := ParseValue[testRoot]([]byte(testSchema), map[string]any{
		"path": "/repo/src",
		"test": true,
	}, "#Root", WithFilename("root.toml"))
	if err != nil {
		t.Fatalf("ParseValue failed: %v", err)
	}
	want := testRoot{Path: "/repo/src", Kind: "content", Test: true}
	if *result.Value != want {
		t.Errorf("decoded %+v, want %+v", *result.Value, want)
	}

	_, err = ParseValue[testRoot]([]byte(testSchema), map[string]any{
		"path": "/repo",
		"kind": "output",
	}, "#Root", WithFilename("root.toml"))
	if err == nil || !strings.Contains(err.Error(), "kind") {
		t.Errorf("expected error naming kind, got %v", err)
	}
}
