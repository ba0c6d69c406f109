// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"slices"
	"testing"
)

func TestPackageName_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   PackageName
		wantErr bool
	}{
		{"", false},
		{"pack1", false},
		{"com.example.util", false},
		{"foo.bar", false},
		{".pack2", true},
		{"pack2.", true},
		{"a..b", true},
		{"a b", true},
		{"a/b", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()
			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("PackageName(%q).Validate() error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPackageName) {
				t.Errorf("error should wrap ErrInvalidPackageName, got %v", err)
			}
		})
	}
}

func TestPackageName_Child(t *testing.T) {
	t.Parallel()

	if got := PackageName("").Child("pack"); got != "pack" {
		t.Errorf("Child on default package = %q, want %q", got, "pack")
	}
	if got := PackageName("prefix").Child("pack"); got != "prefix.pack" {
		t.Errorf("Child = %q, want %q", got, "prefix.pack")
	}
}

func TestPackageName_TrimPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  PackageName
		prefix PackageName
		want   PackageName
		ok     bool
	}{
		{"empty prefix", "a.b", "", "a.b", true},
		{"exact", "a.b", "a.b", "", true},
		{"component prefix", "a.b.c", "a.b", "c", true},
		{"partial component", "ab.c", "a", "", false},
		{"unrelated", "x.y", "a", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tt.value.TrimPrefix(tt.prefix)
			if got != tt.want || ok != tt.ok {
				t.Errorf("TrimPrefix(%q, %q) = (%q, %v), want (%q, %v)", tt.value, tt.prefix, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestPackageName_Components(t *testing.T) {
	t.Parallel()

	if got := PackageName("").Components(); got != nil {
		t.Errorf("default package components = %v, want nil", got)
	}
	if got := PackageName("foo.bar").Components(); !slices.Equal(got, []string{"foo", "bar"}) {
		t.Errorf("Components() = %v", got)
	}
}
