// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestFilesystemPath_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       FilesystemPath
		wantReason string
	}{
		{"absolute path", "/work/project/rootindex.cue", ""},
		{"relative path", "project.toml", ""},
		{"windows style", "C:\\work\\project", ""},
		{"dot path", ".", ""},
		{"empty", "", "must be non-empty"},
		{"whitespace only", "   ", "must be non-empty"},
		{"NUL byte", "src/\x00/main.go", "must not contain NUL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.path.Validate()
			if (err != nil) != (tt.wantReason != "") {
				t.Fatalf("FilesystemPath(%q).Validate() error = %v, want reason %q", tt.path, err, tt.wantReason)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidFilesystemPath) {
				t.Errorf("error should wrap ErrInvalidFilesystemPath, got: %v", err)
			}
			var fpErr *InvalidFilesystemPathError
			if !errors.As(err, &fpErr) {
				t.Fatalf("error should be *InvalidFilesystemPathError, got: %T", err)
			}
			if fpErr.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", fpErr.Reason, tt.wantReason)
			}
		})
	}
}
