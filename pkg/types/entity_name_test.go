// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestEntityNames_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		validate func() error
		sentinel error
		wantErr  bool
	}{
		{"module ok", ModuleName("module1").Validate, ErrInvalidModuleName, false},
		{"module empty", ModuleName("").Validate, ErrInvalidModuleName, true},
		{"module blank", ModuleName("  ").Validate, ErrInvalidModuleName, true},
		{"library ok", LibraryName("lib.js").Validate, ErrInvalidLibraryName, false},
		{"library multiline", LibraryName("a\nb").Validate, ErrInvalidLibraryName, true},
		{"sdk ok", SdkName("jdk-21").Validate, ErrInvalidSdkName, false},
		{"sdk empty", SdkName("").Validate, ErrInvalidSdkName, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("error %v does not wrap %v", err, tt.sentinel)
			}
		})
	}
}
