// SPDX-License-Identifier: MPL-2.0

package stage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/holoviews/hvpack/internal/testutil"
)

func TestVerifyPseudoPackage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"populated/a.png": "x",
		"nested/sub/":     "",
		"empty/":          "",
		"regular":         "not a dir",
	})

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"populated", "populated", nil},
		{"only a subdirectory counts as populated", "nested", nil},
		{"empty", "empty", ErrEmptyDirectory},
		{"missing", "missing", ErrMissingDirectory},
		{"regular file", "regular", ErrMissingDirectory},
		{"below a regular file", "regular/child", ErrMissingDirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(root, tt.path)
			err := VerifyPseudoPackage(path)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("VerifyPseudoPackage() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("VerifyPseudoPackage() = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), path) {
				t.Errorf("error %q should name the path", err)
			}
		})
	}
}

func TestVerifyPseudoPackageKinds(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	missing := filepath.Join(root, "holoviews", "assets")
	err := VerifyPseudoPackage(missing)
	var missingErr *MissingDirectoryError
	if !errors.As(err, &missingErr) || missingErr.Path != missing {
		t.Fatalf("want *MissingDirectoryError for %s, got %v", missing, err)
	}
	if errors.Is(err, ErrEmptyDirectory) {
		t.Error("missing and empty must be distinguishable")
	}

	testutil.MustMkdirAll(t, missing)
	err = VerifyPseudoPackage(missing)
	var emptyErr *EmptyDirectoryError
	if !errors.As(err, &emptyErr) || emptyErr.Path != missing {
		t.Fatalf("want *EmptyDirectoryError for %s, got %v", missing, err)
	}

	// Read-only: verification never creates anything.
	if entries, _ := os.ReadDir(missing); len(entries) != 0 {
		t.Errorf("VerifyPseudoPackage modified %s", missing)
	}
}
