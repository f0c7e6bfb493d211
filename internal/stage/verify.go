// SPDX-License-Identifier: MPL-2.0

package stage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

var (
	// ErrMissingDirectory is returned when a pseudo-package directory does not
	// exist or is not a directory.
	ErrMissingDirectory = errors.New("pseudo-package directory is missing")
	// ErrEmptyDirectory is returned when a pseudo-package directory has no entries.
	ErrEmptyDirectory = errors.New("pseudo-package directory is empty")
)

type (
	// MissingDirectoryError reports a pseudo-package path that must be created.
	MissingDirectoryError struct {
		Path string
	}

	// EmptyDirectoryError reports a pseudo-package path that must be populated.
	EmptyDirectoryError struct {
		Path string
	}
)

// Error implements the error interface.
func (e *MissingDirectoryError) Error() string {
	return fmt.Sprintf("please make sure pseudo-package %s exists", e.Path)
}

// Unwrap returns ErrMissingDirectory for errors.Is() compatibility.
func (e *MissingDirectoryError) Unwrap() error { return ErrMissingDirectory }

// Error implements the error interface.
func (e *EmptyDirectoryError) Error() string {
	return fmt.Sprintf("please make sure pseudo-package %s is populated", e.Path)
}

// Unwrap returns ErrEmptyDirectory for errors.Is() compatibility.
func (e *EmptyDirectoryError) Unwrap() error { return ErrEmptyDirectory }

// VerifyPseudoPackage checks that path is a directory with at least one
// entry. It never modifies the filesystem.
func VerifyPseudoPackage(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return &MissingDirectoryError{Path: path}
	case err != nil:
		return fmt.Errorf("stat pseudo-package %s: %w", path, err)
	case !info.IsDir():
		return &MissingDirectoryError{Path: path}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open pseudo-package %s: %w", path, err)
	}
	defer f.Close()

	// One entry is enough to tell populated from empty.
	if _, err := f.ReadDir(1); err != nil {
		if errors.Is(err, io.EOF) {
			return &EmptyDirectoryError{Path: path}
		}
		return fmt.Errorf("read pseudo-package %s: %w", path, err)
	}
	return nil
}
