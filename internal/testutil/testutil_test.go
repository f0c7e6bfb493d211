// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestWriteTreeAndListNames(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	WriteTree(t, root, map[string]string{
		"doc/Tutorials/Intro.ipynb": "{}",
		"doc/Tutorials/logo.png":    "png",
		"tests/":                    "",
		"README.rst":                "HoloViews",
	})

	if got := ListNames(t, filepath.Join(root, "doc", "Tutorials")); !slices.Equal(got, []string{"Intro.ipynb", "logo.png"}) {
		t.Errorf("ListNames() = %v", got)
	}
	if got := ListNames(t, filepath.Join(root, "tests")); len(got) != 0 {
		t.Errorf("tests/ should be empty, got %v", got)
	}
	if got := MustReadFile(t, filepath.Join(root, "README.rst")); got != "HoloViews" {
		t.Errorf("MustReadFile() = %q", got)
	}
}

func TestMustChdir(t *testing.T) {
	dir := t.TempDir()
	restore := MustChdir(t, dir)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	resolved, _ := filepath.EvalSymlinks(dir)
	if wd != dir && wd != resolved {
		t.Errorf("Getwd() = %q, want %q", wd, dir)
	}

	restore()
	if back, _ := os.Getwd(); back == wd {
		t.Error("cleanup did not restore the working directory")
	}
}
