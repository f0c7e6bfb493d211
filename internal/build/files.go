// SPDX-License-Identifier: MPL-2.0

package build

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/holoviews/hvpack/pkg/manifest"
)

// modulePattern selects the Python modules of every package.
const modulePattern = "*.py"

// CollectFiles lists the files shipped for m as slash-separated paths
// relative to root: for each package a.b.c, the regular files directly in
// root/a/b/c that are Python modules or match one of its data patterns.
// The result is sorted and free of duplicates.
func CollectFiles(root string, m manifest.Manifest) ([]string, error) {
	seen := make(map[string]struct{})
	for _, pkg := range m.Packages() {
		rel := strings.ReplaceAll(pkg, ".", "/")
		dir := filepath.Join(root, filepath.FromSlash(rel))

		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &MissingPackageError{Package: pkg, Dir: dir}
			}
			return nil, fmt.Errorf("read package %s: %w", pkg, err)
		}

		patterns := append([]string{modulePattern}, m.Patterns(pkg)...)
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			if matchesAny(patterns, e.Name()) {
				seen[path.Join(rel, e.Name())] = struct{}{}
			}
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	slices.Sort(files)
	return files, nil
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
