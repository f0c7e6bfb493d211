// SPDX-License-Identifier: MPL-2.0

// Package manifest holds the set of packages and per-package file patterns
// that decide what goes into a distribution.
//
// A Manifest is an immutable value: every With* method returns a new
// Manifest and leaves the receiver untouched, so the base manifest built
// from the package descriptor can be shared while the staging step derives
// an extended one from it.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidManifest is the sentinel wrapped by InvalidManifestError.
	ErrInvalidManifest = errors.New("invalid manifest")
)

type (
	// Manifest is an ordered list of package names plus the file-glob
	// patterns shipped as data for each package.
	Manifest struct {
		packages    []string
		packageData map[string][]string
	}

	// Document is the serialized form of a Manifest.
	Document struct {
		Packages    []string            `json:"packages" yaml:"packages"`
		PackageData map[string][]string `json:"package_data" yaml:"package_data"`
	}

	// InvalidManifestError collects every problem found by Validate.
	InvalidManifestError struct {
		Problems []string
	}
)

// New builds a Manifest from copies of packages and data. Duplicate package
// names keep their first position.
func New(packages []string, data map[string][]string) Manifest {
	m := Manifest{packageData: make(map[string][]string, len(data))}
	for _, p := range packages {
		if !slices.Contains(m.packages, p) {
			m.packages = append(m.packages, p)
		}
	}
	for k, v := range data {
		m.packageData[k] = slices.Clone(v)
	}
	return m
}

// Packages returns a copy of the package list in order.
func (m Manifest) Packages() []string {
	return slices.Clone(m.packages)
}

// PackageData returns a deep copy of the package -> patterns map.
func (m Manifest) PackageData() map[string][]string {
	out := make(map[string][]string, len(m.packageData))
	for k, v := range m.packageData {
		out[k] = slices.Clone(v)
	}
	return out
}

// Patterns returns the data patterns registered for pkg.
func (m Manifest) Patterns(pkg string) []string {
	return slices.Clone(m.packageData[pkg])
}

// Has reports whether pkg is in the package list.
func (m Manifest) Has(pkg string) bool {
	return slices.Contains(m.packages, pkg)
}

// Len returns the number of packages.
func (m Manifest) Len() int {
	return len(m.packages)
}

// WithPackage returns a manifest with pkg appended (if absent) and its data
// patterns set to patterns. An empty patterns list leaves existing
// patterns untouched.
func (m Manifest) WithPackage(pkg string, patterns ...string) Manifest {
	next := New(m.packages, m.packageData)
	if !next.Has(pkg) {
		next.packages = append(next.packages, pkg)
	}
	if len(patterns) > 0 {
		next.packageData[pkg] = slices.Clone(patterns)
	}
	return next
}

// Validate checks that package names are non-empty and that every data
// entry refers to a listed package.
func (m Manifest) Validate() error {
	var problems []string
	for i, p := range m.packages {
		if strings.TrimSpace(p) == "" {
			problems = append(problems, fmt.Sprintf("packages[%d]: empty package name", i))
		}
	}
	for _, k := range slices.Sorted(maps.Keys(m.packageData)) {
		if !m.Has(k) {
			problems = append(problems, fmt.Sprintf("package_data[%s]: package is not listed", k))
		}
	}
	if len(problems) > 0 {
		return &InvalidManifestError{Problems: problems}
	}
	return nil
}

// Document returns the serializable view of the manifest.
func (m Manifest) Document() Document {
	return Document{Packages: m.Packages(), PackageData: m.PackageData()}
}

// MarshalJSON implements json.Marshaler.
func (m Manifest) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Document())
}

// MarshalYAML implements yaml.Marshaler.
func (m Manifest) MarshalYAML() (any, error) {
	return m.Document(), nil
}

// EncodeYAML renders the manifest as YAML with two-space indentation.
func (m Manifest) EncodeYAML() ([]byte, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return []byte(b.String()), nil
}

// Error implements the error interface.
func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("invalid manifest: %s", strings.Join(e.Problems, "; "))
}

// Unwrap returns ErrInvalidManifest for errors.Is.
func (e *InvalidManifestError) Unwrap() error { return ErrInvalidManifest }
