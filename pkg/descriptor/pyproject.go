// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type (
	// Pyproject is the pyproject.toml view of a descriptor.
	Pyproject struct {
		BuildSystem PyBuildSystem `toml:"build-system"`
		Project     PyProject     `toml:"project"`
		Tool        PyTool        `toml:"tool"`
	}

	// PyBuildSystem is the [build-system] table.
	PyBuildSystem struct {
		Requires     []string `toml:"requires"`
		BuildBackend string   `toml:"build-backend"`
	}

	// PyProject is the [project] table.
	PyProject struct {
		Name                 string                       `toml:"name"`
		Version              string                       `toml:"version"`
		Description          string                       `toml:"description,omitempty"`
		Readme               string                       `toml:"readme,omitempty"`
		License              *PyLicense                   `toml:"license,omitempty"`
		Authors              []PyContact                  `toml:"authors,omitempty"`
		Maintainers          []PyContact                  `toml:"maintainers,omitempty"`
		Classifiers          []string                     `toml:"classifiers,omitempty"`
		Dependencies         []string                     `toml:"dependencies,omitempty"`
		OptionalDependencies map[string][]string          `toml:"optional-dependencies,omitempty"`
		Scripts              map[string]string            `toml:"scripts,omitempty"`
		EntryPoints          map[string]map[string]string `toml:"entry-points,omitempty"`
		URLs                 map[string]string            `toml:"urls,omitempty"`
	}

	// PyLicense holds the license name as text.
	PyLicense struct {
		Text string `toml:"text"`
	}

	// PyContact is an author or maintainer entry.
	PyContact struct {
		Name  string `toml:"name,omitempty"`
		Email string `toml:"email,omitempty"`
	}

	// PyTool carries the setuptools-specific tables.
	PyTool struct {
		Setuptools PySetuptools `toml:"setuptools"`
	}

	// PySetuptools is [tool.setuptools].
	PySetuptools struct {
		Platforms   []string            `toml:"platforms,omitempty"`
		Packages    []string            `toml:"packages"`
		PackageData map[string][]string `toml:"package-data,omitempty"`
	}
)

// Pyproject builds the pyproject.toml document for the base manifest.
func (d *Descriptor) Pyproject() (Pyproject, error) {
	return d.PyprojectFor(d.Packages, d.PackageData)
}

// PyprojectFor builds the pyproject.toml document for an explicit package
// list, typically the staged manifest.
func (d *Descriptor) PyprojectFor(packages []string, data map[string][]string) (Pyproject, error) {
	backend := d.Backend()
	doc := Pyproject{
		BuildSystem: PyBuildSystem{Requires: backend.Requires, BuildBackend: backend.Backend},
		Project: PyProject{
			Name:         d.Name,
			Version:      d.Version,
			Description:  d.Description,
			Readme:       d.Readme,
			Classifiers:  d.Classifiers,
			Dependencies: d.InstallRequires,
		},
		Tool: PyTool{Setuptools: PySetuptools{
			Platforms:   d.Platforms,
			Packages:    packages,
			PackageData: data,
		}},
	}
	if d.License != "" {
		doc.Project.License = &PyLicense{Text: d.License}
	}
	if d.Author != "" || d.AuthorEmail != "" {
		doc.Project.Authors = []PyContact{{Name: d.Author, Email: d.AuthorEmail}}
	}
	if d.Maintainer != "" || d.MaintainerEmail != "" {
		doc.Project.Maintainers = []PyContact{{Name: d.Maintainer, Email: d.MaintainerEmail}}
	}
	if len(d.extras) > 0 {
		doc.Project.OptionalDependencies = d.extras.Map()
	}
	if d.URL != "" {
		doc.Project.URLs = map[string]string{"Homepage": d.URL}
	}

	for group, specs := range d.EntryPoints {
		parsed := make(map[string]string, len(specs))
		for _, spec := range specs {
			name, target, err := parseEntryPoint(spec)
			if err != nil {
				return Pyproject{}, fmt.Errorf("entry_points[%s]: %w", group, err)
			}
			parsed[name] = target
		}
		if group == "console_scripts" {
			doc.Project.Scripts = parsed
			continue
		}
		if doc.Project.EntryPoints == nil {
			doc.Project.EntryPoints = make(map[string]map[string]string)
		}
		doc.Project.EntryPoints[group] = parsed
	}

	return doc, nil
}

// MarshalPyproject renders the pyproject.toml document as TOML.
func (d *Descriptor) MarshalPyproject(packages []string, data map[string][]string) ([]byte, error) {
	doc, err := d.PyprojectFor(packages, data)
	if err != nil {
		return nil, err
	}
	out, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode pyproject.toml: %w", err)
	}
	return out, nil
}

// parseEntryPoint splits "name = module:attr".
func parseEntryPoint(spec string) (name, target string, err error) {
	name, target, ok := strings.Cut(spec, "=")
	name, target = strings.TrimSpace(name), strings.TrimSpace(target)
	if !ok || name == "" || target == "" {
		return "", "", fmt.Errorf("malformed entry point %q (want \"name = module:attr\")", spec)
	}
	return name, target, nil
}
