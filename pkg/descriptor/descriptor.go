// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/holoviews/hvpack/pkg/cueutil"
	"github.com/holoviews/hvpack/pkg/manifest"
)

const (
	// DefaultReadme is the long description source used when none is declared.
	DefaultReadme = "README.rst"
	// BuiltinSource is reported as Source for the embedded HoloViews descriptor.
	BuiltinSource = "<builtin:holoviews.cue>"

	defaultBuildBackend = "setuptools.build_meta"
)

var (
	//go:embed descriptor_schema.cue
	descriptorSchema string

	//go:embed holoviews.cue
	holoviewsDescriptor []byte

	// ErrInvalidDescriptor is the sentinel wrapped by InvalidDescriptorError.
	ErrInvalidDescriptor = errors.New("invalid package descriptor")
)

type (
	// Descriptor is the static packaging metadata of one library.
	Descriptor struct {
		Name            string              `json:"name"`
		DisplayName     string              `json:"display_name,omitempty"`
		Version         string              `json:"version"`
		Description     string              `json:"description"`
		Readme          string              `json:"readme"`
		Author          string              `json:"author,omitempty"`
		AuthorEmail     string              `json:"author_email,omitempty"`
		Maintainer      string              `json:"maintainer,omitempty"`
		MaintainerEmail string              `json:"maintainer_email,omitempty"`
		License         string              `json:"license,omitempty"`
		URL             string              `json:"url,omitempty"`
		InstallURL      string              `json:"install_url,omitempty"`
		Platforms       []string            `json:"platforms,omitempty"`
		Classifiers     []string            `json:"classifiers,omitempty"`
		InstallRequires []string            `json:"install_requires,omitempty"`
		ExtrasRequire   []ExtrasGroup       `json:"extras,omitempty"`
		EntryPoints     map[string][]string `json:"entry_points,omitempty"`
		Packages        []string            `json:"packages"`
		PackageData     map[string][]string `json:"package_data,omitempty"`
		BuildSystem     *BuildSystem        `json:"build_system,omitempty"`

		// LongDescription is the README contents, or "Consult README.rst"
		// when the file is missing. Set by Load.
		LongDescription string `json:"-"`
		// Source is the file the descriptor was read from, or BuiltinSource.
		Source string `json:"-"`

		extras Extras
	}

	// BuildSystem names the PEP 517 backend recorded in pyproject.toml.
	BuildSystem struct {
		Requires []string `json:"requires"`
		Backend  string   `json:"backend"`
	}

	// InvalidDescriptorError is returned when a descriptor fails schema
	// validation or extras resolution.
	InvalidDescriptorError struct {
		Source string
		Cause  error
	}
)

// Error implements the error interface.
func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("invalid package descriptor %s: %v", e.Source, e.Cause)
}

// Unwrap returns ErrInvalidDescriptor and the underlying cause.
func (e *InvalidDescriptorError) Unwrap() []error {
	return []error{ErrInvalidDescriptor, e.Cause}
}

// Parse decodes and validates a descriptor document and resolves its extras.
// filename is only used in error messages.
func Parse(data []byte, filename string) (*Descriptor, error) {
	result, err := cueutil.ParseAndDecodeString[Descriptor](
		descriptorSchema, data, "#Descriptor", cueutil.WithFilename(filename),
	)
	if err != nil {
		return nil, &InvalidDescriptorError{Source: filename, Cause: err}
	}

	d := result.Value
	d.Source = filename
	if d.Readme == "" {
		d.Readme = DefaultReadme
	}
	if err := d.Manifest().Validate(); err != nil {
		return nil, &InvalidDescriptorError{Source: filename, Cause: err}
	}

	extras, err := ResolveExtras(d.ExtrasRequire)
	if err != nil {
		return nil, &InvalidDescriptorError{Source: filename, Cause: err}
	}
	d.extras = extras
	d.LongDescription = missingReadmeText(d.Readme)

	return d, nil
}

// Builtin returns the embedded HoloViews descriptor.
func Builtin() (*Descriptor, error) {
	d, err := Parse(holoviewsDescriptor, BuiltinSource)
	if err != nil {
		return nil, fmt.Errorf("internal error: %w", err)
	}
	return d, nil
}

// Load reads the descriptor at path (relative paths are joined to root).
// When the file does not exist the embedded HoloViews descriptor is used.
// The long description is read from the descriptor's readme under root.
func Load(root, path string) (*Descriptor, error) {
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	var (
		d   *Descriptor
		err error
	)
	data, readErr := os.ReadFile(path)
	switch {
	case path == "" || errors.Is(readErr, os.ErrNotExist):
		d, err = Builtin()
	case readErr != nil:
		return nil, fmt.Errorf("read package descriptor: %w", readErr)
	default:
		d, err = Parse(data, path)
	}
	if err != nil {
		return nil, err
	}

	if err := d.loadLongDescription(root); err != nil {
		return nil, err
	}
	return d, nil
}

// Label is the human-facing project name used in the installation report.
func (d *Descriptor) Label() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

// Extras returns the resolved extras groups in declaration order.
func (d *Descriptor) Extras() Extras {
	return d.extras.clone()
}

// Manifest returns the base manifest: declared packages and package data.
func (d *Descriptor) Manifest() manifest.Manifest {
	return manifest.New(d.Packages, d.PackageData)
}

// Backend returns the build system, defaulting to setuptools.
func (d *Descriptor) Backend() BuildSystem {
	if d.BuildSystem != nil {
		return *d.BuildSystem
	}
	return BuildSystem{Requires: []string{"setuptools>=61", "wheel"}, Backend: defaultBuildBackend}
}

// ArtifactStem is "<name>-<version>" with the name normalized the way
// distribution file names expect.
func (d *Descriptor) ArtifactStem() string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(d.Name) + "-" + d.Version
}

func (d *Descriptor) loadLongDescription(root string) error {
	data, err := os.ReadFile(filepath.Join(root, d.Readme))
	switch {
	case err == nil:
		d.LongDescription = string(data)
	case errors.Is(err, os.ErrNotExist):
		d.LongDescription = missingReadmeText(d.Readme)
	default:
		return fmt.Errorf("read %s: %w", d.Readme, err)
	}
	return nil
}

func missingReadmeText(readme string) string {
	return "Consult " + readme
}
