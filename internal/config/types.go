// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// ProbeFile reads the declared version from a source file.
	ProbeFile ProbeKind = "file"
	// ProbeShell runs a script in the embedded shell and reads its output.
	ProbeShell ProbeKind = "shell"
	// ProbeNone disables the release version check.
	ProbeNone ProbeKind = "none"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultVersionPattern matches `__version__ = "1.2.3"` and captures the value.
	DefaultVersionPattern = `__version__\s*=\s*["']([^"']+)["']`
)

var (
	// ErrInvalidProbeKind is returned when a ProbeKind value is not recognized.
	ErrInvalidProbeKind = errors.New("invalid version probe")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidDirPath is the sentinel error wrapped by InvalidDirPathError.
	ErrInvalidDirPath = errors.New("invalid directory path")
	// ErrInvalidVersionPattern is the sentinel error wrapped by InvalidVersionPatternError.
	ErrInvalidVersionPattern = errors.New("invalid version pattern")
	// ErrInvalidDebounce is returned when the watch debounce is not positive.
	ErrInvalidDebounce = errors.New("invalid watch debounce")
	// ErrInvalidVersionConfig is the sentinel error wrapped by InvalidVersionConfigError.
	ErrInvalidVersionConfig = errors.New("invalid version config")
	// ErrInvalidProjectConfig is the sentinel error wrapped by InvalidProjectConfigError.
	ErrInvalidProjectConfig = errors.New("invalid project config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ProbeKind selects how the library's own declared version is read.
	ProbeKind string

	// InvalidProbeKindError is returned when a ProbeKind value is not recognized.
	InvalidProbeKindError struct {
		Value ProbeKind
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// DirPath is a project-relative (or absolute) directory path.
	// A valid path is non-empty and not whitespace-only.
	DirPath string

	// InvalidDirPathError is returned when a DirPath is blank.
	InvalidDirPathError struct {
		Field string
		Value DirPath
	}

	// InvalidVersionPatternError is returned when version.pattern does not
	// compile or lacks a capture group.
	InvalidVersionPatternError struct {
		Pattern string
		Cause   error
	}

	// InvalidDebounceError is returned when watch.debounce is not positive.
	InvalidDebounceError struct {
		Value time.Duration
	}

	// InvalidVersionConfigError collects version section field errors.
	InvalidVersionConfigError struct {
		FieldErrors []error
	}

	// InvalidProjectConfigError collects project section field errors.
	InvalidProjectConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig and collects field-level errors from all sections.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the hvpack configuration.
	Config struct {
		Project ProjectConfig `json:"project" mapstructure:"project"`
		Version VersionConfig `json:"version" mapstructure:"version"`
		UI      UIConfig      `json:"ui" mapstructure:"ui"`
		Watch   WatchConfig   `json:"watch" mapstructure:"watch"`
	}

	// ProjectConfig describes the layout of the library checkout.
	ProjectConfig struct {
		// PackageDir is the importable package directory; pseudo-packages are staged beneath it.
		PackageDir DirPath `json:"package_dir" mapstructure:"package_dir"`
		// DocDir holds one subdirectory per topic with images, rst pages and notebooks.
		DocDir DirPath `json:"doc_dir" mapstructure:"doc_dir"`
		// TestsDir holds the flat test module tree.
		TestsDir DirPath `json:"tests_dir" mapstructure:"tests_dir"`
		// Descriptor is the package descriptor file (CUE); the built-in one is used when absent.
		Descriptor DirPath `json:"descriptor" mapstructure:"descriptor"`
		DistDir    DirPath `json:"dist_dir" mapstructure:"dist_dir"`
		BuildDir   DirPath `json:"build_dir" mapstructure:"build_dir"`
	}

	// VersionConfig configures the release version consistency check.
	VersionConfig struct {
		Probe   ProbeKind `json:"probe" mapstructure:"probe"`
		File    string    `json:"file" mapstructure:"file"`
		Pattern string    `json:"pattern" mapstructure:"pattern"`
		Script  string    `json:"script" mapstructure:"script"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}

	// WatchConfig configures `hvpack stage --watch`.
	WatchConfig struct {
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
	}
)

// DefaultConfig returns the configuration for a standard HoloViews checkout.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			PackageDir: "holoviews",
			DocDir:     "doc",
			TestsDir:   "tests",
			Descriptor: "package.cue",
			DistDir:    "dist",
			BuildDir:   "build",
		},
		Version: VersionConfig{
			Probe:   ProbeFile,
			File:    "holoviews/__init__.py",
			Pattern: DefaultVersionPattern,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// String returns the string representation of the ProbeKind.
func (k ProbeKind) String() string { return string(k) }

// IsValid returns whether the ProbeKind is one of the defined probes.
func (k ProbeKind) IsValid() (bool, []error) {
	switch k {
	case ProbeFile, ProbeShell, ProbeNone:
		return true, nil
	default:
		return false, []error{&InvalidProbeKindError{Value: k}}
	}
}

// Error implements the error interface.
func (e *InvalidProbeKindError) Error() string {
	return fmt.Sprintf("invalid version probe %q (valid: file, shell, none)", e.Value)
}

// Unwrap returns ErrInvalidProbeKind for errors.Is() compatibility.
func (e *InvalidProbeKindError) Unwrap() error { return ErrInvalidProbeKind }

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the DirPath.
func (p DirPath) String() string { return string(p) }

func (p DirPath) check(field string) []error {
	if strings.TrimSpace(string(p)) == "" {
		return []error{&InvalidDirPathError{Field: field, Value: p}}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidDirPathError) Error() string {
	return fmt.Sprintf("%s: directory path %q must be non-empty", e.Field, e.Value)
}

// Unwrap returns ErrInvalidDirPath for errors.Is() compatibility.
func (e *InvalidDirPathError) Unwrap() error { return ErrInvalidDirPath }

// Error implements the error interface.
func (e *InvalidVersionPatternError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid version pattern %q: %v", e.Pattern, e.Cause)
	}
	return fmt.Sprintf("invalid version pattern %q: needs exactly one capture group", e.Pattern)
}

// Unwrap returns ErrInvalidVersionPattern for errors.Is() compatibility.
func (e *InvalidVersionPatternError) Unwrap() error { return ErrInvalidVersionPattern }

// Error implements the error interface.
func (e *InvalidDebounceError) Error() string {
	return fmt.Sprintf("invalid watch debounce %s: must be positive", e.Value)
}

// Unwrap returns ErrInvalidDebounce for errors.Is() compatibility.
func (e *InvalidDebounceError) Unwrap() error { return ErrInvalidDebounce }

// IsValid returns whether the ProjectConfig has valid fields.
func (c ProjectConfig) IsValid() (bool, []error) {
	var errs []error
	errs = append(errs, c.PackageDir.check("project.package_dir")...)
	errs = append(errs, c.DocDir.check("project.doc_dir")...)
	errs = append(errs, c.TestsDir.check("project.tests_dir")...)
	errs = append(errs, c.Descriptor.check("project.descriptor")...)
	errs = append(errs, c.DistDir.check("project.dist_dir")...)
	errs = append(errs, c.BuildDir.check("project.build_dir")...)
	if len(errs) > 0 {
		return false, []error{&InvalidProjectConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidProjectConfigError) Error() string {
	return fmt.Sprintf("invalid project config: %s", joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidProjectConfig followed by the field errors, so errors.Is
// matches both the section sentinel and the underlying cause.
func (e *InvalidProjectConfigError) Unwrap() []error {
	return append([]error{ErrInvalidProjectConfig}, e.FieldErrors...)
}

// IsValid returns whether the VersionConfig is usable for its probe kind.
// The file probe needs a file and a pattern with one capture group; the
// shell probe needs a script.
func (c VersionConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Probe.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	switch c.Probe {
	case ProbeFile:
		if strings.TrimSpace(c.File) == "" {
			errs = append(errs, &InvalidDirPathError{Field: "version.file", Value: DirPath(c.File)})
		}
		if _, err := c.CompilePattern(); err != nil {
			errs = append(errs, err)
		}
	case ProbeShell:
		if strings.TrimSpace(c.Script) == "" {
			errs = append(errs, fmt.Errorf("version.script: required when probe is %q", ProbeShell))
		}
	case ProbeNone:
	}
	if len(errs) > 0 {
		return false, []error{&InvalidVersionConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// CompilePattern compiles Pattern (or DefaultVersionPattern when empty) and
// checks it has exactly one capture group.
func (c VersionConfig) CompilePattern() (*regexp.Regexp, error) {
	pattern := c.Pattern
	if pattern == "" {
		pattern = DefaultVersionPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &InvalidVersionPatternError{Pattern: pattern, Cause: err}
	}
	if re.NumSubexp() != 1 {
		return nil, &InvalidVersionPatternError{Pattern: pattern}
	}
	return re, nil
}

// Error implements the error interface.
func (e *InvalidVersionConfigError) Error() string {
	return fmt.Sprintf("invalid version config: %s", joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidVersionConfig followed by the field errors, so errors.Is
// matches both the section sentinel and the underlying cause.
func (e *InvalidVersionConfigError) Unwrap() []error {
	return append([]error{ErrInvalidVersionConfig}, e.FieldErrors...)
}

// IsValid returns whether the UIConfig has valid fields.
func (c UIConfig) IsValid() (bool, []error) {
	return c.ColorScheme.IsValid()
}

// IsValid returns whether the WatchConfig has valid fields.
func (c WatchConfig) IsValid() (bool, []error) {
	if c.Debounce <= 0 {
		return false, []error{&InvalidDebounceError{Value: c.Debounce}}
	}
	return true, nil
}

// IsValid returns whether the Config has valid fields across all sections.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, check := range []func() (bool, []error){
		c.Project.IsValid,
		c.Version.IsValid,
		c.UI.IsValid,
		c.Watch.IsValid,
	} {
		if valid, fieldErrs := check(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so errors.Is
// matches both the section sentinel and the underlying cause.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
