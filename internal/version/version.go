// SPDX-License-Identifier: MPL-2.0

package version

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrVersionMismatch is the sentinel wrapped by VersionMismatchError.
	ErrVersionMismatch = errors.New("version mismatch")
	// ErrNoVersion is returned when a probe finds no version string.
	ErrNoVersion = errors.New("no version found")
)

type (
	// Checker verifies the declared release version against the library.
	Checker interface {
		Verify(ctx context.Context, declared string) error
	}

	// Probe reads the version the library reports about itself.
	Probe interface {
		Probe(ctx context.Context) (string, error)
		// Describe names the probe source for messages, e.g. a file path.
		Describe() string
	}

	// ProbeChecker is a Checker backed by a Probe.
	ProbeChecker struct {
		probe Probe
	}

	// Skip is a Checker that accepts every version.
	Skip struct{}

	// VersionMismatchError reports a declared version that the library disagrees with.
	VersionMismatchError struct {
		Declared string
		Actual   string
		Source   string
	}
)

// NewProbeChecker returns a Checker comparing against p.
func NewProbeChecker(p Probe) *ProbeChecker {
	return &ProbeChecker{probe: p}
}

// Verify probes the library version and compares it with declared.
// A leading "v" and surrounding whitespace are ignored on both sides.
func (c *ProbeChecker) Verify(ctx context.Context, declared string) error {
	actual, err := c.probe.Probe(ctx)
	if err != nil {
		return fmt.Errorf("probe version from %s: %w", c.probe.Describe(), err)
	}
	if Normalize(actual) != Normalize(declared) {
		return &VersionMismatchError{Declared: declared, Actual: actual, Source: c.probe.Describe()}
	}
	return nil
}

// Verify implements Checker and always succeeds.
func (Skip) Verify(context.Context, string) error { return nil }

// Normalize trims whitespace and a single leading "v".
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	return strings.TrimPrefix(v, "v")
}

// Error implements the error interface.
func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("declared version %q does not match %q reported by %s", e.Declared, e.Actual, e.Source)
}

// Unwrap returns ErrVersionMismatch for errors.Is() compatibility.
func (e *VersionMismatchError) Unwrap() error { return ErrVersionMismatch }
