// SPDX-License-Identifier: MPL-2.0

// Package driver sequences a packaging run: it parses the mode from the
// command line, stages pseudo-packages, checks the release version, prints
// the installation report and finally delegates to the build action.
//
// Gates run in that order and the first failure aborts the run before the
// build action is reached.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/holoviews/hvpack/internal/build"
	"github.com/holoviews/hvpack/internal/report"
	"github.com/holoviews/hvpack/internal/stage"
	"github.com/holoviews/hvpack/internal/version"
	"github.com/holoviews/hvpack/pkg/descriptor"
	"github.com/holoviews/hvpack/pkg/manifest"
)

// ErrNoDescriptor is returned when Project.Descriptor is nil.
var ErrNoDescriptor = errors.New("driver: project descriptor is required")

type (
	// Stager stages pseudo-packages and returns the extended manifest.
	Stager interface {
		Stage(ctx context.Context, base manifest.Manifest) (stage.Result, error)
	}

	// Project identifies the checkout being packaged.
	Project struct {
		Root       string
		DistDir    string
		BuildDir   string
		Descriptor *descriptor.Descriptor
	}

	// Dependencies are the collaborators of a run. Stdout receives the
	// installation report.
	Dependencies struct {
		Stager  Stager
		Checker version.Checker
		Builder build.Builder
		Stdout  io.Writer
		Logger  *log.Logger
	}

	// Driver runs packaging invocations for one project.
	Driver struct {
		project Project
		deps    Dependencies
	}

	// Outcome records what a run did.
	Outcome struct {
		Modes    Modes
		Manifest manifest.Manifest
		Staged   []stage.CategoryResult
		Build    build.Result
	}
)

// New creates a Driver. Nil Checker defaults to version.Skip, nil Stdout to
// io.Discard and nil Logger to a discarding logger.
func New(project Project, deps Dependencies) *Driver {
	if deps.Checker == nil {
		deps.Checker = version.Skip{}
	}
	if deps.Stdout == nil {
		deps.Stdout = io.Discard
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	return &Driver{project: project, deps: deps}
}

// Run executes one invocation. args are the pass-through arguments; only the
// mode tokens are interpreted, each gate on its own.
func (d *Driver) Run(ctx context.Context, args []string) (Outcome, error) {
	desc := d.project.Descriptor
	if desc == nil {
		return Outcome{}, ErrNoDescriptor
	}

	mode := ParseModes(args)
	out := Outcome{Modes: mode, Manifest: desc.Manifest()}
	d.deps.Logger.Debug("resolved modes", "modes", mode, "args", args)

	if mode.StagesAssets() {
		res, err := d.deps.Stager.Stage(ctx, out.Manifest)
		if err != nil {
			return out, fmt.Errorf("stage pseudo-packages: %w", err)
		}
		out.Manifest = res.Manifest
		out.Staged = res.Categories
	}

	if mode.ChecksVersion() {
		if err := d.deps.Checker.Verify(ctx, desc.Version); err != nil {
			return out, fmt.Errorf("check release version: %w", err)
		}
		d.deps.Logger.Info("version verified", "version", desc.Version)
	}

	if mode.ReportsInstall() {
		if err := report.Write(d.deps.Stdout, ReportInfo(desc)); err != nil {
			return out, err
		}
	}

	res, err := d.deps.Builder.Build(ctx, build.Request{
		Root:       d.project.Root,
		DistDir:    d.project.DistDir,
		BuildDir:   d.project.BuildDir,
		Kind:       mode.BuildKind(),
		Publish:    mode.Publishes(),
		Descriptor: desc,
		Manifest:   out.Manifest,
	})
	if err != nil {
		return out, fmt.Errorf("build %s: %w", mode.BuildKind(), err)
	}
	out.Build = res
	return out, nil
}

// ReportInfo extracts the installation banner fields from a descriptor.
func ReportInfo(d *descriptor.Descriptor) report.Info {
	return report.Info{
		Name:        d.Name,
		DisplayName: d.Label(),
		Extras:      d.Extras().Names(),
		InstallURL:  d.InstallURL,
	}
}
