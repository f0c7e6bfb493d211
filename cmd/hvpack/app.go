// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/holoviews/hvpack/internal/build"
	"github.com/holoviews/hvpack/internal/config"
	"github.com/holoviews/hvpack/internal/driver"
	"github.com/holoviews/hvpack/internal/issue"
	"github.com/holoviews/hvpack/internal/stage"
	"github.com/holoviews/hvpack/internal/version"
	"github.com/holoviews/hvpack/pkg/descriptor"
)

type (
	// App wires CLI services and shared dependencies. Command handlers receive
	// an App and resolve the project through it.
	App struct {
		Config  config.Provider
		Builder build.Builder
		stdout  io.Writer
		stderr  io.Writer
		flags   rootFlags
		// issueStyle is the glamour style for issue help, from ui.color_scheme.
		issueStyle string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config  config.Provider
		Builder build.Builder
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// rootFlags are the persistent flags shared by every command.
	rootFlags struct {
		verbose    bool
		configPath string
		root       string
	}

	// project is a resolved checkout: its configuration, descriptor and the
	// stager for its layout.
	project struct {
		root       string
		cfg        *config.Config
		configPath string
		desc       *descriptor.Descriptor
		stager     *stage.Stager
		logger     *log.Logger
		verbose    bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	return &App{
		Config:  deps.Config,
		Builder: deps.Builder,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
	}
}

// newLogger creates the stderr logger; --verbose (or ui.verbose) enables debug.
func (a *App) newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: config.AppName})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func (a *App) loadOptions(root string) config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.flags.configPath, BaseDir: root}
}

func (a *App) projectRoot() (string, error) {
	root := a.flags.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("determine working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve project root: %w", err)
	}
	return abs, nil
}

// loadConfig returns the effective configuration and the file it came from.
func (a *App) loadConfig(ctx context.Context, root string) (*config.Config, string, error) {
	opts := a.loadOptions(root)
	if r, ok := a.Config.(config.PathResolver); ok {
		return r.Resolve(ctx, opts)
	}
	cfg, err := a.Config.Load(ctx, opts)
	return cfg, "", err
}

// loadProject resolves configuration, descriptor and layout for the
// selected root.
func (a *App) loadProject(ctx context.Context) (*project, error) {
	root, err := a.projectRoot()
	if err != nil {
		return nil, err
	}

	cfg, cfgPath, err := a.loadConfig(ctx, root)
	if err != nil {
		return nil, newServiceError(err, issue.ConfigLoadFailedId, "")
	}

	a.issueStyle = issueStyleFor(cfg.UI.ColorScheme)
	verbose := a.flags.verbose || cfg.UI.Verbose
	logger := a.newLogger(verbose)

	desc, err := descriptor.Load(root, cfg.Project.Descriptor.String())
	if err != nil {
		return nil, newServiceError(err, issue.DescriptorInvalidId, "")
	}
	logger.Debug("loaded descriptor", "name", desc.Name, "version", desc.Version)

	layout := stage.Layout{
		Root:       root,
		PackageDir: cfg.Project.PackageDir.String(),
		DocDir:     cfg.Project.DocDir.String(),
		TestsDir:   cfg.Project.TestsDir.String(),
	}

	return &project{
		root:       root,
		cfg:        cfg,
		configPath: cfgPath,
		desc:       desc,
		stager:     stage.New(layout, stage.WithLogger(logger)),
		logger:     logger,
		verbose:    verbose,
	}, nil
}

// driver assembles the packaging driver for p.
func (a *App) driver(p *project) (*driver.Driver, error) {
	checker, err := version.NewChecker(p.cfg.Version, p.root)
	if err != nil {
		return nil, err
	}
	builder := a.Builder
	if builder == nil {
		builder = build.NewArchiveBuilder(build.WithLogger(p.logger))
	}
	return driver.New(driver.Project{
		Root:       p.root,
		DistDir:    p.cfg.Project.DistDir.String(),
		BuildDir:   p.cfg.Project.BuildDir.String(),
		Descriptor: p.desc,
	}, driver.Dependencies{
		Stager:  p.stager,
		Checker: checker,
		Builder: builder,
		Stdout:  a.stdout,
		Logger:  p.logger,
	}), nil
}

// issueStyleFor maps ui.color_scheme to a glamour style; auto renders dark.
func issueStyleFor(scheme config.ColorScheme) string {
	if scheme == config.ColorSchemeLight {
		return "light"
	}
	return "dark"
}
