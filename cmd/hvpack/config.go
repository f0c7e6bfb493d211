// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/holoviews/hvpack/internal/config"
	"github.com/holoviews/hvpack/internal/issue"
)

// newConfigCommand creates the `hvpack config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage hvpack configuration",
		Long: `Manage hvpack configuration.

Configuration is looked up in order:
  1. the file given with --config
  2. the user config file (Linux: ~/.config/hvpack/config.cue,
     macOS: ~/Library/Application Support/hvpack/config.cue,
     Windows: %APPDATA%\hvpack\config.cue)
  3. hvpack.config.cue in the project root

HVPACK_* environment variables override file values, for example
HVPACK_PROJECT_DOC_DIR=docs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app)
		},
	})

	var project bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, app, project)
		},
	}
	initCmd.Flags().BoolVar(&project, "project", false, "write "+config.ProjectConfigFileName+" in the project root instead")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := app.projectRoot()
			if err != nil {
				return err
			}
			cfg, _, err := app.loadConfig(cmd.Context(), root)
			if err != nil {
				return app.failCommand(cmd, newServiceError(err, issue.ConfigLoadFailedId, ""), app.flags.verbose)
			}
			_, err = fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return err
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App) error {
	root, err := app.projectRoot()
	if err != nil {
		return err
	}
	cfg, path, err := app.loadConfig(cmd.Context(), root)
	if err != nil {
		return app.failCommand(cmd, newServiceError(err, issue.ConfigLoadFailedId, ""), app.flags.verbose)
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	section := func(name string, kv ...string) {
		fmt.Fprintf(w, "\n%s:\n", CmdStyle.Render(name))
		for i := 0; i+1 < len(kv); i += 2 {
			value := kv[i+1]
			if value == "" {
				value = SubtitleStyle.Render("(not set)")
			} else {
				value = SuccessStyle.Render(value)
			}
			fmt.Fprintf(w, "  %s: %s\n", kv[i], value)
		}
	}

	section("project",
		"package_dir", cfg.Project.PackageDir.String(),
		"doc_dir", cfg.Project.DocDir.String(),
		"tests_dir", cfg.Project.TestsDir.String(),
		"descriptor", cfg.Project.Descriptor.String(),
		"dist_dir", cfg.Project.DistDir.String(),
		"build_dir", cfg.Project.BuildDir.String(),
	)
	section("version",
		"probe", cfg.Version.Probe.String(),
		"file", cfg.Version.File,
		"pattern", cfg.Version.Pattern,
		"script", cfg.Version.Script,
	)
	section("ui",
		"color_scheme", cfg.UI.ColorScheme.String(),
		"verbose", strconv.FormatBool(cfg.UI.Verbose),
	)
	section("watch", "debounce", cfg.Watch.Debounce.String())
	return nil
}

func initConfig(cmd *cobra.Command, app *App, project bool) error {
	var (
		path string
		err  error
	)
	switch {
	case app.flags.configPath != "":
		path = app.flags.configPath
	case project:
		var root string
		if root, err = app.projectRoot(); err == nil {
			path = filepath.Join(root, config.ProjectConfigFileName)
		}
	default:
		path, err = config.UserConfigPath()
	}
	if err != nil {
		return err
	}

	created, err := config.CreateDefaultConfig(path)
	if err != nil {
		return app.failCommand(cmd, fmt.Errorf("create config: %w", err), app.flags.verbose)
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", warningIcon, path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", successIcon, path)
	return nil
}

func showConfigPath(app *App) error {
	userPath, err := config.UserConfigPath()
	if err != nil {
		return err
	}
	root, err := app.projectRoot()
	if err != nil {
		return err
	}

	line := func(label, path string) {
		state := SubtitleStyle.Render("(missing)")
		if _, statErr := os.Stat(path); statErr == nil {
			state = SuccessStyle.Render("(found)")
		}
		fmt.Fprintf(app.stdout, "%s: %s %s\n", label, path, state)
	}
	if app.flags.configPath != "" {
		line("Explicit config", app.flags.configPath)
	}
	line("User config", userPath)
	line("Project config", filepath.Join(root, config.ProjectConfigFileName))
	return nil
}
