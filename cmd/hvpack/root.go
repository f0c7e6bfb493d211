// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the hvpack command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hvpack",
		Short: "Packaging driver for the HoloViews library",
		Long: TitleStyle.Render("hvpack") + SubtitleStyle.Render(" - packaging driver for HoloViews") + `

hvpack stages documentation assets, notebooks and tests into
pseudo-packages, checks the release version and builds the
distribution from the package descriptor.

` + SubtitleStyle.Render("Examples:") + `
  hvpack setup -- sdist          Build a source archive for release
  hvpack setup -- install        Stage, print the install report and build a wheel
  hvpack setup develop           Link the checkout without staging
  hvpack stage --watch           Restage whenever doc/ or tests/ change
  hvpack manifest --format toml  Print the generated pyproject.toml`,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is <user config dir>/hvpack/config.cue)")
	pf.StringVar(&app.flags.root, "root", "", "project root (default is the working directory)")

	rootCmd.AddCommand(
		newSetupCommand(app),
		newStageCommand(app),
		newVerifyCommand(app),
		newExtrasCommand(app),
		newManifestCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute runs the command tree and exits with the code carried by an
// ExitError, or 1 for any other failure.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}
