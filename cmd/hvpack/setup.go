// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSetupCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup [-- setup-args...]",
		Short: "Stage pseudo-packages, check the version and build",
		Long: `Run a packaging invocation the way setup.py would.

Each of develop, install, upload and sdist is checked on its own anywhere
in the arguments; every other argument is passed through unexamined.

  develop   link the checkout in place, nothing is staged
  install   stage, print the installation report, build a wheel
  sdist     stage, check the release version, build a source archive
  upload    same as sdist; publishing is left to the operator
  (other)   stage and build a wheel`,
		Example: `  hvpack setup -- sdist
  hvpack setup -- install --user
  hvpack --root ~/src/holoviews setup develop`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd, app, args)
		},
	}
	cmd.FParseErrWhitelist.UnknownFlags = true
	return cmd
}

func runSetup(cmd *cobra.Command, app *App, args []string) error {
	ctx := cmd.Context()

	p, err := app.loadProject(ctx)
	if err != nil {
		return app.failCommand(cmd, err, app.flags.verbose)
	}

	d, err := app.driver(p)
	if err != nil {
		return app.failCommand(cmd, err, p.verbose)
	}

	out, err := d.Run(ctx, args)
	if err != nil {
		return app.failCommand(cmd, err, p.verbose)
	}

	for _, c := range out.Staged {
		fmt.Fprintf(app.stdout, "%s staged %s (%d files)\n", successIcon, CmdStyle.Render(c.Package), len(c.Files))
	}
	fmt.Fprintf(app.stdout, "%s %s: %s\n", successIcon, out.Modes, CmdStyle.Render(out.Build.Artifact))
	if p.verbose {
		fmt.Fprintln(app.stdout, VerboseStyle.Render(fmt.Sprintf("  build %s, %d files", out.Build.BuildID, out.Build.Files)))
	}
	return nil
}
