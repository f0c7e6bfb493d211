// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holoviews/hvpack/internal/stage"
)

func newVerifyCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [dir...]",
		Short: "Check that pseudo-packages exist and are populated",
		Long: `Check that each directory exists and contains at least one entry.

Without arguments the assets, notebooks and tests pseudo-packages of the
project are checked. Relative paths resolve against the project root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, app, args)
		},
	}
}

func runVerify(cmd *cobra.Command, app *App, dirs []string) error {
	p, err := app.loadProject(cmd.Context())
	if err != nil {
		return app.failCommand(cmd, err, app.flags.verbose)
	}

	if len(dirs) == 0 {
		for _, c := range p.stager.Categories() {
			dirs = append(dirs, p.stager.PseudoPackageDir(c.Name))
		}
	}

	var first error
	for _, dir := range dirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(p.root, dir)
		}
		shown := displayPath(p.root, dir)
		if err := stage.VerifyPseudoPackage(dir); err != nil {
			fmt.Fprintf(app.stdout, "%s %s\n", errorIcon, shown)
			if first == nil {
				first = err
			}
			continue
		}
		fmt.Fprintf(app.stdout, "%s %s\n", successIcon, shown)
	}

	if first != nil {
		return app.failCommand(cmd, first, p.verbose)
	}
	return nil
}

// displayPath shows path relative to root when it lies beneath it.
func displayPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
