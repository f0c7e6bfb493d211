// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

var (
	manifestFormats = []string{"json", "yaml", "toml"}

	errUnknownFormat = errors.New("unknown manifest format")
)

func newManifestCommand(app *App) *cobra.Command {
	var (
		format string
		staged bool
	)

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Print the package manifest",
		Long: `Print the packages and package data of the descriptor.

--staged stages the pseudo-packages first and prints the manifest the
build would receive. --format toml renders a complete pyproject.toml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(cmd, app, format, staged)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, yaml, toml)")
	cmd.Flags().BoolVar(&staged, "staged", false, "stage pseudo-packages and include them")
	return cmd
}

func runManifest(cmd *cobra.Command, app *App, format string, staged bool) error {
	if !slices.Contains(manifestFormats, format) {
		return fmt.Errorf("%w %q (want one of %v)", errUnknownFormat, format, manifestFormats)
	}

	ctx := cmd.Context()
	p, err := app.loadProject(ctx)
	if err != nil {
		return app.failCommand(cmd, err, app.flags.verbose)
	}

	m := p.desc.Manifest()
	if staged {
		res, err := p.stager.Stage(ctx, m)
		if err != nil {
			return app.failCommand(cmd, err, p.verbose)
		}
		m = res.Manifest
	}

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(m, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = m.EncodeYAML()
	case "toml":
		data, err = p.desc.MarshalPyproject(m.Packages(), m.PackageData())
	}
	if err != nil {
		return fmt.Errorf("encode manifest as %s: %w", format, err)
	}

	_, err = app.stdout.Write(data)
	return err
}
