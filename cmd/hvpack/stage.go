// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holoviews/hvpack/internal/watch"
)

func newStageCommand(app *App) *cobra.Command {
	var watchMode bool

	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Copy documentation assets, notebooks and tests into pseudo-packages",
		Long: `Copy documentation assets, notebooks and tests into pseudo-packages
under the package directory and verify that each one is populated.

With --watch, hvpack keeps running and restages whenever a matching file
under the documentation or tests tree changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(cmd, app, watchMode)
		},
	}
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "restage when sources change")
	return cmd
}

func runStage(cmd *cobra.Command, app *App, watchMode bool) error {
	ctx := cmd.Context()

	p, err := app.loadProject(ctx)
	if err != nil {
		return app.failCommand(cmd, err, app.flags.verbose)
	}

	if err := stageOnce(ctx, app, p); err != nil {
		if !watchMode {
			return app.failCommand(cmd, err, p.verbose)
		}
		p.logger.Error("staging failed", "err", err)
	}
	if !watchMode {
		return nil
	}

	docDir, testsDir := p.cfg.Project.DocDir.String(), p.cfg.Project.TestsDir.String()
	w, err := watch.New(watch.Config{
		Root:     p.root,
		Dirs:     []string{docDir, testsDir},
		Patterns: p.stager.WatchPatterns(),
		Debounce: p.cfg.Watch.Debounce,
		Logger:   p.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			p.logger.Info("sources changed, restaging", "files", len(changed))
			return stageOnce(ctx, app, p)
		},
	})
	if err != nil {
		return app.failCommand(cmd, err, p.verbose)
	}

	fmt.Fprintf(app.stdout, "%s watching %s and %s (Ctrl+C to stop)\n", warningIcon, CmdStyle.Render(docDir), CmdStyle.Render(testsDir))
	if err := w.Run(ctx); err != nil {
		return app.failCommand(cmd, err, p.verbose)
	}
	return nil
}

func stageOnce(ctx context.Context, app *App, p *project) error {
	res, err := p.stager.Stage(ctx, p.desc.Manifest())
	if err != nil {
		return err
	}
	for _, c := range res.Categories {
		fmt.Fprintf(app.stdout, "%s %s: %d files\n", successIcon, CmdStyle.Render(c.Package), len(c.Files))
		if p.verbose {
			for _, f := range c.Files {
				fmt.Fprintf(app.stdout, "    %s\n", VerboseStyle.Render(f))
			}
		}
	}
	return nil
}
