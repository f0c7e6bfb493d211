// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holoviews/hvpack/internal/driver"
	"github.com/holoviews/hvpack/internal/report"
)

func newExtrasCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "extras",
		Short: "Print the installation report",
		Long: `Print the installation report shown on install runs. With --verbose
the resolved requirements of every extras group are listed as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.loadProject(cmd.Context())
			if err != nil {
				return app.failCommand(cmd, err, app.flags.verbose)
			}
			if err := report.Write(app.stdout, driver.ReportInfo(p.desc)); err != nil {
				return err
			}
			if p.verbose {
				printResolvedExtras(app, p)
			}
			return nil
		},
	}
}

func printResolvedExtras(app *App, p *project) {
	extras := p.desc.Extras()
	fmt.Fprintln(app.stdout, TitleStyle.Render("Resolved extras"))
	for _, name := range extras.Names() {
		reqs, _ := extras.Get(name)
		fmt.Fprintf(app.stdout, "\n%s %s\n", CmdStyle.Render(p.desc.Name+"["+name+"]"), SubtitleStyle.Render(fmt.Sprintf("(%d)", len(reqs))))
		for _, r := range reqs {
			fmt.Fprintf(app.stdout, "  - %s\n", r)
		}
	}
}
