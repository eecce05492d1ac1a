package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devdup/pkg/report"
)

func newReportCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report [dir]",
		Short: "Summarize reviewed candidate tables",
		Long: `Count true and false positives in every labeled CSV table of a directory
(the current directory by default), newest names first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			return a.run(cmd, func(ctx context.Context) error {
				summaries, err := report.Collect(dir)
				if err != nil {
					return err
				}

				a.providers.Logger.DebugContext(ctx, "tables collected", "dir", dir, "files", len(summaries))

				return report.Render(cmd.OutOrStdout(), summaries, format)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", report.FormatTable, "output format: table, json, yaml")

	return cmd
}
