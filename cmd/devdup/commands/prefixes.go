package commands

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devdup/pkg/identity"
)

const defaultPrefixCount = 20

func newPrefixesCommand(a *app) *cobra.Command {
	var (
		devsPath string
		count    int
	)

	cmd := &cobra.Command{
		Use:   "prefixes [repo]",
		Short: "List the most common email local parts",
		Long: `List the email local parts shared by the most developers. Frequent ones
such as "mail" or "github" are candidates for heuristic.generic_prefixes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				devs, _, err := a.loadDevs(ctx, args, devsPath)
				if err != nil {
					return err
				}

				tbl := table.NewWriter()
				tbl.SetStyle(table.StyleLight)
				tbl.AppendHeader(table.Row{"Prefix", "Developers"})

				for _, pc := range identity.MostCommonPrefixes(devs, count) {
					tbl.AppendRow(table.Row{pc.Prefix, humanize.Comma(int64(pc.Count))})
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())

				return err
			})
		},
	}

	cmd.Flags().StringVar(&devsPath, "devs", "", "devs table to read instead of mining a repository")
	cmd.Flags().IntVarP(&count, "count", "n", defaultPrefixCount, "number of prefixes to list (0 = all)")

	return cmd
}
