package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devdup/pkg/mining"
)

const dateLayout = "2006-01-02"

func newMineCommand(a *app) *cobra.Command {
	var (
		since       string
		firstParent bool
	)

	cmd := &cobra.Command{
		Use:   "mine <repo>",
		Short: "Extract the developer identities of a repository",
		Long: `Walk every commit reachable from HEAD and write the distinct author and
committer identities to <data_root>/<repo>-data/devs.csv. An existing devs
table is reused and the history filters are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := mining.Options{FirstParent: firstParent}

			if since != "" {
				t, err := parseSince(since, time.Now())
				if err != nil {
					return err
				}

				opts.Since = &t
			}

			return a.run(cmd, func(ctx context.Context) error {
				ds, err := mining.Bootstrap(ctx, args[0], a.cfg.Paths.DataRoot, opts, a.providers.Logger)
				if err != nil {
					return err
				}

				how := "mined"
				if ds.Reused {
					how = "reused"
				}

				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "%s %s developers (%s)\n",
					ds.DevsPath(), humanize.Comma(int64(len(ds.Devs))), how)

				if len(ds.Devs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no commits found")
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "only mine commits after a date (2006-01-02), an RFC 3339 time or a duration ago (720h)")
	cmd.Flags().BoolVar(&firstParent, "first-parent", false, "follow only the first parent of merge commits")

	return cmd
}

// parseSince accepts a date, an RFC 3339 timestamp or a duration before now.
func parseSince(value string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return time.Time{}, fmt.Errorf("invalid --since %q: want a date, an RFC 3339 time or a positive duration", value)
	}

	return now.Add(-d), nil
}
