package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devdup/pkg/pipeline"
	"github.com/Sumatoshi-tech/devdup/pkg/similarity"
)

const (
	flagVariants   = "variants"
	flagThresholds = "thresholds"
	flagWorkers    = "workers"
	flagEmailCheck = "email-check"
	flagCompress   = "compress-pairs"
)

type evaluateOptions struct {
	devsPath   string
	outDir     string
	variants   []string
	thresholds []float64
	workers    int
	emailCheck bool
	compress   bool
}

func newEvaluateCommand(a *app) *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate [repo]",
		Short: "Score identity pairs and write candidate tables",
		Long: `Score every pair of developer identities with each configured variant and
write one candidate table per threshold. Developers come from --devs or from
the data folder of the repository, which is mined when needed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				return a.evaluate(ctx, cmd, args, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.devsPath, "devs", "", "devs table to evaluate instead of mining a repository")
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", "", "output directory (default: folder of the devs table)")
	cmd.Flags().StringSliceVar(&opts.variants, flagVariants, nil,
		"similarity variants: bird7, bird3, improved, jaro-winkler")
	cmd.Flags().Float64SliceVar(&opts.thresholds, flagThresholds, nil, "candidate thresholds in [0, 1]")
	cmd.Flags().IntVar(&opts.workers, flagWorkers, 0, "parallel scoring workers (0 or 1 = sequential)")
	cmd.Flags().BoolVar(&opts.emailCheck, flagEmailCheck, true, "ignore generic email local parts")
	cmd.Flags().BoolVar(&opts.compress, flagCompress, false, "lz4-compress the unfiltered pair tables")

	return cmd
}

// applyFlags overrides the loaded configuration with explicitly set flags.
func (o *evaluateOptions) applyFlags(cmd *cobra.Command, a *app) error {
	flags := cmd.Flags()

	if flags.Changed(flagVariants) {
		a.cfg.Heuristic.Variants = o.variants
	}

	if flags.Changed(flagThresholds) {
		a.cfg.Heuristic.Thresholds = o.thresholds
	}

	if flags.Changed(flagWorkers) {
		a.cfg.Pipeline.Workers = o.workers
	}

	if flags.Changed(flagEmailCheck) {
		a.cfg.Heuristic.EmailCheck = o.emailCheck
	}

	if flags.Changed(flagCompress) {
		a.cfg.Pipeline.CompressPairs = o.compress
	}

	return a.cfg.Validate()
}

func (a *app) evaluate(ctx context.Context, cmd *cobra.Command, args []string, opts *evaluateOptions) error {
	err := opts.applyFlags(cmd, a)
	if err != nil {
		return err
	}

	variants, err := a.cfg.ParsedVariants()
	if err != nil {
		return err
	}

	devs, folder, err := a.loadDevs(ctx, args, opts.devsPath)
	if err != nil {
		return err
	}

	outDir := folder
	if opts.outDir != "" {
		outDir = opts.outDir
	}

	runner := pipeline.NewRunner(pipeline.Options{
		Variants:      variants,
		Similarity:    a.cfg.Similarity(),
		Thresholds:    a.cfg.Heuristic.Thresholds,
		Workers:       a.cfg.Pipeline.Workers,
		WritePairs:    a.cfg.Pipeline.WritePairs,
		CompressPairs: a.cfg.Pipeline.CompressPairs,
	}, a.deps())

	res, err := runner.Evaluate(ctx, devs, outDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Variant", "Threshold", "Candidates", "File"})

	for _, o := range res.Outputs {
		tbl.AppendRow(table.Row{
			o.Variant,
			similarity.FormatFloat(o.Threshold),
			humanize.Comma(int64(o.Rows)),
			filepath.Base(o.Path),
		})
	}

	fmt.Fprintln(out, tbl.Render())

	color.New(color.FgGreen).Fprintf(out, "Scored %s pairs of %s developers into %s\n",
		humanize.Comma(int64(res.Pairs)), humanize.Comma(int64(res.Developers)), outDir)

	return nil
}
