package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devdup/pkg/annotation"
	"github.com/Sumatoshi-tech/devdup/pkg/pipeline"
)

var (
	// ErrAnnotateTargets is returned unless exactly one of candidate files
	// and --dir is given.
	ErrAnnotateTargets = errors.New("exactly one of candidate files or --dir is required")
	// ErrMergeFailed is returned when some merges of a directory failed.
	ErrMergeFailed = errors.New("merges failed")
)

type annotateOptions struct {
	annotated string
	dir       string
	outDir    string
}

func newAnnotateCommand(a *app) *cobra.Command {
	opts := &annotateOptions{}

	cmd := &cobra.Command{
		Use:   "annotate --annotated FILE (CANDIDATE... | --dir DIR)",
		Short: "Carry review labels over to new candidate tables",
		Long: `Copy the true_pos labels of a reviewed candidate table into candidate tables
produced by a stricter rerun. Every candidate row must appear in the reviewed
table. Results are written next to the candidates under the annotated
directory with the _ANNOTATED.csv suffix.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (opts.dir == "") {
				return ErrAnnotateTargets
			}

			return a.run(cmd, func(ctx context.Context) error {
				return a.annotate(ctx, cmd, args, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.annotated, "annotated", "", "reviewed candidate table")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "merge into every labeled table of this directory")
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", "", "output directory (default: <candidates>/<paths.annotated_dir>)")

	_ = cmd.MarkFlagRequired("annotated")

	return cmd
}

func (a *app) annotationDir(candidateDir string) string {
	dir := a.cfg.Paths.AnnotatedDir
	if filepath.IsAbs(dir) {
		return dir
	}

	return filepath.Join(candidateDir, dir)
}

func (a *app) annotate(ctx context.Context, cmd *cobra.Command, args []string, opts *annotateOptions) error {
	runner := pipeline.NewRunner(pipeline.Options{}, a.deps())

	var (
		results []annotation.Result
		err     error
	)

	if opts.dir != "" {
		outDir := opts.outDir
		if outDir == "" {
			outDir = a.annotationDir(opts.dir)
		}

		results, err = runner.AnnotateDir(ctx, opts.annotated, opts.dir, outDir)
	} else {
		outDir := opts.outDir
		if outDir == "" {
			outDir = a.annotationDir(filepath.Dir(args[0]))
		}

		results, err = runner.AnnotateFiles(ctx, opts.annotated, args, outDir)
	}

	printResults(cmd, results)

	if err != nil {
		return err
	}

	var failed int

	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrMergeFailed, failed, len(results))
	}

	return nil
}

func printResults(cmd *cobra.Command, results []annotation.Result) {
	out := cmd.OutOrStdout()
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	for _, res := range results {
		if res.Err != nil {
			bad.Fprintf(out, "FAIL %s: %v\n", res.Candidate, res.Err)

			continue
		}

		ok.Fprintf(out, "OK   %s -> %s (%d rows, %d relabeled)\n", res.Candidate, res.Output, res.Rows, res.Relabeled)
	}
}
