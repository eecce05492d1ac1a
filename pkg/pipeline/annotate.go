package pipeline

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Sumatoshi-tech/devdup/pkg/annotation"
)

// AnnotateFiles merges the annotated table into each candidate file and
// writes the results into outDir. It stops at the first failing file.
func (r *Runner) AnnotateFiles(ctx context.Context, annotatedPath string, paths []string, outDir string) ([]annotation.Result, error) {
	results := make([]annotation.Result, 0, len(paths))

	for _, path := range paths {
		var res annotation.Result

		err := r.stage(ctx, StageAnnotate, func(context.Context) error {
			var mergeErr error

			res, mergeErr = annotation.MergeFile(annotatedPath, path, outDir)

			return mergeErr
		}, attribute.String("candidate", path))
		if err != nil {
			return results, err
		}

		r.recordMerge(ctx, res)
		results = append(results, res)
	}

	return results, nil
}

// AnnotateDir merges the annotated table into every labeled table of dir.
// Per-file failures are logged and returned in the results.
func (r *Runner) AnnotateDir(ctx context.Context, annotatedPath, dir, outDir string) ([]annotation.Result, error) {
	var results []annotation.Result

	err := r.stage(ctx, StageAnnotate, func(context.Context) error {
		var mergeErr error

		results, mergeErr = annotation.MergeDir(annotatedPath, dir, outDir)

		return mergeErr
	}, attribute.String("dir", dir))
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		if res.Err != nil {
			r.logger.WarnContext(ctx, "merge failed", "candidate", res.Candidate, "error", res.Err)

			continue
		}

		r.recordMerge(ctx, res)
	}

	return results, nil
}

func (r *Runner) recordMerge(ctx context.Context, res annotation.Result) {
	if r.metrics != nil {
		r.metrics.RecordRelabeled(ctx, res.Relabeled)
	}

	r.logger.InfoContext(ctx, "annotations merged",
		"candidate", res.Candidate, "output", res.Output, "rows", res.Rows, "relabeled", res.Relabeled)
}
