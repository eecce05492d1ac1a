// Package pipeline runs the de-duplication stages end to end: scoring every
// developer pair per variant, writing one candidate table per threshold and
// merging prior annotations into new candidate tables.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/devdup/pkg/candidates"
	"github.com/Sumatoshi-tech/devdup/pkg/identity"
	"github.com/Sumatoshi-tech/devdup/pkg/observability"
	"github.com/Sumatoshi-tech/devdup/pkg/pairwise"
	"github.com/Sumatoshi-tech/devdup/pkg/similarity"
	"github.com/Sumatoshi-tech/devdup/pkg/table"
)

const spanPrefix = "devdup."

// Stage names used for spans and the stage duration metric.
const (
	StageScore    = "score"
	StageFilter   = "filter"
	StageAnnotate = "annotate"
)

// Options selects what an evaluation run computes and writes.
type Options struct {
	Variants   []similarity.Variant
	Similarity similarity.Config
	Thresholds []float64
	// Workers is passed to the pairwise evaluator.
	Workers int
	// WritePairs also stores the unfiltered scores of every variant.
	WritePairs bool
	// CompressPairs lz4-compresses the unfiltered score tables.
	CompressPairs bool
}

// Deps are the observability collaborators. Any of them may be nil.
type Deps struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.PipelineMetrics
}

// Output is one written candidate table.
type Output struct {
	Variant   similarity.Variant
	Threshold float64
	Path      string
	Rows      int
}

// Result summarizes an evaluation run.
type Result struct {
	Developers int
	Pairs      int
	PairsFiles []string
	Outputs    []Output
}

// Runner executes pipeline stages.
type Runner struct {
	opts    Options
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.PipelineMetrics
}

// NewRunner creates a Runner, substituting defaults for missing deps.
func NewRunner(opts Options, deps Deps) *Runner {
	r := &Runner{
		opts:    opts,
		logger:  deps.Logger,
		tracer:  deps.Tracer,
		metrics: deps.Metrics,
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	if r.tracer == nil {
		r.tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	return r
}

// Evaluate scores devs with every configured variant and writes the
// candidate tables for every threshold into outDir.
func (r *Runner) Evaluate(ctx context.Context, devs []identity.DeveloperRecord, outDir string) (Result, error) {
	res := Result{Developers: len(devs)}

	err := os.MkdirAll(outDir, 0o755)
	if err != nil {
		return res, fmt.Errorf("create output folder: %w", err)
	}

	r.logger.InfoContext(ctx, "evaluating developers",
		"developers", humanize.Comma(int64(len(devs))),
		"pairs", humanize.Comma(int64(pairwise.PairCount(len(devs)))),
		"variants", len(r.opts.Variants),
		"thresholds", r.opts.Thresholds)

	for _, v := range r.opts.Variants {
		err = r.evaluateVariant(ctx, v, devs, outDir, &res)
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

func (r *Runner) naming(v similarity.Variant) candidates.Naming {
	return candidates.Naming{
		Variant:     v,
		EmailCheck:  r.opts.Similarity.EmailCheck,
		PrefixCount: len(r.opts.Similarity.GenericPrefixes),
	}
}

func (r *Runner) evaluateVariant(
	ctx context.Context, v similarity.Variant, devs []identity.DeveloperRecord, outDir string, res *Result,
) error {
	engine, err := similarity.New(v, r.opts.Similarity)
	if err != nil {
		return err
	}

	naming := r.naming(v)
	variantAttr := attribute.String("variant", string(v))

	var scores []pairwise.PairScore

	err = r.stage(ctx, StageScore, func(ctx context.Context) error {
		var evalErr error

		scores, evalErr = pairwise.Evaluate(ctx, devs, engine, pairwise.Options{Workers: r.opts.Workers})
		if evalErr != nil {
			return evalErr
		}

		if !r.opts.WritePairs {
			return nil
		}

		path := filepath.Join(outDir, naming.PairsFile(r.opts.CompressPairs))

		writeErr := table.Write(path, candidates.ScoreTable(v, scores))
		if writeErr != nil {
			return writeErr
		}

		res.PairsFiles = append(res.PairsFiles, path)

		return nil
	}, variantAttr)
	if err != nil {
		return fmt.Errorf("%s: %w", v, err)
	}

	res.Pairs = len(scores)

	if r.metrics != nil {
		r.metrics.RecordScored(ctx, string(v), len(scores))
	}

	for _, threshold := range r.opts.Thresholds {
		err = r.stage(ctx, StageFilter, func(ctx context.Context) error {
			kept := candidates.Filter(v, scores, threshold)
			path := filepath.Join(outDir, naming.CandidateFile(threshold))

			writeErr := table.Write(path, kept)
			if writeErr != nil {
				return writeErr
			}

			res.Outputs = append(res.Outputs, Output{Variant: v, Threshold: threshold, Path: path, Rows: kept.Len()})

			if r.metrics != nil {
				r.metrics.RecordKept(ctx, string(v), threshold, kept.Len())
			}

			r.logger.InfoContext(ctx, "candidates written",
				"variant", v, "threshold", threshold, "rows", kept.Len(), "path", path)

			return nil
		}, variantAttr, attribute.Float64("threshold", threshold))
		if err != nil {
			return fmt.Errorf("%s at %s: %w", v, similarity.FormatFloat(threshold), err)
		}
	}

	return nil
}

// stage runs fn inside a span and records its duration.
func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := r.tracer.Start(ctx, spanPrefix+name, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	if r.metrics != nil {
		r.metrics.RecordStage(ctx, name, time.Since(start), err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}
