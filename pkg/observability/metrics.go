package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricPairsScored     = "devdup.pairs.scored"
	metricCandidatesKept  = "devdup.candidates.kept"
	metricRowsRelabeled   = "devdup.rows.relabeled"
	metricStageDuration   = "devdup.stage.duration.seconds"
	metricStageErrorTotal = "devdup.stage.errors.total"

	attrVariant   = "variant"
	attrThreshold = "threshold"
	attrStage     = "stage"
)

// durationBucketBoundaries covers 1ms to 10 minutes; scoring grows
// quadratically with the number of developers.
var durationBucketBoundaries = []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 600}

// PipelineMetrics holds the OTel instruments of the de-duplication pipeline.
type PipelineMetrics struct {
	pairsScored    metric.Int64Counter
	candidatesKept metric.Int64Counter
	rowsRelabeled  metric.Int64Counter
	stageDuration  metric.Float64Histogram
	stageErrors    metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	pairs, err := mt.Int64Counter(metricPairsScored,
		metric.WithDescription("Developer pairs scored"),
		metric.WithUnit("{pair}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPairsScored, err)
	}

	kept, err := mt.Int64Counter(metricCandidatesKept,
		metric.WithDescription("Candidate pairs kept by the threshold filter"),
		metric.WithUnit("{pair}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCandidatesKept, err)
	}

	relabeled, err := mt.Int64Counter(metricRowsRelabeled,
		metric.WithDescription("Candidate rows whose label was restored by a merge"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRowsRelabeled, err)
	}

	duration, err := mt.Float64Histogram(metricStageDuration,
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStageDuration, err)
	}

	stageErrors, err := mt.Int64Counter(metricStageErrorTotal,
		metric.WithDescription("Failed pipeline stages"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStageErrorTotal, err)
	}

	return &PipelineMetrics{
		pairsScored:    pairs,
		candidatesKept: kept,
		rowsRelabeled:  relabeled,
		stageDuration:  duration,
		stageErrors:    stageErrors,
	}, nil
}

// RecordScored counts the pairs scored by a variant.
func (pm *PipelineMetrics) RecordScored(ctx context.Context, variant string, pairs int) {
	pm.pairsScored.Add(ctx, int64(pairs), metric.WithAttributes(attribute.String(attrVariant, variant)))
}

// RecordKept counts the candidates kept by a variant at a threshold.
func (pm *PipelineMetrics) RecordKept(ctx context.Context, variant string, threshold float64, kept int) {
	pm.candidatesKept.Add(ctx, int64(kept), metric.WithAttributes(
		attribute.String(attrVariant, variant),
		attribute.Float64(attrThreshold, threshold),
	))
}

// RecordRelabeled counts rows relabeled by an annotation merge.
func (pm *PipelineMetrics) RecordRelabeled(ctx context.Context, rows int) {
	pm.rowsRelabeled.Add(ctx, int64(rows))
}

// RecordStage records the duration of a stage and counts it as failed when
// err is non-nil.
func (pm *PipelineMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String(attrStage, stage))

	pm.stageDuration.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		pm.stageErrors.Add(ctx, 1, attrs)
	}
}
