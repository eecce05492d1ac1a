package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/devdup/pkg/observability"
)

func setupTestMeter(t *testing.T) (*observability.PipelineMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	pm, err := observability.NewPipelineMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return pm, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func counterTotal(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestPipelineMetrics_Counters(t *testing.T) {
	t.Parallel()

	pm, reader := setupTestMeter(t)
	ctx := context.Background()

	pm.RecordScored(ctx, "bird3", 45)
	pm.RecordScored(ctx, "improved", 45)
	pm.RecordKept(ctx, "bird3", 0.9, 3)
	pm.RecordKept(ctx, "bird3", 0.99, 1)
	pm.RecordRelabeled(ctx, 2)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(90), counterTotal(t, findMetric(rm, "devdup.pairs.scored")))
	assert.Equal(t, int64(4), counterTotal(t, findMetric(rm, "devdup.candidates.kept")))
	assert.Equal(t, int64(2), counterTotal(t, findMetric(rm, "devdup.rows.relabeled")))

	kept, ok := findMetric(rm, "devdup.candidates.kept").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, kept.DataPoints, 2)
}

func TestPipelineMetrics_RecordStage(t *testing.T) {
	t.Parallel()

	pm, reader := setupTestMeter(t)
	ctx := context.Background()

	pm.RecordStage(ctx, "score", 20*time.Millisecond, nil)
	pm.RecordStage(ctx, "merge", time.Second, errors.New("boom"))

	rm := collectMetrics(t, reader)

	require.NotNil(t, findMetric(rm, "devdup.stage.duration.seconds"))
	assert.Equal(t, int64(1), counterTotal(t, findMetric(rm, "devdup.stage.errors.total")))
}

func TestPipelineMetrics_NoopMeter(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	pm, err := observability.NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)

	pm.RecordScored(context.Background(), "bird7", 1)
	pm.RecordStage(context.Background(), "score", time.Millisecond, nil)
}
