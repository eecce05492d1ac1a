package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "devdup"

// Providers holds the initialized observability providers.
type Providers struct {
	// Tracer is the named tracer for pipeline stage spans.
	Tracer trace.Tracer

	// Meter is the named meter for PipelineMetrics.
	Meter metric.Meter

	// Logger is the context-aware structured logger.
	Logger *slog.Logger

	// Shutdown flushes pending telemetry. Call it once the command is done.
	Shutdown func(ctx context.Context) error
}

// Init builds the logger and, when an OTLP endpoint is configured, the
// exporting tracer and meter providers. Without an endpoint both providers
// are no-ops.
func Init(cfg Config) (Providers, error) {
	exp, err := newExport(context.Background(), cfg)
	if err != nil {
		return Providers{}, err
	}

	return Providers{
		Tracer:   exp.tracers.Tracer(instrumentationName),
		Meter:    exp.meters.Meter(instrumentationName),
		Logger:   buildLogger(cfg),
		Shutdown: exp.shutdown(cfg.ShutdownTimeoutSec),
	}, nil
}

// export holds the providers of one invocation and the flush hooks of the
// SDK providers behind them.
type export struct {
	tracers trace.TracerProvider
	meters  metric.MeterProvider
	flush   []func(context.Context) error
}

func newExport(ctx context.Context, cfg Config) (*export, error) {
	if cfg.OTLPEndpoint == "" {
		return &export{
			tracers: nooptrace.NewTracerProvider(),
			meters:  noopmetric.NewMeterProvider(),
		}, nil
	}

	res := resource.NewWithAttributes(semconv.SchemaURL, resourceAttributes(cfg)...)

	spanExporter, err := otlptracegrpc.New(ctx, traceOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx, metricOptions(cfg)...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create metric exporter: %w", err), spanExporter.Shutdown(ctx))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	return &export{
		tracers: tp,
		meters:  mp,
		flush:   []func(context.Context) error{tp.Shutdown, mp.Shutdown},
	}, nil
}

// shutdown returns a func that flushes every SDK provider within the timeout.
func (e *export) shutdown(timeoutSec int) func(context.Context) error {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(defaultShutdownTimeoutSec) * time.Second
	}

	return func(ctx context.Context) error {
		if len(e.flush) == 0 {
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var errs []error
		for _, flush := range e.flush {
			errs = append(errs, flush(ctx))
		}

		return errors.Join(errs...)
	}
}

func resourceAttributes(cfg Config) []attribute.KeyValue {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}

	if cfg.Mode != "" {
		attrs = append(attrs, attribute.String("app.mode", string(cfg.Mode)))
	}

	return attrs
}

func traceOptions(cfg Config) []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}

	if cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if len(cfg.OTLPHeaders) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.OTLPHeaders))
	}

	return opts
}

func metricOptions(cfg Config) []otlpmetricgrpc.Option {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}

	if cfg.OTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	if len(cfg.OTLPHeaders) > 0 {
		opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.OTLPHeaders))
	}

	return opts
}

func buildLogger(cfg Config) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.LogLevel}

	out := cfg.LogOutput
	if out == nil {
		out = os.Stderr
	}

	var inner slog.Handler
	if cfg.LogJSON {
		inner = slog.NewJSONHandler(out, handlerOpts)
	} else {
		inner = slog.NewTextHandler(out, handlerOpts)
	}

	return slog.New(NewTracingHandler(inner, cfg.ServiceName, cfg.ServiceVersion, cfg.Mode))
}

// ParseOTLPHeaders parses "key=value,key=value" into a header map. Entries
// without '=' are ignored; nil is returned when nothing remains.
func ParseOTLPHeaders(raw string) map[string]string {
	var result map[string]string

	for pair := range strings.SplitSeq(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}

		if result == nil {
			result = make(map[string]string)
		}

		result[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	return result
}
