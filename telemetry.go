package mint

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/waldmeta/mint"

// telemetry holds the tracer and metric instruments. Instruments are created
// once in New and reused for every mint.
type telemetry struct {
	tracer trace.Tracer

	// identifiers counts minted identifiers per entity kind
	identifiers metric.Int64Counter

	// duration records the store round trip in milliseconds
	duration metric.Float64Histogram

	// errors counts failed mints per entity kind and error kind
	errors metric.Int64Counter
}

func newTelemetry(tracer trace.Tracer, mp metric.MeterProvider) (*telemetry, error) {
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	t := &telemetry{tracer: tracer}
	var err error

	t.identifiers, err = meter.Int64Counter(
		"mint.identifiers",
		metric.WithDescription("Number of identifiers minted"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create identifiers counter: %w", err)
	}

	t.duration, err = meter.Float64Histogram(
		"mint.duration",
		metric.WithDescription("Minting duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	t.errors, err = meter.Int64Counter(
		"mint.errors",
		metric.WithDescription("Number of failed mints"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create errors counter: %w", err)
	}

	return t, nil
}

func (t *telemetry) start(ctx context.Context, entity string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "mint.new_entity",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("mint.entity", entity)),
	)
}

func (t *telemetry) success(ctx context.Context, span trace.Span, entity, seq string, elapsed time.Duration) {
	span.SetAttributes(attribute.String("mint.seq", seq))
	span.SetStatus(codes.Ok, "")

	opts := metric.WithAttributes(attribute.String("mint.entity", entity))
	t.identifiers.Add(ctx, 1, opts)
	t.duration.Record(ctx, float64(elapsed.Microseconds())/1000, opts)
}

func (t *telemetry) failure(ctx context.Context, span trace.Span, entity string, err *Error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Kind)

	t.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mint.entity", entity),
		attribute.String("mint.error_kind", err.Kind),
	))
}
