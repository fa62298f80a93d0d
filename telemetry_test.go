package mint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/waldmeta/mint/counter"
)

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestTelemetry_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	store := counter.NewMemoryStore()
	m, err := New(testConfig(), store, WithTracer(tp.Tracer("test")))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = m.NewEntity(ctx, "artist")
	require.NoError(t, err)

	require.NoError(t, store.Close())
	_, err = m.NewEntity(ctx, "song")
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "mint.new_entity", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("mint.entity", "artist"))
	assert.Contains(t, spans[0].Attributes(), attribute.String("mint.seq", "1"))
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	assert.Contains(t, spans[1].Attributes(), attribute.String("mint.entity", "song"))
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, KindStore, spans[1].Status().Description)
}

func TestTelemetry_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	store := counter.NewMemoryStore()
	m, err := New(testConfig(), store, WithMeterProvider(mp))
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err = m.NewEntity(ctx, "artist")
		require.NoError(t, err)
	}
	_, err = m.BNode(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Close())
	_, err = m.NewEntity(ctx, "artist")
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	identifiers, ok := findMetric(rm, "mint.identifiers")
	require.True(t, ok)
	sum, ok := identifiers.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byEntity := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value("mint.entity")
		byEntity[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"artist": 3, BNode: 1}, byEntity)

	duration, ok := findMetric(rm, "mint.duration")
	require.True(t, ok)
	assert.Equal(t, "ms", duration.Unit)

	errs, ok := findMetric(rm, "mint.errors")
	require.True(t, ok)
	errSum, ok := errs.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errSum.DataPoints, 1)
	assert.Equal(t, int64(1), errSum.DataPoints[0].Value)
	kind, _ := errSum.DataPoints[0].Attributes.Value("mint.error_kind")
	assert.Equal(t, KindStore, kind.AsString())
}

func TestTelemetry_NoopProvider(t *testing.T) {
	m, err := New(testConfig(), counter.NewMemoryStore(), WithMeterProvider(noop.NewMeterProvider()))
	require.NoError(t, err)

	id, err := m.NewEntity(context.Background(), "artist")
	require.NoError(t, err)
	assert.Equal(t, "aryb", id.Code)
}
