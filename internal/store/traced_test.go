package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedMemory(t *testing.T) (*TracedStore, *MemoryStore, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	inner := NewMemoryStore()
	return NewTracedStore(inner, provider.Tracer("test"), WithDriver(DriverMemory)), inner, recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracedStore_RecordsSpans(t *testing.T) {
	ctx := context.Background()
	s, inner, recorder := newTracedMemory(t)

	n, err := s.CreateUniqueNode(ctx, "Host", "uid", "a", map[string]any{"uid": "a"})
	require.NoError(t, err)
	_, err = s.GetNode(ctx, n.Self)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.NodeCount())

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "graphmap.store.create_unique_node", spans[0].Name())
	assert.Equal(t, "graphmap.store.get_node", spans[1].Name())

	driver, ok := spanAttr(spans[0], AttrDriver)
	require.True(t, ok)
	assert.Equal(t, "memory", driver.AsString())

	index, ok := spanAttr(spans[0], AttrIndex)
	require.True(t, ok)
	assert.Equal(t, "Host", index.AsString())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
}

func TestTracedStore_RecordsErrors(t *testing.T) {
	ctx := context.Background()
	s, _, recorder := newTracedMemory(t)

	_, err := s.Query(ctx, "RETURN 42", nil)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	require.NotEmpty(t, spans[0].Events(), "error recorded as span event")

	stmt, ok := spanAttr(spans[0], AttrStatement)
	require.True(t, ok)
	assert.Equal(t, "RETURN 42", stmt.AsString())
}

func TestTracedStore_Unwrap(t *testing.T) {
	s, inner, _ := newTracedMemory(t)
	assert.Same(t, inner, s.Unwrap())
}

func TestTracedStore_RecordsMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	tp := sdktrace.NewTracerProvider()
	s := NewTracedStore(NewMemoryStore(), tp.Tracer("test"),
		WithDriver(DriverMemory),
		WithMeter(mp.Meter("test")),
	)

	_, err := s.Ping(ctx)
	require.NoError(t, err)
	_, err = s.Ping(ctx)
	require.NoError(t, err)
	_, err = s.Query(ctx, "RETURN 42", nil)
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	counts := map[string]int64{}
	var histograms int
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				require.Equal(t, MetricOperations, m.Name)
				for _, dp := range data.DataPoints {
					op, _ := dp.Attributes.Value(AttrOperation)
					outcome, _ := dp.Attributes.Value(AttrOutcome)
					counts[op.AsString()+"/"+outcome.AsString()] += dp.Value
				}
			case metricdata.Histogram[float64]:
				require.Equal(t, MetricDuration, m.Name)
				histograms += len(data.DataPoints)
			}
		}
	}

	assert.Equal(t, map[string]int64{"ping/ok": 2, "query/error": 1}, counts)
	assert.Equal(t, 2, histograms)
}

func TestTracedStore_NoMeter(t *testing.T) {
	s, _, recorder := newTracedMemory(t)
	_, err := s.Ping(context.Background())
	require.NoError(t, err)
	assert.Len(t, recorder.Ended(), 1)
}
