package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracing_Disabled(t *testing.T) {
	ctx := context.Background()
	tp, err := InitTracing(ctx, DefaultTracingConfig())
	require.NoError(t, err)
	require.NotNil(t, tp)
	defer func() { assert.NoError(t, ShutdownTracing(ctx, tp)) }()

	_, span := otel.Tracer("test").Start(ctx, "op")
	defer span.End()
	assert.True(t, span.SpanContext().IsValid(), "spans carry ids without an exporter")
}

func TestInitTracing_InvalidConfig(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Provider: "otlp"})
	assert.Error(t, err)
}

func TestShutdownTracing_Nil(t *testing.T) {
	assert.NoError(t, ShutdownTracing(context.Background(), nil))
}
