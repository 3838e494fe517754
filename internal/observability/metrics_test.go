package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := InitMetrics(ctx, DefaultMetricsConfig())
	require.NoError(t, err)
	require.NotNil(t, mp)

	counter, err := mp.Meter("test").Int64Counter("graphmap.test")
	require.NoError(t, err)
	counter.Add(ctx, 1)

	assert.NoError(t, ShutdownMetrics(ctx, mp))
}

func TestMetricsConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     MetricsConfig
		wantErr string
	}{
		{"disabled", MetricsConfig{Provider: "bogus"}, ""},
		{"noop", MetricsConfig{Enabled: true, Provider: "noop"}, ""},
		{"otlp", MetricsConfig{Enabled: true, Provider: "otlp", Endpoint: "collector:4317"}, ""},
		{"otlp without endpoint", MetricsConfig{Enabled: true, Provider: "otlp"}, "endpoint is required"},
		{"unknown provider", MetricsConfig{Enabled: true, Provider: "statsd"}, "invalid metrics provider"},
		{"negative interval", MetricsConfig{Enabled: true, Provider: "noop", Interval: -time.Second}, "invalid metrics interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitMetrics_InvalidConfig(t *testing.T) {
	_, err := InitMetrics(context.Background(), MetricsConfig{Enabled: true, Provider: "otlp"})
	assert.Error(t, err)
}

func TestShutdownMetrics_Nil(t *testing.T) {
	assert.NoError(t, ShutdownMetrics(context.Background(), nil))
}
