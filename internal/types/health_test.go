package types

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthState_IsValid(t *testing.T) {
	assert.True(t, HealthStateHealthy.IsValid())
	assert.True(t, HealthStateDegraded.IsValid())
	assert.True(t, HealthStateUnhealthy.IsValid())
	assert.False(t, HealthState("sleepy").IsValid())
}

func TestHealthState_UnmarshalJSON(t *testing.T) {
	var s HealthState
	require.NoError(t, json.Unmarshal([]byte(`"degraded"`), &s))
	assert.Equal(t, HealthStateDegraded, s)

	assert.Error(t, json.Unmarshal([]byte(`"sleepy"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`12`), &s))
}

func TestProbeStatus(t *testing.T) {
	before := time.Now()

	tests := []struct {
		name    string
		latency time.Duration
		err     error
		slow    time.Duration
		state   HealthState
		message string
	}{
		{"fast", 15 * time.Millisecond, nil, time.Second, HealthStateHealthy, "store is reachable"},
		{"slow", 1500 * time.Millisecond, nil, time.Second, HealthStateDegraded, "store answered in 1.5s"},
		{"slow threshold disabled", time.Minute, nil, 0, HealthStateHealthy, "store is reachable"},
		{"failed", time.Millisecond, errors.New("connection refused"), time.Second, HealthStateUnhealthy, "ping failed: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ProbeStatus(tt.latency, "5.26.0", tt.err, tt.slow)
			assert.Equal(t, tt.state, h.State)
			assert.Equal(t, tt.message, h.Message)
			assert.Equal(t, tt.latency, h.Latency)
			assert.Equal(t, "5.26.0", h.Version)
			assert.False(t, h.CheckedAt.Before(before))
			assert.Equal(t, tt.state == HealthStateHealthy, h.IsHealthy())
			assert.Equal(t, tt.state == HealthStateUnhealthy, h.IsUnhealthy())
		})
	}
}

func TestHealthStatus_MarshalJSON(t *testing.T) {
	h := HealthStatus{State: HealthStateHealthy, Version: "3.5.35"}
	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state":"healthy"`)
	assert.Contains(t, string(data), `"version":"3.5.35"`)
}
