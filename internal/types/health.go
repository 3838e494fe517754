package types

import (
	"fmt"
	"slices"
	"time"
)

// HealthState classifies a liveness probe of the graph store.
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateDegraded  HealthState = "degraded"
	HealthStateUnhealthy HealthState = "unhealthy"
)

var healthStates = []HealthState{HealthStateHealthy, HealthStateDegraded, HealthStateUnhealthy}

func (s HealthState) String() string { return string(s) }

// IsValid reports whether s is one of the known states.
func (s HealthState) IsValid() bool {
	return slices.Contains(healthStates, s)
}

// UnmarshalText rejects unknown states. JSON decoding goes through it too.
func (s *HealthState) UnmarshalText(text []byte) error {
	state := HealthState(text)
	if !state.IsValid() {
		return fmt.Errorf("invalid health state: %q", text)
	}
	*s = state
	return nil
}

// HealthStatus is the outcome of one liveness probe against the store.
type HealthStatus struct {
	State     HealthState   `json:"state"`
	Message   string        `json:"message,omitempty"`
	Latency   time.Duration `json:"latency_ns,omitempty"`
	Version   string        `json:"version,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
}

// ProbeStatus classifies a finished probe. A failed probe is unhealthy; a
// successful one slower than slow is degraded. slow <= 0 disables the
// degraded state.
func ProbeStatus(latency time.Duration, version string, err error, slow time.Duration) HealthStatus {
	h := HealthStatus{
		State:     HealthStateHealthy,
		Message:   "store is reachable",
		Latency:   latency,
		Version:   version,
		CheckedAt: time.Now(),
	}
	switch {
	case err != nil:
		h.State = HealthStateUnhealthy
		h.Message = fmt.Sprintf("ping failed: %v", err)
	case slow > 0 && latency > slow:
		h.State = HealthStateDegraded
		h.Message = fmt.Sprintf("store answered in %s", latency.Round(time.Millisecond))
	}
	return h
}

func (h HealthStatus) IsHealthy() bool   { return h.State == HealthStateHealthy }
func (h HealthStatus) IsUnhealthy() bool { return h.State == HealthStateUnhealthy }
