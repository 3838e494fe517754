package conn

import (
	"context"
	"time"

	"github.com/zero-day-ai/graphmap/internal/store"
	"github.com/zero-day-ai/graphmap/internal/types"
)

// SlowProbeThreshold marks a successful probe slower than this as degraded.
const SlowProbeThreshold = time.Second

// Check pings s and reports its health. The error is the Ping error,
// unchanged; the status is always populated.
func Check(ctx context.Context, s store.Store, timeout time.Duration) (types.HealthStatus, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	info, err := s.Ping(ctx)
	version, _ := info["neo4j_version"].(string)
	return types.ProbeStatus(time.Since(start), version, err, SlowProbeThreshold), err
}
