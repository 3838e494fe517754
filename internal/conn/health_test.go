package conn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/graphmap/internal/store"
	"github.com/zero-day-ai/graphmap/internal/types"
)

func TestCheck(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	status, err := Check(ctx, s, time.Second)
	require.NoError(t, err)
	assert.True(t, status.IsHealthy())
	assert.Equal(t, "memory", status.Version)

	boom := errors.New("boom")
	s.SetError("Ping", boom)
	status, err = Check(ctx, s, 0)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, types.HealthStateUnhealthy, status.State)
}
