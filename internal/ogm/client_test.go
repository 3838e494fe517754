package ogm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/graphmap/internal/conn"
	"github.com/zero-day-ai/graphmap/internal/store"
)

func TestClient_NoConnection(t *testing.T) {
	c := NewClient(nil, WithIndexRegistry(NewIndexRegistry()))

	_, err := c.CreateNode(context.Background(), "foo", 1, nil)
	assert.ErrorIs(t, err, conn.ErrNoConnection)

	_, err = c.Query(context.Background(), "MATCH (n) RETURN n", nil)
	assert.ErrorIs(t, err, conn.ErrNoConnection)
}

func TestClient_FallbackHandleOpenedOnce(t *testing.T) {
	ms := store.NewMemoryStore()
	opened := 0
	mgr := conn.NewManager(func(context.Context) (store.Store, error) {
		opened++
		return ms.Connect(), nil
	})
	c := NewClient(mgr, WithIndexRegistry(NewIndexRegistry()))
	ctx := context.Background()

	_, err := c.CreateNode(ctx, "foo", 1, nil)
	require.NoError(t, err)
	count, err := c.CountNodes(ctx, AllTypes)
	require.NoError(t, err)

	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1, opened)
	assert.True(t, mgr.Probed())
	assert.Len(t, ms.GetCallsByMethod("Ping"), 1)
}

func TestClient_BoundHandleWins(t *testing.T) {
	fallback := store.NewMemoryStore()
	bound := store.NewMemoryStore()
	mgr := conn.NewManager(func(context.Context) (store.Store, error) {
		return fallback, nil
	})
	c := NewClient(mgr, WithIndexRegistry(NewIndexRegistry()))

	_, err := c.CreateNode(conn.WithStore(context.Background(), bound), "foo", 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, bound.NodeCount())
	assert.Equal(t, 0, fallback.NodeCount())
	assert.Equal(t, 0, mgr.Handles())
}

func TestClient_ProbeFailureSurfaces(t *testing.T) {
	ms := store.NewMemoryStore()
	probeErr := errors.New("connection refused")
	ms.SetError("Ping", probeErr)
	mgr := conn.NewManager(func(context.Context) (store.Store, error) {
		return ms.Connect(), nil
	})
	c := NewClient(mgr, WithIndexRegistry(NewIndexRegistry()))

	_, err := c.CreateNode(context.Background(), "foo", 1, nil)
	assert.ErrorIs(t, err, probeErr)

	ms.SetError("Ping", nil)
	_, err = c.CreateNode(context.Background(), "foo", 1, nil)
	assert.NoError(t, err, "the next call probes again")
}
