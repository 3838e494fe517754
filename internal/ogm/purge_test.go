package ogm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/graphmap/internal/types"
)

func TestPurge_All(t *testing.T) {
	f := newFixture(t)

	const n = 2500
	nodes := make([]*Node, n)
	for i := range nodes {
		nodes[i] = f.node(t, "Host", i, nil)
	}
	pairs := make([]Pair, 0, n-1)
	for i := 1; i < n; i++ {
		pairs = append(pairs, Link(nodes[i-1], nodes[i]))
	}
	_, err := f.client.Connect(f.ctx, "next", pairs, nil)
	require.NoError(t, err)

	stats, err := f.client.Purge(f.ctx, AllTypes)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Pages)
	assert.Equal(t, n, stats.Nodes)
	assert.Equal(t, n-1, stats.Relationships)
	assert.Equal(t, int64(0), f.countNodes(t, AllTypes))
	assert.Equal(t, int64(0), f.countRelationships(t, AllNames))
	assert.Len(t, f.store.GetCallsByMethod("Batch"), 2*stats.Pages)
}

func TestPurge_ByType(t *testing.T) {
	f := newFixture(t)
	host := f.node(t, "Host", "h1", nil)
	svc := f.node(t, "Service", "ssh", nil)
	other := f.node(t, "Service", "http", nil)
	f.connect(t, "runs", host, svc)
	f.connect(t, "talks_to", svc, other)

	stats, err := f.client.Purge(f.ctx, "Host")
	require.NoError(t, err)
	assert.Equal(t, PurgeStats{Pages: 1, Nodes: 1, Relationships: 1}, stats)

	assert.Equal(t, int64(0), f.countNodes(t, "Host"))
	assert.Equal(t, int64(2), f.countNodes(t, "Service"))
	assert.Equal(t, int64(1), f.countRelationships(t, AllNames))
}

func TestPurge_SharedRelationshipDeletedOnce(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "n", "a", nil)
	b := f.node(t, "n", "b", nil)
	f.connect(t, "r", a, b)

	stats, err := f.client.Purge(f.ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Relationships)
	assert.Equal(t, 2, stats.Nodes)
}

func TestPurge_Empty(t *testing.T) {
	f := newFixture(t)

	stats, err := f.client.Purge(f.ctx, AllTypes)
	require.NoError(t, err)
	assert.Equal(t, PurgeStats{}, stats)
	assert.Empty(t, f.store.GetCallsByMethod("Batch"))
}

func TestPurge_Cancelled(t *testing.T) {
	f := newFixture(t)
	f.node(t, "n", "a", nil)

	ctx, cancel := context.WithCancel(f.ctx)
	cancel()

	stats, err := f.client.Purge(ctx, AllTypes)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, stats.Pages)
	assert.Equal(t, int64(1), f.countNodes(t, AllTypes))
}

func TestPurge_BatchFailure(t *testing.T) {
	f := newFixture(t)
	f.node(t, "n", "a", nil)
	f.store.SetError("Batch", errors.New("batch rejected"))

	_, err := f.client.Purge(f.ctx, AllTypes)
	require.Error(t, err)
	assert.Equal(t, ErrCodePurgeFailed, types.CodeOf(err))
	assert.Equal(t, int64(1), f.countNodes(t, AllTypes))
}
