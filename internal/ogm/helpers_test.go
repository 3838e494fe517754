package ogm

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/graphmap/internal/conn"
	"github.com/zero-day-ai/graphmap/internal/store"
)

// testClock is a settable clock.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

type fixture struct {
	client *Client
	store  *store.MemoryStore
	clock  *testClock
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ms := store.NewMemoryStore()
	clock := newTestClock()
	client := NewClient(nil,
		WithClock(clock.Now),
		WithIndexRegistry(NewIndexRegistry()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return &fixture{
		client: client,
		store:  ms,
		clock:  clock,
		ctx:    conn.WithStore(context.Background(), ms),
	}
}

func (f *fixture) node(t *testing.T, typ string, uid any, attrs map[string]any) *Node {
	t.Helper()
	n, err := f.client.CreateNode(f.ctx, typ, uid, attrs)
	require.NoError(t, err)
	return n
}

func (f *fixture) connect(t *testing.T, name string, from, to *Node) {
	t.Helper()
	_, err := f.client.Connect(f.ctx, name, []Pair{Link(from, to)}, nil)
	require.NoError(t, err)
}

func (f *fixture) countNodes(t *testing.T, typ string) int64 {
	t.Helper()
	n, err := f.client.CountNodes(f.ctx, typ)
	require.NoError(t, err)
	return n
}

func (f *fixture) countRelationships(t *testing.T, name string) int64 {
	t.Helper()
	n, err := f.client.CountRelationships(f.ctx, name)
	require.NoError(t, err)
	return n
}
