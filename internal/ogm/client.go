package ogm

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zero-day-ai/graphmap/internal/conn"
	"github.com/zero-day-ai/graphmap/internal/store"
)

// Client is the entry point to the OGM layer.
//
// Every operation runs on the store handle bound to its context (see
// conn.Manager.Bind). When the context carries none, the client opens one
// handle of its own through its manager on first use and reuses it; that
// handle serves a single worker.
//
// Thread-safety: safe for concurrent use when each goroutine binds its own
// handle.
type Client struct {
	mgr     *conn.Manager
	indexes *IndexRegistry
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	fallback store.Store
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithIndexRegistry replaces the process-wide index registry.
func WithIndexRegistry(r *IndexRegistry) Option {
	return func(c *Client) {
		c.indexes = r
	}
}

// NewClient creates a Client. mgr may be nil when every call carries a bound
// handle.
func NewClient(mgr *conn.Manager, opts ...Option) *Client {
	c := &Client{
		mgr:     mgr,
		indexes: DefaultIndexRegistry(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// store resolves the handle for ctx.
func (c *Client) store(ctx context.Context) (store.Store, error) {
	if s, ok := conn.FromContext(ctx); ok {
		return s, nil
	}
	if c.mgr == nil {
		return nil, conn.ErrNoConnection
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fallback == nil {
		s, err := c.mgr.Open(ctx)
		if err != nil {
			return nil, err
		}
		c.fallback = s
	}
	return c.fallback, nil
}

// Query runs a Cypher statement and classifies every row. Single-column
// rows unwrap to their value; wider rows become KindList values. Rows that
// cannot be classified are dropped.
func (c *Client) Query(ctx context.Context, statement string, params map[string]any) ([]Value, error) {
	s, err := c.store(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.Query(ctx, statement, params)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return []Value{}, nil
	}

	values := make([]Value, 0, len(res.Data))
	for i, row := range res.Data {
		v, ok := ClassifyRow(row)
		if !ok {
			c.logger.DebugContext(ctx, "dropping malformed result row", "row", i, "columns", res.Columns)
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// count runs a statement returning one numeric cell.
func (c *Client) count(ctx context.Context, statement string, params map[string]any) (int64, error) {
	values, err := c.Query(ctx, statement, params)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}
	n, ok := asFloat(normalizeValue(values[0].Scalar))
	if !ok {
		return 0, nil
	}
	return int64(n), nil
}
