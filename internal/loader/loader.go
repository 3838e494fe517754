// Package loader writes a YAML seed graph through the OGM with a pool of
// concurrent workers. Each worker binds its own store handle.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zero-day-ai/graphmap/internal/conn"
	"github.com/zero-day-ai/graphmap/internal/contextkeys"
	"github.com/zero-day-ai/graphmap/internal/ogm"
	"github.com/zero-day-ai/graphmap/internal/types"
)

// DefaultWorkers is the pool size when none is configured.
const DefaultWorkers = 4

// Result contains statistics about a load.
type Result struct {
	// Nodes is the number of nodes created or matched.
	Nodes int

	// Relationships is the number of edges created or matched.
	Relationships int

	// Errors holds per-item failures. Loading continues past them.
	Errors []error
}

// AddError records a per-item failure.
func (r *Result) AddError(err error) *Result {
	r.Errors = append(r.Errors, err)
	return r
}

// HasErrors reports whether any item failed.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Loader writes seeds through an ogm.Client.
type Loader struct {
	client  *ogm.Client
	mgr     *conn.Manager
	workers int
	logger  *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithWorkers sets the pool size. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLogger sets the loader logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a Loader. Workers open their handles through mgr.
func New(client *ogm.Client, mgr *conn.Manager, opts ...Option) *Loader {
	l := &Loader{
		client:  client,
		mgr:     mgr,
		workers: DefaultWorkers,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load creates every node of seed, then every edge. Item failures such as
// attribute conflicts are collected in the result; failing to bind a
// worker handle or a cancelled context aborts the load.
func (l *Loader) Load(ctx context.Context, seed *Seed) (*Result, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		result = &Result{}
		nodes  = make(map[string]*ogm.Node, len(seed.Nodes))
	)

	err := l.run(ctx, len(seed.Nodes), func(ctx context.Context, i int) {
		sn := seed.Nodes[i]
		n, err := l.client.CreateNode(ctx, sn.Type, sn.UID, sn.Attrs)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.AddError(fmt.Errorf("node %s: %w", sn.UUID(), err))
			return
		}
		nodes[sn.UUID()] = n
		result.Nodes++
	})
	if err != nil {
		return result, err
	}

	err = l.run(ctx, len(seed.Edges), func(ctx context.Context, i int) {
		e := seed.Edges[i]
		from, to := nodes[e.From], nodes[e.To]
		if from == nil || to == nil {
			mu.Lock()
			result.AddError(fmt.Errorf("edge %s -> %s: endpoint was not loaded", e.From, e.To))
			mu.Unlock()
			return
		}
		rels, err := l.client.Connect(ctx, e.Name, []ogm.Pair{ogm.Link(from, to)}, e.Attrs)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.AddError(fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err))
			return
		}
		result.Relationships += len(rels)
	})

	l.logger.InfoContext(ctx, "seed loaded",
		"nodes", result.Nodes,
		"relationships", result.Relationships,
		"errors", len(result.Errors),
		"workers", l.workers,
	)
	return result, err
}

// run feeds item indexes 0..n-1 to the worker pool. Each worker binds one
// store handle and keeps it for every item it processes.
func (l *Loader) run(ctx context.Context, n int, work func(ctx context.Context, i int)) error {
	if n == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	workers := min(l.workers, n)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			_, inherited := conn.FromContext(gctx)
			wctx, err := l.mgr.Bind(contextkeys.WithWorkerID(gctx, w))
			if err != nil {
				return types.WrapError(ErrCodeLoadFailed, fmt.Sprintf("worker %d failed to bind a store handle", w), err)
			}
			if !inherited {
				s, _ := conn.FromContext(wctx)
				defer func() {
					if err := l.mgr.Release(context.WithoutCancel(wctx), s); err != nil {
						l.logger.WarnContext(wctx, "failed to release worker store handle", "error", err)
					}
				}()
			}
			done := 0
			for i := range jobs {
				work(wctx, i)
				done++
			}
			l.logger.DebugContext(wctx, "loader worker finished",
				"worker", contextkeys.GetWorkerID(wctx),
				"items", done,
			)
			return nil
		})
	}
	return g.Wait()
}
