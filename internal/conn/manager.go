// Package conn hands out store handles to workers.
//
// A Manager opens handles lazily through a Factory. The first handle it
// opens successfully is probed for liveness with Store.Ping; the probe is
// timed and logged, and its failure is returned to the caller. Once a probe
// has succeeded, later handles skip it.
//
// Workers call Bind once and pass the returned context to every OGM call, so
// each worker owns exactly one handle for its lifetime, and Release it when
// done:
//
//	ctx, err := mgr.Bind(ctx)
//	if err != nil {
//	    return err
//	}
//	s, _ := conn.FromContext(ctx)
//	defer mgr.Release(ctx, s)
//	node, err := client.CreateNode(ctx, "Host", "web-1", nil)
package conn

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zero-day-ai/graphmap/internal/store"
	"github.com/zero-day-ai/graphmap/internal/types"
)

// DefaultProbeTimeout bounds the liveness probe.
const DefaultProbeTimeout = 10 * time.Second

// Factory opens one store handle. It should not contact the store.
type Factory func(ctx context.Context) (store.Store, error)

// StoreFactory returns a Factory that opens handles for cfg.
func StoreFactory(cfg store.Config, logger *slog.Logger) Factory {
	return func(ctx context.Context) (store.Store, error) {
		return store.Open(ctx, cfg, logger)
	}
}

// Manager creates per-worker store handles and probes the store once.
//
// Thread-safety: safe for concurrent use.
type Manager struct {
	factory      Factory
	logger       *slog.Logger
	probeTimeout time.Duration
	wrap         func(store.Store) store.Store

	probeMu sync.Mutex
	probed  atomic.Bool

	mu      sync.Mutex
	handles []store.Store
	closed  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for probe reporting.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithProbeTimeout bounds the liveness probe. Zero disables the bound.
func WithProbeTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.probeTimeout = d
	}
}

// WithWrapper decorates every handle after it is opened, e.g. with
// store.NewTracedStore.
func WithWrapper(wrap func(store.Store) store.Store) Option {
	return func(m *Manager) {
		m.wrap = wrap
	}
}

// NewManager creates a Manager. No handle is opened until Open or Bind.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory:      factory,
		logger:       slog.Default(),
		probeTimeout: DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open creates a new handle. If no probe has succeeded yet, the handle is
// probed first; on failure it is closed and the probe error is returned
// unchanged.
func (m *Manager) Open(ctx context.Context) (store.Store, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return nil, ErrManagerClosed
	}

	s, err := m.newHandle(ctx)
	if err != nil {
		return nil, err
	}

	if !m.probed.Load() {
		if err := m.probe(ctx, s); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		_ = s.Close(ctx)
		return nil, ErrManagerClosed
	}
	m.handles = append(m.handles, s)
	return s, nil
}

// Release closes s and forgets it. Handles the manager does not track are
// left open.
func (m *Manager) Release(ctx context.Context, s store.Store) error {
	m.mu.Lock()
	i := slices.Index(m.handles, s)
	if i >= 0 {
		m.handles = slices.Delete(m.handles, i, i+1)
	}
	m.mu.Unlock()
	if i < 0 {
		return nil
	}
	return s.Close(ctx)
}

// Probe checks the store through a short-lived handle that is closed
// before returning. The status is populated even when the check fails. A
// successful Probe counts as the first-Open probe.
func (m *Manager) Probe(ctx context.Context) (types.HealthStatus, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return types.ProbeStatus(0, "", ErrManagerClosed, 0), ErrManagerClosed
	}

	s, err := m.newHandle(ctx)
	if err != nil {
		return types.ProbeStatus(0, "", err, 0), err
	}
	defer s.Close(ctx)

	m.probeMu.Lock()
	defer m.probeMu.Unlock()
	status, err := Check(ctx, s, m.probeTimeout)
	m.logProbe(ctx, status, err)
	if err == nil {
		m.probed.Store(true)
	}
	return status, err
}

// Bind returns a context carrying the worker's handle. If ctx already
// carries one it is returned as is.
func (m *Manager) Bind(ctx context.Context) (context.Context, error) {
	if _, ok := FromContext(ctx); ok {
		return ctx, nil
	}
	s, err := m.Open(ctx)
	if err != nil {
		return ctx, err
	}
	return WithStore(ctx, s), nil
}

// Probed reports whether a liveness probe has succeeded.
func (m *Manager) Probed() bool {
	return m.probed.Load()
}

// Handles returns the number of open handles.
func (m *Manager) Handles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// Close closes every handle the manager opened and rejects later Opens.
// It returns the first close error.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	handles := m.handles
	m.handles = nil
	m.closed = true
	m.mu.Unlock()

	var first error
	for _, s := range handles {
		if err := s.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// probe pings s unless another caller's probe has succeeded meanwhile.
func (m *Manager) probe(ctx context.Context, s store.Store) error {
	m.probeMu.Lock()
	defer m.probeMu.Unlock()
	if m.probed.Load() {
		return nil
	}

	status, err := Check(ctx, s, m.probeTimeout)
	m.logProbe(ctx, status, err)
	if err != nil {
		return err
	}
	m.probed.Store(true)
	return nil
}

func (m *Manager) logProbe(ctx context.Context, status types.HealthStatus, err error) {
	if err != nil {
		m.logger.ErrorContext(ctx, "store liveness probe failed",
			"latency", status.Latency,
			"error", err,
		)
		return
	}
	m.logger.InfoContext(ctx, "store liveness probe succeeded",
		"latency", status.Latency,
		"version", status.Version,
		"state", status.State.String(),
	)
}

func (m *Manager) newHandle(ctx context.Context) (store.Store, error) {
	s, err := m.factory(ctx)
	if err != nil {
		return nil, types.WrapError(ErrCodeOpenFailed, "failed to open store handle", err)
	}
	if m.wrap != nil {
		s = m.wrap(s)
	}
	return s, nil
}
