package store

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrDriver     = "graphmap.store.driver"
	AttrIndex      = "graphmap.store.index"
	AttrStatement  = "graphmap.store.statement"
	AttrURL        = "graphmap.store.url"
	AttrBatchSize  = "graphmap.store.batch_size"
	AttrRowCount   = "graphmap.store.rows"
	AttrDurationMS = "graphmap.store.duration_ms"
	AttrOperation  = "graphmap.store.operation"
	AttrOutcome    = "graphmap.store.outcome"
)

// Metric names.
const (
	MetricOperations = "graphmap.store.operations"
	MetricDuration   = "graphmap.store.duration"
)

const maxStatementAttr = 256

// TracedStore wraps a Store with OpenTelemetry tracing. Each operation gets
// a span named "graphmap.store.<operation>" and, when a meter is set, is
// counted and timed by operation, driver and outcome.
//
// Thread-safety: as safe as the inner store.
type TracedStore struct {
	inner  Store
	tracer trace.Tracer
	driver Driver

	operations metric.Int64Counter
	duration   metric.Float64Histogram
}

// TracedStoreOption configures a TracedStore.
type TracedStoreOption func(*TracedStore)

// WithDriver records the driver name on every span.
func WithDriver(d Driver) TracedStoreOption {
	return func(s *TracedStore) {
		s.driver = d
	}
}

// WithMeter records MetricOperations and MetricDuration with meter.
// Instruments that cannot be created are skipped.
func WithMeter(meter metric.Meter) TracedStoreOption {
	return func(s *TracedStore) {
		operations, err := meter.Int64Counter(MetricOperations,
			metric.WithDescription("Store operations by outcome"))
		if err != nil {
			return
		}
		duration, err := meter.Float64Histogram(MetricDuration,
			metric.WithDescription("Store operation latency"),
			metric.WithUnit("ms"))
		if err != nil {
			return
		}
		s.operations, s.duration = operations, duration
	}
}

// NewTracedStore wraps inner.
//
// Example:
//
//	traced := store.NewTracedStore(inner, otel.Tracer("graphmap.store"), store.WithDriver(cfg.Driver))
func NewTracedStore(inner Store, tracer trace.Tracer, opts ...TracedStoreOption) *TracedStore {
	s := &TracedStore{inner: inner, tracer: tracer}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Unwrap returns the wrapped store.
func (s *TracedStore) Unwrap() Store {
	return s.inner
}

func (s *TracedStore) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, *tracedCall) {
	ctx, span := s.tracer.Start(ctx, "graphmap.store."+op)
	if s.driver != "" {
		span.SetAttributes(attribute.String(AttrDriver, string(s.driver)))
	}
	span.SetAttributes(attrs...)
	return ctx, &tracedCall{store: s, op: op, span: span, started: time.Now()}
}

// tracedCall is one in-flight store operation.
type tracedCall struct {
	store   *TracedStore
	op      string
	span    trace.Span
	started time.Time
}

// end closes the span and records the operation's metrics.
func (c *tracedCall) end(ctx context.Context, err error) {
	defer c.span.End()
	elapsed := float64(time.Since(c.started).Microseconds()) / 1000
	c.span.SetAttributes(attribute.Float64(AttrDurationMS, elapsed))

	outcome := "ok"
	if err != nil {
		outcome = "error"
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, err.Error())
	} else {
		c.span.SetStatus(codes.Ok, "")
	}

	if c.store.operations == nil {
		return
	}
	set := metric.WithAttributes(
		attribute.String(AttrOperation, c.op),
		attribute.String(AttrDriver, string(c.store.driver)),
		attribute.String(AttrOutcome, outcome),
	)
	c.store.operations.Add(ctx, 1, set)
	c.store.duration.Record(ctx, elapsed, set)
}

func statementAttr(statement string) attribute.KeyValue {
	if len(statement) > maxStatementAttr {
		statement = statement[:maxStatementAttr]
	}
	return attribute.String(AttrStatement, statement)
}

// Ping implements Store.
func (s *TracedStore) Ping(ctx context.Context) (map[string]any, error) {
	ctx, call := s.start(ctx, "ping")
	info, err := s.inner.Ping(ctx)
	call.end(ctx, err)
	return info, err
}

// Query implements Store.
func (s *TracedStore) Query(ctx context.Context, statement string, params map[string]any) (*QueryResult, error) {
	ctx, call := s.start(ctx, "query", statementAttr(statement))
	res, err := s.inner.Query(ctx, statement, params)
	if res != nil {
		call.span.SetAttributes(attribute.Int(AttrRowCount, len(res.Data)))
	}
	call.end(ctx, err)
	return res, err
}

// CreateUniqueNode implements Store.
func (s *TracedStore) CreateUniqueNode(ctx context.Context, index, key string, value any, props map[string]any) (*NodeData, error) {
	ctx, call := s.start(ctx, "create_unique_node", attribute.String(AttrIndex, index))
	n, err := s.inner.CreateUniqueNode(ctx, index, key, value, props)
	call.end(ctx, err)
	return n, err
}

// CreateUniqueRelationship implements Store.
func (s *TracedStore) CreateUniqueRelationship(ctx context.Context, index, key string, value any, relType, startURL, endURL string) (string, error) {
	ctx, call := s.start(ctx, "create_unique_relationship", attribute.String(AttrIndex, index))
	url, err := s.inner.CreateUniqueRelationship(ctx, index, key, value, relType, startURL, endURL)
	call.end(ctx, err)
	return url, err
}

// FindNodes implements Store.
func (s *TracedStore) FindNodes(ctx context.Context, index, key string, value any) ([]NodeData, error) {
	ctx, call := s.start(ctx, "find_nodes", attribute.String(AttrIndex, index))
	nodes, err := s.inner.FindNodes(ctx, index, key, value)
	call.span.SetAttributes(attribute.Int(AttrRowCount, len(nodes)))
	call.end(ctx, err)
	return nodes, err
}

// GetNode implements Store.
func (s *TracedStore) GetNode(ctx context.Context, url string) (*NodeData, error) {
	ctx, call := s.start(ctx, "get_node", attribute.String(AttrURL, url))
	n, err := s.inner.GetNode(ctx, url)
	call.end(ctx, err)
	return n, err
}

// ResetNodeProperties implements Store.
func (s *TracedStore) ResetNodeProperties(ctx context.Context, url string, props map[string]any) error {
	ctx, call := s.start(ctx, "reset_node_properties", attribute.String(AttrURL, url))
	err := s.inner.ResetNodeProperties(ctx, url, props)
	call.end(ctx, err)
	return err
}

// DeleteNode implements Store.
func (s *TracedStore) DeleteNode(ctx context.Context, url string) (bool, error) {
	ctx, call := s.start(ctx, "delete_node", attribute.String(AttrURL, url))
	ok, err := s.inner.DeleteNode(ctx, url)
	call.end(ctx, err)
	return ok, err
}

// GetRelationship implements Store.
func (s *TracedStore) GetRelationship(ctx context.Context, url string) (*RelationshipData, error) {
	ctx, call := s.start(ctx, "get_relationship", attribute.String(AttrURL, url))
	r, err := s.inner.GetRelationship(ctx, url)
	call.end(ctx, err)
	return r, err
}

// ResetRelationshipProperties implements Store.
func (s *TracedStore) ResetRelationshipProperties(ctx context.Context, url string, props map[string]any) error {
	ctx, call := s.start(ctx, "reset_relationship_properties", attribute.String(AttrURL, url))
	err := s.inner.ResetRelationshipProperties(ctx, url, props)
	call.end(ctx, err)
	return err
}

// DeleteRelationship implements Store.
func (s *TracedStore) DeleteRelationship(ctx context.Context, url string) (bool, error) {
	ctx, call := s.start(ctx, "delete_relationship", attribute.String(AttrURL, url))
	ok, err := s.inner.DeleteRelationship(ctx, url)
	call.end(ctx, err)
	return ok, err
}

// ListNodeIndexes implements Store.
func (s *TracedStore) ListNodeIndexes(ctx context.Context) (map[string]map[string]any, error) {
	ctx, call := s.start(ctx, "list_node_indexes")
	idx, err := s.inner.ListNodeIndexes(ctx)
	call.end(ctx, err)
	return idx, err
}

// CreateNodeIndex implements Store.
func (s *TracedStore) CreateNodeIndex(ctx context.Context, name string) error {
	ctx, call := s.start(ctx, "create_node_index", attribute.String(AttrIndex, name))
	err := s.inner.CreateNodeIndex(ctx, name)
	call.end(ctx, err)
	return err
}

// ListRelationshipIndexes implements Store.
func (s *TracedStore) ListRelationshipIndexes(ctx context.Context) (map[string]map[string]any, error) {
	ctx, call := s.start(ctx, "list_relationship_indexes")
	idx, err := s.inner.ListRelationshipIndexes(ctx)
	call.end(ctx, err)
	return idx, err
}

// CreateRelationshipIndex implements Store.
func (s *TracedStore) CreateRelationshipIndex(ctx context.Context, name string) error {
	ctx, call := s.start(ctx, "create_relationship_index", attribute.String(AttrIndex, name))
	err := s.inner.CreateRelationshipIndex(ctx, name)
	call.end(ctx, err)
	return err
}

// Batch implements Store.
func (s *TracedStore) Batch(ctx context.Context, ops ...BatchOp) ([]BatchResult, error) {
	ctx, call := s.start(ctx, "batch", attribute.Int(AttrBatchSize, len(ops)))
	res, err := s.inner.Batch(ctx, ops...)
	call.end(ctx, err)
	return res, err
}

// Close implements Store.
func (s *TracedStore) Close(ctx context.Context) error {
	ctx, call := s.start(ctx, "close")
	err := s.inner.Close(ctx)
	call.end(ctx, err)
	return err
}
