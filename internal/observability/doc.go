// Package observability sets up structured logging and OpenTelemetry
// tracing and metrics for graphmap.
//
// NewLogger builds an slog.Logger whose records carry trace_id and span_id
// when logged with a context holding a span. InitTracing installs the
// global tracer provider used by store.TracedStore; InitMetrics installs the
// meter provider whose store instruments TracedStore records with
// store.WithMeter.
package observability
