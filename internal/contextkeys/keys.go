// Package contextkeys provides shared context key definitions used across
// graphmap packages without import cycles.
package contextkeys

import "context"

// Key is the type for all graphmap context keys.
type Key string

const (
	// StoreHandle stores the worker's bound store handle (see package conn).
	StoreHandle Key = "graphmap.store_handle"

	// WorkerID identifies the worker goroutine for log correlation.
	WorkerID Key = "graphmap.worker_id"
)

// WithWorkerID returns a new context with the worker ID set.
func WithWorkerID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, WorkerID, id)
}

// GetWorkerID retrieves the worker ID from context.
// Returns -1 if not set.
func GetWorkerID(ctx context.Context) int {
	if v, ok := ctx.Value(WorkerID).(int); ok {
		return v
	}
	return -1
}
