package conn

import (
	"context"

	"github.com/zero-day-ai/graphmap/internal/contextkeys"
	"github.com/zero-day-ai/graphmap/internal/store"
)

// WithStore returns a context carrying s as the worker's store handle.
func WithStore(ctx context.Context, s store.Store) context.Context {
	return context.WithValue(ctx, contextkeys.StoreHandle, s)
}

// FromContext returns the store handle bound to ctx, if any.
func FromContext(ctx context.Context) (store.Store, bool) {
	s, ok := ctx.Value(contextkeys.StoreHandle).(store.Store)
	return s, ok && s != nil
}

// Require returns the handle bound to ctx or ErrNoConnection.
func Require(ctx context.Context) (store.Store, error) {
	if s, ok := FromContext(ctx); ok {
		return s, nil
	}
	return nil, ErrNoConnection
}
