package store

import "github.com/zero-day-ai/graphmap/internal/types"

// Store error codes
const (
	// Connection errors
	ErrCodeStoreConnectionFailed types.ErrorCode = "STORE_CONNECTION_FAILED"
	ErrCodeStoreUnavailable      types.ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeStoreClosed           types.ErrorCode = "STORE_CLOSED"

	// Configuration errors
	ErrCodeStoreInvalidConfig types.ErrorCode = "STORE_INVALID_CONFIG"

	// Request errors
	ErrCodeStoreRequestFailed   types.ErrorCode = "STORE_REQUEST_FAILED"
	ErrCodeStoreBadResponse     types.ErrorCode = "STORE_BAD_RESPONSE"
	ErrCodeStoreNotFound        types.ErrorCode = "STORE_NOT_FOUND"
	ErrCodeStoreConflict        types.ErrorCode = "STORE_CONFLICT"
	ErrCodeStoreBatchFailed     types.ErrorCode = "STORE_BATCH_FAILED"
	ErrCodeUnsupportedStatement types.ErrorCode = "STORE_UNSUPPORTED_STATEMENT"
)

var (
	// ErrNotFound matches any error reporting a missing entity or index.
	ErrNotFound = types.NewError(ErrCodeStoreNotFound, "not found")

	// ErrConflict matches any error where the store refused a write because
	// of existing state, e.g. deleting a node that still has relationships.
	ErrConflict = types.NewError(ErrCodeStoreConflict, "conflict")

	// ErrClosed matches calls on a closed handle.
	ErrClosed = types.NewError(ErrCodeStoreClosed, "store handle closed")
)
