package conn

import "github.com/zero-day-ai/graphmap/internal/types"

// Connection manager error codes
const (
	ErrCodeOpenFailed    types.ErrorCode = "CONN_OPEN_FAILED"
	ErrCodeManagerClosed types.ErrorCode = "CONN_MANAGER_CLOSED"
	ErrCodeNoConnection  types.ErrorCode = "CONN_NO_CONNECTION"
)

var (
	// ErrManagerClosed is returned by Open and Bind after Close.
	ErrManagerClosed = types.NewError(ErrCodeManagerClosed, "connection manager closed")

	// ErrNoConnection is returned by Require when no handle is bound.
	ErrNoConnection = types.NewError(ErrCodeNoConnection, "no store handle bound to context")
)
