package ogm

import "github.com/zero-day-ai/graphmap/internal/types"

// OGM error codes
const (
	// Node errors
	ErrCodeNodeConflict         types.ErrorCode = "NODE_CONFLICT"
	ErrCodeNodeCreateFailed     types.ErrorCode = "NODE_CREATE_FAILED"
	ErrCodeNodeHasRelationships types.ErrorCode = "NODE_HAS_RELATIONSHIPS"
	ErrCodeInvalidNode          types.ErrorCode = "NODE_INVALID"

	// Relationship errors
	ErrCodeInvalidPair types.ErrorCode = "RELATIONSHIP_INVALID_PAIR"

	// Index errors
	ErrCodeIndexFailed types.ErrorCode = "INDEX_FAILED"

	// Purge errors
	ErrCodePurgeFailed types.ErrorCode = "PURGE_FAILED"
)

var (
	// ErrConflict matches a create whose key already exists with different
	// non-timestamp attributes.
	ErrConflict = types.NewError(ErrCodeNodeConflict, "node exists with different attributes")

	// ErrHasRelationships matches a destroy refused because relationships
	// still touch the node.
	ErrHasRelationships = types.NewError(ErrCodeNodeHasRelationships, "node still has relationships")
)
