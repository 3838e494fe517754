// Package store provides connections to a remote property-graph store.
//
// The Store interface mirrors the primitive surface of the Neo4j REST API:
// index-backed get-or-create of nodes and relationships, whole-property
// replacement, delete by URL, Cypher queries and batched requests. Entities
// are addressed by their URL ("self").
//
// Three drivers implement it:
//
//   - RESTStore talks to the REST API over HTTP.
//   - BoltStore talks Bolt through the official Neo4j driver and emulates
//     the REST primitives in Cypher.
//   - MemoryStore keeps the graph in process. It is used by tests and by the
//     "memory" driver.
//
// TracedStore wraps any of them with OpenTelemetry spans.
//
// # Errors
//
// Failures are *types.GraphmapError values carrying the codes in errors.go.
// Use errors.Is with ErrNotFound, ErrConflict and ErrClosed, and
// types.IsRetryable to decide whether to retry.
package store
