package store

import (
	"context"
	"strings"
)

// Store is the connection to a remote property-graph store. It mirrors the
// primitive surface of the Neo4j REST API: index-backed get-or-create,
// whole-property replace, delete by URL, Cypher queries and batched
// requests. Entities are identified by their URL ("self").
//
// A Store handle serves one worker at a time; implementations that are safe
// for concurrent use say so.
type Store interface {
	// Ping is the liveness probe. It returns whatever the store reports about
	// itself (version, agent) or a transport error.
	Ping(ctx context.Context) (map[string]any, error)

	// Query executes a Cypher statement. A nil result means the store
	// returned no body.
	Query(ctx context.Context, statement string, params map[string]any) (*QueryResult, error)

	// CreateUniqueNode returns the node indexed under (index, key, value),
	// creating it with props when absent. On conflict the existing node is
	// returned, not an error.
	CreateUniqueNode(ctx context.Context, index, key string, value any, props map[string]any) (*NodeData, error)

	// CreateUniqueRelationship returns the URL of the relationship indexed
	// under (index, key, value), creating a relType edge from startURL to
	// endURL when absent.
	CreateUniqueRelationship(ctx context.Context, index, key string, value any, relType, startURL, endURL string) (string, error)

	// FindNodes looks nodes up in a node index.
	FindNodes(ctx context.Context, index, key string, value any) ([]NodeData, error)

	GetNode(ctx context.Context, url string) (*NodeData, error)
	ResetNodeProperties(ctx context.Context, url string, props map[string]any) error
	// DeleteNode reports false when the node does not exist. Stores refuse
	// to delete a node that still has relationships.
	DeleteNode(ctx context.Context, url string) (bool, error)

	GetRelationship(ctx context.Context, url string) (*RelationshipData, error)
	ResetRelationshipProperties(ctx context.Context, url string, props map[string]any) error
	DeleteRelationship(ctx context.Context, url string) (bool, error)

	ListNodeIndexes(ctx context.Context) (map[string]map[string]any, error)
	CreateNodeIndex(ctx context.Context, name string) error
	ListRelationshipIndexes(ctx context.Context) (map[string]map[string]any, error)
	CreateRelationshipIndex(ctx context.Context, name string) error

	// Batch sends every op in a single request. The store applies the batch
	// atomically; results are returned in op order.
	Batch(ctx context.Context, ops ...BatchOp) ([]BatchResult, error)

	// Close releases the handle.
	Close(ctx context.Context) error
}

// NodeData is the wire representation of a node.
type NodeData struct {
	Self string         `json:"self"`
	Data map[string]any `json:"data"`
}

// Map renders the node the way query results carry it.
func (n NodeData) Map() map[string]any {
	return map[string]any{
		"self": n.Self,
		"data": n.Data,
	}
}

// RelationshipData is the wire representation of a relationship.
type RelationshipData struct {
	Self  string         `json:"self"`
	Type  string         `json:"type"`
	Start string         `json:"start"`
	End   string         `json:"end"`
	Data  map[string]any `json:"data"`
}

// Map renders the relationship the way query results carry it.
func (r RelationshipData) Map() map[string]any {
	return map[string]any{
		"self":  r.Self,
		"type":  r.Type,
		"start": r.Start,
		"end":   r.End,
		"data":  r.Data,
	}
}

// PathMap renders a path of node and relationship URLs the way query
// results carry it.
func PathMap(nodes, relationships []string) map[string]any {
	ns := make([]any, len(nodes))
	for i, n := range nodes {
		ns[i] = n
	}
	rs := make([]any, len(relationships))
	for i, r := range relationships {
		rs[i] = r
	}
	m := map[string]any{
		"nodes":         ns,
		"relationships": rs,
		"length":        int64(len(relationships)),
	}
	if len(nodes) > 0 {
		m["start"] = nodes[0]
		m["end"] = nodes[len(nodes)-1]
	}
	return m
}

// QueryResult is the column-oriented result of a Cypher statement.
type QueryResult struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// NodeDataFromMap converts a decoded {"self", "data"} object into NodeData.
// It reports false when m does not carry a string self.
func NodeDataFromMap(m map[string]any) (NodeData, bool) {
	self, ok := m["self"].(string)
	if !ok || self == "" {
		return NodeData{}, false
	}
	data, _ := m["data"].(map[string]any)
	return NodeData{Self: self, Data: data}, true
}

// RelationshipDataFromMap converts a decoded relationship object.
func RelationshipDataFromMap(m map[string]any) (RelationshipData, bool) {
	self, ok := m["self"].(string)
	if !ok || self == "" {
		return RelationshipData{}, false
	}
	r := RelationshipData{Self: self}
	r.Type, _ = m["type"].(string)
	r.Start, _ = m["start"].(string)
	r.End, _ = m["end"].(string)
	r.Data, _ = m["data"].(map[string]any)
	return r, true
}

const (
	nodeSegment         = "/node/"
	relationshipSegment = "/relationship/"
)

// NodeURL joins a store base URL and a node id.
func NodeURL(base, id string) string {
	return strings.TrimSuffix(base, "/") + nodeSegment + id
}

// RelationshipURL joins a store base URL and a relationship id.
func RelationshipURL(base, id string) string {
	return strings.TrimSuffix(base, "/") + relationshipSegment + id
}
