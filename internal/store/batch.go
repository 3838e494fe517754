package store

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/zero-day-ai/graphmap/internal/types"
)

// BatchOp is one request inside a batch. To is relative to the store's
// service root, e.g. "/node/12/relationships/all".
type BatchOp struct {
	Method string `json:"method"`
	To     string `json:"to"`
	Body   any    `json:"body,omitempty"`
	ID     int    `json:"id"`
}

// BatchResult is the response to one BatchOp.
type BatchResult struct {
	ID       int    `json:"id"`
	From     string `json:"from"`
	Status   int    `json:"status,omitempty"`
	Body     any    `json:"body,omitempty"`
	Location string `json:"location,omitempty"`
}

// GetNodeRelationshipsOp lists every relationship touching the node at nodeURL.
func GetNodeRelationshipsOp(nodeURL string) BatchOp {
	return BatchOp{Method: http.MethodGet, To: nodeSegment + EntityID(nodeURL) + "/relationships/all"}
}

// GetNodeOp fetches the node at nodeURL.
func GetNodeOp(nodeURL string) BatchOp {
	return BatchOp{Method: http.MethodGet, To: nodeSegment + EntityID(nodeURL)}
}

// DeleteNodeOp deletes the node at nodeURL.
func DeleteNodeOp(nodeURL string) BatchOp {
	return BatchOp{Method: http.MethodDelete, To: nodeSegment + EntityID(nodeURL)}
}

// DeleteRelationshipOp deletes the relationship at relURL.
func DeleteRelationshipOp(relURL string) BatchOp {
	return BatchOp{Method: http.MethodDelete, To: relationshipSegment + EntityID(relURL)}
}

// NumberOps assigns sequential ids so results can be matched to ops.
func NumberOps(ops []BatchOp) []BatchOp {
	numbered := make([]BatchOp, len(ops))
	for i, op := range ops {
		op.ID = i
		numbered[i] = op
	}
	return numbered
}

// entityURLPattern captures the segment before /node/ or /relationship/ so
// that index URLs (.../index/node/NAME) can be told apart from entities.
var entityURLPattern = regexp.MustCompile(`(?:^|/([^/]*))/(node|relationship)/([^/]+)$`)

func matchEntity(url string) (kind, id string, ok bool) {
	m := entityURLPattern.FindStringSubmatch(url)
	if m == nil || m[1] == "index" {
		return "", "", false
	}
	return m[2], m[3], true
}

// EntityID returns the trailing id of a node or relationship URL, or the
// input unchanged when it has no such suffix.
func EntityID(url string) string {
	if _, id, ok := matchEntity(url); ok {
		return id
	}
	return url
}

// EntityKind reports whether url addresses a node or a relationship.
// It returns "" for any other shape, index URLs included.
func EntityKind(url string) string {
	kind, _, _ := matchEntity(url)
	return kind
}

type routeKind int

const (
	routeGetNode routeKind = iota
	routeDeleteNode
	routeNodeRelationships
	routeGetRelationship
	routeDeleteRelationship
)

// route is a parsed BatchOp for stores that execute batches themselves
// instead of forwarding them over HTTP.
type route struct {
	kind routeKind
	id   string
}

var batchPathPattern = regexp.MustCompile(`^/(node|relationship)/([^/]+)(/relationships/all)?$`)

func parseRoute(op BatchOp) (route, error) {
	m := batchPathPattern.FindStringSubmatch(op.To)
	if m == nil {
		return route{}, types.NewError(ErrCodeStoreBatchFailed, fmt.Sprintf("unsupported batch target %q", op.To))
	}

	kind, id, listRels := m[1], m[2], m[3] != ""
	switch {
	case kind == "node" && listRels && op.Method == http.MethodGet:
		return route{routeNodeRelationships, id}, nil
	case kind == "node" && !listRels && op.Method == http.MethodGet:
		return route{routeGetNode, id}, nil
	case kind == "node" && !listRels && op.Method == http.MethodDelete:
		return route{routeDeleteNode, id}, nil
	case kind == "relationship" && !listRels && op.Method == http.MethodGet:
		return route{routeGetRelationship, id}, nil
	case kind == "relationship" && !listRels && op.Method == http.MethodDelete:
		return route{routeDeleteRelationship, id}, nil
	}
	return route{}, types.NewError(ErrCodeStoreBatchFailed, fmt.Sprintf("unsupported batch op %s %s", op.Method, op.To))
}
