package store

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zero-day-ai/graphmap/internal/cypher"
	"github.com/zero-day-ai/graphmap/internal/types"
)

const memoryBaseURL = "memory://graphmap/db/data"

// MockCall represents a recorded call on the in-memory store.
type MockCall struct {
	Method    string
	Args      []any
	Timestamp time.Time
}

// StatementHandler answers a Cypher statement the memory store does not
// understand natively.
type StatementHandler func(params map[string]any) (*QueryResult, error)

// MemoryStore is an in-process Store. It honours unique indexes, refuses to
// delete nodes that still have relationships, applies batches atomically and
// answers the statements in package cypher. Handles created with Connect
// share one graph; the graph is safe for concurrent use.
type MemoryStore struct {
	graph  *memoryGraph
	closed atomic.Bool
}

type memoryGraph struct {
	mu sync.Mutex

	nextID      int64
	nodes       map[int64]*memNode
	rels        map[int64]*memRel
	nodeIndexes map[string]map[string]int64
	relIndexes  map[string]map[string]int64

	handlers map[string]StatementHandler
	calls    []MockCall
	errs     map[string]error
}

type memNode struct {
	props map[string]any
}

type memRel struct {
	typ        string
	start, end int64
	props      map[string]any
}

// NewMemoryStore creates an empty graph and returns a handle onto it.
func NewMemoryStore() *MemoryStore {
	g := &memoryGraph{}
	g.reset()
	return &MemoryStore{graph: g}
}

// Connect returns a new handle onto the same graph.
func (m *MemoryStore) Connect() *MemoryStore {
	return &MemoryStore{graph: m.graph}
}

func (g *memoryGraph) reset() {
	g.nextID = 0
	g.nodes = make(map[int64]*memNode)
	g.rels = make(map[int64]*memRel)
	g.nodeIndexes = make(map[string]map[string]int64)
	g.relIndexes = make(map[string]map[string]int64)
	g.handlers = make(map[string]StatementHandler)
	g.calls = make([]MockCall, 0)
	g.errs = make(map[string]error)
}

// begin records the call and returns the configured or closed-handle error.
// The graph lock must be held.
func (m *MemoryStore) begin(method string, args ...any) error {
	m.graph.calls = append(m.graph.calls, MockCall{
		Method:    method,
		Args:      args,
		Timestamp: time.Now(),
	})
	if m.closed.Load() {
		return ErrClosed
	}
	if err := m.graph.errs[method]; err != nil {
		return err
	}
	return nil
}

// Ping implements Store.
func (m *MemoryStore) Ping(ctx context.Context) (map[string]any, error) {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("Ping"); err != nil {
		return nil, err
	}
	return map[string]any{
		"neo4j_version": "memory",
		"node":          memoryBaseURL + "/node",
	}, nil
}

// Query implements Store.
func (m *MemoryStore) Query(ctx context.Context, statement string, params map[string]any) (*QueryResult, error) {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("Query", statement, params); err != nil {
		return nil, err
	}
	g := m.graph

	if h, ok := g.handlers[statement]; ok {
		return h(params)
	}

	switch statement {
	case cypher.AllNodes:
		return nodeRows("n", g.matchNodes(nil, -1)), nil
	case cypher.NodesByType:
		return nodeRows("n", g.matchNodes(params[cypher.ParamType], -1)), nil
	case cypher.NodePage:
		return nodeRows("n", g.matchNodes(nil, intParam(params, cypher.ParamLimit))), nil
	case cypher.NodePageByType:
		return nodeRows("n", g.matchNodes(params[cypher.ParamType], intParam(params, cypher.ParamLimit))), nil
	case cypher.CountAllNodes:
		return countRow("count(n)", len(g.matchNodes(nil, -1))), nil
	case cypher.CountNodesByType:
		return countRow("count(n)", len(g.matchNodes(params[cypher.ParamType], -1))), nil
	case cypher.AllRelationships:
		return relRows("r", g.matchRels(nil)), nil
	case cypher.RelationshipsByName:
		return relRows("r", g.matchRels(params[cypher.ParamName])), nil
	case cypher.CountAllRelationships:
		return countRow("count(r)", len(g.matchRels(nil))), nil
	case cypher.CountRelationshipsByName:
		return countRow("count(r)", len(g.matchRels(params[cypher.ParamName]))), nil
	}

	if depth, ok := cypher.ParsePathsBetween(statement); ok {
		return g.paths(params, depth), nil
	}

	return nil, types.NewError(ErrCodeUnsupportedStatement,
		fmt.Sprintf("memory store cannot execute %q", statement))
}

// CreateUniqueNode implements Store.
func (m *MemoryStore) CreateUniqueNode(ctx context.Context, index, key string, value any, props map[string]any) (*NodeData, error) {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("CreateUniqueNode", index, key, value, props); err != nil {
		return nil, err
	}
	g := m.graph

	entries, ok := g.nodeIndexes[index]
	if !ok {
		entries = make(map[string]int64)
		g.nodeIndexes[index] = entries
	}
	entry := indexEntry(key, value)
	if id, exists := entries[entry]; exists {
		n := g.nodeData(id)
		return &n, nil
	}

	g.nextID++
	id := g.nextID
	g.nodes[id] = &memNode{props: copyProps(props)}
	entries[entry] = id

	n := g.nodeData(id)
	return &n, nil
}

// CreateUniqueRelationship implements Store.
func (m *MemoryStore) CreateUniqueRelationship(ctx context.Context, index, key string, value any, relType, startURL, endURL string) (string, error) {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("CreateUniqueRelationship", index, key, value, relType, startURL, endURL); err != nil {
		return "", err
	}
	g := m.graph

	start, ok := g.lookupNode(startURL)
	if !ok {
		return "", types.WrapError(ErrCodeStoreNotFound, "start node not found", fmt.Errorf("%s", startURL))
	}
	end, ok := g.lookupNode(endURL)
	if !ok {
		return "", types.WrapError(ErrCodeStoreNotFound, "end node not found", fmt.Errorf("%s", endURL))
	}

	entries, ok := g.relIndexes[index]
	if !ok {
		entries = make(map[string]int64)
		g.relIndexes[index] = entries
	}
	entry := indexEntry(key, value)
	if id, exists := entries[entry]; exists {
		return RelationshipURL(memoryBaseURL, formatID(id)), nil
	}

	g.nextID++
	id := g.nextID
	g.rels[id] = &memRel{typ: relType, start: start, end: end, props: map[string]any{}}
	entries[entry] = id

	return RelationshipURL(memoryBaseURL, formatID(id)), nil
}

// FindNodes implements Store.
func (m *MemoryStore) FindNodes(ctx context.Context, index, key string, value any) ([]NodeData, error) {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("FindNodes", index, key, value); err != nil {
		return nil, err
	}

	entries, ok := m.graph.nodeIndexes[index]
	if !ok {
		return nil, types.WrapError(ErrCodeStoreNotFound, "index not found", fmt.Errorf("%s", index))
	}
	id, ok := entries[indexEntry(key, value)]
	if !ok {
		return []NodeData{}, nil
	}
	return []NodeData{m.graph.nodeData(id)}, nil
}

// GetNode implements Store.
func (m *MemoryStore) GetNode(ctx context.Context, url string) (*NodeData, error) {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("GetNode", url); err != nil {
		return nil, err
	}
	id, ok := m.graph.lookupNode(url)
	if !ok {
		return nil, notFound("node", url)
	}
	n := m.graph.nodeData(id)
	return &n, nil
}

// ResetNodeProperties implements Store.
func (m *MemoryStore) ResetNodeProperties(ctx context.Context, url string, props map[string]any) error {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("ResetNodeProperties", url, props); err != nil {
		return err
	}
	id, ok := m.graph.lookupNode(url)
	if !ok {
		return notFound("node", url)
	}
	m.graph.nodes[id].props = copyProps(props)
	return nil
}

// DeleteNode implements Store.
func (m *MemoryStore) DeleteNode(ctx context.Context, url string) (bool, error) {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("DeleteNode", url); err != nil {
		return false, err
	}
	id, ok := m.graph.lookupNode(url)
	if !ok {
		return false, nil
	}
	if err := m.graph.deleteNode(id); err != nil {
		return false, err
	}
	return true, nil
}

// GetRelationship implements Store.
func (m *MemoryStore) GetRelationship(ctx context.Context, url string) (*RelationshipData, error) {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("GetRelationship", url); err != nil {
		return nil, err
	}
	id, ok := m.graph.lookupRel(url)
	if !ok {
		return nil, notFound("relationship", url)
	}
	r := m.graph.relData(id)
	return &r, nil
}

// ResetRelationshipProperties implements Store.
func (m *MemoryStore) ResetRelationshipProperties(ctx context.Context, url string, props map[string]any) error {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("ResetRelationshipProperties", url, props); err != nil {
		return err
	}
	id, ok := m.graph.lookupRel(url)
	if !ok {
		return notFound("relationship", url)
	}
	m.graph.rels[id].props = copyProps(props)
	return nil
}

// DeleteRelationship implements Store.
func (m *MemoryStore) DeleteRelationship(ctx context.Context, url string) (bool, error) {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("DeleteRelationship", url); err != nil {
		return false, err
	}
	id, ok := m.graph.lookupRel(url)
	if !ok {
		return false, nil
	}
	m.graph.deleteRel(id)
	return true, nil
}

// ListNodeIndexes implements Store.
func (m *MemoryStore) ListNodeIndexes(ctx context.Context) (map[string]map[string]any, error) {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("ListNodeIndexes"); err != nil {
		return nil, err
	}
	return describeIndexes("node", m.graph.nodeIndexes), nil
}

// CreateNodeIndex implements Store. Creating an existing index is a no-op.
func (m *MemoryStore) CreateNodeIndex(ctx context.Context, name string) error {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("CreateNodeIndex", name); err != nil {
		return err
	}
	if _, ok := m.graph.nodeIndexes[name]; !ok {
		m.graph.nodeIndexes[name] = make(map[string]int64)
	}
	return nil
}

// ListRelationshipIndexes implements Store.
func (m *MemoryStore) ListRelationshipIndexes(ctx context.Context) (map[string]map[string]any, error) {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("ListRelationshipIndexes"); err != nil {
		return nil, err
	}
	return describeIndexes("relationship", m.graph.relIndexes), nil
}

// CreateRelationshipIndex implements Store. Creating an existing index is a no-op.
func (m *MemoryStore) CreateRelationshipIndex(ctx context.Context, name string) error {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("CreateRelationshipIndex", name); err != nil {
		return err
	}
	if _, ok := m.graph.relIndexes[name]; !ok {
		m.graph.relIndexes[name] = make(map[string]int64)
	}
	return nil
}

// Batch implements Store. A failing op rolls the whole batch back.
func (m *MemoryStore) Batch(ctx context.Context, ops ...BatchOp) ([]BatchResult, error) {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	if err := m.begin("Batch", len(ops)); err != nil {
		return nil, err
	}
	g := m.graph
	snapshot := g.snapshot()

	results := make([]BatchResult, 0, len(ops))
	for i, op := range ops {
		body, status, err := g.apply(op)
		if err != nil {
			g.restore(snapshot)
			return nil, types.WrapError(ErrCodeStoreBatchFailed,
				fmt.Sprintf("batch op %d (%s %s) failed", i, op.Method, op.To), err)
		}
		results = append(results, BatchResult{ID: op.ID, From: op.To, Status: status, Body: body})
	}
	return results, nil
}

// Close implements Store. The graph survives for other handles.
func (m *MemoryStore) Close(ctx context.Context) error {
	m.closed.Store(true)
	return nil
}

// HandleStatement registers a handler for a statement the store does not
// understand natively.
func (m *MemoryStore) HandleStatement(statement string, h StatementHandler) {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()
	m.graph.handlers[statement] = h
}

// SetError makes every later call to method fail with err. A nil err clears it.
func (m *MemoryStore) SetError(method string, err error) {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()
	if err == nil {
		delete(m.graph.errs, method)
		return
	}
	m.graph.errs[method] = err
}

// GetCalls returns all recorded calls.
func (m *MemoryStore) GetCalls() []MockCall {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	calls := make([]MockCall, len(m.graph.calls))
	copy(calls, m.graph.calls)
	return calls
}

// GetCallsByMethod returns all calls to a specific method.
func (m *MemoryStore) GetCallsByMethod(method string) []MockCall {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()

	calls := make([]MockCall, 0)
	for _, call := range m.graph.calls {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// NodeCount returns the number of stored nodes.
func (m *MemoryStore) NodeCount() int {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()
	return len(m.graph.nodes)
}

// RelationshipCount returns the number of stored relationships.
func (m *MemoryStore) RelationshipCount() int {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()
	return len(m.graph.rels)
}

// Reset clears the graph, recorded calls, handlers and injected errors.
func (m *MemoryStore) Reset() {
	m.graph.mu.Lock()
	defer m.graph.mu.Unlock()
	m.graph.reset()
}

func (g *memoryGraph) apply(op BatchOp) (any, int, error) {
	r, err := parseRoute(op)
	if err != nil {
		return nil, 0, err
	}
	url := memoryBaseURL + op.To

	switch r.kind {
	case routeGetNode:
		id, ok := g.lookupNode(url)
		if !ok {
			return nil, 0, notFound("node", url)
		}
		return g.nodeData(id).Map(), http.StatusOK, nil

	case routeNodeRelationships:
		id, ok := g.lookupNode(NodeURL(memoryBaseURL, r.id))
		if !ok {
			return nil, 0, notFound("node", url)
		}
		touching := make([]any, 0)
		for _, relID := range g.sortedRelIDs() {
			rel := g.rels[relID]
			if rel.start == id || rel.end == id {
				touching = append(touching, g.relData(relID).Map())
			}
		}
		return touching, http.StatusOK, nil

	case routeDeleteNode:
		id, ok := g.lookupNode(url)
		if !ok {
			return nil, 0, notFound("node", url)
		}
		if err := g.deleteNode(id); err != nil {
			return nil, 0, err
		}
		return nil, http.StatusNoContent, nil

	case routeGetRelationship:
		id, ok := g.lookupRel(url)
		if !ok {
			return nil, 0, notFound("relationship", url)
		}
		return g.relData(id).Map(), http.StatusOK, nil

	case routeDeleteRelationship:
		id, ok := g.lookupRel(url)
		if !ok {
			return nil, 0, notFound("relationship", url)
		}
		g.deleteRel(id)
		return nil, http.StatusNoContent, nil
	}
	return nil, 0, types.NewError(ErrCodeStoreBatchFailed, "unhandled batch route")
}

func (g *memoryGraph) deleteNode(id int64) error {
	touching := 0
	for _, rel := range g.rels {
		if rel.start == id || rel.end == id {
			touching++
		}
	}
	if touching > 0 {
		return types.NewError(ErrCodeStoreConflict,
			fmt.Sprintf("node %d still has %d relationships", id, touching))
	}
	delete(g.nodes, id)
	for _, entries := range g.nodeIndexes {
		for entry, target := range entries {
			if target == id {
				delete(entries, entry)
			}
		}
	}
	return nil
}

func (g *memoryGraph) deleteRel(id int64) {
	delete(g.rels, id)
	for _, entries := range g.relIndexes {
		for entry, target := range entries {
			if target == id {
				delete(entries, entry)
			}
		}
	}
}

func (g *memoryGraph) matchNodes(typ any, limit int) []NodeData {
	var out []NodeData
	for _, id := range g.sortedNodeIDs() {
		if limit >= 0 && len(out) >= limit {
			break
		}
		if typ != nil && fmt.Sprint(g.nodes[id].props["type"]) != fmt.Sprint(typ) {
			continue
		}
		out = append(out, g.nodeData(id))
	}
	return out
}

func (g *memoryGraph) matchRels(name any) []RelationshipData {
	var out []RelationshipData
	for _, id := range g.sortedRelIDs() {
		if name != nil && g.rels[id].typ != fmt.Sprint(name) {
			continue
		}
		out = append(out, g.relData(id))
	}
	return out
}

func (g *memoryGraph) findByKey(typ, uid any) (int64, bool) {
	for _, id := range g.sortedNodeIDs() {
		props := g.nodes[id].props
		if fmt.Sprint(props["type"]) == fmt.Sprint(typ) && fmt.Sprint(props["uid"]) == fmt.Sprint(uid) {
			return id, true
		}
	}
	return 0, false
}

// paths enumerates directed paths of 1..depth hops; a relationship appears at
// most once per path.
func (g *memoryGraph) paths(params map[string]any, depth int) *QueryResult {
	result := &QueryResult{Columns: []string{"p"}, Data: [][]any{}}

	from, ok := g.findByKey(params[cypher.ParamFromType], params[cypher.ParamFromUID])
	if !ok {
		return result
	}
	to, ok := g.findByKey(params[cypher.ParamToType], params[cypher.ParamToUID])
	if !ok {
		return result
	}

	relIDs := g.sortedRelIDs()
	used := make(map[int64]bool)
	nodes := []int64{from}
	var rels []int64

	var walk func(at int64)
	walk = func(at int64) {
		if len(rels) >= depth {
			return
		}
		for _, relID := range relIDs {
			rel := g.rels[relID]
			if rel.start != at || used[relID] {
				continue
			}
			used[relID] = true
			nodes = append(nodes, rel.end)
			rels = append(rels, relID)

			if rel.end == to {
				result.Data = append(result.Data, []any{g.pathMap(nodes, rels)})
			}
			walk(rel.end)

			nodes = nodes[:len(nodes)-1]
			rels = rels[:len(rels)-1]
			used[relID] = false
		}
	}
	walk(from)

	return result
}

func (g *memoryGraph) pathMap(nodeIDs, relIDs []int64) map[string]any {
	nodes := make([]string, len(nodeIDs))
	for i, id := range nodeIDs {
		nodes[i] = NodeURL(memoryBaseURL, formatID(id))
	}
	rels := make([]string, len(relIDs))
	for i, id := range relIDs {
		rels[i] = RelationshipURL(memoryBaseURL, formatID(id))
	}
	return PathMap(nodes, rels)
}

func (g *memoryGraph) lookupNode(url string) (int64, bool) {
	if EntityKind(url) != "node" {
		return 0, false
	}
	id, err := strconv.ParseInt(EntityID(url), 10, 64)
	if err != nil {
		return 0, false
	}
	_, ok := g.nodes[id]
	return id, ok
}

func (g *memoryGraph) lookupRel(url string) (int64, bool) {
	if EntityKind(url) != "relationship" {
		return 0, false
	}
	id, err := strconv.ParseInt(EntityID(url), 10, 64)
	if err != nil {
		return 0, false
	}
	_, ok := g.rels[id]
	return id, ok
}

func (g *memoryGraph) nodeData(id int64) NodeData {
	return NodeData{
		Self: NodeURL(memoryBaseURL, formatID(id)),
		Data: copyProps(g.nodes[id].props),
	}
}

func (g *memoryGraph) relData(id int64) RelationshipData {
	rel := g.rels[id]
	return RelationshipData{
		Self:  RelationshipURL(memoryBaseURL, formatID(id)),
		Type:  rel.typ,
		Start: NodeURL(memoryBaseURL, formatID(rel.start)),
		End:   NodeURL(memoryBaseURL, formatID(rel.end)),
		Data:  copyProps(rel.props),
	}
}

func (g *memoryGraph) sortedNodeIDs() []int64 {
	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (g *memoryGraph) sortedRelIDs() []int64 {
	ids := make([]int64, 0, len(g.rels))
	for id := range g.rels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type memorySnapshot struct {
	nextID      int64
	nodes       map[int64]*memNode
	rels        map[int64]*memRel
	nodeIndexes map[string]map[string]int64
	relIndexes  map[string]map[string]int64
}

func (g *memoryGraph) snapshot() memorySnapshot {
	s := memorySnapshot{
		nextID:      g.nextID,
		nodes:       make(map[int64]*memNode, len(g.nodes)),
		rels:        make(map[int64]*memRel, len(g.rels)),
		nodeIndexes: copyIndexes(g.nodeIndexes),
		relIndexes:  copyIndexes(g.relIndexes),
	}
	for id, n := range g.nodes {
		s.nodes[id] = &memNode{props: copyProps(n.props)}
	}
	for id, r := range g.rels {
		cp := *r
		cp.props = copyProps(r.props)
		s.rels[id] = &cp
	}
	return s
}

func (g *memoryGraph) restore(s memorySnapshot) {
	g.nextID = s.nextID
	g.nodes = s.nodes
	g.rels = s.rels
	g.nodeIndexes = s.nodeIndexes
	g.relIndexes = s.relIndexes
}

func copyIndexes(in map[string]map[string]int64) map[string]map[string]int64 {
	out := make(map[string]map[string]int64, len(in))
	for name, entries := range in {
		cp := make(map[string]int64, len(entries))
		for k, v := range entries {
			cp[k] = v
		}
		out[name] = cp
	}
	return out
}

func describeIndexes(kind string, indexes map[string]map[string]int64) map[string]map[string]any {
	out := make(map[string]map[string]any, len(indexes))
	for name := range indexes {
		out[name] = map[string]any{
			"template": memoryBaseURL + "/index/" + kind + "/" + name + "/{key}/{value}",
			"provider": "memory",
			"type":     "exact",
		}
	}
	return out
}

func nodeRows(column string, nodes []NodeData) *QueryResult {
	result := &QueryResult{Columns: []string{column}, Data: make([][]any, 0, len(nodes))}
	for _, n := range nodes {
		result.Data = append(result.Data, []any{n.Map()})
	}
	return result
}

func relRows(column string, rels []RelationshipData) *QueryResult {
	result := &QueryResult{Columns: []string{column}, Data: make([][]any, 0, len(rels))}
	for _, r := range rels {
		result.Data = append(result.Data, []any{r.Map()})
	}
	return result
}

func countRow(column string, n int) *QueryResult {
	return &QueryResult{Columns: []string{column}, Data: [][]any{{int64(n)}}}
}

func intParam(params map[string]any, name string) int {
	switch v := params[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return -1
}

func indexEntry(key string, value any) string {
	return key + "=" + fmt.Sprint(value)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func notFound(kind, url string) error {
	return types.WrapError(ErrCodeStoreNotFound, kind+" not found", fmt.Errorf("%s", url))
}

func copyProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyProps(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
