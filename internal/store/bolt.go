package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/zero-day-ai/graphmap/internal/types"
)

// Schema object name prefixes. Listing only reports objects created here.
const (
	boltNodeIndexPrefix = "graphmap_node_"
	boltRelIndexPrefix  = "graphmap_rel_"
)

const codeConstraintValidationFailed = "Neo.ClientError.Schema.ConstraintValidationFailed"

// BoltStore implements Store on top of the official Neo4j driver.
//
// The REST primitives are emulated in Cypher: a node index is a label backed
// by a uniqueness constraint, get-or-create is MERGE, and entity URLs are
// synthesised from element ids so callers see the same shapes as over REST.
type BoltStore struct {
	cfg     Config
	base    string
	nodeKey string
	relKey  string
	driver  neo4j.DriverWithContext
	logger  *slog.Logger
	closed  atomic.Bool
}

// BoltOption configures a BoltStore.
type BoltOption func(*BoltStore)

// WithBoltLogger sets the logger.
func WithBoltLogger(l *slog.Logger) BoltOption {
	return func(s *BoltStore) {
		s.logger = l
	}
}

// WithUniqueKeys sets the property names the node and relationship index
// constraints cover. They default to "uid" and "rid".
func WithUniqueKeys(nodeKey, relKey string) BoltOption {
	return func(s *BoltStore) {
		s.nodeKey = nodeKey
		s.relKey = relKey
	}
}

// NewBoltStore creates a driver for cfg.URL. The driver connects lazily;
// Ping verifies connectivity.
func NewBoltStore(cfg Config, opts ...BoltOption) (*BoltStore, error) {
	if cfg.URL == "" {
		return nil, types.NewError(ErrCodeStoreInvalidConfig, "url cannot be empty")
	}

	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URL, auth, func(c *neo4j.Config) {
		if cfg.MaxPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxPoolSize
		}
		if cfg.Timeout > 0 {
			c.ConnectionAcquisitionTimeout = cfg.Timeout
			c.SocketConnectTimeout = cfg.Timeout
		}
	})
	if err != nil {
		return nil, types.WrapError(ErrCodeStoreInvalidConfig, "failed to create neo4j driver", err)
	}

	s := &BoltStore{
		cfg:     cfg,
		base:    strings.TrimSuffix(cfg.URL, "/") + "/db/data",
		nodeKey: "uid",
		relKey:  "rid",
		driver:  driver,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ping verifies connectivity and reports the server agent.
func (s *BoltStore) Ping(ctx context.Context) (map[string]any, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return nil, boltError("verify connectivity", err)
	}
	info, err := s.driver.GetServerInfo(ctx)
	if err != nil {
		return nil, boltError("server info", err)
	}
	v := info.ProtocolVersion()
	return map[string]any{
		"neo4j_version": info.Agent(),
		"address":       info.Address(),
		"protocol":      fmt.Sprintf("%d.%d", v.Major, v.Minor),
	}, nil
}

// Query implements Store. Statements run in a write transaction since
// callers may pass arbitrary Cypher.
func (s *BoltStore) Query(ctx context.Context, statement string, params map[string]any) (*QueryResult, error) {
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, statement, params)
		if err != nil {
			return nil, err
		}
		keys, err := res.Keys()
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}

		result := &QueryResult{Columns: keys, Data: make([][]any, 0, len(records))}
		for _, rec := range records {
			row := make([]any, len(rec.Values))
			for i, v := range rec.Values {
				row[i] = s.convert(v)
			}
			result.Data = append(result.Data, row)
		}
		return result, nil
	})
	if err != nil {
		return nil, boltError("query", err)
	}
	return out.(*QueryResult), nil
}

// CreateUniqueNode implements Store with MERGE on the index label. A
// concurrent MERGE can lose the race against the uniqueness constraint; the
// statement is retried once, which then matches the winner's node.
func (s *BoltStore) CreateUniqueNode(ctx context.Context, index, key string, value any, props map[string]any) (*NodeData, error) {
	stmt := fmt.Sprintf("MERGE (n:%s {%s: $value}) ON CREATE SET n = $props, n.%s = $value RETURN n",
		quoteIdent(index), quoteIdent(key), quoteIdent(key))
	params := map[string]any{"value": value, "props": nonNil(props)}

	var (
		n   *NodeData
		err error
	)
	for attempt := 0; attempt < 2; attempt++ {
		n, err = s.singleNode(ctx, stmt, params)
		if !isConstraintViolation(err) {
			break
		}
		s.logger.DebugContext(ctx, "merge lost uniqueness race, retrying", "index", index, "key", key)
	}
	if err != nil {
		return nil, boltError("create unique node", err)
	}
	return n, nil
}

// CreateUniqueRelationship implements Store with MERGE between the two
// endpoints. The relationship type doubles as the index name.
func (s *BoltStore) CreateUniqueRelationship(ctx context.Context, index, key string, value any, relType, startURL, endURL string) (string, error) {
	stmt := fmt.Sprintf("MATCH (a), (b) WHERE elementId(a) = $start AND elementId(b) = $end "+
		"MERGE (a)-[r:%s {%s: $value}]->(b) RETURN r",
		quoteIdent(relType), quoteIdent(key))
	params := map[string]any{
		"start": EntityID(startURL),
		"end":   EntityID(endURL),
		"value": value,
	}

	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, stmt, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return "", nil
		}
		rel, ok := records[0].Values[0].(neo4j.Relationship)
		if !ok {
			return nil, fmt.Errorf("unexpected value %T", records[0].Values[0])
		}
		return RelationshipURL(s.base, rel.ElementId), nil
	})
	if err != nil {
		return "", boltError("create unique relationship", err)
	}
	url := out.(string)
	if url == "" {
		return "", types.WrapError(ErrCodeStoreNotFound, "relationship endpoints not found",
			fmt.Errorf("%s -> %s", startURL, endURL))
	}
	return url, nil
}

// FindNodes implements Store. A label with no nodes is reported as an empty
// result rather than a missing index.
func (s *BoltStore) FindNodes(ctx context.Context, index, key string, value any) ([]NodeData, error) {
	stmt := fmt.Sprintf("MATCH (n:%s) WHERE n.%s = $value RETURN n", quoteIdent(index), quoteIdent(key))
	nodes, err := s.nodes(ctx, stmt, map[string]any{"value": value})
	if err != nil {
		return nil, boltError("find nodes", err)
	}
	return nodes, nil
}

// GetNode implements Store.
func (s *BoltStore) GetNode(ctx context.Context, url string) (*NodeData, error) {
	n, err := s.singleNode(ctx, "MATCH (n) WHERE elementId(n) = $id RETURN n", map[string]any{"id": EntityID(url)})
	if err != nil {
		return nil, boltError("get node", err)
	}
	if n == nil {
		return nil, notFound("node", url)
	}
	return n, nil
}

// ResetNodeProperties implements Store. Index labels are kept.
func (s *BoltStore) ResetNodeProperties(ctx context.Context, url string, props map[string]any) error {
	n, err := s.count(ctx, "MATCH (n) WHERE elementId(n) = $id SET n = $props RETURN count(n)",
		map[string]any{"id": EntityID(url), "props": nonNil(props)})
	if err != nil {
		return boltError("reset node properties", err)
	}
	if n == 0 {
		return notFound("node", url)
	}
	return nil
}

// DeleteNode implements Store. Deleting a node that still has relationships
// fails with ErrConflict.
func (s *BoltStore) DeleteNode(ctx context.Context, url string) (bool, error) {
	n, err := s.count(ctx, "MATCH (n) WHERE elementId(n) = $id DELETE n RETURN count(*)",
		map[string]any{"id": EntityID(url)})
	if err != nil {
		return false, boltError("delete node", err)
	}
	return n > 0, nil
}

// GetRelationship implements Store.
func (s *BoltStore) GetRelationship(ctx context.Context, url string) (*RelationshipData, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH ()-[r]->() WHERE elementId(r) = $id RETURN r", map[string]any{"id": EntityID(url)})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return (*RelationshipData)(nil), nil
		}
		rel, ok := records[0].Values[0].(neo4j.Relationship)
		if !ok {
			return nil, fmt.Errorf("unexpected value %T", records[0].Values[0])
		}
		r := s.relationshipData(rel)
		return &r, nil
	})
	if err != nil {
		return nil, boltError("get relationship", err)
	}
	r := out.(*RelationshipData)
	if r == nil {
		return nil, notFound("relationship", url)
	}
	return r, nil
}

// ResetRelationshipProperties implements Store.
func (s *BoltStore) ResetRelationshipProperties(ctx context.Context, url string, props map[string]any) error {
	n, err := s.count(ctx, "MATCH ()-[r]->() WHERE elementId(r) = $id SET r = $props RETURN count(r)",
		map[string]any{"id": EntityID(url), "props": nonNil(props)})
	if err != nil {
		return boltError("reset relationship properties", err)
	}
	if n == 0 {
		return notFound("relationship", url)
	}
	return nil
}

// DeleteRelationship implements Store.
func (s *BoltStore) DeleteRelationship(ctx context.Context, url string) (bool, error) {
	n, err := s.count(ctx, "MATCH ()-[r]->() WHERE elementId(r) = $id DELETE r RETURN count(*)",
		map[string]any{"id": EntityID(url)})
	if err != nil {
		return false, boltError("delete relationship", err)
	}
	return n > 0, nil
}

// ListNodeIndexes reports the uniqueness constraints created by CreateNodeIndex.
func (s *BoltStore) ListNodeIndexes(ctx context.Context) (map[string]map[string]any, error) {
	return s.listSchema(ctx, "SHOW CONSTRAINTS YIELD name, labelsOrTypes WHERE name STARTS WITH $prefix RETURN name, labelsOrTypes",
		boltNodeIndexPrefix, "constraint")
}

// CreateNodeIndex creates a uniqueness constraint on the label name.
func (s *BoltStore) CreateNodeIndex(ctx context.Context, name string) error {
	stmt := fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
		quoteIdent(boltNodeIndexPrefix+sanitizeName(name)), quoteIdent(name), quoteIdent(s.nodeKey))
	if err := s.schema(ctx, stmt); err != nil {
		return boltError("create node index", err)
	}
	return nil
}

// ListRelationshipIndexes reports the property indexes created by
// CreateRelationshipIndex.
func (s *BoltStore) ListRelationshipIndexes(ctx context.Context) (map[string]map[string]any, error) {
	return s.listSchema(ctx, "SHOW INDEXES YIELD name, labelsOrTypes WHERE name STARTS WITH $prefix RETURN name, labelsOrTypes",
		boltRelIndexPrefix, "index")
}

// CreateRelationshipIndex creates a property index on relationships of type name.
func (s *BoltStore) CreateRelationshipIndex(ctx context.Context, name string) error {
	stmt := fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS FOR ()-[r:%s]-() ON (r.%s)",
		quoteIdent(boltRelIndexPrefix+sanitizeName(name)), quoteIdent(name), quoteIdent(s.relKey))
	if err := s.schema(ctx, stmt); err != nil {
		return boltError("create relationship index", err)
	}
	return nil
}

// Batch implements Store. Every op runs in one write transaction.
func (s *BoltStore) Batch(ctx context.Context, ops ...BatchOp) ([]BatchResult, error) {
	if len(ops) == 0 {
		return []BatchResult{}, nil
	}
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		results := make([]BatchResult, 0, len(ops))
		for _, op := range ops {
			body, status, err := s.applyOp(ctx, tx, op)
			if err != nil {
				return nil, err
			}
			results = append(results, BatchResult{ID: op.ID, From: op.To, Status: status, Body: body})
		}
		return results, nil
	})
	if err != nil {
		return nil, types.WrapError(ErrCodeStoreBatchFailed,
			fmt.Sprintf("batch of %d ops failed", len(ops)), boltError("batch", err))
	}
	return out.([]BatchResult), nil
}

// Close closes the driver.
func (s *BoltStore) Close(ctx context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	if err := s.driver.Close(ctx); err != nil {
		return types.WrapError(ErrCodeStoreClosed, "failed to close driver", err)
	}
	return nil
}

func (s *BoltStore) applyOp(ctx context.Context, tx neo4j.ManagedTransaction, op BatchOp) (any, int, error) {
	r, err := parseRoute(op)
	if err != nil {
		return nil, 0, err
	}
	params := map[string]any{"id": r.id}

	var stmt string
	switch r.kind {
	case routeGetNode:
		stmt = "MATCH (n) WHERE elementId(n) = $id RETURN n"
	case routeNodeRelationships:
		stmt = "MATCH (n)-[r]-() WHERE elementId(n) = $id RETURN r"
	case routeDeleteNode:
		stmt = "MATCH (n) WHERE elementId(n) = $id DELETE n RETURN count(*)"
	case routeGetRelationship:
		stmt = "MATCH ()-[r]->() WHERE elementId(r) = $id RETURN r"
	case routeDeleteRelationship:
		stmt = "MATCH ()-[r]->() WHERE elementId(r) = $id DELETE r RETURN count(*)"
	}

	res, err := tx.Run(ctx, stmt, params)
	if err != nil {
		return nil, 0, err
	}
	records, err := res.Collect(ctx)
	if err != nil {
		return nil, 0, err
	}

	switch r.kind {
	case routeNodeRelationships:
		rels := make([]any, 0, len(records))
		for _, rec := range records {
			rels = append(rels, s.convert(rec.Values[0]))
		}
		return rels, 200, nil
	case routeDeleteNode, routeDeleteRelationship:
		if len(records) == 0 || records[0].Values[0] == int64(0) {
			return nil, 0, notFound("entity", op.To)
		}
		return nil, 204, nil
	default:
		if len(records) == 0 {
			return nil, 0, notFound("entity", op.To)
		}
		return s.convert(records[0].Values[0]), 200, nil
	}
}

func (s *BoltStore) session(ctx context.Context, mode neo4j.AccessMode) (neo4j.SessionWithContext, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.cfg.Database,
		AccessMode:   mode,
	}), nil
}

func (s *BoltStore) write(ctx context.Context, fn neo4j.ManagedTransactionWork) (any, error) {
	session, err := s.session(ctx, neo4j.AccessModeWrite)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	start := time.Now()
	out, err := session.ExecuteWrite(ctx, fn)
	s.logger.DebugContext(ctx, "bolt write", "duration", time.Since(start), "error", err)
	return out, err
}

func (s *BoltStore) read(ctx context.Context, fn neo4j.ManagedTransactionWork) (any, error) {
	session, err := s.session(ctx, neo4j.AccessModeRead)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)
	return session.ExecuteRead(ctx, fn)
}

// schema runs a schema statement in an auto-commit transaction.
func (s *BoltStore) schema(ctx context.Context, stmt string) error {
	session, err := s.session(ctx, neo4j.AccessModeWrite)
	if err != nil {
		return err
	}
	defer session.Close(ctx)

	res, err := session.Run(ctx, stmt, nil)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func (s *BoltStore) listSchema(ctx context.Context, stmt, prefix, kind string) (map[string]map[string]any, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, stmt, map[string]any{"prefix": prefix})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}

		indexes := make(map[string]map[string]any, len(records))
		for _, rec := range records {
			name, _ := rec.Values[0].(string)
			labels, _ := rec.Values[1].([]any)
			if len(labels) == 0 {
				continue
			}
			label, _ := labels[0].(string)
			indexes[label] = map[string]any{
				"name":     name,
				"provider": "bolt",
				"type":     kind,
			}
		}
		return indexes, nil
	})
	if err != nil {
		return nil, boltError("list "+kind+"s", err)
	}
	return out.(map[string]map[string]any), nil
}

func (s *BoltStore) singleNode(ctx context.Context, stmt string, params map[string]any) (*NodeData, error) {
	nodes, err := s.nodes(ctx, stmt, params)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return &nodes[0], nil
}

func (s *BoltStore) nodes(ctx context.Context, stmt string, params map[string]any) ([]NodeData, error) {
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, stmt, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		nodes := make([]NodeData, 0, len(records))
		for _, rec := range records {
			n, ok := rec.Values[0].(neo4j.Node)
			if !ok {
				return nil, fmt.Errorf("unexpected value %T", rec.Values[0])
			}
			nodes = append(nodes, s.nodeData(n))
		}
		return nodes, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]NodeData), nil
}

func (s *BoltStore) count(ctx context.Context, stmt string, params map[string]any) (int64, error) {
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, stmt, params)
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		n, _ := rec.Values[0].(int64)
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return out.(int64), nil
}

func (s *BoltStore) nodeData(n neo4j.Node) NodeData {
	return NodeData{
		Self: NodeURL(s.base, n.ElementId),
		Data: s.convertProps(n.Props),
	}
}

func (s *BoltStore) relationshipData(r neo4j.Relationship) RelationshipData {
	return RelationshipData{
		Self:  RelationshipURL(s.base, r.ElementId),
		Type:  r.Type,
		Start: NodeURL(s.base, r.StartElementId),
		End:   NodeURL(s.base, r.EndElementId),
		Data:  s.convertProps(r.Props),
	}
}

// convert renders driver values in the shapes the REST API returns.
func (s *BoltStore) convert(v any) any {
	switch t := v.(type) {
	case neo4j.Node:
		return s.nodeData(t).Map()
	case neo4j.Relationship:
		return s.relationshipData(t).Map()
	case neo4j.Path:
		nodes := make([]string, len(t.Nodes))
		for i, n := range t.Nodes {
			nodes[i] = NodeURL(s.base, n.ElementId)
		}
		rels := make([]string, len(t.Relationships))
		for i, r := range t.Relationships {
			rels[i] = RelationshipURL(s.base, r.ElementId)
		}
		return PathMap(nodes, rels)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = s.convert(e)
		}
		return out
	case map[string]any:
		return s.convertProps(t)
	case neo4j.Date:
		return t.Time()
	case neo4j.LocalDateTime:
		return t.Time()
	case neo4j.LocalTime:
		return t.Time()
	case neo4j.Time:
		return t.Time()
	case neo4j.Duration:
		return t.String()
	case neo4j.Point2D:
		return t.String()
	case neo4j.Point3D:
		return t.String()
	default:
		return v
	}
}

func (s *BoltStore) convertProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = s.convert(v)
	}
	return out
}

func isConstraintViolation(err error) bool {
	var neoErr *neo4j.Neo4jError
	return errors.As(err, &neoErr) && neoErr.Code == codeConstraintValidationFailed
}

// boltError maps driver errors onto store error codes.
func boltError(op string, err error) error {
	var gerr *types.GraphmapError
	if errors.As(err, &gerr) {
		return err
	}
	switch {
	case isConstraintViolation(err):
		return types.WrapError(ErrCodeStoreConflict, op+" violated a constraint", err)
	case neo4j.IsConnectivityError(err):
		return types.WrapRetryableError(ErrCodeStoreConnectionFailed, op+" failed", err)
	case neo4j.IsRetryable(err):
		return types.WrapRetryableError(ErrCodeStoreUnavailable, op+" failed", err)
	default:
		return types.WrapError(ErrCodeStoreRequestFailed, op+" failed", err)
	}
}

var identUnsafe = regexp.MustCompile(`[^A-Za-z0-9_]`)

func sanitizeName(name string) string {
	return identUnsafe.ReplaceAllString(name, "_")
}

// quoteIdent backtick-quotes a label, type or property name.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
