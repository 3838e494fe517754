package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/time/rate"

	"github.com/zero-day-ai/graphmap/internal/types"
)

// restJSON keeps JSON integers as int64 so property values round-trip
// without float conversion.
var restJSON = sonic.Config{
	UseInt64:         true,
	EscapeHTML:       false,
	CompactMarshaler: true,
}.Froze()

const maxErrorBody = 512

// RESTStore implements Store over the Neo4j REST API.
//
// Thread-safety: safe for concurrent use; the connection manager still hands
// each worker its own handle.
type RESTStore struct {
	cfg        Config
	base       string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	closed     atomic.Bool
}

// RESTOption configures a RESTStore.
type RESTOption func(*RESTStore)

// WithHTTPClient replaces the HTTP client, e.g. for tests.
func WithHTTPClient(c *http.Client) RESTOption {
	return func(s *RESTStore) {
		s.httpClient = c
	}
}

// WithRESTLogger sets the logger used for request tracing.
func WithRESTLogger(l *slog.Logger) RESTOption {
	return func(s *RESTStore) {
		s.logger = l
	}
}

// NewRESTStore creates a RESTStore for cfg.URL, the service root
// (e.g. "http://localhost:7474/db/data"). It does not contact the server.
func NewRESTStore(cfg Config, opts ...RESTOption) (*RESTStore, error) {
	if cfg.URL == "" {
		return nil, types.NewError(ErrCodeStoreInvalidConfig, "url cannot be empty")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, types.WrapError(ErrCodeStoreInvalidConfig, "invalid url", err)
	}

	s := &RESTStore{
		cfg:  cfg,
		base: strings.TrimSuffix(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: slog.Default(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ping fetches the service root.
func (s *RESTStore) Ping(ctx context.Context) (map[string]any, error) {
	var info map[string]any
	if _, err := s.do(ctx, http.MethodGet, s.base+"/", nil, &info); err != nil {
		return nil, err
	}
	return info, nil
}

// Query implements Store.
func (s *RESTStore) Query(ctx context.Context, statement string, params map[string]any) (*QueryResult, error) {
	if params == nil {
		params = map[string]any{}
	}
	body := map[string]any{"query": statement, "params": params}

	var raw *QueryResult
	if _, err := s.do(ctx, http.MethodPost, s.base+"/cypher", body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// CreateUniqueNode implements Store.
func (s *RESTStore) CreateUniqueNode(ctx context.Context, index, key string, value any, props map[string]any) (*NodeData, error) {
	body := map[string]any{"key": key, "value": value, "properties": props}
	target := s.base + "/index/node/" + url.PathEscape(index) + "?uniqueness=get_or_create"

	var n *NodeData
	if _, err := s.do(ctx, http.MethodPost, target, body, &n); err != nil {
		return nil, err
	}
	return n, nil
}

// CreateUniqueRelationship implements Store.
func (s *RESTStore) CreateUniqueRelationship(ctx context.Context, index, key string, value any, relType, startURL, endURL string) (string, error) {
	body := map[string]any{
		"key":   key,
		"value": value,
		"start": startURL,
		"end":   endURL,
		"type":  relType,
	}
	target := s.base + "/index/relationship/" + url.PathEscape(index) + "?uniqueness=get_or_create"

	var r RelationshipData
	if _, err := s.do(ctx, http.MethodPost, target, body, &r); err != nil {
		return "", err
	}
	if r.Self == "" {
		return "", types.NewError(ErrCodeStoreBadResponse, "relationship response has no self")
	}
	return r.Self, nil
}

// FindNodes implements Store.
func (s *RESTStore) FindNodes(ctx context.Context, index, key string, value any) ([]NodeData, error) {
	target := s.base + "/index/node/" + url.PathEscape(index) + "/" +
		url.PathEscape(key) + "/" + url.PathEscape(fmt.Sprint(value))

	var nodes []NodeData
	if _, err := s.do(ctx, http.MethodGet, target, nil, &nodes); err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []NodeData{}
	}
	return nodes, nil
}

// GetNode implements Store.
func (s *RESTStore) GetNode(ctx context.Context, nodeURL string) (*NodeData, error) {
	var n NodeData
	if _, err := s.do(ctx, http.MethodGet, nodeURL, nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ResetNodeProperties implements Store.
func (s *RESTStore) ResetNodeProperties(ctx context.Context, nodeURL string, props map[string]any) error {
	_, err := s.do(ctx, http.MethodPut, nodeURL+"/properties", nonNil(props), nil)
	return err
}

// DeleteNode implements Store.
func (s *RESTStore) DeleteNode(ctx context.Context, nodeURL string) (bool, error) {
	return s.delete(ctx, nodeURL)
}

// GetRelationship implements Store.
func (s *RESTStore) GetRelationship(ctx context.Context, relURL string) (*RelationshipData, error) {
	var r RelationshipData
	if _, err := s.do(ctx, http.MethodGet, relURL, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ResetRelationshipProperties implements Store.
func (s *RESTStore) ResetRelationshipProperties(ctx context.Context, relURL string, props map[string]any) error {
	_, err := s.do(ctx, http.MethodPut, relURL+"/properties", nonNil(props), nil)
	return err
}

// DeleteRelationship implements Store.
func (s *RESTStore) DeleteRelationship(ctx context.Context, relURL string) (bool, error) {
	return s.delete(ctx, relURL)
}

// ListNodeIndexes implements Store.
func (s *RESTStore) ListNodeIndexes(ctx context.Context) (map[string]map[string]any, error) {
	return s.listIndexes(ctx, "node")
}

// CreateNodeIndex implements Store.
func (s *RESTStore) CreateNodeIndex(ctx context.Context, name string) error {
	_, err := s.do(ctx, http.MethodPost, s.base+"/index/node", map[string]any{"name": name}, nil)
	return err
}

// ListRelationshipIndexes implements Store.
func (s *RESTStore) ListRelationshipIndexes(ctx context.Context) (map[string]map[string]any, error) {
	return s.listIndexes(ctx, "relationship")
}

// CreateRelationshipIndex implements Store.
func (s *RESTStore) CreateRelationshipIndex(ctx context.Context, name string) error {
	_, err := s.do(ctx, http.MethodPost, s.base+"/index/relationship", map[string]any{"name": name}, nil)
	return err
}

// Batch implements Store. The server runs the batch in one transaction.
func (s *RESTStore) Batch(ctx context.Context, ops ...BatchOp) ([]BatchResult, error) {
	if len(ops) == 0 {
		return []BatchResult{}, nil
	}
	var results []BatchResult
	if _, err := s.do(ctx, http.MethodPost, s.base+"/batch", ops, &results); err != nil {
		return nil, types.WrapError(ErrCodeStoreBatchFailed, fmt.Sprintf("batch of %d ops failed", len(ops)), err)
	}
	return results, nil
}

// Close releases idle connections. Later calls fail with ErrClosed.
func (s *RESTStore) Close(ctx context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *RESTStore) listIndexes(ctx context.Context, kind string) (map[string]map[string]any, error) {
	var indexes map[string]map[string]any
	if _, err := s.do(ctx, http.MethodGet, s.base+"/index/"+kind, nil, &indexes); err != nil {
		return nil, err
	}
	if indexes == nil {
		indexes = map[string]map[string]any{}
	}
	return indexes, nil
}

func (s *RESTStore) delete(ctx context.Context, target string) (bool, error) {
	_, err := s.do(ctx, http.MethodDelete, target, nil, nil)
	if err == nil {
		return true, nil
	}
	if types.CodeOf(err) == ErrCodeStoreNotFound {
		return false, nil
	}
	return false, err
}

// do sends one request and decodes a JSON response into out. Empty bodies
// (204) leave out untouched.
func (s *RESTStore) do(ctx context.Context, method, target string, in, out any) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return 0, types.WrapError(ErrCodeStoreRequestFailed, "rate limiter wait cancelled", err)
		}
	}

	var reader io.Reader
	if in != nil {
		payload, err := restJSON.Marshal(in)
		if err != nil {
			return 0, types.WrapError(ErrCodeStoreRequestFailed, "failed to encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, types.WrapError(ErrCodeStoreRequestFailed, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json; charset=UTF-8")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.cfg.Username != "" {
		req.SetBasicAuth(s.cfg.Username, s.cfg.Password)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, types.WrapRetryableError(ErrCodeStoreConnectionFailed,
			fmt.Sprintf("%s %s failed", method, target), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, types.WrapRetryableError(ErrCodeStoreConnectionFailed, "failed to read response", err)
	}

	s.logger.DebugContext(ctx, "rest request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if err := statusError(method, target, resp.StatusCode, body); err != nil {
		return resp.StatusCode, err
	}

	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := restJSON.Unmarshal(body, out); err != nil {
			return resp.StatusCode, types.WrapError(ErrCodeStoreBadResponse, "failed to decode response", err)
		}
	}
	return resp.StatusCode, nil
}

func statusError(method, target string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	detail := strings.TrimSpace(string(body))
	if len(detail) > maxErrorBody {
		detail = detail[:maxErrorBody]
	}
	cause := fmt.Errorf("%s %s: status %d: %s", method, target, status, detail)

	switch {
	case status == http.StatusNotFound:
		return types.WrapError(ErrCodeStoreNotFound, "resource not found", cause)
	case status == http.StatusConflict:
		return types.WrapError(ErrCodeStoreConflict, "store refused the write", cause)
	case status == http.StatusTooManyRequests || status >= 500:
		return types.WrapRetryableError(ErrCodeStoreUnavailable, "store unavailable", cause)
	default:
		return types.WrapError(ErrCodeStoreRequestFailed, "request rejected", cause)
	}
}

func nonNil(props map[string]any) map[string]any {
	if props == nil {
		return map[string]any{}
	}
	return props
}
