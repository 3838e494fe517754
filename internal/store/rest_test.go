package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/graphmap/internal/types"
)

func newTestREST(t *testing.T, handler http.HandlerFunc) (*RESTStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.URL = srv.URL + "/db/data"
	cfg.Username = "neo4j"
	cfg.Password = "secret"

	s, err := NewRESTStore(cfg, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return s, srv
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestNewRESTStore_RequiresURL(t *testing.T) {
	_, err := NewRESTStore(Config{Driver: DriverREST})
	require.Error(t, err)
	assert.Equal(t, ErrCodeStoreInvalidConfig, types.CodeOf(err))
}

func TestRESTStore_Query(t *testing.T) {
	s, _ := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/db/data/cypher", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "neo4j", user)
		assert.Equal(t, "secret", pass)

		body := decodeBody(t, r)
		assert.Equal(t, "MATCH (n) RETURN count(n)", body["query"])
		assert.Equal(t, map[string]any{}, body["params"])

		_, _ = io.WriteString(w, `{"columns":["count(n)"],"data":[[9007199254740993]]}`)
	})

	res, err := s.Query(context.Background(), "MATCH (n) RETURN count(n)", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"count(n)"}, res.Columns)
	assert.Equal(t, int64(9007199254740993), res.Data[0][0], "integers decode as int64 without precision loss")
}

func TestRESTStore_CreateUniqueNode(t *testing.T) {
	var base string
	s, srv := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/db/data/index/node/Host", r.URL.Path)
		assert.Equal(t, "get_or_create", r.URL.Query().Get("uniqueness"))

		body := decodeBody(t, r)
		assert.Equal(t, "uid", body["key"])
		assert.Equal(t, "h1", body["value"])

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"self":"`+base+`/db/data/node/7","data":{"uid":"h1","port":22}}`)
	})
	base = srv.URL

	n, err := s.CreateUniqueNode(context.Background(), "Host", "uid", "h1", map[string]any{"uid": "h1", "port": int64(22)})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/db/data/node/7", n.Self)
	assert.Equal(t, int64(22), n.Data["port"])
}

func TestRESTStore_CreateUniqueRelationship(t *testing.T) {
	s, _ := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/db/data/index/relationship/connects", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "connects", body["type"])
		assert.Equal(t, "http://x/db/data/node/1", body["start"])
		assert.Equal(t, "http://x/db/data/node/2", body["end"])
		_, _ = io.WriteString(w, `{"self":"http://x/db/data/relationship/3","type":"connects"}`)
	})

	url, err := s.CreateUniqueRelationship(context.Background(), "connects", "rid", "-a->b",
		"connects", "http://x/db/data/node/1", "http://x/db/data/node/2")
	require.NoError(t, err)
	assert.Equal(t, "http://x/db/data/relationship/3", url)
}

func TestRESTStore_StatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		code      types.ErrorCode
		retryable bool
	}{
		{"not found", http.StatusNotFound, ErrCodeStoreNotFound, false},
		{"conflict", http.StatusConflict, ErrCodeStoreConflict, false},
		{"server error", http.StatusInternalServerError, ErrCodeStoreUnavailable, true},
		{"throttled", http.StatusTooManyRequests, ErrCodeStoreUnavailable, true},
		{"bad request", http.StatusBadRequest, ErrCodeStoreRequestFailed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, srv := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"message":"nope"}`)
			})

			_, err := s.GetNode(context.Background(), srv.URL+"/db/data/node/1")
			require.Error(t, err)
			assert.Equal(t, tt.code, types.CodeOf(err))
			assert.Equal(t, tt.retryable, types.IsRetryable(err))
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestRESTStore_Delete(t *testing.T) {
	s, srv := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		switch r.URL.Path {
		case "/db/data/node/1":
			w.WriteHeader(http.StatusNoContent)
		case "/db/data/node/2":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusConflict)
		}
	})
	ctx := context.Background()

	deleted, err := s.DeleteNode(ctx, srv.URL+"/db/data/node/1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteNode(ctx, srv.URL+"/db/data/node/2")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = s.DeleteNode(ctx, srv.URL+"/db/data/node/3")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRESTStore_ResetProperties(t *testing.T) {
	s, srv := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/db/data/node/4/properties", r.URL.Path)
		assert.Equal(t, map[string]any{"uid": "h1"}, decodeBody(t, r))
		w.WriteHeader(http.StatusNoContent)
	})

	err := s.ResetNodeProperties(context.Background(), srv.URL+"/db/data/node/4", map[string]any{"uid": "h1"})
	assert.NoError(t, err)
}

func TestRESTStore_ListIndexes(t *testing.T) {
	s, _ := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/db/data/index/node":
			_, _ = io.WriteString(w, `{"Host":{"template":"http://x/db/data/index/node/Host/{key}/{value}"}}`)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	nodes, err := s.ListNodeIndexes(ctx)
	require.NoError(t, err)
	assert.Contains(t, nodes, "Host")

	rels, err := s.ListRelationshipIndexes(ctx)
	require.NoError(t, err)
	assert.NotNil(t, rels)
	assert.Empty(t, rels)
}

func TestRESTStore_FindNodesEscapesPath(t *testing.T) {
	s, _ := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/db/data/index/node/Host/uid/a%2Fb", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `[]`)
	})

	nodes, err := s.FindNodes(context.Background(), "Host", "uid", "a/b")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestRESTStore_Batch(t *testing.T) {
	s, _ := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/db/data/batch", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		var ops []BatchOp
		require.NoError(t, json.Unmarshal(raw, &ops))
		require.Len(t, ops, 2)
		assert.Equal(t, "/node/5/relationships/all", ops[0].To)
		assert.Equal(t, 1, ops[1].ID)
		_, _ = io.WriteString(w, `[{"id":0,"from":"/node/5/relationships/all","body":[]},{"id":1,"from":"/node/5","status":204}]`)
	})

	results, err := s.Batch(context.Background(), NumberOps([]BatchOp{
		GetNodeRelationshipsOp("http://x/db/data/node/5"),
		DeleteNodeOp("http://x/db/data/node/5"),
	})...)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []any{}, results[0].Body)
	assert.Equal(t, 204, results[1].Status)
}

func TestRESTStore_BatchFailure(t *testing.T) {
	s, _ := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := s.Batch(context.Background(), DeleteNodeOp("http://x/db/data/node/5"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeStoreBatchFailed, types.CodeOf(err))
}

func TestRESTStore_Close(t *testing.T) {
	var hits atomic.Int32
	s, _ := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `{"neo4j_version":"3.5.35"}`)
	})
	ctx := context.Background()

	info, err := s.Ping(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3.5.35", info["neo4j_version"])

	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))

	_, err = s.Ping(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRESTStore_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := DefaultConfig()
	cfg.URL = url + "/db/data"
	s, err := NewRESTStore(cfg)
	require.NoError(t, err)

	_, err = s.Ping(context.Background())
	require.Error(t, err)
	assert.Equal(t, ErrCodeStoreConnectionFailed, types.CodeOf(err))
	assert.True(t, types.IsRetryable(err))
}
