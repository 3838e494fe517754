package store

import (
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/graphmap/internal/types"
)

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`Host`", quoteIdent("Host"))
	assert.Equal(t, "`odd``name`", quoteIdent("odd`name"))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "web_server_1", sanitizeName("web-server.1"))
}

func TestBoltStore_Convert(t *testing.T) {
	s := &BoltStore{base: "bolt://db:7687/db/data"}

	a := neo4j.Node{ElementId: "4:x:1", Labels: []string{"Host"}, Props: map[string]any{"uid": "a"}}
	b := neo4j.Node{ElementId: "4:x:2", Props: map[string]any{"uid": "b"}}
	r := neo4j.Relationship{
		ElementId:      "5:x:9",
		StartElementId: a.ElementId,
		EndElementId:   b.ElementId,
		Type:           "connects",
		Props:          map[string]any{"rid": "-a->b"},
	}

	node := s.convert(a).(map[string]any)
	assert.Equal(t, "bolt://db:7687/db/data/node/4:x:1", node["self"])
	assert.Equal(t, map[string]any{"uid": "a"}, node["data"])

	rel := s.convert(r).(map[string]any)
	assert.Equal(t, "bolt://db:7687/db/data/relationship/5:x:9", rel["self"])
	assert.Equal(t, "connects", rel["type"])
	assert.Equal(t, node["self"], rel["start"])

	path := s.convert(neo4j.Path{Nodes: []neo4j.Node{a, b}, Relationships: []neo4j.Relationship{r}}).(map[string]any)
	assert.Equal(t, int64(1), path["length"])
	assert.Equal(t, []any{node["self"], "bolt://db:7687/db/data/node/4:x:2"}, path["nodes"])

	list := s.convert([]any{int64(1), a}).([]any)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0])
	assert.IsType(t, map[string]any{}, list[1])

	assert.Equal(t, "4:x:1", EntityID(node["self"].(string)))
}

func TestBoltError(t *testing.T) {
	constraint := &neo4j.Neo4jError{Code: codeConstraintValidationFailed, Msg: "still has relationships"}
	err := boltError("delete node", constraint)
	assert.ErrorIs(t, err, ErrConflict)

	err = boltError("query", &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError"})
	assert.Equal(t, ErrCodeStoreRequestFailed, types.CodeOf(err))
	assert.False(t, types.IsRetryable(err))

	assert.ErrorIs(t, boltError("query", ErrClosed), ErrClosed)
	assert.Equal(t, ErrCodeStoreRequestFailed, types.CodeOf(boltError("query", errors.New("x"))))
}
