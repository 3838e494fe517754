package ogm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/graphmap/internal/types"
)

func TestConnect_SelfLoopIsSkipped(t *testing.T) {
	f := newFixture(t)
	n := f.node(t, "foo", 1, nil)

	rels, err := f.client.Connect(f.ctx, "name", []Pair{Link(n, n)}, nil)
	require.NoError(t, err)
	assert.Empty(t, rels)
	assert.Equal(t, int64(0), f.countRelationships(t, AllNames))
	assert.Empty(t, f.store.GetCallsByMethod("CreateUniqueRelationship"))
}

func TestConnect_DuplicateEdgeSuppressed(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "foo", 1, nil)
	b := f.node(t, "bar", 1, nil)

	first, err := f.client.Connect(f.ctx, "name", []Pair{Link(a, b)}, nil)
	require.NoError(t, err)
	second, err := f.client.Connect(f.ctx, "name", []Pair{Link(a, b)}, nil)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.True(t, first[0].Equal(second[0].Ref()))
	assert.Equal(t, int64(1), f.countRelationships(t, AllNames))

	_, err = f.client.Connect(f.ctx, "other_name", []Pair{Link(a, b)}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.countRelationships(t, AllNames))
	assert.Equal(t, int64(1), f.countRelationships(t, "name"))
	assert.Equal(t, int64(1), f.countRelationships(t, "other_name"))
}

func TestConnect_DirectionMatters(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "foo", 1, nil)
	b := f.node(t, "bar", 1, nil)

	pairs, err := Pairs(a, b, b, a)
	require.NoError(t, err)
	rels, err := f.client.Connect(f.ctx, "name", pairs, nil)
	require.NoError(t, err)

	require.Len(t, rels, 2)
	assert.False(t, rels[0].Equal(rels[1].Ref()))
	assert.True(t, rels[0].Start.Equal(a.Ref()))
	assert.True(t, rels[1].Start.Equal(b.Ref()))
	assert.Equal(t, int64(2), f.countRelationships(t, "name"))
}

func TestConnect_DefaultName(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "foo", 1, nil)
	b := f.node(t, "bar", 1, nil)

	rels, err := f.client.Connect(f.ctx, "", []Pair{Link(a, b)}, nil)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, DefaultRelationshipName, rels[0].Name)
	assert.Equal(t, int64(1), f.countRelationships(t, DefaultRelationshipName))
}

func TestConnect_AttributesOverwrite(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "foo", 1, nil)
	b := f.node(t, "bar", 1, nil)

	_, err := f.client.Connect(f.ctx, "name", []Pair{Link(a, b)}, map[string]any{"weight": 1, "label": "x"})
	require.NoError(t, err)
	rels, err := f.client.Connect(f.ctx, "name", []Pair{Link(a, b)}, map[string]any{"weight": 2})
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, map[string]any{"weight": int64(2), KeyRID: "-foo/1->bar/1"}, rels[0].Attrs)

	loaded, err := f.client.FetchRelationship(f.ctx, rels[0].Ref())
	require.NoError(t, err)
	assert.Equal(t, "name", loaded.Name)
	assert.True(t, loaded.Start.Equal(a.Ref()))
	assert.True(t, loaded.End.Equal(b.Ref()))
	assert.Equal(t, int64(2), loaded.Attrs["weight"])
	assert.NotContains(t, loaded.Attrs, "label", "the latest connect replaces every property")

	rid, ok := loaded.RID()
	assert.True(t, ok)
	assert.Equal(t, RID(a, b), rid)
}

func TestConnect_NoAttributesSkipsReset(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "foo", 1, nil)
	b := f.node(t, "bar", 1, nil)

	rels, err := f.client.Connect(f.ctx, "name", []Pair{Link(a, b)}, nil)
	require.NoError(t, err)
	assert.Empty(t, rels[0].Attrs)
	assert.Empty(t, f.store.GetCallsByMethod("ResetRelationshipProperties"))
}

func TestConnect_EnsuresIndexOnce(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "foo", 1, nil)
	b := f.node(t, "bar", 1, nil)
	c := f.node(t, "bar", 2, nil)

	_, err := f.client.Connect(f.ctx, "name", Edges(map[*Node]*Node{a: b, b: c}), nil)
	require.NoError(t, err)

	assert.Len(t, f.store.GetCallsByMethod("ListRelationshipIndexes"), 1)
	assert.Len(t, f.store.GetCallsByMethod("CreateRelationshipIndex"), 1)
	assert.Equal(t, []string{"name"}, f.client.indexes.RelationshipIndexes())
}

func TestConnect_InvalidPair(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "foo", 1, nil)

	_, err := f.client.Connect(f.ctx, "name", []Pair{{From: a}}, nil)
	assert.Equal(t, ErrCodeInvalidPair, types.CodeOf(err))

	_, err = f.client.Connect(f.ctx, "name", []Pair{Link(a, &Node{Type: "bar", UID: 1})}, nil)
	assert.Equal(t, ErrCodeInvalidPair, types.CodeOf(err))
}

func TestPairs(t *testing.T) {
	a := &Node{NodeRef: NodeRef{URL: "u/node/1"}, Type: "foo", UID: 1}
	b := &Node{NodeRef: NodeRef{URL: "u/node/2"}, Type: "bar", UID: 1}

	pairs, err := Pairs(a, b)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{From: a, To: b}}, pairs)

	_, err = Pairs(a, b, a)
	assert.Equal(t, ErrCodeInvalidPair, types.CodeOf(err))
}

func TestEdges_Ordered(t *testing.T) {
	a := &Node{Type: "a", UID: 1}
	b := &Node{Type: "b", UID: 1}
	c := &Node{Type: "c", UID: 1}

	pairs := Edges(map[*Node]*Node{c: a, a: b, b: c})
	require.Len(t, pairs, 3)
	assert.Same(t, a, pairs[0].From)
	assert.Same(t, b, pairs[1].From)
	assert.Same(t, c, pairs[2].From)
}

func TestRID(t *testing.T) {
	a := &Node{Type: "foo", UID: int64(1)}
	b := &Node{Type: "bar", UID: "x"}
	assert.Equal(t, "-foo/1->bar/x", RID(a, b))
	assert.NotEqual(t, RID(a, b), RID(b, a))
}
