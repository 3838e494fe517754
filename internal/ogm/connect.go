package ogm

import (
	"context"
	"fmt"
	"sort"

	"github.com/zero-day-ai/graphmap/internal/types"
)

// DefaultRelationshipName is used by Connect when no name is given.
const DefaultRelationshipName = "connects"

// Pair is one directed edge request.
type Pair struct {
	From *Node
	To   *Node
}

// Link pairs from with to.
func Link(from, to *Node) Pair {
	return Pair{From: from, To: to}
}

// Pairs reads nodes as source, destination, source, destination, ...
func Pairs(nodes ...*Node) ([]Pair, error) {
	if len(nodes)%2 != 0 {
		return nil, types.NewError(ErrCodeInvalidPair,
			fmt.Sprintf("pairs need an even number of nodes, got %d", len(nodes)))
	}
	pairs := make([]Pair, 0, len(nodes)/2)
	for i := 0; i < len(nodes); i += 2 {
		pairs = append(pairs, Pair{From: nodes[i], To: nodes[i+1]})
	}
	return pairs, nil
}

// Edges turns a source-to-destination map into pairs ordered by source and
// then destination uuid.
func Edges(m map[*Node]*Node) []Pair {
	pairs := make([]Pair, 0, len(m))
	for from, to := range m {
		pairs = append(pairs, Pair{From: from, To: to})
	}
	sort.Slice(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.From.UUID() != b.From.UUID() {
			return a.From.UUID() < b.From.UUID()
		}
		return a.To.UUID() < b.To.UUID()
	})
	return pairs
}

// RID is the uniqueness key of the from -> to edge.
func RID(from, to *Node) string {
	return "-" + from.UUID() + "->" + to.UUID()
}

// Connect creates one name edge per pair, at most one per ordered pair of
// nodes. Pairs whose ends are the same node are skipped. When attrs is not
// empty every edge's properties are replaced with attrs plus its rid, so
// the last Connect wins.
//
// The returned relationships follow pair order, skipped pairs excluded.
// Their Attrs hold what was written, or nothing when attrs is empty.
func (c *Client) Connect(ctx context.Context, name string, pairs []Pair, attrs map[string]any) ([]*Relationship, error) {
	if name == "" {
		name = DefaultRelationshipName
	}
	s, err := c.store(ctx)
	if err != nil {
		return nil, err
	}

	rels := make([]*Relationship, 0, len(pairs))
	for i, p := range pairs {
		if p.From == nil || p.To == nil || p.From.IsZero() || p.To.IsZero() {
			return rels, types.NewError(ErrCodeInvalidPair,
				fmt.Sprintf("pair %d has a missing or unsaved node", i))
		}
		if p.From.Equal(p.To.NodeRef) {
			continue
		}

		rid := RID(p.From, p.To)
		if err := c.indexes.EnsureRelationshipIndex(ctx, s, name); err != nil {
			return rels, err
		}
		url, err := s.CreateUniqueRelationship(ctx, name, KeyRID, rid, name, p.From.URL, p.To.URL)
		if err != nil {
			return rels, err
		}

		rel := &Relationship{
			RelationshipRef: RelationshipRef{URL: url},
			Name:            name,
			Start:           p.From.Ref(),
			End:             p.To.Ref(),
			Attrs:           map[string]any{},
		}
		if len(attrs) > 0 {
			props := Normalize(attrs)
			props[KeyRID] = rid
			if err := s.ResetRelationshipProperties(ctx, url, props); err != nil {
				return rels, err
			}
			rel.Attrs = props
		}
		rels = append(rels, rel)
	}
	return rels, nil
}
