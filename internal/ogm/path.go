package ogm

import (
	"context"

	"github.com/zero-day-ai/graphmap/internal/cypher"
)

// DefaultMaxDepth bounds Paths when no depth is given.
const DefaultMaxDepth = 5

// Member is one element of a Path: a NodeRef or a RelationshipRef.
type Member interface {
	member()
	String() string
}

func (NodeRef) member()         {}
func (RelationshipRef) member() {}

// Path is a traversal result. Members alternate between nodes and
// relationships, starting and ending with a node.
type Path struct {
	Members []Member
}

// Length is the number of relationships in the path.
func (p *Path) Length() int {
	if len(p.Members) == 0 {
		return 0
	}
	return (len(p.Members) - 1) / 2
}

// StartNode returns the first node.
func (p *Path) StartNode() NodeRef {
	if len(p.Members) == 0 {
		return NodeRef{}
	}
	return p.Members[0].(NodeRef)
}

// EndNode returns the last node.
func (p *Path) EndNode() NodeRef {
	if len(p.Members) == 0 {
		return NodeRef{}
	}
	return p.Members[len(p.Members)-1].(NodeRef)
}

// Nodes returns the nodes in traversal order.
func (p *Path) Nodes() []NodeRef {
	nodes := make([]NodeRef, 0, len(p.Members)/2+1)
	for _, m := range p.Members {
		if n, ok := m.(NodeRef); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Relationships returns the relationships in traversal order.
func (p *Path) Relationships() []RelationshipRef {
	rels := make([]RelationshipRef, 0, len(p.Members)/2)
	for _, m := range p.Members {
		if r, ok := m.(RelationshipRef); ok {
			rels = append(rels, r)
		}
	}
	return rels
}

// ParsePath reads a path as the store returns it: start and end node URLs
// plus the nodes and relationships sequences. It reports false when raw is
// not a well-formed path.
func ParsePath(raw map[string]any) (*Path, bool) {
	start, ok := raw["start"].(string)
	if !ok || start == "" {
		return nil, false
	}
	end, ok := raw["end"].(string)
	if !ok || end == "" {
		return nil, false
	}
	nodes, ok := urlList(raw["nodes"])
	if !ok || len(nodes) == 0 {
		return nil, false
	}
	rels, ok := urlList(raw["relationships"])
	if !ok || len(nodes) != len(rels)+1 {
		return nil, false
	}
	if nodes[0] != start || nodes[len(nodes)-1] != end {
		return nil, false
	}

	members := make([]Member, 0, len(nodes)+len(rels))
	for i, n := range nodes {
		members = append(members, NodeRef{URL: n})
		if i < len(rels) {
			members = append(members, RelationshipRef{URL: rels[i]})
		}
	}
	return &Path{Members: members}, true
}

// urlList accepts a sequence of URLs, or of entity objects carrying self.
func urlList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		if strs, ok := v.([]string); ok {
			return strs, true
		}
		return nil, false
	}
	urls := make([]string, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case string:
			urls = append(urls, t)
		case map[string]any:
			self, ok := t["self"].(string)
			if !ok {
				return nil, false
			}
			urls = append(urls, self)
		default:
			return nil, false
		}
	}
	return urls, true
}

// Paths returns the directed paths of 1 to maxDepth hops from one node to
// another. maxDepth <= 0 means DefaultMaxDepth.
func (c *Client) Paths(ctx context.Context, from, to *Node, maxDepth int) ([]*Path, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	values, err := c.Query(ctx, cypher.PathsBetween(maxDepth), map[string]any{
		cypher.ParamFromType: from.Type,
		cypher.ParamFromUID:  from.UID,
		cypher.ParamToType:   to.Type,
		cypher.ParamToUID:    to.UID,
	})
	if err != nil {
		return nil, err
	}
	paths := make([]*Path, 0, len(values))
	for _, v := range values {
		if v.Kind == KindPath {
			paths = append(paths, v.Path)
		}
	}
	return paths, nil
}
