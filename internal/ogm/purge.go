package ogm

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/graphmap/internal/cypher"
	"github.com/zero-day-ai/graphmap/internal/store"
	"github.com/zero-day-ai/graphmap/internal/types"
)

// PurgePageSize is the number of nodes deleted per page.
const PurgePageSize = 1000

// PurgeStats reports what Purge deleted.
type PurgeStats struct {
	Pages         int
	Nodes         int
	Relationships int
}

// Purge deletes every node of type pattern, or every node for AllTypes or
// "", together with the relationships touching them.
//
// Each page costs two batches: one listing the relationships of up to
// PurgePageSize nodes, one deleting those relationships and then the nodes.
// A failed page leaves earlier pages deleted.
func (c *Client) Purge(ctx context.Context, pattern string) (PurgeStats, error) {
	var stats PurgeStats
	s, err := c.store(ctx)
	if err != nil {
		return stats, err
	}

	stmt, params := cypher.NodePage, map[string]any{cypher.ParamLimit: int64(PurgePageSize)}
	if pattern != AllTypes && pattern != "" {
		stmt = cypher.NodePageByType
		params[cypher.ParamType] = pattern
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		nodes, err := c.page(ctx, stmt, params)
		if err != nil {
			return stats, err
		}
		if len(nodes) == 0 {
			break
		}

		rels, err := touchingRelationships(ctx, s, nodes)
		if err != nil {
			return stats, err
		}

		ops := make([]store.BatchOp, 0, len(rels)+len(nodes))
		for _, rel := range rels {
			ops = append(ops, store.DeleteRelationshipOp(rel))
		}
		for _, n := range nodes {
			ops = append(ops, store.DeleteNodeOp(n.URL))
		}
		if _, err := s.Batch(ctx, store.NumberOps(ops)...); err != nil {
			return stats, types.WrapError(ErrCodePurgeFailed,
				fmt.Sprintf("failed to delete page %d", stats.Pages+1), err)
		}

		stats.Pages++
		stats.Nodes += len(nodes)
		stats.Relationships += len(rels)
		c.logger.DebugContext(ctx, "purged page",
			"pattern", pattern,
			"page", stats.Pages,
			"nodes", len(nodes),
			"relationships", len(rels),
		)
	}
	return stats, nil
}

func (c *Client) page(ctx context.Context, stmt string, params map[string]any) ([]*Node, error) {
	values, err := c.Query(ctx, stmt, params)
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, len(values))
	for _, v := range values {
		if v.Kind == KindNode {
			nodes = append(nodes, v.Node)
		}
	}
	return nodes, nil
}

// touchingRelationships lists, in one batch, the distinct relationships
// touching any of nodes.
func touchingRelationships(ctx context.Context, s store.Store, nodes []*Node) ([]string, error) {
	ops := make([]store.BatchOp, len(nodes))
	for i, n := range nodes {
		ops[i] = store.GetNodeRelationshipsOp(n.URL)
	}
	results, err := s.Batch(ctx, store.NumberOps(ops)...)
	if err != nil {
		return nil, types.WrapError(ErrCodePurgeFailed, "failed to list relationships", err)
	}

	seen := make(map[string]struct{})
	var urls []string
	for _, res := range results {
		items, ok := res.Body.([]any)
		if !ok {
			continue
		}
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			url, ok := m["self"].(string)
			if !ok {
				continue
			}
			if _, dup := seen[url]; dup {
				continue
			}
			seen[url] = struct{}{}
			urls = append(urls, url)
		}
	}
	return urls, nil
}
