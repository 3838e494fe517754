package ogm

import (
	"context"

	"github.com/zero-day-ai/graphmap/internal/cypher"
	"github.com/zero-day-ai/graphmap/internal/store"
)

// AllNames selects every relationship in Relationships and
// CountRelationships.
const AllNames = "*"

// RelationshipRef identifies a relationship by its store URL.
type RelationshipRef struct {
	URL string
}

// Equal reports whether both refs address the same relationship.
func (r RelationshipRef) Equal(other RelationshipRef) bool {
	return r.URL == other.URL
}

// ID returns the store id at the end of the URL.
func (r RelationshipRef) ID() string {
	return store.EntityID(r.URL)
}

func (r RelationshipRef) String() string {
	return r.URL
}

// Relationship is a loaded, directed, named edge.
type Relationship struct {
	RelationshipRef

	Name  string
	Start NodeRef
	End   NodeRef
	Attrs map[string]any
}

// Ref returns the reference to r.
func (r *Relationship) Ref() RelationshipRef {
	return r.RelationshipRef
}

// RID returns the uniqueness key, when the relationship carries one.
func (r *Relationship) RID() (string, bool) {
	rid, ok := r.Attrs[KeyRID].(string)
	return rid, ok
}

func relationshipFromData(d store.RelationshipData) *Relationship {
	attrs := make(map[string]any, len(d.Data))
	for k, v := range d.Data {
		attrs[k] = v
	}
	return &Relationship{
		RelationshipRef: RelationshipRef{URL: d.Self},
		Name:            d.Type,
		Start:           NodeRef{URL: d.Start},
		End:             NodeRef{URL: d.End},
		Attrs:           attrs,
	}
}

// FetchRelationship loads the relationship behind ref.
func (c *Client) FetchRelationship(ctx context.Context, ref RelationshipRef) (*Relationship, error) {
	s, err := c.store(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.GetRelationship(ctx, ref.URL)
	if err != nil {
		return nil, err
	}
	return relationshipFromData(*data), nil
}

// Relationships returns every relationship called name, or all of them for
// AllNames.
func (c *Client) Relationships(ctx context.Context, name string) ([]*Relationship, error) {
	stmt, params := cypher.AllRelationships, map[string]any(nil)
	if name != AllNames && name != "" {
		stmt, params = cypher.RelationshipsByName, map[string]any{cypher.ParamName: name}
	}
	values, err := c.Query(ctx, stmt, params)
	if err != nil {
		return nil, err
	}
	rels := make([]*Relationship, 0, len(values))
	for _, v := range values {
		if v.Kind == KindRelationship {
			rels = append(rels, v.Relationship)
		}
	}
	return rels, nil
}

// CountRelationships counts the relationships called name, or all of them
// for AllNames.
func (c *Client) CountRelationships(ctx context.Context, name string) (int64, error) {
	if name == AllNames || name == "" {
		return c.count(ctx, cypher.CountAllRelationships, nil)
	}
	return c.count(ctx, cypher.CountRelationshipsByName, map[string]any{cypher.ParamName: name})
}

// DestroyRelationship deletes the relationship. It reports false when it
// was already gone.
func (c *Client) DestroyRelationship(ctx context.Context, ref RelationshipRef) (bool, error) {
	s, err := c.store(ctx)
	if err != nil {
		return false, err
	}
	return s.DeleteRelationship(ctx, ref.URL)
}
