package ogm

import (
	"context"
	"sort"
	"sync"

	"github.com/zero-day-ai/graphmap/internal/store"
	"github.com/zero-day-ai/graphmap/internal/types"
)

// IndexRegistry memoizes the index names known to exist in the store.
//
// Lookups are memory-safe, but the check-then-create sequence is not
// locked across the store round trip: two goroutines may both create the
// same index. Index creation is idempotent at the store, so this only costs
// a redundant request.
type IndexRegistry struct {
	nodes sync.Map
	rels  sync.Map
}

var defaultRegistry = NewIndexRegistry()

// NewIndexRegistry creates an empty registry.
func NewIndexRegistry() *IndexRegistry {
	return &IndexRegistry{}
}

// DefaultIndexRegistry returns the process-wide registry.
func DefaultIndexRegistry() *IndexRegistry {
	return defaultRegistry
}

// EnsureNodeIndex makes sure the node index name exists, creating it when
// the store does not list it.
func (r *IndexRegistry) EnsureNodeIndex(ctx context.Context, s store.Store, name string) error {
	if _, ok := r.nodes.Load(name); ok {
		return nil
	}
	existing, err := s.ListNodeIndexes(ctx)
	if err != nil {
		return types.WrapError(ErrCodeIndexFailed, "failed to list node indexes", err)
	}
	for known := range existing {
		r.nodes.Store(known, struct{}{})
	}
	if _, ok := existing[name]; !ok {
		if err := s.CreateNodeIndex(ctx, name); err != nil {
			return types.WrapError(ErrCodeIndexFailed, "failed to create node index "+name, err)
		}
		r.nodes.Store(name, struct{}{})
	}
	return nil
}

// EnsureRelationshipIndex is EnsureNodeIndex for relationship indexes.
func (r *IndexRegistry) EnsureRelationshipIndex(ctx context.Context, s store.Store, name string) error {
	if _, ok := r.rels.Load(name); ok {
		return nil
	}
	existing, err := s.ListRelationshipIndexes(ctx)
	if err != nil {
		return types.WrapError(ErrCodeIndexFailed, "failed to list relationship indexes", err)
	}
	for known := range existing {
		r.rels.Store(known, struct{}{})
	}
	if _, ok := existing[name]; !ok {
		if err := s.CreateRelationshipIndex(ctx, name); err != nil {
			return types.WrapError(ErrCodeIndexFailed, "failed to create relationship index "+name, err)
		}
		r.rels.Store(name, struct{}{})
	}
	return nil
}

// NodeIndexes returns the known node index names, sorted.
func (r *IndexRegistry) NodeIndexes() []string {
	return sortedKeys(&r.nodes)
}

// RelationshipIndexes returns the known relationship index names, sorted.
func (r *IndexRegistry) RelationshipIndexes() []string {
	return sortedKeys(&r.rels)
}

// Forget drops every memoized name, e.g. after the store was wiped.
func (r *IndexRegistry) Forget() {
	r.nodes.Clear()
	r.rels.Clear()
}

func sortedKeys(m *sync.Map) []string {
	var names []string
	m.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}
