package ogm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/zero-day-ai/graphmap/internal/cypher"
	"github.com/zero-day-ai/graphmap/internal/store"
	"github.com/zero-day-ai/graphmap/internal/types"
)

// AllTypes selects every node in Nodes, CountNodes and Purge.
const AllTypes = "*"

// NodeRef identifies a node by its store URL without loading it.
type NodeRef struct {
	URL string
}

// Equal reports whether both refs address the same node.
func (r NodeRef) Equal(other NodeRef) bool {
	return r.URL == other.URL
}

// ID returns the store id at the end of the URL.
func (r NodeRef) ID() string {
	return store.EntityID(r.URL)
}

// IsZero reports whether the ref is empty.
func (r NodeRef) IsZero() bool {
	return r.URL == ""
}

func (r NodeRef) String() string {
	return r.URL
}

// Node is a loaded node. Reserved attributes are fields; Attrs holds the
// rest and never contains a reserved key.
type Node struct {
	NodeRef

	Type      string
	UID       any
	CreatedAt any
	UpdatedAt any
	Attrs     map[string]any
}

// Ref returns the reference to n.
func (n *Node) Ref() NodeRef {
	return n.NodeRef
}

// UUID is the node's identity across types: "<type>/<uid>".
func (n *Node) UUID() string {
	return n.Type + "/" + fmt.Sprint(n.UID)
}

// Created returns created_at as a time. It reports false when the node
// carries none.
func (n *Node) Created() (time.Time, bool) {
	return EpochTime(n.CreatedAt)
}

// Updated returns updated_at as a time.
func (n *Node) Updated() (time.Time, bool) {
	return EpochTime(n.UpdatedAt)
}

// Get returns one attribute, reserved keys included.
func (n *Node) Get(key string) (any, bool) {
	switch key {
	case KeyType:
		return n.Type, true
	case KeyUID:
		return n.UID, n.UID != nil
	case KeyCreatedAt:
		return n.CreatedAt, n.CreatedAt != nil
	case KeyUpdatedAt:
		return n.UpdatedAt, n.UpdatedAt != nil
	}
	v, ok := n.Attrs[key]
	return v, ok
}

// Attributes returns every attribute as the store holds it, reserved keys
// included. The map is a copy.
func (n *Node) Attributes() map[string]any {
	return n.wire()
}

func (n *Node) wire() map[string]any {
	out := make(map[string]any, len(n.Attrs)+4)
	for k, v := range n.Attrs {
		out[k] = v
	}
	out[KeyType] = n.Type
	if n.UID != nil {
		out[KeyUID] = n.UID
	}
	if n.CreatedAt != nil {
		out[KeyCreatedAt] = n.CreatedAt
	}
	if n.UpdatedAt != nil {
		out[KeyUpdatedAt] = n.UpdatedAt
	}
	return out
}

// Decode copies the extension attributes into out, a pointer to a struct or
// map. Struct fields are matched by their `attr` tag, then by name; values
// are converted weakly, so a stored "8080" fills an int field.
func (n *Node) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "attr",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return types.WrapError(ErrCodeInvalidNode, "failed to build attribute decoder", err)
	}
	if err := dec.Decode(n.Attrs); err != nil {
		return types.WrapError(ErrCodeInvalidNode, "failed to decode attributes of "+n.UUID(), err)
	}
	return nil
}

// nodeFromData splits wire attributes into reserved fields and Attrs.
func nodeFromData(self string, data map[string]any) *Node {
	n := &Node{
		NodeRef: NodeRef{URL: self},
		Attrs:   make(map[string]any, len(data)),
	}
	for k, v := range data {
		switch k {
		case KeyType:
			n.Type, _ = v.(string)
			if n.Type == "" && v != nil {
				n.Type = fmt.Sprint(v)
			}
		case KeyUID:
			n.UID = v
		case KeyCreatedAt:
			n.CreatedAt = v
		case KeyUpdatedAt:
			n.UpdatedAt = v
		default:
			n.Attrs[k] = v
		}
	}
	return n
}

// CreateNode returns the node (typ, uid), creating it with attrs when it
// does not exist. Creating a node that exists with the same attributes,
// timestamps aside, returns the existing node. Any other difference fails
// with ErrConflict.
func (c *Client) CreateNode(ctx context.Context, typ string, uid any, attrs map[string]any) (*Node, error) {
	if typ == "" || uid == nil {
		return nil, types.NewError(ErrCodeInvalidNode, "node type and uid are required")
	}
	s, err := c.store(ctx)
	if err != nil {
		return nil, err
	}

	intended := Normalize(dropReserved(attrs))
	intended[KeyType] = typ
	intended[KeyUID] = normalizeValue(uid)
	intended[KeyCreatedAt] = c.now().Unix()

	if err := c.indexes.EnsureNodeIndex(ctx, s, typ); err != nil {
		return nil, err
	}

	data, err := s.CreateUniqueNode(ctx, typ, KeyUID, intended[KeyUID], intended)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, types.NewError(ErrCodeNodeCreateFailed,
			fmt.Sprintf("store returned no node for %s/%v", typ, uid))
	}

	if diff := conflictingKeys(intended, data.Data); len(diff) > 0 {
		c.logger.DebugContext(ctx, "node create conflict",
			"type", typ,
			"uid", uid,
			"keys", diff,
		)
		return nil, types.WrapError(ErrCodeNodeConflict,
			fmt.Sprintf("node %s/%v exists with different values for %s", typ, uid, strings.Join(diff, ", ")),
			ErrConflict)
	}
	return nodeFromData(data.Self, data.Data), nil
}

// FindNode looks the node (typ, uid) up by its unique index. A missing node
// or a missing index reports false without an error.
func (c *Client) FindNode(ctx context.Context, typ string, uid any) (*Node, bool, error) {
	s, err := c.store(ctx)
	if err != nil {
		return nil, false, err
	}
	found, err := s.FindNodes(ctx, typ, KeyUID, normalizeValue(uid))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(found) == 0 {
		return nil, false, nil
	}
	return nodeFromData(found[0].Self, found[0].Data), true, nil
}

// UpdateNode replaces the node's extension attributes with updates. The
// reserved type, uid and created_at are kept; updated_at is set to now. A
// node known only by its URL has its reserved fields loaded from the store
// first. On success n mirrors what was written.
func (c *Client) UpdateNode(ctx context.Context, n *Node, updates map[string]any) error {
	if n == nil || n.IsZero() {
		return types.NewError(ErrCodeInvalidNode, "cannot update a node without a url")
	}
	s, err := c.store(ctx)
	if err != nil {
		return err
	}

	reserved := n
	if n.Type == "" || n.UID == nil {
		data, err := s.GetNode(ctx, n.URL)
		if err != nil {
			return err
		}
		reserved = nodeFromData(data.Self, data.Data)
		if reserved.Type == "" || reserved.UID == nil {
			return types.NewError(ErrCodeInvalidNode, "node "+n.URL+" has no type or uid")
		}
	}

	next := &Node{
		NodeRef:   n.NodeRef,
		Type:      reserved.Type,
		UID:       reserved.UID,
		CreatedAt: reserved.CreatedAt,
		UpdatedAt: c.now().Unix(),
		Attrs:     Normalize(dropReserved(updates)),
	}
	if err := s.ResetNodeProperties(ctx, n.URL, next.wire()); err != nil {
		return err
	}
	*n = *next
	return nil
}

// DestroyNode deletes the node. It does not remove relationships: the store
// refuses while any remain, reported as ErrHasRelationships. It reports
// false when the node was already gone.
func (c *Client) DestroyNode(ctx context.Context, ref NodeRef) (bool, error) {
	s, err := c.store(ctx)
	if err != nil {
		return false, err
	}
	deleted, err := s.DeleteNode(ctx, ref.URL)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return false, types.WrapError(ErrCodeNodeHasRelationships,
				"node "+ref.URL+" still has relationships", err)
		}
		return false, err
	}
	return deleted, nil
}

// Fetch loads the node behind ref.
func (c *Client) Fetch(ctx context.Context, ref NodeRef) (*Node, error) {
	s, err := c.store(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.GetNode(ctx, ref.URL)
	if err != nil {
		return nil, err
	}
	return nodeFromData(data.Self, data.Data), nil
}

// Nodes returns every node of typ, or every node for AllTypes.
func (c *Client) Nodes(ctx context.Context, typ string) ([]*Node, error) {
	stmt, params := cypher.AllNodes, map[string]any(nil)
	if typ != AllTypes && typ != "" {
		stmt, params = cypher.NodesByType, map[string]any{cypher.ParamType: typ}
	}
	return c.page(ctx, stmt, params)
}

// CountNodes counts the nodes of typ, or every node for AllTypes.
func (c *Client) CountNodes(ctx context.Context, typ string) (int64, error) {
	if typ == AllTypes || typ == "" {
		return c.count(ctx, cypher.CountAllNodes, nil)
	}
	return c.count(ctx, cypher.CountNodesByType, map[string]any{cypher.ParamType: typ})
}

func dropReserved(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		if !isReserved(k) {
			out[k] = v
		}
	}
	return out
}
