package ogm

import (
	"github.com/zero-day-ai/graphmap/internal/store"
)

// Kind tags a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindNode
	KindRelationship
	KindPath
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindNode:
		return "node"
	case KindRelationship:
		return "relationship"
	case KindPath:
		return "path"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Value is one classified query cell. Only the field matching Kind is set.
type Value struct {
	Kind         Kind
	Scalar       any
	Node         *Node
	Relationship *Relationship
	Path         *Path
	List         []Value
}

// Interface returns the populated field.
func (v Value) Interface() any {
	switch v.Kind {
	case KindNode:
		return v.Node
	case KindRelationship:
		return v.Relationship
	case KindPath:
		return v.Path
	case KindList:
		return v.List
	}
	return v.Scalar
}

// Classify decides what a raw query cell is. Maps with start that parse as
// a path are paths; maps whose self addresses a node or relationship are
// loaded entities; a self of any other shape is malformed and reported as
// false. Everything else is a scalar.
func Classify(raw any) (Value, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Value{Kind: KindScalar, Scalar: raw}, true
	}

	if _, hasStart := m["start"]; hasStart {
		if p, ok := ParsePath(m); ok {
			return Value{Kind: KindPath, Path: p}, true
		}
	}

	self, hasSelf := m["self"]
	if !hasSelf {
		return Value{Kind: KindScalar, Scalar: raw}, true
	}
	url, ok := self.(string)
	if !ok {
		return Value{}, false
	}
	switch store.EntityKind(url) {
	case "node":
		d, ok := store.NodeDataFromMap(m)
		if !ok {
			return Value{}, false
		}
		return Value{Kind: KindNode, Node: nodeFromData(d.Self, d.Data)}, true
	case "relationship":
		d, ok := store.RelationshipDataFromMap(m)
		if !ok {
			return Value{}, false
		}
		return Value{Kind: KindRelationship, Relationship: relationshipFromData(d)}, true
	}
	return Value{}, false
}

// ClassifyRow classifies a result row. One column unwraps to its value;
// more become a KindList. A row with any malformed cell is malformed.
func ClassifyRow(row []any) (Value, bool) {
	switch len(row) {
	case 0:
		return Value{}, false
	case 1:
		return Classify(row[0])
	}
	items := make([]Value, 0, len(row))
	for _, cell := range row {
		v, ok := Classify(cell)
		if !ok {
			return Value{}, false
		}
		items = append(items, v)
	}
	return Value{Kind: KindList, List: items}, true
}
