package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/graphmap/cmd/graphmap/internal"
	"github.com/zero-day-ai/graphmap/internal/ogm"
)

type nodeView struct {
	URL       string         `json:"url"`
	Type      string         `json:"type"`
	UID       any            `json:"uid"`
	CreatedAt any            `json:"created_at,omitempty"`
	UpdatedAt any            `json:"updated_at,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

func viewNode(n *ogm.Node) nodeView {
	return nodeView{
		URL:       n.URL,
		Type:      n.Type,
		UID:       n.UID,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		Attrs:     n.Attributes(),
	}
}

type relationshipView struct {
	URL   string         `json:"url"`
	Name  string         `json:"name"`
	Start string         `json:"start"`
	End   string         `json:"end"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

func viewRelationship(r *ogm.Relationship) relationshipView {
	return relationshipView{
		URL:   r.URL,
		Name:  r.Name,
		Start: r.Start.URL,
		End:   r.End.URL,
		Attrs: r.Attrs,
	}
}

type pathView struct {
	Length        int      `json:"length"`
	Start         string   `json:"start"`
	End           string   `json:"end"`
	Nodes         []string `json:"nodes"`
	Relationships []string `json:"relationships"`
}

func viewPath(p *ogm.Path) pathView {
	v := pathView{
		Length: p.Length(),
		Start:  p.StartNode().URL,
		End:    p.EndNode().URL,
	}
	for _, n := range p.Nodes() {
		v.Nodes = append(v.Nodes, n.URL)
	}
	for _, r := range p.Relationships() {
		v.Relationships = append(v.Relationships, r.URL)
	}
	return v
}

// viewValue renders one query cell for JSON output.
func viewValue(v ogm.Value) map[string]any {
	out := map[string]any{"kind": v.Kind.String()}
	switch v.Kind {
	case ogm.KindNode:
		out["node"] = viewNode(v.Node)
	case ogm.KindRelationship:
		out["relationship"] = viewRelationship(v.Relationship)
	case ogm.KindPath:
		out["path"] = viewPath(v.Path)
	case ogm.KindList:
		items := make([]map[string]any, 0, len(v.List))
		for _, item := range v.List {
			items = append(items, viewValue(item))
		}
		out["list"] = items
	default:
		out["value"] = v.Scalar
	}
	return out
}

// describeValue renders one query cell as a single table column.
func describeValue(v ogm.Value) string {
	switch v.Kind {
	case ogm.KindNode:
		return v.Node.UUID() + " " + v.Node.URL
	case ogm.KindRelationship:
		return v.Relationship.Name + " " + v.Relationship.URL
	case ogm.KindPath:
		return describePath(v.Path)
	case ogm.KindList:
		parts := make([]string, 0, len(v.List))
		for _, item := range v.List {
			parts = append(parts, describeValue(item))
		}
		return "[" + strings.Join(parts, "; ") + "]"
	default:
		return fmt.Sprint(v.Scalar)
	}
}

func describePath(p *ogm.Path) string {
	ids := make([]string, 0, len(p.Members))
	for _, m := range p.Members {
		switch ref := m.(type) {
		case ogm.NodeRef:
			ids = append(ids, "("+ref.ID()+")")
		case ogm.RelationshipRef:
			ids = append(ids, "["+ref.ID()+"]")
		}
	}
	return strings.Join(ids, "->")
}

// formatAttrs renders attributes as sorted key=value pairs.
func formatAttrs(attrs map[string]any) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+fmt.Sprint(attrs[k]))
	}
	return strings.Join(parts, " ")
}

func (c *cli) jsonOutput() bool {
	return c.flags.GetOutputFormat() == internal.FormatJSON
}

func (c *cli) printNodes(cmd *cobra.Command, nodes []*ogm.Node) error {
	f := c.formatter(cmd)
	if c.jsonOutput() {
		views := make([]nodeView, 0, len(nodes))
		for _, n := range nodes {
			views = append(views, viewNode(n))
		}
		return f.JSON(views)
	}
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{n.Type, fmt.Sprint(n.UID), n.URL, formatAttrs(n.Attrs)})
	}
	return f.Table([]string{"type", "uid", "url", "attrs"}, rows)
}

func (c *cli) printRelationships(cmd *cobra.Command, rels []*ogm.Relationship) error {
	f := c.formatter(cmd)
	if c.jsonOutput() {
		views := make([]relationshipView, 0, len(rels))
		for _, r := range rels {
			views = append(views, viewRelationship(r))
		}
		return f.JSON(views)
	}
	rows := make([][]string, 0, len(rels))
	for _, r := range rels {
		rows = append(rows, []string{r.Name, r.Start.ID(), r.End.ID(), r.URL, formatAttrs(r.Attrs)})
	}
	return f.Table([]string{"name", "start", "end", "url", "attrs"}, rows)
}

func (c *cli) printCount(cmd *cobra.Command, what string, n int64) error {
	f := c.formatter(cmd)
	if c.jsonOutput() {
		return f.JSON(map[string]any{"kind": what, "count": n})
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatInt(n, 10))
	return err
}
