package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/graphmap/internal/ogm"
)

func (c *cli) newQueryCmd() *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "query STATEMENT",
		Short: "Run a Cypher statement and classify its rows",
		Long: `Run a Cypher statement. Each row is shown as a scalar, node,
relationship, path or list; rows the client cannot classify are
skipped.`,
		Example: `  graphmap query 'MATCH (n) WHERE n.type = $type RETURN n' --param type=Host`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments("param", params)
			if err != nil {
				return err
			}
			rows, err := c.client.Query(cmd.Context(), args[0], values)
			if err != nil {
				return err
			}

			f := c.formatter(cmd)
			if c.jsonOutput() {
				views := make([]map[string]any, 0, len(rows))
				for _, v := range rows {
					views = append(views, viewValue(v))
				}
				return f.JSON(views)
			}
			table := make([][]string, 0, len(rows))
			for i, v := range rows {
				table = append(table, []string{strconv.Itoa(i + 1), v.Kind.String(), describeValue(v)})
			}
			return f.Table([]string{"row", "kind", "value"}, table)
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Statement parameter as key=value (repeatable)")
	return cmd
}

func (c *cli) newPathsCmd() *cobra.Command {
	var maxDepth int
	cmd := &cobra.Command{
		Use:     "paths FROM TO",
		Short:   "List directed paths between two nodes",
		Example: `  graphmap paths Host/web-1 Database/orders --max-depth 3`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ends := make([]*ogm.Node, 0, 2)
			for _, arg := range args {
				typ, uid, err := parseNodeKey(arg)
				if err != nil {
					return err
				}
				n, err := c.findNode(cmd, typ, uid)
				if err != nil {
					return err
				}
				ends = append(ends, n)
			}

			paths, err := c.client.Paths(cmd.Context(), ends[0], ends[1], maxDepth)
			if err != nil {
				return err
			}

			f := c.formatter(cmd)
			if c.jsonOutput() {
				views := make([]pathView, 0, len(paths))
				for _, p := range paths {
					views = append(views, viewPath(p))
				}
				return f.JSON(views)
			}
			rows := make([][]string, 0, len(paths))
			for _, p := range paths {
				rows = append(rows, []string{strconv.Itoa(p.Length()), describePath(p)})
			}
			return f.Table([]string{"length", "path"}, rows)
		},
	}
	cmd.Flags().IntVarP(&maxDepth, "max-depth", "d", ogm.DefaultMaxDepth, "Maximum number of hops")
	return cmd
}
