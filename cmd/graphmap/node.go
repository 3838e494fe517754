package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zero-day-ai/graphmap/cmd/graphmap/internal"
	"github.com/zero-day-ai/graphmap/internal/ogm"
)

func (c *cli) newNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Create, find, update and destroy nodes",
	}
	cmd.AddCommand(
		c.newNodeCreateCmd(),
		c.newNodeFindCmd(),
		c.newNodeUpdateCmd(),
		c.newNodeDestroyCmd(),
		c.newNodeListCmd(),
		c.newNodeCountCmd(),
	)
	return cmd
}

func (c *cli) newNodeCreateCmd() *cobra.Command {
	var attrs []string
	cmd := &cobra.Command{
		Use:   "create TYPE [UID]",
		Short: "Create a node, or match the existing one",
		Long: `Create the node (TYPE, UID). If it already exists with the same
attributes it is returned unchanged; if its attributes differ the
command fails with a conflict. UID defaults to a random UUID.`,
		Example: `  graphmap node create Host web-1 --attr port=443 --attr tls=true`,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments("attr", attrs)
			if err != nil {
				return err
			}
			var uid any = uuid.NewString()
			if len(args) == 2 {
				uid = parseValue(args[1])
			}

			n, err := c.client.CreateNode(cmd.Context(), args[0], uid, values)
			if err != nil {
				return err
			}
			return c.printNodes(cmd, []*ogm.Node{n})
		},
	}
	cmd.Flags().StringArrayVarP(&attrs, "attr", "a", nil, "Attribute as key=value (repeatable)")
	return cmd
}

// findNode resolves (typ, uid) or fails with ExitNotFound.
func (c *cli) findNode(cmd *cobra.Command, typ string, uid any) (*ogm.Node, error) {
	n, ok, err := c.client.FindNode(cmd.Context(), typ, uid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, internal.NewCLIError(internal.ExitNotFound,
			fmt.Sprintf("node %s/%v not found", typ, uid))
	}
	return n, nil
}

func (c *cli) newNodeFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find TYPE UID",
		Short: "Show the node with the given type and uid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.findNode(cmd, args[0], parseValue(args[1]))
			if err != nil {
				return err
			}
			return c.printNodes(cmd, []*ogm.Node{n})
		},
	}
}

func (c *cli) newNodeUpdateCmd() *cobra.Command {
	var attrs []string
	cmd := &cobra.Command{
		Use:   "update TYPE UID",
		Short: "Replace a node's attributes",
		Long: `Replace every non-reserved attribute of the node with the given
ones. type, uid and created_at are kept; updated_at is set to now.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments("attr", attrs)
			if err != nil {
				return err
			}
			n, err := c.findNode(cmd, args[0], parseValue(args[1]))
			if err != nil {
				return err
			}
			if err := c.client.UpdateNode(cmd.Context(), n, values); err != nil {
				return err
			}
			return c.printNodes(cmd, []*ogm.Node{n})
		},
	}
	cmd.Flags().StringArrayVarP(&attrs, "attr", "a", nil, "Attribute as key=value (repeatable)")
	return cmd
}

func (c *cli) newNodeDestroyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "destroy TYPE UID",
		Short: "Delete a node that has no relationships",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.findNode(cmd, args[0], parseValue(args[1]))
			if err != nil {
				return err
			}
			deleted, err := c.client.DestroyNode(cmd.Context(), n.Ref())
			if err != nil {
				return err
			}
			if !deleted {
				return internal.NewCLIError(internal.ExitNotFound, fmt.Sprintf("node %s already deleted", n.UUID()))
			}
			if c.flags.IsQuiet() {
				return nil
			}
			return c.formatter(cmd).Success("destroyed " + n.UUID())
		},
	}
}

func (c *cli) newNodeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [TYPE]",
		Short: "List nodes of a type, or all nodes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := c.client.Nodes(cmd.Context(), argOr(args, 0, ogm.AllTypes))
			if err != nil {
				return err
			}
			return c.printNodes(cmd, nodes)
		},
	}
}

func (c *cli) newNodeCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count [TYPE]",
		Short: "Count nodes of a type, or all nodes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.client.CountNodes(cmd.Context(), argOr(args, 0, ogm.AllTypes))
			if err != nil {
				return err
			}
			return c.printCount(cmd, "node", n)
		},
	}
}

func argOr(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}
