package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/graphmap/cmd/graphmap/internal"
	"github.com/zero-day-ai/graphmap/internal/ogm"
)

func (c *cli) newConnectCmd() *cobra.Command {
	var (
		name  string
		attrs []string
	)
	cmd := &cobra.Command{
		Use:   "connect FROM TO [FROM TO ...]",
		Short: "Create relationships between existing nodes",
		Long: `Connect each FROM node to the TO node after it. Nodes are written as
Type/uid and must already exist. An edge is unique by its endpoints
and name; connecting twice returns the existing relationship. A node
is never connected to itself.`,
		Example: `  graphmap connect Host/web-1 Service/https --name exposes --attr port=443`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments("attr", attrs)
			if err != nil {
				return err
			}

			nodes := make([]*ogm.Node, 0, len(args))
			for _, arg := range args {
				typ, uid, err := parseNodeKey(arg)
				if err != nil {
					return err
				}
				n, err := c.findNode(cmd, typ, uid)
				if err != nil {
					return err
				}
				nodes = append(nodes, n)
			}
			pairs, err := ogm.Pairs(nodes...)
			if err != nil {
				return internal.WrapError(internal.ExitError, "connect takes FROM TO pairs", err)
			}

			rels, err := c.client.Connect(cmd.Context(), name, pairs, values)
			if err != nil {
				return err
			}
			return c.printRelationships(cmd, rels)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", ogm.DefaultRelationshipName, "Relationship name")
	cmd.Flags().StringArrayVarP(&attrs, "attr", "a", nil, "Attribute as key=value (repeatable)")
	return cmd
}

func (c *cli) newRelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rel",
		Aliases: []string{"relationship"},
		Short:   "List, count and destroy relationships",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list [NAME]",
			Short: "List relationships with a name, or all relationships",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rels, err := c.client.Relationships(cmd.Context(), argOr(args, 0, ogm.AllNames))
				if err != nil {
					return err
				}
				return c.printRelationships(cmd, rels)
			},
		},
		&cobra.Command{
			Use:   "count [NAME]",
			Short: "Count relationships with a name, or all relationships",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := c.client.CountRelationships(cmd.Context(), argOr(args, 0, ogm.AllNames))
				if err != nil {
					return err
				}
				return c.printCount(cmd, "relationship", n)
			},
		},
		&cobra.Command{
			Use:   "destroy URL",
			Short: "Delete a relationship by its URL",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ref := ogm.RelationshipRef{URL: args[0]}
				deleted, err := c.client.DestroyRelationship(cmd.Context(), ref)
				if err != nil {
					return err
				}
				if !deleted {
					return internal.NewCLIError(internal.ExitNotFound, fmt.Sprintf("relationship %s not found", ref.URL))
				}
				if c.flags.IsQuiet() {
					return nil
				}
				return c.formatter(cmd).Success("destroyed relationship " + ref.ID())
			},
		},
	)
	return cmd
}
