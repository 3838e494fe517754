package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/graphmap/cmd/graphmap/internal"
	"github.com/zero-day-ai/graphmap/internal/loader"
	"github.com/zero-day-ai/graphmap/internal/ogm"
)

func (c *cli) newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the store is reachable",
		Long: `Ping the store once through a short-lived handle and print its
health. The status is printed even when the store is unreachable.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, probeErr := c.mgr.Probe(cmd.Context())

			f := c.formatter(cmd)
			var err error
			if c.jsonOutput() {
				err = f.JSON(status)
			} else {
				err = f.Table([]string{"state", "version", "latency", "driver"}, [][]string{{
					status.State.String(),
					status.Version,
					status.Latency.Round(time.Microsecond).String(),
					string(c.cfg.Store.Driver),
				}})
			}
			if probeErr != nil {
				return probeErr
			}
			return err
		},
	}
}

func (c *cli) newPurgeCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge [TYPE]",
		Short: "Delete nodes of a type, or every node, with their relationships",
		Long: `Delete every node of TYPE, or every node when TYPE is omitted or
"*", together with the relationships touching them. Nodes are
deleted in pages; an interrupted purge leaves earlier pages deleted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := argOr(args, 0, ogm.AllTypes)
			if c.cfg.Purge.RequireConfirm && !yes {
				return internal.NewCLIError(internal.ExitError,
					fmt.Sprintf("refusing to purge %q without --yes", pattern))
			}

			stats, err := c.client.Purge(cmd.Context(), pattern)
			if err != nil {
				return err
			}

			f := c.formatter(cmd)
			if c.jsonOutput() {
				return f.JSON(map[string]any{
					"pattern":       pattern,
					"pages":         stats.Pages,
					"nodes":         stats.Nodes,
					"relationships": stats.Relationships,
				})
			}
			if c.flags.IsQuiet() {
				return nil
			}
			return f.Success(fmt.Sprintf("purged %d nodes and %d relationships in %d pages",
				stats.Nodes, stats.Relationships, stats.Pages))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the purge")
	return cmd
}

func (c *cli) newLoadCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "load FILE",
		Short: "Load a YAML seed graph",
		Long: `Create the nodes and edges of a YAML seed file with a pool of
workers, each bound to its own store handle. Loading is idempotent;
items that fail are reported and the rest are still written.`,
		Example: `  graphmap load inventory.yaml --workers 8`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := loader.LoadSeedFile(args[0])
			if err != nil {
				return internal.WrapError(internal.ExitError, "failed to read seed", err)
			}
			if !cmd.Flags().Changed("workers") {
				workers = c.cfg.Loader.Workers
			}

			l := loader.New(c.client, c.mgr,
				loader.WithWorkers(workers),
				loader.WithLogger(c.logger),
			)
			result, err := l.Load(cmd.Context(), seed)
			if err != nil {
				return err
			}

			f := c.formatter(cmd)
			if c.jsonOutput() {
				errs := make([]string, 0, len(result.Errors))
				for _, e := range result.Errors {
					errs = append(errs, e.Error())
				}
				if err := f.JSON(map[string]any{
					"nodes":         result.Nodes,
					"relationships": result.Relationships,
					"errors":        errs,
				}); err != nil {
					return err
				}
			} else {
				for _, e := range result.Errors {
					_ = f.Failure(e.Error())
				}
				if !c.flags.IsQuiet() {
					_ = f.Success(fmt.Sprintf("loaded %d nodes and %d relationships",
						result.Nodes, result.Relationships))
				}
			}
			if result.HasErrors() {
				return internal.NewCLIError(internal.ExitConflict,
					fmt.Sprintf("%d seed items failed", len(result.Errors)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", loader.DefaultWorkers, "Concurrent workers (default from config)")
	return cmd
}
