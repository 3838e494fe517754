package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/zero-day-ai/graphmap/cmd/graphmap/internal"
	"github.com/zero-day-ai/graphmap/internal/config"
	"github.com/zero-day-ai/graphmap/internal/conn"
	"github.com/zero-day-ai/graphmap/internal/observability"
	"github.com/zero-day-ai/graphmap/internal/ogm"
	"github.com/zero-day-ai/graphmap/internal/store"
	"github.com/zero-day-ai/graphmap/internal/version"
)

const shutdownTimeout = 5 * time.Second

// cli owns the command tree and everything its commands share. The env is
// built in PersistentPreRunE and torn down by Execute.
type cli struct {
	root  *cobra.Command
	flags GlobalFlags

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	tp        *sdktrace.TracerProvider
	mp        *sdkmetric.MeterProvider
	mgr       *conn.Manager
	client    *ogm.Client
}

func newCLI() *cli {
	c := &cli{}
	c.root = &cobra.Command{
		Use:   "graphmap",
		Short: "Graphmap - object graph mapper for Neo4j",
		Long: `Graphmap stores typed nodes and named relationships in a Neo4j
graph through its HTTP API or Bolt, keeping every node unique by
(type, uid) and every edge unique by its endpoints and name.`,
		PersistentPreRunE: c.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	RegisterGlobalFlags(c.root, &c.flags)

	c.root.AddCommand(
		c.newPingCmd(),
		c.newNodeCmd(),
		c.newConnectCmd(),
		c.newRelCmd(),
		c.newQueryCmd(),
		c.newPathsCmd(),
		c.newPurgeCmd(),
		c.newLoadCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)
	return c
}

// Execute runs the command line with signal handling.
func (c *cli) Execute(ctx context.Context, args []string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c.root.SetArgs(args)
	err := c.root.ExecuteContext(ctx)
	if shutdownErr := c.shutdown(); err == nil {
		err = shutdownErr
	}
	return err
}

// needsEnv reports whether cmd talks to the store.
func needsEnv(cmd *cobra.Command) bool {
	for p := cmd; p != nil; p = p.Parent() {
		switch p.Name() {
		case "version", "completion", "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

// setup loads the configuration and builds the logger, telemetry
// providers, connection manager and OGM client.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := c.flags.Validate(); err != nil {
		return err
	}
	if !needsEnv(cmd) {
		return nil
	}

	homeDir := c.flags.HomeDir
	if homeDir == "" {
		homeDir = config.DefaultHomeDir()
	}
	configFile := c.flags.ConfigFile
	if configFile == "" {
		configFile = config.DefaultConfigPath(homeDir)
	}

	loader := config.NewConfigLoader(config.NewValidator())
	var (
		cfg *config.Config
		err error
	)
	if c.flags.ConfigFile != "" {
		cfg, err = loader.Load(configFile)
	} else {
		cfg, err = loader.LoadWithDefaults(configFile)
	}
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to load configuration", err)
	}
	switch {
	case c.flags.IsVerbose():
		cfg.Logging.Level = "debug"
	case c.flags.IsQuiet():
		cfg.Logging.Level = "error"
	}
	c.cfg = cfg

	logger, closer, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to initialize logging", err)
	}
	c.logger, c.logCloser = logger, closer
	slog.SetDefault(logger)

	tp, err := observability.InitTracing(cmd.Context(), cfg.Tracing)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to initialize tracing", err)
	}
	c.tp = tp

	mp, err := observability.InitMetrics(cmd.Context(), cfg.Metrics)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to initialize metrics", err)
	}
	c.mp = mp

	opts := []conn.Option{
		conn.WithLogger(logger),
		conn.WithProbeTimeout(cfg.Conn.ProbeTimeout),
	}
	if cfg.Tracing.Enabled || cfg.Metrics.Enabled {
		tracer := tp.Tracer("graphmap.store")
		storeOpts := []store.TracedStoreOption{store.WithDriver(cfg.Store.Driver)}
		if cfg.Metrics.Enabled {
			storeOpts = append(storeOpts, store.WithMeter(mp.Meter("graphmap.store")))
		}
		opts = append(opts, conn.WithWrapper(func(s store.Store) store.Store {
			return store.NewTracedStore(s, tracer, storeOpts...)
		}))
	}
	c.mgr = conn.NewManager(conn.StoreFactory(cfg.Store, logger), opts...)
	c.client = ogm.NewClient(c.mgr, ogm.WithLogger(logger))

	logger.DebugContext(cmd.Context(), "configuration loaded",
		"config", configFile,
		"driver", string(cfg.Store.Driver),
		"version", version.Version,
	)
	return nil
}

// shutdown releases the env built by setup. It is safe to call when setup
// never ran.
func (c *cli) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if c.mgr != nil {
		errs = append(errs, c.mgr.Close(ctx))
		c.mgr = nil
	}
	if c.tp != nil {
		errs = append(errs, observability.ShutdownTracing(ctx, c.tp))
		c.tp = nil
	}
	if c.mp != nil {
		errs = append(errs, observability.ShutdownMetrics(ctx, c.mp))
		c.mp = nil
	}
	if c.logCloser != nil {
		errs = append(errs, c.logCloser.Close())
		c.logCloser = nil
	}
	return errors.Join(errs...)
}

// formatter writes to the command's stdout in the selected format.
func (c *cli) formatter(cmd *cobra.Command) internal.Formatter {
	return internal.NewFormatter(c.flags.GetOutputFormat(), cmd.OutOrStdout())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.String())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for graphmap.

To load completions:

Bash:

  $ source <(graphmap completion bash)

Zsh:

  $ graphmap completion zsh > "${fpath[1]}/_graphmap"

Fish:

  $ graphmap completion fish | source

PowerShell:

  PS> graphmap completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
