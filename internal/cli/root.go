package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brettbedarf/ffs/adapters"
	"github.com/brettbedarf/ffs/config"
	"github.com/brettbedarf/ffs/filesystem"
	"github.com/brettbedarf/ffs/internal/util"
	"github.com/brettbedarf/ffs/shell"
)

type rootOptions struct {
	storeDir   string
	configPath string
	envFile    string
	backend    string
	verbose    int
	indent     int
	echo       bool
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ffs",
		Short: "Shell over a directory tree stored as flat files",
		Long: `ffs presents a single directory of flat files as a hierarchical tree.

Each file's name encodes its full path with "-" as the separator, so
"-home-alice-notes" is the file notes in directory /home/alice. Directories
exist only as long as some file beneath them does.

Commands are read one per line from stdin. Run "help" inside the shell for
the command list.

Configuration precedence (lowest first):
  defaults, --config file, --env-file or FFS_* environment, flags`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := buildConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.storeDir, "dir", "d", config.DefaultStoreDir, "Store directory holding the flat files")
	f.StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml, .yml or .json)")
	f.StringVar(&opts.envFile, "env-file", "", "Dotenv file with FFS_* variables; the process environment is used when unset")
	f.StringVar(&opts.backend, "backend", config.DefaultBackend, "Store backend: os or memory")
	f.IntVarP(&opts.verbose, "verbose", "v", config.WarnVerbose, "Log verbosity between 1 (error) and 5 (trace)")
	f.IntVar(&opts.indent, "indent", config.DefaultIndent, "Spaces per level in tree output")
	f.BoolVar(&opts.echo, "echo", config.DefaultEchoCommands, "Echo commands when input is not a terminal")
	return cmd
}

// buildConfig layers defaults, the config file, env and explicitly set flags
func buildConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg := config.NewDefaultConfig()

	if opts.configPath != "" {
		override, err := config.LoadConfigOverrideFile(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg.Merge(override)
	}

	envOverride, err := config.LoadEnvOverride(opts.envFile)
	if err != nil {
		return nil, err
	}
	cfg.Merge(envOverride)

	f := cmd.Flags()
	flagOverride := &config.ConfigOverride{}
	if f.Changed("dir") {
		flagOverride.StoreDir = util.Pointer(opts.storeDir)
	}
	if f.Changed("backend") {
		flagOverride.Backend = util.Pointer(opts.backend)
	}
	if f.Changed("verbose") {
		flagOverride.LogLvl = util.Pointer(opts.verbose)
	}
	if f.Changed("indent") {
		flagOverride.Indent = util.Pointer(opts.indent)
	}
	if f.Changed("echo") {
		flagOverride.EchoCommands = util.Pointer(opts.echo)
	}
	cfg.Merge(flagOverride)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("cli")

	store, err := adapters.DefaultRegistry().NewStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	logger.Info().Str("backend", cfg.Backend).Str("dir", cfg.StoreDir).Msg("Store opened")

	tree, report, err := filesystem.Load(store, filesystem.WithIndent(cfg.Indent))
	if err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	if len(report.Skipped) > 0 {
		logger.Warn().Int("skipped", len(report.Skipped)).Msg("Some flat files were not loaded")
	}

	shellOpts := []shell.Option{
		shell.WithInput(cmd.InOrStdin()),
		shell.WithOutput(cmd.OutOrStdout()),
	}
	if bs, ok := store.(*adapters.BillyStore); ok && bs.Dir() != "" {
		lister, err := shell.NewHostLister(bs.Dir(), cfg.HostListCmd)
		if err != nil {
			return err
		}
		shellOpts = append(shellOpts, shell.WithLister(lister))
	}

	return shell.New(cfg, tree, shellOpts...).Run(cmd.Context())
}

// Execute runs the root command until the shell exits or the process is interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd(&rootOptions{}).ExecuteContext(ctx)
}
