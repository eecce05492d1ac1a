// Package commands implements CLI command handlers for devdup.
package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devdup/internal/config"
	"github.com/Sumatoshi-tech/devdup/pkg/identity"
	"github.com/Sumatoshi-tech/devdup/pkg/mining"
	"github.com/Sumatoshi-tech/devdup/pkg/observability"
	"github.com/Sumatoshi-tech/devdup/pkg/pipeline"
	"github.com/Sumatoshi-tech/devdup/pkg/version"
)

type observabilityInit func(observability.Config) (observability.Providers, error)

// app is the state shared by the subcommands of one invocation.
type app struct {
	configPath string
	noColor    bool
	initObs    observabilityInit

	cfg       *config.Config
	providers observability.Providers
	metrics   *observability.PipelineMetrics
}

// NewRootCommand creates the devdup root command with every subcommand.
func NewRootCommand() *cobra.Command {
	return newRootCommand(observability.Init)
}

func newRootCommand(initObs observabilityInit) *cobra.Command {
	a := &app{initObs: initObs}

	rootCmd := &cobra.Command{
		Use:   "devdup",
		Short: "Find developers who committed under more than one identity",
		Long: `devdup mines the author and committer identities of a git repository,
scores every pair with a Bird heuristic variant and writes candidate tables
for manual review.

Commands:
  mine      Extract the developer identities of a repository
  evaluate  Score identity pairs and write candidate tables
  annotate  Carry review labels over to new candidate tables
  report    Summarize reviewed candidate tables
  prefixes  List the most common email local parts`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: .devdup.yaml in CWD or $HOME)")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newMineCommand(a))
	rootCmd.AddCommand(newEvaluateCommand(a))
	rootCmd.AddCommand(newAnnotateCommand(a))
	rootCmd.AddCommand(newReportCommand(a))
	rootCmd.AddCommand(newPrefixesCommand(a))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// run loads the configuration, starts observability and calls fn. The
// providers are flushed once fn returns.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	a.cfg = cfg

	if a.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	obsCfg, err := observabilityConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.providers, err = a.initObs(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		shutdownErr := a.providers.Shutdown(context.Background())
		if shutdownErr != nil {
			a.providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	a.metrics, err = observability.NewPipelineMetrics(a.providers.Meter)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return fn(ctx)
}

func observabilityConfig(cfg *config.Config, logOutput io.Writer) (observability.Config, error) {
	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return observability.Config{}, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.LogOutput = logOutput

	return obsCfg, nil
}

func (a *app) deps() pipeline.Deps {
	return pipeline.Deps{
		Logger:  a.providers.Logger,
		Tracer:  a.providers.Tracer,
		Metrics: a.metrics,
	}
}

// loadDevs reads the devs table at devsPath, or bootstraps the data folder
// of the repository named by args (the current directory by default). It
// returns the developers and the folder holding their table.
func (a *app) loadDevs(ctx context.Context, args []string, devsPath string) ([]identity.DeveloperRecord, string, error) {
	if devsPath != "" {
		devs, err := mining.ReadDevs(devsPath)
		if err != nil {
			return nil, "", err
		}

		return devs, filepath.Dir(devsPath), nil
	}

	repoPath := "."
	if len(args) > 0 {
		repoPath = args[0]
	}

	ds, err := mining.Bootstrap(ctx, repoPath, a.cfg.Paths.DataRoot, mining.Options{}, a.providers.Logger)
	if err != nil {
		return nil, "", err
	}

	return ds.Devs, ds.Folder, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
