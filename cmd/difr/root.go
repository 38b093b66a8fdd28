package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/difr/internal/adapters/source"
	service "github.com/okian/difr/internal/app"
	"github.com/okian/difr/internal/config"
	"github.com/okian/difr/pkg/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// globalFlags override the loaded configuration when set.
type globalFlags struct {
	configPath string
	sourceKind string
	dataDir    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	gf := &globalFlags{}
	root := &cobra.Command{
		Use:   "difr",
		Short: "Provider reliability leaderboard for DiFR audit results",
		Long: "difr ingests DiFR audit snapshots once at startup and serves a provider\n" +
			"leaderboard, per-model trend statistics and time series.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&gf.configPath, "config", "", "YAML config file (default $DIFR_CONFIG)")
	pf.StringVar(&gf.sourceKind, "source", "", "audit source: github, dir or azblob")
	pf.StringVar(&gf.dataDir, "data-dir", "", "directory read by the dir source")
	pf.StringVar(&gf.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newServeCmd(gf))
	root.AddCommand(newReportCmd(gf))
	root.AddCommand(newMCPCmd(gf))
	root.AddCommand(newGenSamplesCmd())
	return root
}

// loadConfig layers flag overrides on top of config.Load and sets up the
// global logger writing to logOut.
func loadConfig(ctx context.Context, gf *globalFlags, logOut io.Writer) (*config.Config, error) {
	var opts []config.LoadOption
	if gf.configPath != "" {
		opts = append(opts, config.WithFile(gf.configPath))
	}
	cfg, err := config.Load(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if gf.sourceKind != "" {
		cfg.SourceKind = gf.sourceKind
	}
	if gf.dataDir != "" {
		cfg.DataDir = gf.dataDir
	}
	if gf.logLevel != "" {
		cfg.LogLevel = gf.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.InitWithOptions(logger.WithFormat(cfg.LogFormat), logger.WithOutput(logOut)); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// newService builds the configured source and a service reading from it.
func newService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	src, err := source.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build source: %w", err)
	}
	return service.New(
		service.WithSource(src),
		service.WithLogger(logger.Named("service")),
		service.WithFetchConcurrency(cfg.FetchConcurrency),
		service.WithFetchTimeout(cfg.FetchTimeout),
		service.WithDedupeSize(cfg.DedupeSize),
	), nil
}
