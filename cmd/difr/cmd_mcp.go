package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/difr/internal/adapters/mcp"
	"github.com/okian/difr/pkg/logger"
)

func newMCPCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the leaderboard as MCP tools over stdio",
		Long: `Starts an MCP server over stdin/stdout. Ingestion runs in the background;
tools answer with a loading error until it finishes. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			// stdout carries the protocol.
			cfg, err := loadConfig(ctx, gf, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			svc, err := newService(ctx, cfg)
			if err != nil {
				return err
			}
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			logger.Get().Info(ctx, "starting MCP server over stdio", logger.String("source", cfg.SourceKind))
			return mcp.NewServer(svc, version).Run(ctx)
		},
	}
}
