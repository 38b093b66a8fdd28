package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/difr/internal/samplegen"
	"github.com/okian/difr/pkg/logger"
)

func newGenSamplesCmd() *cobra.Command {
	cfg := samplegen.DefaultConfig("")
	cmd := &cobra.Command{
		Use:   "gen-samples",
		Short: "Write synthetic audit files for the dir source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithOptions(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
				return err
			}
			stats, err := samplegen.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d files to %s (%d of %d scores NaN)\n",
				stats.FilesWritten, cfg.Dir, stats.NaNScores, stats.Scores)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Dir, "dir", "", "output directory (required)")
	f.StringSliceVar(&cfg.Models, "models", cfg.Models, "model identifiers, org/name")
	f.StringSliceVar(&cfg.Providers, "providers", cfg.Providers, "provider names")
	f.IntVar(&cfg.Runs, "runs", cfg.Runs, "files per model")
	f.DurationVar(&cfg.Interval, "interval", cfg.Interval, "time between runs of a model")
	f.Float64Var(&cfg.NaNRate, "nan-rate", cfg.NaNRate, "probability a score is written as NaN")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent writers")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}
