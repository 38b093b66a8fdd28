package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	service "github.com/okian/difr/internal/app"
	"github.com/okian/difr/internal/domain/types"
)

// Report output formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

type reportFlags struct {
	format   string
	model    string
	noSeries bool
}

// report is the document printed by `difr report`.
type report struct {
	State         string                   `json:"state" yaml:"state"`
	Source        string                   `json:"source" yaml:"source"`
	RunID         string                   `json:"runId" yaml:"runId"`
	SelectedModel string                   `json:"selectedModel" yaml:"selectedModel"`
	Error         string                   `json:"error,omitempty" yaml:"error,omitempty"`
	Leaderboard   []types.LeaderboardEntry `json:"leaderboard" yaml:"leaderboard"`
	Models        []modelReport            `json:"models" yaml:"models"`
}

type modelReport struct {
	Model  string                    `json:"model" yaml:"model"`
	Trends []types.ProviderTrendStat `json:"trends" yaml:"trends"`
	Series []types.TimeSeriesPoint   `json:"series,omitempty" yaml:"series,omitempty"`
}

func newReportCmd(gf *globalFlags) *cobra.Command {
	rf := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run one ingestion and print the leaderboard and per-model views",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, gf, rf)
		},
	}
	f := cmd.Flags()
	f.StringVar(&rf.format, "format", formatJSON, "output format: json or yaml")
	f.StringVar(&rf.model, "model", "", "only report this model")
	f.BoolVar(&rf.noSeries, "no-series", false, "omit time series")
	return cmd
}

func runReport(cmd *cobra.Command, gf *globalFlags, rf *reportFlags) error {
	if rf.format != formatJSON && rf.format != formatYAML {
		return fmt.Errorf("unknown format %q (want json or yaml)", rf.format)
	}
	ctx := cmd.Context()
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
	if _, err := svc.Wait(ctx); err != nil {
		return err
	}

	rep, err := buildReport(ctx, svc, rf)
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), rf.format, rep)
}

func buildReport(ctx context.Context, svc *service.Service, rf *reportFlags) (*report, error) {
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := snap.Outcome
	rep := &report{
		State:         out.State.String(),
		Source:        out.Source,
		RunID:         out.RunID,
		SelectedModel: out.SelectedModel,
		Leaderboard:   snap.Leaderboard,
	}
	if out.Err != nil {
		rep.Error = out.Err.Error()
	}

	models := snap.Models
	if rf.model != "" {
		models = []string{rf.model}
	}
	for _, id := range models {
		trends, err := svc.TrendStats(ctx, id)
		if err != nil {
			return nil, err
		}
		mr := modelReport{Model: id, Trends: trends.Stats}
		if !rf.noSeries {
			series, err := svc.TimeSeries(ctx, id)
			if err != nil {
				return nil, err
			}
			mr.Series = series.Points
		}
		rep.Models = append(rep.Models, mr)
	}
	return rep, nil
}

func writeReport(w io.Writer, format string, rep *report) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}
