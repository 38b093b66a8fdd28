// Package mcp exposes the leaderboard read API as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okian/difr/internal/adapters/repository"
	"github.com/okian/difr/internal/domain/types"
)

// Reader is the subset of the service the tools call.
type Reader interface {
	Snapshot(ctx context.Context) (*repository.Snapshot, error)
	Leaderboard(ctx context.Context) ([]types.LeaderboardEntry, error)
	Models(ctx context.Context) (types.ModelList, error)
	TrendStats(ctx context.Context, model string) (types.ModelTrends, error)
	TimeSeries(ctx context.Context, model string) (types.ModelSeries, error)
}

// Server wraps the MCP SDK server with the leaderboard tools registered.
type Server struct {
	MCPServer *sdkmcp.Server
	reader    Reader
}

// NewServer creates an MCP server backed by r.
func NewServer(r Reader, version string) *Server {
	s := &Server{
		MCPServer: sdkmcp.NewServer(&sdkmcp.Implementation{Name: "difr", Version: version}, nil),
		reader:    r,
	}
	s.registerTools()
	return s
}

// Run serves over stdio until ctx ends or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "leaderboard",
		Description: "Providers ranked by average exact match rate across every model and run.",
	}, s.handleLeaderboard)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_models",
		Description: "Models present in the corpus, in first-seen order, and the initially selected model.",
	}, s.handleListModels)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "trend_stats",
		Description: "Per-provider average, min, max, latest score and trend for one model.",
	}, s.handleTrendStats)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "time_series",
		Description: "Raw exact match rate per provider for each run of one model, oldest first. Invalid scores are null.",
	}, s.handleTimeSeries)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "ingestion_state",
		Description: "Whether ingestion is loading, ready, or fell back to the built-in sample data.",
	}, s.handleIngestionState)
}

// --- Tool input/output types ---

type emptyInput struct{}

type modelInput struct {
	Model string `json:"model,omitempty" jsonschema:"model identifier, e.g. org/name (default: the selected model)"`
}

type leaderboardInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of entries (default: all)"`
}

type leaderboardOutput struct {
	Entries []types.LeaderboardEntry `json:"entries"`
}

type ingestionStateOutput struct {
	State         string `json:"state"`
	Version       uint64 `json:"version"`
	RunID         string `json:"run_id,omitempty"`
	Source        string `json:"source,omitempty"`
	SelectedModel string `json:"selected_model,omitempty"`
	Records       int    `json:"records"`
	Error         string `json:"error,omitempty"`
}

// --- Handlers ---

func (s *Server) handleLeaderboard(ctx context.Context, _ *sdkmcp.CallToolRequest, in leaderboardInput) (*sdkmcp.CallToolResult, leaderboardOutput, error) {
	if in.Limit < 0 {
		return nil, leaderboardOutput{}, fmt.Errorf("limit must not be negative, got %d", in.Limit)
	}
	entries, err := s.reader.Leaderboard(ctx)
	if err != nil {
		return nil, leaderboardOutput{}, err
	}
	if in.Limit > 0 && in.Limit < len(entries) {
		entries = entries[:in.Limit]
	}
	return nil, leaderboardOutput{Entries: entries}, nil
}

func (s *Server) handleListModels(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, types.ModelList, error) {
	list, err := s.reader.Models(ctx)
	return nil, list, err
}

func (s *Server) handleTrendStats(ctx context.Context, _ *sdkmcp.CallToolRequest, in modelInput) (*sdkmcp.CallToolResult, types.ModelTrends, error) {
	trends, err := s.reader.TrendStats(ctx, in.Model)
	return nil, trends, err
}

// handleTimeSeries returns hand-encoded JSON: points are keyed by provider
// and carry nulls, which an inferred output schema cannot describe.
func (s *Server) handleTimeSeries(ctx context.Context, _ *sdkmcp.CallToolRequest, in modelInput) (*sdkmcp.CallToolResult, any, error) {
	series, err := s.reader.TimeSeries(ctx, in.Model)
	if err != nil {
		return nil, nil, err
	}
	data, err := json.Marshal(series)
	if err != nil {
		return nil, nil, fmt.Errorf("encode time series: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func (s *Server) handleIngestionState(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, ingestionStateOutput, error) {
	snap, err := s.reader.Snapshot(ctx)
	if err != nil {
		return nil, ingestionStateOutput{}, err
	}
	out := snap.Outcome
	res := ingestionStateOutput{
		State:         out.State.String(),
		Version:       snap.Version,
		RunID:         out.RunID,
		Source:        out.Source,
		SelectedModel: out.SelectedModel,
		Records:       len(out.Results),
	}
	if out.Err != nil {
		res.Error = out.Err.Error()
	}
	return nil, res, nil
}
