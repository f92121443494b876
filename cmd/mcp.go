package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Seraphli/cc-statusline/internal/config"
	"github.com/Seraphli/cc-statusline/internal/logger"
	"github.com/Seraphli/cc-statusline/internal/statusline"
	"github.com/Seraphli/cc-statusline/internal/transcript"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var McpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run MCP server for Claude Code",
	Args:  cobra.NoArgs,
	RunE:  runMcp,
}

type contextReport struct {
	Segment      string `json:"segment"`
	Tokens       int    `json:"tokens"`
	ContextLimit int    `json:"context_limit"`
	Percent      *int   `json:"percent"`
	Model        string `json:"model,omitempty"`
	Running      bool   `json:"running"`
}

func contextUsage(path string, cfg config.RenderConfig) (contextReport, error) {
	sum, err := transcript.Read(path)
	if err != nil {
		return contextReport{}, err
	}
	cfg.Color = false
	state := statusline.SessionState{TokensUsed: int64(sum.Tokens), HasTokens: sum.HasUsage}
	report := contextReport{
		Segment:      statusline.New(cfg).ContextSegment(state),
		Tokens:       sum.Tokens,
		ContextLimit: cfg.ContextLimit,
		Model:        sum.Model,
		Running:      sum.Running,
	}
	if pct, ok := statusline.UsagePercent(state.TokensUsed, cfg.ContextLimit); ok {
		report.Percent = &pct
	}
	return report, nil
}

func newMcpServer(cfg config.RenderConfig) *server.MCPServer {
	s := server.NewMCPServer("cc-statusline", Version)
	tool := mcp.NewTool("context_usage",
		mcp.WithDescription("Report how much of the context window a Claude Code session has used"),
		mcp.WithString("transcript_path",
			mcp.Required(),
			mcp.Description("Absolute path to the session transcript (.jsonl)"),
		),
	)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("transcript_path")
		if err != nil {
			return mcp.NewToolResultError("transcript_path is required"), nil
		}
		report, err := contextUsage(path, cfg)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Cannot read transcript: %v", err)), nil
		}
		body, err := json.Marshal(report)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	})
	return s
}

func runMcp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Get()
	if err != nil {
		logger.Info(fmt.Sprintf("config invalid, using defaults: %v", err))
	}
	return server.ServeStdio(newMcpServer(cfg.Render))
}
