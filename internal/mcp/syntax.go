package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/AIxMath/Acorn-MCP/internal/linter"
)

// AddSyntaxTools registers get_acorn_syntax and check_acorn_syntax. These
// need no store; they operate on the embedded reference and raw source text.
func AddSyntaxTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool(
		"get_acorn_syntax",
		mcp.WithDescription("Return the condensed Acorn syntax reference"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(linter.SyntaxReference()), nil
	})

	s.AddTool(mcp.NewTool(
		"check_acorn_syntax",
		mcp.WithDescription("Check Acorn source text for common syntax issues"),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Acorn code to validate")),
	), createCheckSyntaxHandler())
}

func createCheckSyntaxHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		source, _ := args["source"].(string)
		if source == "" {
			return mcp.NewToolResultError("source parameter is required"), nil
		}

		report := linter.CheckSyntax(source)
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
