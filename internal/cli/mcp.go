package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AIxMath/Acorn-MCP/internal/mcp"
	"github.com/AIxMath/Acorn-MCP/internal/store"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for theorem and definition management",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM assistants
add, retrieve, and list Acorn theorems and definitions, fetch the syntax
reference, and lint Acorn source.

The server communicates via stdio (standard MCP transport).

Example:
  acorn-mcp mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	fmt.Fprintf(os.Stderr, "Acorn MCP Server\n")
	fmt.Fprintf(os.Stderr, "Database: %s\n\n", cfg.Database.Path)

	return mcp.NewServer(st, Version).Serve(context.Background())
}
