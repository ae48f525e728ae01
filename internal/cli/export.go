package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AIxMath/Acorn-MCP/internal/export"
	"github.com/AIxMath/Acorn-MCP/internal/store"
)

var exportOutput string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all items as one dependency-ordered Acorn document",
	Long: `Load every stored item, order them so that dependencies precede
dependents, and write the result as a single annotated Acorn document.

Examples:
  acorn-mcp export
  acorn-mcp export -o acornlib_export.ac`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	result, err := export.Ordered(st)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	doc := export.Render(result)
	if exportOutput == "" {
		fmt.Print(doc)
	} else {
		if err := os.WriteFile(exportOutput, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOutput, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d items to %s\n", result.Stats.TotalItems, exportOutput)
	}

	fmt.Fprintf(os.Stderr, "Exported %d items (%d theorems, %d definitions, %d dependency edges)\n",
		result.Stats.TotalItems, result.Stats.Theorems, result.Stats.Definitions, result.Stats.Dependencies)
	return nil
}
