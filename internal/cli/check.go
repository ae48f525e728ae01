package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AIxMath/Acorn-MCP/internal/linter"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <files...>",
	Short: "Check Acorn source files for common syntax issues",
	Long: `Run the lightweight Acorn syntax checker over one or more source
files. Errors fail the command; warnings do not.

Examples:
  acorn-mcp check nat.ac
  acorn-mcp check src/*.ac`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	failed := 0

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		report := linter.CheckSyntax(string(data))
		for _, diag := range report.Errors {
			fmt.Printf("%s:%d: error: %s\n", path, diag.Line, diag.Message)
		}
		for _, diag := range report.Warnings {
			fmt.Printf("%s:%d: warning: %s\n", path, diag.Line, diag.Message)
		}

		if report.Valid {
			if verbose {
				fmt.Printf("%s: ok\n", path)
			}
		} else {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files have syntax errors", failed, len(args))
	}
	return nil
}
