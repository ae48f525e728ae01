package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AIxMath/Acorn-MCP/internal/importer"
	"github.com/AIxMath/Acorn-MCP/internal/store"
)

var (
	importDryRun bool
	importWatch  bool
	importQuiet  bool
	importRoot   string
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Parse an Acorn library and load its items into the database",
	Long: `Scan the configured library root for Acorn source files, extract
theorems, definitions, typeclasses, structures, and inductive types with
their dependencies, and write them into the item database.

Examples:
  acorn-mcp import
  acorn-mcp import --dry-run
  acorn-mcp import --watch`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and report counts without writing to the database")
	importCmd.Flags().BoolVar(&importWatch, "watch", false, "keep running and re-import on file changes")
	importCmd.Flags().BoolVarP(&importQuiet, "quiet", "q", false, "suppress progress output")
	importCmd.Flags().StringVar(&importRoot, "root", "", "library root (overrides configuration)")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	root := cfg.Library.Root
	if importRoot != "" {
		root = importRoot
	}
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("library root not found: %w", err)
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	im := importer.New(st, importer.Options{
		Root:     root,
		Include:  cfg.Library.Include,
		Ignore:   cfg.Library.Ignore,
		Workers:  cfg.Import.Workers,
		DryRun:   importDryRun,
		Reporter: NewCLIProgressReporter(importQuiet),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := im.Run(ctx)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if importDryRun {
		fmt.Printf("[dry-run] Parsed %d items from %d files.\n", report.Parsed, report.Files)
	}
	fmt.Print(report.Summary())

	if importWatch && !importDryRun {
		fmt.Fprintf(os.Stderr, "Watching %s for changes (Ctrl-C to stop)...\n", root)
		if err := im.Watch(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("watch failed: %w", err)
		}
	}
	return nil
}
