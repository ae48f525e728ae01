// Package importer parses an Acorn library tree and loads the resulting
// items and dependency edges into the store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/AIxMath/Acorn-MCP/internal/acorn"
	"github.com/AIxMath/Acorn-MCP/internal/store"
)

// Options configures an import run.
type Options struct {
	Root     string   // library root directory
	Include  []string // glob patterns for source files
	Ignore   []string // glob patterns to skip
	Workers  int      // parallel parse workers, minimum 1
	DryRun   bool     // parse and count without writing
	Reporter ProgressReporter
}

// Report summarizes an import run.
type Report struct {
	Files   int            `json:"files"`
	Parsed  int            `json:"parsed"`
	Added   int            `json:"added"`
	Skipped int            `json:"skipped"`
	Failed  int            `json:"failed"`
	ByKind  map[string]int `json:"by_kind"`
	Details []string       `json:"details,omitempty"`
}

// Importer drives the parse-and-load pipeline.
type Importer struct {
	store *store.Store
	opts  Options
}

// New creates an importer writing into st. A nil reporter is replaced with
// a no-op one.
func New(st *store.Store, opts Options) *Importer {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Reporter == nil {
		opts.Reporter = NoopReporter{}
	}
	return &Importer{store: st, opts: opts}
}

// Run discovers, parses, and imports the library. Parse failures are
// reported per file and do not abort the run; only discovery and storage
// failures do.
func (im *Importer) Run(ctx context.Context) (*Report, error) {
	reporter := im.opts.Reporter

	reporter.OnDiscoveryStart()
	discovery, err := NewFileDiscovery(im.opts.Root, im.opts.Include, im.opts.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to compile file patterns: %w", err)
	}
	files, err := discovery.DiscoverFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to discover library files: %w", err)
	}
	reporter.OnDiscoveryComplete(len(files))

	report := &Report{
		Files:  len(files),
		ByKind: map[string]int{},
	}

	items, parseErrors := im.parseAll(ctx, files, reporter)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report.Details = append(report.Details, parseErrors...)

	acorn.NewAnalyzer().Enrich(items)
	applyNamePolicy(items)
	report.Parsed = len(items)
	for _, item := range items {
		report.ByKind[string(item.Meta().Kind)]++
	}

	if im.opts.DryRun {
		return report, nil
	}

	reporter.OnImportStart(len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		im.importItem(item, report)
		reporter.OnItemImported(item.Meta().Name)
	}

	return report, nil
}

// parseAll parses files in parallel but returns items in file order, so an
// import over the same tree is deterministic.
func (im *Importer) parseAll(ctx context.Context, files []string, reporter ProgressReporter) ([]acorn.Item, []string) {
	reporter.OnParseStart(len(files))

	parsed := make([][]acorn.Item, len(files))
	errs := make([]string, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(im.opts.Workers)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			parser := acorn.NewParser(im.opts.Root)
			items, _, err := parser.ParseFile(file)
			if err != nil {
				errs[i] = fmt.Sprintf("failed to parse %s: %v", file, err)
				return nil
			}
			parsed[i] = items
			reporter.OnFileParsed(file)
			return nil
		})
	}
	// Workers only return context cancellation; parse failures land in errs.
	_ = g.Wait()

	var items []acorn.Item
	var details []string
	for i := range files {
		items = append(items, parsed[i]...)
		if errs[i] != "" {
			details = append(details, errs[i])
		}
	}
	return items, details
}

// applyNamePolicy stores the simple identifier in the name column for most
// kinds. Attributes members keep their qualified Type.member name so that
// e.g. Nat.range and List.range can coexist.
func applyNamePolicy(items []acorn.Item) {
	for _, item := range items {
		meta := item.Meta()
		identifier := meta.Name
		if idx := strings.LastIndex(identifier, "."); idx >= 0 {
			identifier = identifier[idx+1:]
		}

		switch meta.Kind {
		case acorn.KindAttributesMethod, acorn.KindAttributesConstant:
			// Keep the qualified name.
		default:
			meta.Name = identifier
		}
	}
}

func (im *Importer) importItem(item acorn.Item, report *Report) {
	meta := item.Meta()

	filePath := meta.File
	if rel, err := filepath.Rel(im.opts.Root, filePath); err == nil && !strings.HasPrefix(rel, "..") {
		filePath = filepath.ToSlash(rel)
	}

	identifier := meta.Name
	if idx := strings.LastIndex(identifier, "."); idx >= 0 {
		identifier = identifier[idx+1:]
	}

	err := im.store.AddItem(store.Item{
		UUID:           meta.UUID,
		Name:           meta.Name,
		IdentifierName: identifier,
		Kind:           string(meta.Kind),
		Source:         meta.Source,
		FilePath:       filePath,
		LineNumber:     meta.Line,
	})
	switch {
	case errors.Is(err, store.ErrDuplicate):
		report.Skipped++
		report.Details = append(report.Details,
			fmt.Sprintf("duplicate: %s (%s:%d) [kind=%s]", meta.Name, filePath, meta.Line, meta.Kind))
		return
	case err != nil:
		report.Failed++
		report.Details = append(report.Details,
			fmt.Sprintf("error: %s (%s:%d) [kind=%s]: %v", meta.Name, filePath, meta.Line, meta.Kind, err))
		return
	}
	report.Added++

	for _, target := range sortedDependencies(meta.Dependencies) {
		if addErr := im.store.AddDependency(store.Dependency{
			SourceName: meta.Name,
			SourceType: string(meta.Kind),
			TargetName: target,
		}); addErr != nil {
			report.Details = append(report.Details,
				fmt.Sprintf("error: dependency %s -> %s: %v", meta.Name, target, addErr))
		}
	}
}

func sortedDependencies(deps map[string]bool) []string {
	out := make([]string, 0, len(deps))
	for dep := range deps {
		out = append(out, dep)
	}
	sort.Strings(out)
	return out
}

// Summary renders a short human-readable report, mirroring what the import
// command prints at the end of a run.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Items: added %d, skipped %d, failed %d\n", r.Added, r.Skipped, r.Failed)

	kinds := make([]string, 0, len(r.ByKind))
	for kind := range r.ByKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	if len(kinds) > 0 {
		b.WriteString("Breakdown by kind:\n")
		for _, kind := range kinds {
			fmt.Fprintf(&b, "  %s: %d\n", kind, r.ByKind[kind])
		}
	}

	if len(r.Details) > 0 {
		limit := len(r.Details)
		if limit > 10 {
			limit = 10
		}
		b.WriteString("Skipped/Failed details:\n")
		for _, detail := range r.Details[:limit] {
			fmt.Fprintf(&b, "  %s\n", detail)
		}
	}
	return b.String()
}
