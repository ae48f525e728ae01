package importer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AIxMath/Acorn-MCP/internal/store"
)

// Test Plan:
// - Discovery matches include patterns, honors ignore patterns, sorts output
// - Run parses a small library and persists items plus dependency edges
// - Name policy: simple identifiers except attributes members keep Type.member
// - Dry run counts by kind without touching the store
// - Re-running the same import skips existing items instead of failing
// - Parse failures are reported per file without aborting the run
// - Progress reporters observe every pipeline phase

func writeLibrary(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func openStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "items.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

const natSource = `theorem add_comm(a: Nat, b: Nat) {
    a + b = b + a
} by {
    induction(a)
}

attributes Nat {
    define double(self) -> Nat {
        self + self
    }
}
`

func TestDiscovery(t *testing.T) {
	t.Parallel()

	root := writeLibrary(t, map[string]string{
		"nat.ac":          "theorem t { x }",
		"sub/int.ac":      "theorem t { x }",
		"notes.md":        "not acorn",
		".git/config.ac":  "ignored",
		"build/out.ac":    "ignored",
		"sub/build/x.ac":  "ignored",
	})

	fd, err := NewFileDiscovery(root, []string{"**/*.ac"}, []string{".git/**", "**/build/**", "build/**"})
	require.NoError(t, err)

	files, err := fd.DiscoverFiles()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(root, "nat.ac"), files[0])
	assert.Equal(t, filepath.Join(root, "sub", "int.ac"), files[1])
}

func TestRun_ImportsItemsAndDependencies(t *testing.T) {
	t.Parallel()

	root := writeLibrary(t, map[string]string{"nat.ac": natSource})
	st := openStore(t)

	report, err := New(st, Options{
		Root:    root,
		Include: []string{"**/*.ac"},
		Workers: 2,
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Files)
	assert.Equal(t, 2, report.Parsed)
	assert.Equal(t, 2, report.Added)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Failed)

	theorem, err := st.GetItem("add_comm")
	require.NoError(t, err)
	assert.Equal(t, "theorem", theorem.Kind)
	assert.Equal(t, "nat.ac", theorem.FilePath)
	assert.Equal(t, "add_comm", theorem.IdentifierName)

	// Attributes members keep their qualified name.
	double, err := st.GetItem("Nat.double")
	require.NoError(t, err)
	assert.Equal(t, "attributes_method", double.Kind)
	assert.Equal(t, "double", double.IdentifierName)

	deps, err := st.Dependencies("add_comm")
	require.NoError(t, err)
	targets := make([]string, len(deps))
	for i, d := range deps {
		targets[i] = d.TargetName
	}
	assert.Contains(t, targets, "Nat.add")
	assert.Contains(t, targets, "induction")
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	root := writeLibrary(t, map[string]string{"nat.ac": natSource})
	st := openStore(t)

	report, err := New(st, Options{
		Root:    root,
		Include: []string{"**/*.ac"},
		DryRun:  true,
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Parsed)
	assert.Equal(t, 0, report.Added)
	assert.Equal(t, 1, report.ByKind["theorem"])
	assert.Equal(t, 1, report.ByKind["attributes_method"])

	count, err := st.CountItems("", "")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRun_SkipsDuplicatesOnReimport(t *testing.T) {
	t.Parallel()

	root := writeLibrary(t, map[string]string{"nat.ac": natSource})
	st := openStore(t)

	opts := Options{Root: root, Include: []string{"**/*.ac"}}
	_, err := New(st, opts).Run(context.Background())
	require.NoError(t, err)

	report, err := New(st, opts).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Added)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.NotEmpty(t, report.Details)
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"a.ac": "theorem alpha(x: Nat) {\n    x = x\n} by {\n    refl\n}\n",
		"b.ac": "define beta(n: Nat) -> Nat {\n    n\n}\n",
		"c.ac": "axiom gamma {\n    true\n}\n",
	}
	root := writeLibrary(t, files)

	collect := func(workers int) []string {
		st := openStore(t)
		_, err := New(st, Options{Root: root, Include: []string{"**/*.ac"}, Workers: workers}).Run(context.Background())
		require.NoError(t, err)

		items, err := st.AllItems()
		require.NoError(t, err)
		names := make([]string, len(items))
		for i, item := range items {
			names[i] = item.Name
		}
		return names
	}

	assert.Equal(t, collect(1), collect(4))
}

func TestRun_MalformedFileDoesNotAbort(t *testing.T) {
	t.Parallel()

	root := writeLibrary(t, map[string]string{
		"bad.ac":  "theorem broken {\n    never closed\n",
		"good.ac": "axiom fine {\n    true\n}\n",
	})
	st := openStore(t)

	report, err := New(st, Options{Root: root, Include: []string{"**/*.ac"}}).Run(context.Background())
	require.NoError(t, err)

	// The unclosed block yields no items; the run still imports the rest.
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 1, report.Parsed)
	assert.Equal(t, 1, report.Added)

	_, err = st.GetItem("fine")
	assert.NoError(t, err)
}

type recordingReporter struct {
	mu        sync.Mutex
	discovery bool
	files     int
	parsed    int
	imported  int
}

func (r *recordingReporter) OnDiscoveryStart() {}

func (r *recordingReporter) OnDiscoveryComplete(files int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discovery = true
	r.files = files
}

func (r *recordingReporter) OnParseStart(int) {}

func (r *recordingReporter) OnFileParsed(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsed++
}

func (r *recordingReporter) OnImportStart(int) {}

func (r *recordingReporter) OnItemImported(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.imported++
}

func TestRun_ReportsProgress(t *testing.T) {
	t.Parallel()

	root := writeLibrary(t, map[string]string{"nat.ac": natSource})
	st := openStore(t)

	reporter := &recordingReporter{}
	_, err := New(st, Options{
		Root:     root,
		Include:  []string{"**/*.ac"},
		Reporter: reporter,
	}).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, reporter.discovery)
	assert.Equal(t, 1, reporter.files)
	assert.Equal(t, 1, reporter.parsed)
	assert.Equal(t, 2, reporter.imported)
}

func TestReportSummary(t *testing.T) {
	t.Parallel()

	report := &Report{
		Added:   3,
		Skipped: 1,
		ByKind:  map[string]int{"theorem": 2, "define": 2},
		Details: []string{"duplicate: zero (nat.ac:1) [kind=define]"},
	}

	summary := report.Summary()
	assert.Contains(t, summary, "Items: added 3, skipped 1, failed 0")
	assert.Contains(t, summary, "define: 2")
	assert.Contains(t, summary, "theorem: 2")
	assert.Contains(t, summary, "duplicate: zero")
}
