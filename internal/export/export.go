// Package export reconstructs a dependency-respecting total order over a
// stored item set and renders it back into a single Acorn document.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/AIxMath/Acorn-MCP/internal/acorn"
	"github.com/AIxMath/Acorn-MCP/internal/store"
)

// Result is a dependency-ordered view of the item universe.
type Result struct {
	Items []store.Item `json:"items"`
	Stats Stats        `json:"stats"`
}

// Stats summarizes an export pass.
type Stats struct {
	TotalItems   int `json:"total_items"`
	Theorems     int `json:"theorems"`
	Definitions  int `json:"definitions"`
	Dependencies int `json:"dependencies"`
}

// Order sorts items so that dependencies precede dependents. Edges whose
// endpoints are not both present are ignored for ordering. The result is
// deterministic for any given item and edge set: ties break on the
// lexicographically smallest name, and items left over by cycles or
// disconnected remainders are appended sorted by name.
func Order(items []store.Item, edges []store.Dependency) ([]store.Item, error) {
	itemsByName := make(map[string]store.Item, len(items))
	names := make([]string, 0, len(items))
	for _, item := range items {
		if _, seen := itemsByName[item.Name]; seen {
			continue
		}
		itemsByName[item.Name] = item
		names = append(names, item.Name)
	}
	sort.Strings(names)

	// The graph points dependency -> dependent so that a conventional
	// Kahn walk emits dependencies first.
	g := graph.New(graph.StringHash, graph.Directed())
	for _, name := range names {
		if err := g.AddVertex(name); err != nil {
			return nil, fmt.Errorf("failed to add vertex %s: %w", name, err)
		}
	}
	for _, edge := range edges {
		_, sourceKnown := itemsByName[edge.SourceName]
		_, targetKnown := itemsByName[edge.TargetName]
		if !sourceKnown || !targetKnown || edge.SourceName == edge.TargetName {
			continue
		}
		// Parallel edges collapse; an existing edge is not an error.
		_ = g.AddEdge(edge.TargetName, edge.SourceName)
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("failed to build adjacency map: %w", err)
	}

	inDegree := make(map[string]int, len(names))
	for _, name := range names {
		inDegree[name] = 0
	}
	for _, targets := range adjacency {
		for target := range targets {
			inDegree[target]++
		}
	}

	var ready []string
	for _, name := range names {
		if inDegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	ordered := make([]store.Item, 0, len(names))
	visited := make(map[string]bool, len(names))

	for len(ready) > 0 {
		sort.Strings(ready)
		current := ready[0]
		ready = ready[1:]

		ordered = append(ordered, itemsByName[current])
		visited[current] = true

		for dependent := range adjacency[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	// Cycles and disconnected remainders come last, in name order.
	for _, name := range names {
		if !visited[name] {
			ordered = append(ordered, itemsByName[name])
		}
	}

	return ordered, nil
}

// Ordered produces the full export result for a store.
func Ordered(st *store.Store) (*Result, error) {
	items, edges, err := st.AllItemsWithDependencies()
	if err != nil {
		return nil, fmt.Errorf("failed to load items for export: %w", err)
	}

	ordered, err := Order(items, edges)
	if err != nil {
		return nil, err
	}

	stats := Stats{
		TotalItems:   len(ordered),
		Dependencies: len(edges),
	}
	for _, item := range ordered {
		switch item.Kind {
		case string(acorn.KindTheorem), string(acorn.KindAxiom):
			stats.Theorems++
		default:
			stats.Definitions++
		}
	}

	return &Result{Items: ordered, Stats: stats}, nil
}

// Render writes an ordered item set back out as a single Acorn document,
// one commented block per item.
func Render(result *Result) string {
	var b strings.Builder
	b.WriteString("// Acorn MCP Export\n")
	b.WriteString("// Generated from database\n")
	fmt.Fprintf(&b, "// Total items: %d\n\n", result.Stats.TotalItems)

	for _, item := range result.Items {
		fmt.Fprintf(&b, "// %s: %s\n", item.Kind, item.Name)
		if item.FilePath != "" {
			fmt.Fprintf(&b, "// Source: %s:%d\n", item.FilePath, item.LineNumber)
		}
		b.WriteString(item.Source)
		b.WriteString("\n\n")
	}

	return b.String()
}
