package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/AIxMath/Acorn-MCP/internal/acorn"
	"github.com/AIxMath/Acorn-MCP/internal/store"
)

// AddTheoremTools registers add_theorem, get_theorem, and list_theorems.
// Like the other Add*Tools functions it is composable with any MCP server.
func AddTheoremTools(s *server.MCPServer, st *store.Store) {
	s.AddTool(mcp.NewTool(
		"add_theorem",
		mcp.WithDescription("Add a new theorem to the database"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the theorem")),
		mcp.WithString("theorem_head",
			mcp.Required(),
			mcp.Description("Statement of the theorem")),
		mcp.WithString("proof",
			mcp.Required(),
			mcp.Description("Proof of the theorem")),
	), createAddTheoremHandler(st))

	s.AddTool(mcp.NewTool(
		"get_theorem",
		mcp.WithDescription("Get a theorem by name"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the theorem to retrieve")),
	), createGetItemHandler(st, "Theorem", theoremKinds))

	s.AddTool(mcp.NewTool(
		"list_theorems",
		mcp.WithDescription("List all theorems in the database"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (1-100, default: 100)")),
		mcp.WithNumber("offset",
			mcp.Description("Number of results to skip")),
	), createListItemsHandler(st, theoremKinds))
}

var theoremKinds = []string{string(acorn.KindTheorem), string(acorn.KindAxiom)}

func createAddTheoremHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		name, _ := args["name"].(string)
		head, _ := args["theorem_head"].(string)
		proof, _ := args["proof"].(string)
		if name == "" || head == "" {
			return mcp.NewToolResultError("name and theorem_head parameters are required"), nil
		}

		theorem := &acorn.Theorem{
			Metadata: acorn.Metadata{Name: name, Kind: acorn.KindTheorem},
			Head:     strings.TrimSpace(head),
			Proof:    strings.TrimSpace(proof),
		}
		theorem.Raw = composeTheoremSource(theorem.Head, theorem.Proof)
		theorem.Source = theorem.Raw
		if theorem.Proof == "" {
			theorem.Kind = acorn.KindAxiom
		}

		item := store.Item{
			Name:   name,
			Kind:   string(theorem.Kind),
			Source: theorem.Source,
		}
		if err := st.AddItem(item); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return mcp.NewToolResultError(fmt.Sprintf("Theorem with name '%s' already exists", name)), nil
			}
			return nil, fmt.Errorf("failed to add theorem: %w", err)
		}

		recordDependencies(st, theorem)

		stored, err := st.GetItem(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read back theorem: %w", err)
		}
		jsonData, err := json.MarshalIndent(stored, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText("Successfully added theorem: " + string(jsonData)), nil
	}
}

// composeTheoremSource reconstructs a full declaration from a statement and
// an optional proof block.
func composeTheoremSource(head, proof string) string {
	if proof == "" {
		return head
	}
	if strings.HasPrefix(proof, "by") {
		return head + " " + proof
	}
	if strings.HasPrefix(proof, "{") {
		return head + " by " + proof
	}
	return head + " by {\n" + proof + "\n}"
}

// recordDependencies analyzes a freshly added item and persists its edges.
// Edge insert failures do not fail the add.
func recordDependencies(st *store.Store, item acorn.Item) {
	deps := acorn.NewAnalyzer().Analyze(item)

	targets := make([]string, 0, len(deps))
	for target := range deps {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	meta := item.Meta()
	for _, target := range targets {
		_ = st.AddDependency(store.Dependency{
			SourceName: meta.Name,
			SourceType: string(meta.Kind),
			TargetName: target,
		})
	}
}

// createGetItemHandler builds a lookup handler restricted to certain kinds.
// label names the item class in user-facing messages ("Theorem", "Definition").
func createGetItemHandler(st *store.Store, label string, kinds []string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		name, _ := args["name"].(string)
		if name == "" {
			return mcp.NewToolResultError("name parameter is required"), nil
		}

		item, err := st.GetItem(name)
		if errors.Is(err, store.ErrNotFound) || (err == nil && !kindMatches(item.Kind, kinds)) {
			return mcp.NewToolResultText(fmt.Sprintf("%s '%s' not found", label, name)), nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", strings.ToLower(label), err)
		}

		jsonData, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

func createListItemsHandler(st *store.Store, kinds []string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := store.MaxPageSize
		offset := 0
		if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
			if v, ok := args["limit"].(float64); ok {
				limit = int(v)
			}
			if v, ok := args["offset"].(float64); ok {
				offset = int(v)
			}
		}

		items, err := st.ListItemsByKinds(kinds, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list items: %w", err)
		}

		jsonData, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

func kindMatches(kind string, kinds []string) bool {
	for _, k := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}
