package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/AIxMath/Acorn-MCP/internal/acorn"
	"github.com/AIxMath/Acorn-MCP/internal/store"
)

// AddDefinitionTools registers add_definition, get_definition, and
// list_definitions.
func AddDefinitionTools(s *server.MCPServer, st *store.Store) {
	s.AddTool(mcp.NewTool(
		"add_definition",
		mcp.WithDescription("Add a new definition to the database"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the definition")),
		mcp.WithString("definition",
			mcp.Required(),
			mcp.Description("The definition text")),
	), createAddDefinitionHandler(st))

	s.AddTool(mcp.NewTool(
		"get_definition",
		mcp.WithDescription("Get a definition by name"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the definition to retrieve")),
	), createGetItemHandler(st, "Definition", definitionKinds))

	s.AddTool(mcp.NewTool(
		"list_definitions",
		mcp.WithDescription("List all definitions in the database"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (1-100, default: 100)")),
		mcp.WithNumber("offset",
			mcp.Description("Number of results to skip")),
	), createListItemsHandler(st, definitionKinds))
}

var definitionKinds = []string{string(acorn.KindDefine)}

func createAddDefinitionHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		name, _ := args["name"].(string)
		definition, _ := args["definition"].(string)
		if name == "" || definition == "" {
			return mcp.NewToolResultError("name and definition parameters are required"), nil
		}
		definition = strings.TrimSpace(definition)

		if err := st.AddItem(store.Item{
			Name:   name,
			Kind:   string(acorn.KindDefine),
			Source: definition,
		}); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return mcp.NewToolResultError(fmt.Sprintf("Definition with name '%s' already exists", name)), nil
			}
			return nil, fmt.Errorf("failed to add definition: %w", err)
		}

		recordDependencies(st, &acorn.Definition{
			Metadata:  acorn.Metadata{Name: name, Kind: acorn.KindDefine, Source: definition},
			Signature: acorn.DefinitionSignature(definition),
		})

		stored, err := st.GetItem(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read back definition: %w", err)
		}
		jsonData, err := json.MarshalIndent(stored, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText("Successfully added definition: " + string(jsonData)), nil
	}
}
