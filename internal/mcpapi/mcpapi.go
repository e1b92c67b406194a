// Package mcpapi exposes vecdb.Database as an MCP tool server, in the exact
// shape of the teacher's internal/api/mcp.go: server.NewMCPServer, mcp.NewTool
// option builders, and server.ToolHandlerFunc closures over a small deps struct
// returning mcpText/mcpError results. This is a second, independent adapter over
// the same core the HTTP surface uses — it does not replace it.
package mcpapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/prantlf/litevec/internal/vecdb"
)

// Deps holds the dependencies of the MCP tool handlers.
type Deps struct {
	DB *vecdb.Database
}

// NewServer creates an MCP server with the vecdb_query, vecdb_insert, and
// vecdb_list_collections tools registered.
func NewServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"litevec",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("litevec — embeddable vector database for similarity search over named collections."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("vecdb_query",
			mcp.WithDescription("Run a KNN similarity search over every embedding of a named collection; no metadata filter is applied."),
			mcp.WithString("collection", mcp.Description("Collection name"), mcp.Required()),
			mcp.WithArray("vector", mcp.Description("Query vector, matching the collection's dimension"), mcp.Required()),
			mcp.WithNumber("k", mcp.Description("Number of results to return (default 1)")),
		),
		vecdbQuery(deps),
	)

	s.AddTool(
		mcp.NewTool("vecdb_insert",
			mcp.WithDescription("Insert a single embedding into a named collection."),
			mcp.WithString("collection", mcp.Description("Collection name"), mcp.Required()),
			mcp.WithString("id", mcp.Description("Unique identifier for the embedding"), mcp.Required()),
			mcp.WithArray("vector", mcp.Description("Embedding vector, matching the collection's dimension"), mcp.Required()),
		),
		vecdbInsert(deps),
	)

	s.AddTool(
		mcp.NewTool("vecdb_list_collections",
			mcp.WithDescription("List every collection name currently held by the database."),
		),
		vecdbListCollections(deps),
	)

	return s
}

func vecdbQuery(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("collection")
		if err != nil {
			return mcpError("collection is required"), nil
		}

		vector, err := floatArg(req, "vector")
		if err != nil {
			return mcpError(err.Error()), nil
		}

		k := req.GetInt("k", 1)
		if k <= 0 {
			k = 1
		}

		deps.DB.RLock()
		c, err := deps.DB.Get(name)
		var dimension int
		var results []vecdb.SimilarityResult
		if err == nil {
			dimension = c.Dimension
			if len(vector) == dimension {
				results = c.Query(nil, vector, k)
			}
		}
		deps.DB.RUnlock()
		if err != nil {
			return mcpError(fmt.Sprintf("collection %q not found", name)), nil
		}
		if len(vector) != dimension {
			return mcpError(fmt.Sprintf("query vector has dimension %d, collection has dimension %d", len(vector), dimension)), nil
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func vecdbInsert(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("collection")
		if err != nil {
			return mcpError("collection is required"), nil
		}
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}

		vector, err := floatArg(req, "vector")
		if err != nil {
			return mcpError(err.Error()), nil
		}

		deps.DB.Lock()
		defer deps.DB.Unlock()

		c, err := deps.DB.Get(name)
		if err != nil {
			return mcpError(fmt.Sprintf("collection %q not found", name)), nil
		}
		if err := c.Insert(vecdb.Embedding{ID: id, Vector: vector}); err != nil {
			return mcpError(fmt.Sprintf("insert failed: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("inserted %s into %s", id, name)), nil
	}
}

func vecdbListCollections(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		deps.DB.RLock()
		names := deps.DB.List()
		deps.DB.RUnlock()

		b, err := json.Marshal(names)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal collection names: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

// floatArg reads a JSON array argument and converts it to a float32 vector.
// mcp-go decodes tool call arguments from JSON, so a numeric array arrives as
// []interface{} of float64s regardless of the schema's declared item type.
func floatArg(req mcp.CallToolRequest, key string) ([]float32, error) {
	raw, ok := req.GetArguments()[key]
	if !ok {
		return nil, fmt.Errorf("%s is required", key)
	}
	items, ok := raw.([]interface{})
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%s must be a non-empty array of numbers", key)
	}
	vector := make([]float32, len(items))
	for i, item := range items {
		f, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is not a number", key, i)
		}
		vector[i] = float32(f)
	}
	return vector, nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
