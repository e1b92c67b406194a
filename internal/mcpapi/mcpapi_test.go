package mcpapi

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/prantlf/litevec/internal/vecdb"
)

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	return Deps{DB: vecdb.New()}
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPTool_ListCollections(t *testing.T) {
	deps := newTestDeps(t)
	deps.DB.Lock()
	_, err := deps.DB.Create("docs", 3, vecdb.Cosine)
	deps.DB.Unlock()
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	handler := vecdbListCollections(deps)
	result, err := handler(context.Background(), makeCallToolRequest("vecdb_list_collections", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var names []string
	if err := json.Unmarshal([]byte(toolText(t, result)), &names); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if len(names) != 1 || names[0] != "docs" {
		t.Fatalf("expected [docs], got %v", names)
	}
}

func TestMCPTool_InsertAndQuery(t *testing.T) {
	deps := newTestDeps(t)
	deps.DB.Lock()
	_, err := deps.DB.Create("docs", 3, vecdb.Cosine)
	deps.DB.Unlock()
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	insert := vecdbInsert(deps)
	result, err := insert(context.Background(), makeCallToolRequest("vecdb_insert", map[string]interface{}{
		"collection": "docs",
		"id":         "a",
		"vector":     []interface{}{1.0, 0.0, 0.0},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	query := vecdbQuery(deps)
	result, err = query(context.Background(), makeCallToolRequest("vecdb_query", map[string]interface{}{
		"collection": "docs",
		"vector":     []interface{}{1.0, 0.0, 0.0},
		"k":          float64(1),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}

	var results []vecdb.SimilarityResult
	if err := json.Unmarshal([]byte(toolText(t, result)), &results); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if len(results) != 1 || results[0].Embedding.ID != "a" {
		t.Fatalf("expected one result for id a, got %v", results)
	}
}

func TestMCPTool_InsertMissingCollection(t *testing.T) {
	deps := newTestDeps(t)

	insert := vecdbInsert(deps)
	result, err := insert(context.Background(), makeCallToolRequest("vecdb_insert", map[string]interface{}{
		"collection": "missing",
		"id":         "a",
		"vector":     []interface{}{1.0, 0.0, 0.0},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing collection")
	}
}

func TestMCPTool_QueryRejectsMissingVector(t *testing.T) {
	deps := newTestDeps(t)
	deps.DB.Lock()
	_, err := deps.DB.Create("docs", 3, vecdb.Cosine)
	deps.DB.Unlock()
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	query := vecdbQuery(deps)
	result, err := query(context.Background(), makeCallToolRequest("vecdb_query", map[string]interface{}{
		"collection": "docs",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing vector")
	}
}

func TestMCPTool_QueryRejectsDimensionMismatch(t *testing.T) {
	deps := newTestDeps(t)
	deps.DB.Lock()
	_, err := deps.DB.Create("docs", 3, vecdb.Cosine)
	deps.DB.Unlock()
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	query := vecdbQuery(deps)
	result, err := query(context.Background(), makeCallToolRequest("vecdb_query", map[string]interface{}{
		"collection": "docs",
		"vector":     []interface{}{1.0, 0.0},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for dimension mismatch")
	}
}
