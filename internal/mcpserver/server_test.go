package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/modeler/internal/modeler"
	"github.com/starford/modeler/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	svc := modeler.NewService(testutil.TestStore(t), nil, testutil.Logger(), "en_US")
	ref, err := svc.StoreConnection(context.Background(), testutil.OrdersDB(t))
	if err != nil {
		t.Fatal(err)
	}
	return New(svc), ref
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_groups":
		result, err = srv.listGroups(ctx, req)
	case "describe_group":
		result, err = srv.describeGroup(ctx, req)
	case "create_group":
		result, err = srv.createGroup(ctx, req)
	case "list_annotation_kinds":
		result, err = srv.listAnnotationKinds(ctx, req)
	case "build_model":
		result, err = srv.buildModel(ctx, req)
	case "get_annotation_contract":
		result, err = srv.getAnnotationContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func createShared(t *testing.T, srv *Server, ref string) {
	t.Helper()
	res := callTool(t, srv, "create_group", map[string]interface{}{
		"content": fmt.Sprintf(testutil.SharedProductGroupYAML, ref),
	})
	if res.IsError {
		t.Fatalf("create_group: %s", resultText(res))
	}
}

func TestCreateAndDescribeGroup(t *testing.T) {
	srv, ref := testServer(t)
	createShared(t, srv, ref)

	res := callTool(t, srv, "describe_group", map[string]interface{}{"name": "shared product group"})
	if res.IsError {
		t.Fatalf("describe_group: %s", resultText(res))
	}
	text := resultText(res)
	for _, want := range []string{"shared_dimension: true", "PRODUCT_DESCRIPTION", "# Summaries"} {
		if !strings.Contains(text, want) {
			t.Errorf("description missing %q:\n%s", want, text)
		}
	}
}

func TestCreateGroupDuplicate(t *testing.T) {
	srv, ref := testServer(t)
	createShared(t, srv, ref)

	res := callTool(t, srv, "create_group", map[string]interface{}{
		"content": fmt.Sprintf(testutil.SharedProductGroupYAML, ref),
	})
	if !res.IsError {
		t.Error("expected error for duplicate group")
	}
}

func TestListGroups(t *testing.T) {
	srv, ref := testServer(t)

	res := callTool(t, srv, "list_groups", nil)
	if resultText(res) != "no groups stored" {
		t.Errorf("empty list = %q", resultText(res))
	}

	createShared(t, srv, ref)
	res = callTool(t, srv, "list_groups", nil)
	if got := resultText(res); got != "shared product group (3 annotations) [shared]" {
		t.Errorf("list = %q", got)
	}
}

func TestDescribeGroupMissing(t *testing.T) {
	srv, _ := testServer(t)

	res := callTool(t, srv, "describe_group", map[string]interface{}{"name": "ghost"})
	if !res.IsError {
		t.Error("expected error for missing group")
	}
}

func TestListAnnotationKinds(t *testing.T) {
	srv, _ := testServer(t)

	text := resultText(callTool(t, srv, "list_annotation_kinds", nil))
	for _, want := range []string{"CREATE_ATTRIBUTE:", "CREATE_DIMENSION_KEY:", "LINK_DIMENSION:", "CREATE_MEASURE:"} {
		if !strings.Contains(text, want) {
			t.Errorf("kinds missing %q:\n%s", want, text)
		}
	}
}

func TestBuildModel(t *testing.T) {
	srv, ref := testServer(t)
	createShared(t, srv, ref)

	res := callTool(t, srv, "build_model", map[string]interface{}{
		"request": fmt.Sprintf(`name: someModel
connection_ref: %s
table: orderfact
auto_model: true
links:
  - name: Product Dim
    shared_dimension: shared product group
    column: PRODUCT_ID
`, ref),
	})
	if res.IsError {
		t.Fatalf("build_model: %s", resultText(res))
	}
	if !json.Valid([]byte(resultText(res))) {
		t.Fatalf("build_model returned invalid JSON:\n%s", resultText(res))
	}
	if !strings.Contains(resultText(res), `"name": "Product Dim"`) {
		t.Errorf("cube missing linked usage:\n%s", resultText(res))
	}
}

func TestBuildModel_BadRequest(t *testing.T) {
	srv, _ := testServer(t)

	res := callTool(t, srv, "build_model", map[string]interface{}{"request": "name: [\n"})
	if !res.IsError {
		t.Error("expected parse error")
	}
	res = callTool(t, srv, "build_model", map[string]interface{}{"request": "name: m\n"})
	if !res.IsError {
		t.Error("expected error for incomplete request")
	}
}

func TestAnnotationContract(t *testing.T) {
	srv, _ := testServer(t)

	text := resultText(callTool(t, srv, "get_annotation_contract", nil))
	if !strings.Contains(text, "shared_dimension") {
		t.Error("contract does not describe shared dimensions")
	}

	contents, err := srv.readContractResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource: %v, %d contents", err, len(contents))
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || tc.URI != contractURI {
		t.Errorf("resource = %+v", contents[0])
	}
}
