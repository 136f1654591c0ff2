package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/notegraph/internal/models"
	"github.com/starford/notegraph/internal/testutil"
	"github.com/starford/notegraph/internal/view"
)

func testServer(t *testing.T) (*Server, *view.View) {
	t.Helper()
	cfg := view.DefaultConfig()
	cfg.Layout.Seed = 9
	v := view.New(cfg, view.WithID("mcp-view"))
	if err := v.Update(testutil.Notes()); err != nil {
		t.Fatal(err)
	}
	return New(v, "test"), v
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
	case "graph_snapshot":
		result, err = srv.graphSnapshot(ctx, req)
	case "note_links":
		result, err = srv.noteLinks(ctx, req)
	case "similar_notes":
		result, err = srv.similarNotes(ctx, req)
	case "select_note":
		result, err = srv.selectNote(ctx, req)
	case "restart_layout":
		result, err = srv.restartLayout(ctx, req)
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

func TestGraphSnapshot(t *testing.T) {
	srv, _ := testServer(t)
	var s view.Snapshot
	if err := json.Unmarshal([]byte(resultText(callTool(t, srv, "graph_snapshot", nil))), &s); err != nil {
		t.Fatal(err)
	}
	if s.View != "mcp-view" || len(s.Nodes) != 3 || len(s.Links) != 2 {
		t.Errorf("snapshot = %+v", s)
	}
}

func TestNoteLinks(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "note_links", map[string]interface{}{"id": "C"})
	var links []models.SimilarityLink
	if err := json.Unmarshal([]byte(resultText(r)), &links); err != nil {
		t.Fatal(err)
	}
	if len(links) != 1 || links[0].Other("C") != "B" || links[0].SharedTokens[0] != "cherry" {
		t.Errorf("links = %+v", links)
	}

	if r := callTool(t, srv, "note_links", map[string]interface{}{"id": "nope"}); !r.IsError {
		t.Error("expected error for unknown note")
	}
	if r := callTool(t, srv, "note_links", map[string]interface{}{}); !r.IsError {
		t.Error("expected error for missing id")
	}
}

func TestSimilarNotes(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "similar_notes", map[string]interface{}{"id": "B"})
	var got []view.Neighbor
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "A" || got[0].Weight != 2 || got[1].ID != "C" {
		t.Errorf("similar = %+v", got)
	}

	r = callTool(t, srv, "similar_notes", map[string]interface{}{"id": "B", "limit": 1})
	_ = json.Unmarshal([]byte(resultText(r)), &got)
	if len(got) != 1 {
		t.Errorf("limited = %+v", got)
	}
}

func TestSelectNoteToggles(t *testing.T) {
	srv, v := testServer(t)
	if text := resultText(callTool(t, srv, "select_note", map[string]interface{}{"id": "A"})); text != "expanded: A" {
		t.Errorf("first select = %q", text)
	}
	if text := resultText(callTool(t, srv, "select_note", map[string]interface{}{"id": "B"})); text != "expanded: B" {
		t.Errorf("second select = %q", text)
	}
	if v.Expanded() != "B" {
		t.Errorf("expanded = %q", v.Expanded())
	}
	if text := resultText(callTool(t, srv, "select_note", map[string]interface{}{"id": "B"})); text != "collapsed: B" {
		t.Errorf("toggle = %q", text)
	}
	r := callTool(t, srv, "select_note", map[string]interface{}{"id": "ghost"})
	if !r.IsError || !strings.Contains(resultText(r), "not found") {
		t.Errorf("unknown select = %+v", r)
	}
}

func TestRestartLayout(t *testing.T) {
	srv, v := testServer(t)
	for !v.Settled() {
		v.Tick()
	}
	if text := resultText(callTool(t, srv, "restart_layout", nil)); text != "restarted" {
		t.Errorf("restart = %q", text)
	}
	if v.Settled() {
		t.Error("layout still settled")
	}
}

func TestRulesResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readRulesResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != rulesURI || !strings.Contains(tc.Text, "weight") {
		t.Errorf("resource = %+v", contents)
	}
}
