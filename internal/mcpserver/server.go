// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes graph queries for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notegraph/internal/apperr"
	"github.com/starford/notegraph/internal/models"
	"github.com/starford/notegraph/internal/view"
)

const rulesURI = "notegraph://similarity-rules"

// Graph is the view operations the tools use.
type Graph interface {
	Snapshot() view.Snapshot
	LinksFor(id string) []models.SimilarityLink
	Detail(id string) (view.Detail, error)
	Click(id string) error
	Expanded() string
	Restart()
}

// Server wraps the MCP server with notegraph tools.
type Server struct {
	mcp   *server.MCPServer
	graph Graph
}

// New creates a new MCP server with all tools registered.
func New(g Graph, version string) *Server {
	s := &Server{graph: g}

	s.mcp = server.NewMCPServer(
		"Notegraph",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("graph_snapshot",
		mcp.WithDescription("Current layout: node positions, hover/expanded/fixed flags and weighted links."),
	), s.graphSnapshot)

	s.mcp.AddTool(mcp.NewTool("note_links",
		mcp.WithDescription("Similarity links touching a note, with the shared tokens and tags of each."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.noteLinks)

	s.mcp.AddTool(mcp.NewTool("similar_notes",
		mcp.WithDescription("Notes most similar to the given one, strongest link first."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
	), s.similarNotes)

	s.mcp.AddTool(mcp.NewTool("select_note",
		mcp.WithDescription("Toggle expansion of a note as if it were clicked. "+
			"Selecting a note collapses the previously expanded one."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.selectNote)

	s.mcp.AddTool(mcp.NewTool("restart_layout",
		mcp.WithDescription("Reheat the layout simulation so it settles again."),
	), s.restartLayout)

	s.mcp.AddResource(
		mcp.NewResource(rulesURI, "Similarity Rules",
			mcp.WithResourceDescription("How links between notes are derived and how the layout uses them."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRulesResource,
	)

	return s
}

// ServeStdio serves on stdin/stdout until ctx is cancelled or stdin closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	err := server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) graphSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.graph.Snapshot())
}

func (s *Server) noteLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.graph.Detail(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(s.graph.LinksFor(id))
}

func (s *Server) similarNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 10)
	if limit <= 0 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}
	d, err := s.graph.Detail(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	neighbors := d.Neighbors
	if len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return jsonResult(neighbors)
}

func (s *Server) selectNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.graph.Click(id); err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		case errors.Is(err, apperr.ErrConflict):
			return mcp.NewToolResultError("a node is being dragged; try again after release"), nil
		default:
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	expanded := s.graph.Expanded()
	if expanded == "" {
		return mcp.NewToolResultText(fmt.Sprintf("collapsed: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("expanded: %s", expanded)), nil
}

func (s *Server) restartLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.graph.Restart()
	return mcp.NewToolResultText("restarted"), nil
}

func (s *Server) readRulesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      rulesURI,
			MIMEType: "text/markdown",
			Text:     SimilarityRules,
		},
	}, nil
}
