// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes modeler tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/starford/modeler/internal/annotation"
	"github.com/starford/modeler/internal/modeler"
)

const contractURI = "modeler://annotation-format"

// Server wraps the MCP server with modeler tools.
type Server struct {
	mcp *server.MCPServer
	svc *modeler.Service
}

// New creates a new MCP server with all modeler tools registered.
func New(svc *modeler.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Modeler",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_groups",
		mcp.WithDescription("List stored annotation groups with their annotation counts."),
	), s.listGroups)

	s.mcp.AddTool(mcp.NewTool("describe_group",
		mcp.WithDescription("Return a stored annotation group in the YAML group format, "+
			"followed by a one-line summary of each annotation."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Group name")),
	), s.describeGroup)

	s.mcp.AddTool(mcp.NewTool("create_group",
		mcp.WithDescription("Store a new annotation group. Content MUST follow the group "+
			"format contract. Read it first via the get_annotation_contract tool or the "+
			contractURI+" resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Group document in YAML")),
	), s.createGroup)

	s.mcp.AddTool(mcp.NewTool("list_annotation_kinds",
		mcp.WithDescription("List annotation kinds and the properties each one accepts."),
	), s.listAnnotationKinds)

	s.mcp.AddTool(mcp.NewTool("build_model",
		mcp.WithDescription("Build a model from a fact table. Returns the resulting cube "+
			"as JSON: dimension usages in order, then measures."),
		mcp.WithString("request", mcp.Required(), mcp.Description("Build request in YAML: "+
			"name, connection_ref, table, auto_model, groups, group, links")),
	), s.buildModel)

	s.mcp.AddTool(mcp.NewTool("get_annotation_contract",
		mcp.WithDescription("Returns the annotation group format contract. "+
			"Call this before creating groups to ensure correct structure."),
	), s.getAnnotationContract)

	// Resource: group format contract.
	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Annotation Group Format Contract",
			mcp.WithResourceDescription("YAML format every annotation group must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listGroups(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.ListGroups(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no groups stored"), nil
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		line := fmt.Sprintf("%s (%d annotations)", it.Name, it.Annotations)
		if it.SharedDimension {
			line += " [shared]"
		}
		lines = append(lines, line)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) describeGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.svc.GetGroup(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := annotation.MarshalGroupYAML(g.Group)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	b.Write(doc)
	b.WriteString("\n# Summaries\n")
	for _, sum := range g.Summaries {
		b.WriteString("# - ")
		b.WriteString(sum)
		b.WriteByte('\n')
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) createGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := annotation.ParseGroupYAML([]byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.CreateGroup(ctx, g); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", g.Name)), nil
}

func (s *Server) listAnnotationKinds(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for _, k := range annotation.Kinds() {
		t, err := annotation.New(k)
		if err != nil {
			continue
		}
		names := make([]string, 0, len(t.Properties()))
		for _, p := range t.Properties() {
			names = append(names, p.Name)
		}
		fmt.Fprintf(&b, "%s: %s\n", k, strings.Join(names, ", "))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) buildModel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("request")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var br modeler.BuildRequest
	if err := yaml.Unmarshal([]byte(raw), &br); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parse request: %v", err)), nil
	}
	res, err := s.svc.BuildModel(ctx, br)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := json.MarshalIndent(res.Cube, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode cube: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getAnnotationContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(AnnotationFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     AnnotationFormatContract,
		},
	}, nil
}
