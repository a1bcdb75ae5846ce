// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the folio pipeline to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/siteservice"
	"github.com/starford/folio/internal/view"
)

// FormatURI is the resource URI of the section format description.
const FormatURI = "folio://frontmatter-format"

// Server wraps the MCP server with folio tools.
type Server struct {
	mcp *server.MCPServer
	svc *siteservice.Service
}

// New creates a new MCP server with all folio tools registered.
func New(svc *siteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"folio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("parse_markdown",
		mcp.WithDescription("Parse a Markdown section body into the semantic AST (JSON). "+
			"A leading frontmatter block is ignored."),
		mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown source")),
	), s.parseMarkdown)

	s.mcp.AddTool(mcp.NewTool("reconstruct_html",
		mcp.WithDescription("Recover sections (frontmatter and Markdown) from rendered section HTML."),
		mcp.WithString("html", mcp.Required(), mcp.Description("HTML containing section[data-slug] elements")),
	), s.reconstructHTML)

	s.mcp.AddTool(mcp.NewTool("list_sections",
		mcp.WithDescription("List loaded sections in display order."),
	), s.listSections)

	s.mcp.AddTool(mcp.NewTool("read_section",
		mcp.WithDescription("Read the raw Markdown of a section, frontmatter included. "+
			"See the "+FormatURI+" resource for the format."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Section slug (file name without .md)")),
	), s.readSection)

	s.mcp.AddTool(mcp.NewTool("render_section",
		mcp.WithDescription("Render a section as HTML."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Section slug")),
		mcp.WithString("mode", mcp.Description("View mode: reader (default), page or raw"),
			mcp.Enum(string(view.Reader), string(view.Page), string(view.Raw))),
	), s.renderSection)

	s.mcp.AddResource(
		mcp.NewResource(FormatURI, "Section Format",
			mcp.WithResourceDescription("Frontmatter and body format of folio section files."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func lookupError(slug string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) parseMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := req.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ast, err := s.svc.ParseMarkdown(ctx, src)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ast)
}

func (s *Server) reconstructHTML(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := req.RequireString("html")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sections, err := s.svc.Reconstruct(ctx, strings.NewReader(doc))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(sections) == 0 {
		return mcp.NewToolResultError("no sections found"), nil
	}
	return jsonResult(sections)
}

func (s *Server) listSections(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ListSections(ctx))
}

func (s *Server) readSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sec, err := s.svc.GetSection(ctx, slug)
	if err != nil {
		return lookupError(slug, err), nil
	}
	return mcp.NewToolResultText(sec.RawMarkdown), nil
}

func (s *Server) renderSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode := view.Reader
	if m := req.GetString("mode", ""); m != "" {
		if mode, err = view.ParseMode(m); err != nil || mode == view.Source {
			return mcp.NewToolResultError(fmt.Sprintf("unsupported mode: %s", m)), nil
		}
	}
	out, err := s.svc.RenderSection(ctx, slug, mode)
	if err != nil {
		return lookupError(slug, err), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatURI,
			MIMEType: "text/markdown",
			Text:     FrontmatterFormat,
		},
	}, nil
}
