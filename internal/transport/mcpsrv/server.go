package mcpsrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/service/notebook"
	"github.com/sandevgo/recall/pkg/log"
)

// Server exposes the knowledge base as MCP tools over stdio so any MCP
// client can acquire sources and build grounded contexts. It implements
// srv.Service.
type Server struct {
	stdio  *server.StdioServer
	cancel context.CancelFunc
}

func NewServer(nb *notebook.Notebook) *Server {
	s := server.NewMCPServer(core.RecallName, core.RecallVersion,
		server.WithToolCapabilities(false),
	)

	s.AddTool(
		mcp.NewTool("acquire_source",
			mcp.WithDescription("Extract text from a URL or local file and store it as a note in the knowledge base. Falls back to a metadata-only placeholder when extraction fails."),
			mcp.WithString("url", mcp.Description("Source URL (web page or video)")),
			mcp.WithString("file_path", mcp.Description("Path to a local file (pdf, image, audio, document)")),
		),
		acquireHandler(nb),
	)

	s.AddTool(
		mcp.NewTool("build_context",
			mcp.WithDescription("Score stored notes against a query and return a bounded, source-isolated context payload. An empty context with a summary is a valid result."),
			mcp.WithString("query", mcp.Required(), mcp.Description("The question or topic to build context for")),
		),
		contextHandler(nb),
	)

	return &Server{stdio: server.NewStdioServer(s)}
}

func (s *Server) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	log.FromCtx(ctx).Info().Msg("mcp server listening on stdio")

	err := s.stdio.Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func acquireHandler(nb *notebook.Notebook) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ref := core.SourceRef{
			URL:      req.GetString("url", ""),
			FilePath: req.GetString("file_path", ""),
		}
		if ref.URL == "" && ref.FilePath == "" {
			return mcp.NewToolResultError("url or file_path is required"), nil
		}

		note, result, err := nb.AddSource(ctx, ref)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		payload, err := json.Marshal(map[string]any{
			"note_id":       note.ID,
			"title":         note.Title,
			"success":       result.Success,
			"strategy_used": result.StrategyUsed,
			"confidence":    result.Confidence,
			"chars":         len(note.Text),
			"error_message": result.ErrorMessage,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

func contextHandler(nb *notebook.Notebook) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		pc, err := nb.BuildContext(ctx, query)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if pc.Empty() {
			return mcp.NewToolResultText(pc.Summary), nil
		}
		return mcp.NewToolResultText(pc.Text()), nil
	}
}
