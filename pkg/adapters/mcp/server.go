package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/blueprint"
	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/aretw0/blueprint/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const canvasURI = "blueprint://canvas"

// Server wraps an editing session and exposes it as an MCP Server.
type Server struct {
	editor    ports.Editor
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(editor ports.Editor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		editor:    editor,
		logger:    logger,
		mcpServer: server.NewMCPServer("blueprint-mcp", strings.TrimSpace(blueprint.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
// It returns when ctx is cancelled or the listener fails.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Tool arguments. Field names follow the tool parameter names.
type (
	openArgs struct {
		StoreID    string `json:"store_id"`
		PageTypeID string `json:"page_type_id"`
	}
	addArgs struct {
		Type       string `json:"type"`
		TemplateID string `json:"template_id"`
		Width      string `json:"width"`
	}
	sectionArgs struct {
		ID string `json:"id"`
	}
	updateArgs struct {
		ID    string `json:"id"`
		Patch string `json:"patch"`
	}
	moveArgs struct {
		ID        string `json:"id"`
		Direction string `json:"direction"`
	}
	reorderArgs struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	proposeArgs struct {
		PageType        string `json:"page_type"`
		DesiredSections string `json:"desired_sections"`
		LayoutStyle     string `json:"layout_style"`
		ContentFocus    string `json:"content_focus"`
	}
	noArgs struct{}
)

func (s *Server) registerTools() {
	stateSchema := mcp.WithOutputSchema[domain.StudioState]()

	s.mcpServer.AddTool(mcp.NewTool("open_canvas",
		mcp.WithDescription("Open the canvas of a page. Unsaved local drafts newer than the stored canvas are restored."),
		mcp.WithString("store_id", mcp.Required(), mcp.Description("Store that owns the page")),
		mcp.WithString("page_type_id", mcp.Required(), mcp.Description("Page type (home, product, ...)")),
		stateSchema,
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args openArgs) (domain.StudioState, error) {
		_, err := s.editor.Open(ctx, args.StoreID, args.PageTypeID)
		return s.state(err)
	}))

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Get the open canvas, layer order, history position and pending notices."),
		stateSchema,
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, _ noArgs) (domain.StudioState, error) {
		return s.editor.State(), nil
	}))

	s.mcpServer.AddTool(mcp.NewTool("add_section",
		mcp.WithDescription("Append a section to the canvas."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Section type, e.g. Header or HeroBanner")),
		mcp.WithString("template_id", mcp.Description("Section template to copy the layout from")),
		mcp.WithString("width", mcp.Description("CSS width, defaults to 100%")),
		stateSchema,
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args addArgs) (domain.StudioState, error) {
		req := domain.AddSectionRequest{Type: args.Type}
		if args.TemplateID != "" {
			req.TemplateID = &args.TemplateID
		}
		if args.Width != "" {
			req.Width = &args.Width
		}
		_, err := s.editor.AddSection(ctx, req)
		return s.state(err)
	}))

	s.mcpServer.AddTool(mcp.NewTool("update_section",
		mcp.WithDescription("Apply a partial update to a section. The section id and order cannot be changed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Section ID")),
		mcp.WithString("patch", mcp.Required(), mcp.Description(`JSON object of fields to change, e.g. {"alignment":"center"}`)),
		stateSchema,
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args updateArgs) (domain.StudioState, error) {
		var patch domain.SectionPatch
		if err := json.Unmarshal([]byte(args.Patch), &patch); err != nil {
			return domain.StudioState{}, fmt.Errorf("invalid patch: %w", err)
		}
		_, err := s.editor.UpdateSection(ctx, args.ID, patch)
		return s.state(err)
	}))

	s.mcpServer.AddTool(mcp.NewTool("delete_section",
		mcp.WithDescription("Remove a section from the canvas."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Section ID")),
		stateSchema,
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args sectionArgs) (domain.StudioState, error) {
		_, err := s.editor.DeleteSection(ctx, args.ID)
		return s.state(err)
	}))

	s.mcpServer.AddTool(mcp.NewTool("move_section",
		mcp.WithDescription("Move a section one step up (towards the top of the page) or down."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Section ID")),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("up", "down")),
		stateSchema,
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args moveArgs) (domain.StudioState, error) {
		var err error
		switch args.Direction {
		case "up":
			_, err = s.editor.MoveUp(ctx, args.ID)
		case "down":
			_, err = s.editor.MoveDown(ctx, args.ID)
		default:
			err = fmt.Errorf("unknown direction %q", args.Direction)
		}
		return s.state(err)
	}))

	s.mcpServer.AddTool(mcp.NewTool("reorder_sections",
		mcp.WithDescription("Move the section at index from to index to."),
		mcp.WithNumber("from", mcp.Required(), mcp.Min(0)),
		mcp.WithNumber("to", mcp.Required(), mcp.Min(0)),
		stateSchema,
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args reorderArgs) (domain.StudioState, error) {
		_, err := s.editor.Reorder(ctx, args.From, args.To)
		return s.state(err)
	}))

	for name, desc := range map[string]string{
		"undo":    "Step back one snapshot in history.",
		"redo":    "Step forward one snapshot in history.",
		"save":    "Persist the canvas to the canvas service as a draft.",
		"publish": "Persist the canvas and mark it published.",
	} {
		op := s.historyOp(name)
		s.mcpServer.AddTool(mcp.NewTool(name, mcp.WithDescription(desc), stateSchema),
			mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, _ noArgs) (domain.StudioState, error) {
				_, err := op(ctx)
				return s.state(err)
			}))
	}

	s.mcpServer.AddTool(mcp.NewTool("propose_layout",
		mcp.WithDescription("Ask the layout suggester for sections and append them to the canvas in one step."),
		mcp.WithString("desired_sections", mcp.Required(), mcp.Description("Comma-separated section labels, e.g. \"hero banner, product grid\"")),
		mcp.WithString("page_type", mcp.Description("Page type; defaults to the open page")),
		mcp.WithString("layout_style", mcp.Description("minimal, dense, ...")),
		mcp.WithString("content_focus", mcp.Description("What the page should emphasize")),
		stateSchema,
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args proposeArgs) (domain.StudioState, error) {
		req := domain.LayoutRequest{
			PageType:     args.PageType,
			LayoutStyle:  args.LayoutStyle,
			ContentFocus: args.ContentFocus,
		}
		for _, label := range strings.Split(args.DesiredSections, ",") {
			if label = strings.TrimSpace(label); label != "" {
				req.DesiredSections = append(req.DesiredSections, label)
			}
		}
		if req.PageType == "" {
			if st := s.editor.State(); st.Canvas != nil {
				req.PageType = st.Canvas.PageTypeID
			}
		}
		_, err := s.editor.ApplyAIProposal(ctx, req)
		return s.state(err)
	}))

	s.mcpServer.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the section templates available to add_section."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.editor.Templates(ctx))
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("allowed_sections",
		mcp.WithDescription("List the section types allowed on the open page type."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.editor.AllowedSections(ctx))
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) historyOp(name string) func(context.Context) (*domain.Canvas, error) {
	switch name {
	case "undo":
		return s.editor.Undo
	case "redo":
		return s.editor.Redo
	case "save":
		return s.editor.Save
	default:
		return s.editor.Publish
	}
}

// state returns the session summary after an operation, or the operation's error.
func (s *Server) state(err error) (domain.StudioState, error) {
	if err != nil {
		s.logger.Warn("MCP tool failed", "err", err)
		return domain.StudioState{}, err
	}
	return s.editor.State(), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(canvasURI, "Open Canvas",
		mcp.WithResourceDescription("Verbatim snapshot of the canvas under edit"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := s.editor.ExportSnapshot()
		if err != nil {
			return nil, fmt.Errorf("failed to export canvas: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      canvasURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
