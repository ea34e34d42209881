// Package mcp exposes the spec workspace to MCP clients: document reads,
// checklist mutations, progress stats and structural diffs.
package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/specmark/specmark/internal/application"
	"github.com/specmark/specmark/internal/infrastructure/wiring"
	"github.com/specmark/specmark/pkg/domain/checkbox"
	"github.com/specmark/specmark/pkg/domain/document"
)

type Server struct {
	mcpServer *mcp.Server
	documents *application.DocumentService
	tracking  *application.TrackerService
	diffs     *application.DiffService
	root      string
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
// Internal details are omitted — only the friendly message is returned.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

func NewServer(root string) (*Server, error) {
	ws := wiring.NewWorkspace(root)

	info := mcp.ServerInfo{
		Name:    "specmark",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Specmark MCP Server"),
			mcp.WithDescription("Specmark exposes structured spec documents, checklist state, and structural diffs to MCP clients."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Use tools to read spec documents, toggle checklist items, inspect progress, and diff document snapshots."),
		),
		documents: ws.Documents,
		tracking:  ws.Tracking,
		diffs:     ws.Diffs,
		root:      root,
	}

	s.registerTools()
	return s, nil
}

type SpecArgs struct {
	SpecID int `json:"spec_id" jsonschema:"description=The numeric spec id"`
}

type ItemArgs struct {
	ItemID string `json:"item_id" jsonschema:"description=Checklist item id in spec/section/ordinal form (e.g. 3/Acceptance Criteria/2)"`
}

type SetItemArgs struct {
	ItemID  string `json:"item_id" jsonschema:"description=Checklist item id in spec/section/ordinal form"`
	Checked bool   `json:"checked" jsonschema:"description=Target state for the item"`
}

type DiffArgs struct {
	OldPath string `json:"old_path" jsonschema:"description=Path to the older document snapshot"`
	NewPath string `json:"new_path" jsonschema:"description=Path to the newer document snapshot"`
}

type TransitionArgs struct {
	SpecID int    `json:"spec_id" jsonschema:"description=The numeric spec id"`
	Event  string `json:"event" jsonschema:"description=Lifecycle event: plan, start, review, approve, block, unblock, reopen, deprecate"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("specmark_list_specs").
		Description("List every spec document discovered in the workspace").
		Handler(s.handleListSpecs)

	s.mcpServer.Tool("specmark_get_document").
		Description("Retrieve the full structural model of one spec document").
		Handler(s.handleGetDocument)

	s.mcpServer.Tool("specmark_get_items").
		Description("List the checklist items of one spec with their stable ids and states").
		Handler(s.handleGetItems)

	s.mcpServer.Tool("specmark_toggle_item").
		Description("Flip one checklist item and persist the change to its file").
		Handler(s.handleToggleItem)

	s.mcpServer.Tool("specmark_set_item").
		Description("Set one checklist item to an explicit checked state").
		Handler(s.handleSetItem)

	s.mcpServer.Tool("specmark_get_stats").
		Description("Get completion statistics for one spec, broken down by section").
		Handler(s.handleGetStats)

	s.mcpServer.Tool("specmark_diff").
		Description("Structurally compare two spec document files").
		Handler(s.handleDiff)

	s.mcpServer.Tool("specmark_undo").
		Description("Undo the most recent checklist change across the workspace").
		Handler(s.handleUndo)

	s.mcpServer.Tool("specmark_redo").
		Description("Redo the most recently undone checklist change").
		Handler(s.handleRedo)

	s.mcpServer.Tool("specmark_transition_status").
		Description("Apply a lifecycle event to a spec document's status field").
		Handler(s.handleTransition)
}

func (s *Server) handleListSpecs(ctx context.Context, args struct{}) (any, error) {
	entries, err := s.tracking.LoadAll()
	if err != nil {
		return nil, mcpErr("Failed to discover spec documents. Check the workspace configuration and glob patterns.")
	}
	return entries, nil
}

func (s *Server) handleGetDocument(ctx context.Context, args SpecArgs) (any, error) {
	doc, err := s.tracking.Document(args.SpecID)
	if err != nil {
		return nil, mcpErr(fmt.Sprintf("Spec %d is not loaded and could not be discovered in the workspace.", args.SpecID))
	}
	return doc, nil
}

func (s *Server) handleGetItems(ctx context.Context, args SpecArgs) (any, error) {
	items, err := s.tracking.Checkboxes(args.SpecID)
	if err != nil {
		return nil, mcpErr(fmt.Sprintf("Spec %d is not loaded and could not be discovered in the workspace.", args.SpecID))
	}
	return items, nil
}

func (s *Server) handleToggleItem(ctx context.Context, args ItemArgs) (any, error) {
	id, err := document.ParseItemID(args.ItemID)
	if err != nil {
		return nil, mcpErr("Invalid item id. Expected spec/section/ordinal, e.g. 3/Acceptance Criteria/2.")
	}
	change, err := s.tracking.Toggle(id, checkbox.SourceMCP)
	if err != nil {
		return nil, mcpErr(fmt.Sprintf("Failed to toggle %s: %v", args.ItemID, err))
	}
	return change, nil
}

func (s *Server) handleSetItem(ctx context.Context, args SetItemArgs) (any, error) {
	id, err := document.ParseItemID(args.ItemID)
	if err != nil {
		return nil, mcpErr("Invalid item id. Expected spec/section/ordinal, e.g. 3/Acceptance Criteria/2.")
	}
	change, err := s.tracking.SetChecked(id, args.Checked, checkbox.SourceMCP)
	if err != nil {
		return nil, mcpErr(fmt.Sprintf("Failed to update %s: %v", args.ItemID, err))
	}
	if change == nil {
		return fmt.Sprintf("Item %s already %v", args.ItemID, args.Checked), nil
	}
	return change, nil
}

func (s *Server) handleGetStats(ctx context.Context, args SpecArgs) (any, error) {
	stats, err := s.tracking.Stats(args.SpecID)
	if err != nil {
		return nil, mcpErr(fmt.Sprintf("Spec %d is not loaded and could not be discovered in the workspace.", args.SpecID))
	}
	return stats, nil
}

func (s *Server) handleDiff(ctx context.Context, args DiffArgs) (any, error) {
	diff, err := s.diffs.DiffFiles(args.OldPath, args.NewPath)
	if err != nil {
		return nil, mcpErr(fmt.Sprintf("Failed to diff documents: %v", err))
	}
	return diff, nil
}

func (s *Server) handleUndo(ctx context.Context, args struct{}) (any, error) {
	change, err := s.tracking.Undo()
	if err != nil {
		return nil, mcpErr(fmt.Sprintf("Undo failed: %v", err))
	}
	if change == nil {
		return "Nothing to undo.", nil
	}
	return change, nil
}

func (s *Server) handleRedo(ctx context.Context, args struct{}) (any, error) {
	change, err := s.tracking.Redo()
	if err != nil {
		return nil, mcpErr(fmt.Sprintf("Redo failed: %v", err))
	}
	if change == nil {
		return "Nothing to redo.", nil
	}
	return change, nil
}

func (s *Server) handleTransition(ctx context.Context, args TransitionArgs) (string, error) {
	path, err := s.specPath(args.SpecID)
	if err != nil {
		return "", mcpErr(fmt.Sprintf("Spec %d could not be discovered in the workspace.", args.SpecID))
	}
	next, err := s.documents.TransitionStatus(path, args.Event)
	if err != nil {
		return "", mcpErr(fmt.Sprintf("Failed to transition spec %d: %v", args.SpecID, err))
	}
	return fmt.Sprintf("Spec %d is now %s", args.SpecID, next), nil
}

func (s *Server) specPath(specID int) (string, error) {
	if err := s.tracking.EnsureLoaded(specID); err != nil {
		return "", err
	}
	return s.tracking.Tracker().Path(specID)
}

func (s *Server) Start() error {
	return s.StartStdio()
}

func (s *Server) StartStdio() error {
	return s.ServeStdio(context.Background())
}

func (s *Server) StartHTTP(addr string) error {
	return s.ServeHTTP(context.Background(), addr)
}

func (s *Server) StartWebSocket(addr string) error {
	return s.ServeWebSocket(context.Background(), addr)
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}

func (s *Server) ServeWebSocket(ctx context.Context, addr string) error {
	return mcp.ServeWebSocket(ctx, s.mcpServer, addr)
}
