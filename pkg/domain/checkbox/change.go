// Package checkbox holds the authoritative, mutable, persisted view of
// checklist state for loaded spec documents.
package checkbox

import (
	"time"

	"github.com/specmark/specmark/pkg/domain/document"
)

// Well-known mutation sources recorded on Change events.
const (
	SourceCLI   = "cli"
	SourceMCP   = "mcp"
	SourceBoard = "board"
	SourceUndo  = "undo"
	SourceRedo  = "redo"
)

// Change is one committed checklist mutation.
type Change struct {
	ID        string          `json:"id"`
	Item      document.ItemID `json:"item"`
	OldState  bool            `json:"old_state"`
	NewState  bool            `json:"new_state"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
}

// Update is one entry in a batch mutation.
type Update struct {
	ID      document.ItemID `json:"id"`
	Checked bool            `json:"checked"`
}
