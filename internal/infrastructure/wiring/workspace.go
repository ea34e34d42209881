// Package wiring bundles the workspace services shared by every surface.
package wiring

import (
	"github.com/specmark/specmark/internal/application"
	"github.com/specmark/specmark/pkg/storage"
)

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Repo      *storage.FilesystemRepository
	Documents *application.DocumentService
	Tracking  *application.TrackerService
	Diffs     *application.DiffService
}

func NewWorkspace(root string) *Workspace {
	repo := storage.NewFilesystemRepository(root)

	return &Workspace{
		Repo:      repo,
		Documents: application.NewDocumentService(repo),
		Tracking:  application.NewTrackerService(repo),
		Diffs:     application.NewDiffService(repo),
	}
}
