package application

import (
	"fmt"
	"sort"

	"github.com/specmark/specmark/pkg/domain/checkbox"
	"github.com/specmark/specmark/pkg/domain/document"
	"github.com/specmark/specmark/pkg/storage"
)

// TrackerService binds the checkbox tracker to the workspace: discovery feeds
// the tracker, mutations flow through it, and all surfaces (CLI, dashboard,
// MCP, board) share one instance.
type TrackerService struct {
	repo    *storage.FilesystemRepository
	tracker *checkbox.Tracker
}

func NewTrackerService(repo *storage.FilesystemRepository) *TrackerService {
	return &TrackerService{
		repo:    repo,
		tracker: checkbox.NewTracker(),
	}
}

// Tracker exposes the underlying tracker for subscription and board wiring.
func (s *TrackerService) Tracker() *checkbox.Tracker {
	return s.tracker
}

// LoadAll discovers every spec file under the configured globs and loads each
// into the tracker. Returns the discovered entries in spec id order.
func (s *TrackerService) LoadAll() ([]storage.SpecEntry, error) {
	entries, err := s.repo.Discover()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if _, err := s.tracker.Load(e.SpecID, e.Path); err != nil {
			return nil, fmt.Errorf("load spec %d from %s: %w", e.SpecID, e.Path, err)
		}
	}
	return entries, nil
}

// EnsureLoaded loads the spec with the given id if the tracker does not hold
// it yet, discovering its path from the workspace.
func (s *TrackerService) EnsureLoaded(specID int) error {
	if s.tracker.IsLoaded(specID) {
		return nil
	}
	entries, err := s.repo.Discover()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.SpecID == specID {
			_, err := s.tracker.Load(e.SpecID, e.Path)
			return err
		}
	}
	return fmt.Errorf("spec %d: %w", specID, checkbox.ErrSpecNotLoaded)
}

// Reload re-parses a loaded spec from disk, keeping its tracker slot. Used by
// the watcher when a file changes underneath us.
func (s *TrackerService) Reload(specID int) (*document.SpecDocument, error) {
	path, err := s.tracker.Path(specID)
	if err != nil {
		return nil, err
	}
	return s.tracker.Load(specID, path)
}

func (s *TrackerService) SetChecked(id document.ItemID, checked bool, source string) (*checkbox.Change, error) {
	if err := s.EnsureLoaded(id.SpecID); err != nil {
		return nil, err
	}
	return s.tracker.SetChecked(id, checked, source)
}

func (s *TrackerService) Toggle(id document.ItemID, source string) (*checkbox.Change, error) {
	if err := s.EnsureLoaded(id.SpecID); err != nil {
		return nil, err
	}
	return s.tracker.Toggle(id, source)
}

func (s *TrackerService) BatchUpdate(updates []checkbox.Update, source string) ([]checkbox.Change, error) {
	for _, u := range updates {
		if err := s.EnsureLoaded(u.ID.SpecID); err != nil {
			return nil, err
		}
	}
	return s.tracker.BatchUpdate(updates, source)
}

func (s *TrackerService) Undo() (*checkbox.Change, error) { return s.tracker.Undo() }
func (s *TrackerService) Redo() (*checkbox.Change, error) { return s.tracker.Redo() }

func (s *TrackerService) Stats(specID int) (checkbox.Stats, error) {
	if err := s.EnsureLoaded(specID); err != nil {
		return checkbox.Stats{}, err
	}
	return s.tracker.Stats(specID)
}

// WorkspaceStats aggregates per-spec stats for every loaded document.
func (s *TrackerService) WorkspaceStats() (map[int]checkbox.Stats, error) {
	entries, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	out := make(map[int]checkbox.Stats, len(entries))
	for _, e := range entries {
		st, err := s.tracker.Stats(e.SpecID)
		if err != nil {
			return nil, err
		}
		out[e.SpecID] = st
	}
	return out, nil
}

func (s *TrackerService) Document(specID int) (*document.SpecDocument, error) {
	if err := s.EnsureLoaded(specID); err != nil {
		return nil, err
	}
	return s.tracker.Document(specID)
}

func (s *TrackerService) Checkboxes(specID int) ([]document.ChecklistItem, error) {
	if err := s.EnsureLoaded(specID); err != nil {
		return nil, err
	}
	items, err := s.tracker.SpecCheckboxes(specID)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].SourceLine < items[j].SourceLine })
	return items, nil
}

func (s *TrackerService) History() []checkbox.Change {
	return s.tracker.History()
}

func (s *TrackerService) Flush(specID int) error {
	return s.tracker.Flush(specID)
}
