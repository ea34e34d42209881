package application

import (
	"github.com/specmark/specmark/pkg/domain/diffing"
	"github.com/specmark/specmark/pkg/domain/document"
	"github.com/specmark/specmark/pkg/storage"
)

// DiffService compares spec document snapshots using the workspace diff
// context.
type DiffService struct {
	repo *storage.FilesystemRepository
}

func NewDiffService(repo *storage.FilesystemRepository) *DiffService {
	return &DiffService{repo: repo}
}

// DiffFiles parses both paths and compares them structurally.
func (s *DiffService) DiffFiles(oldPath, newPath string) (*diffing.SpecDiff, error) {
	oldDoc, err := s.parse(oldPath)
	if err != nil {
		return nil, err
	}
	newDoc, err := s.parse(newPath)
	if err != nil {
		return nil, err
	}
	return s.DiffDocuments(oldDoc, newDoc)
}

// DiffDocuments compares two already-parsed snapshots.
func (s *DiffService) DiffDocuments(oldDoc, newDoc *document.SpecDocument) (*diffing.SpecDiff, error) {
	cfg, err := s.repo.LoadConfig()
	if err != nil {
		return nil, err
	}
	return diffing.DiffWithOptions(oldDoc, newDoc, diffing.Options{Context: cfg.DiffContext}), nil
}

func (s *DiffService) parse(path string) (*document.SpecDocument, error) {
	content, err := s.repo.ReadSpec(path)
	if err != nil {
		return nil, err
	}
	return document.Parse(content)
}
