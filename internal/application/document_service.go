// Package application wires the domain model to the workspace: parsing,
// tracking, diffing and lifecycle services consumed by the CLI, dashboard
// and MCP surfaces.
package application

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/specmark/specmark/pkg/domain/document"
	"github.com/specmark/specmark/pkg/storage"
)

// specDocumentSchemaJSON gates every serialized document export: a document
// that fails its own schema indicates a model bug, not a user error.
const specDocumentSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["title", "metadata", "line_map"],
  "properties": {
    "title": { "type": "string", "minLength": 1 },
    "metadata": {
      "type": "object",
      "required": ["phase", "spec_id", "status"],
      "properties": {
        "phase": { "type": "integer" },
        "spec_id": { "type": "integer", "minimum": 0 },
        "status": { "type": "string" },
        "dependencies": { "type": "array", "items": { "type": "string" } }
      }
    },
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "ordinal"],
        "properties": {
          "name": { "type": "string", "minLength": 1 },
          "ordinal": { "type": "integer", "minimum": 1 }
        }
      }
    },
    "checklist_items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "text", "checked", "source_line", "section"],
        "properties": {
          "id": {
            "type": "object",
            "required": ["spec_id", "section", "ordinal"],
            "properties": { "ordinal": { "type": "integer", "minimum": 1 } }
          },
          "source_line": { "type": "integer", "minimum": 1 }
        }
      }
    },
    "line_map": {
      "type": "object",
      "required": ["total_lines"],
      "properties": { "total_lines": { "type": "integer", "minimum": 0 } }
    }
  }
}`

var specDocumentSchemaLoader = gojsonschema.NewStringLoader(specDocumentSchemaJSON)

type DocumentService struct {
	repo *storage.FilesystemRepository
}

func NewDocumentService(repo *storage.FilesystemRepository) *DocumentService {
	return &DocumentService{repo: repo}
}

// ParseFile reads and parses one spec file.
func (s *DocumentService) ParseFile(path string) (*document.SpecDocument, error) {
	content, err := s.repo.ReadSpec(path)
	if err != nil {
		return nil, err
	}
	return document.Parse(content)
}

// ExportJSON serializes a document and validates it against the embedded
// schema before handing it out.
func (s *DocumentService) ExportJSON(doc *document.SpecDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	result, err := gojsonschema.Validate(specDocumentSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate document export: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("document export violates schema: %s", result.Errors()[0])
	}
	return data, nil
}

// ExportYAML serializes a document as YAML.
func (s *DocumentService) ExportYAML(doc *document.SpecDocument) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// Lint surfaces parse warnings plus any schema violations of the serialized
// form.
func (s *DocumentService) Lint(path string) ([]document.Warning, error) {
	doc, err := s.ParseFile(path)
	if err != nil {
		return nil, err
	}
	warnings := append([]document.Warning(nil), doc.Warnings...)

	data, err := json.Marshal(doc)
	if err != nil {
		return warnings, nil
	}
	result, err := gojsonschema.Validate(specDocumentSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err == nil && !result.Valid() {
		for _, desc := range result.Errors() {
			warnings = append(warnings, document.Warning{
				Message:  fmt.Sprintf("schema: %s", desc),
				Severity: document.SeverityWarning,
			})
		}
	}
	return warnings, nil
}

// TransitionStatus applies a lifecycle event to the document at path and
// rewrites only the status metadata line. Documents without an explicit
// status start from draft.
func (s *DocumentService) TransitionStatus(path, event string) (document.Status, error) {
	content, err := s.repo.ReadSpec(path)
	if err != nil {
		return "", err
	}
	doc, err := document.Parse(content)
	if err != nil {
		return "", err
	}

	current := doc.Metadata.Status
	if current == "" {
		current = document.StatusDraft
	}
	machine, err := document.NewStatusMachine(current, doc.Metadata.SpecID)
	if err != nil {
		return "", err
	}
	if err := machine.Transition(event); err != nil {
		return "", err
	}
	next := machine.Current()

	rewritten, err := document.RewriteStatus(content, next)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rewritten), 0600); err != nil {
		return "", fmt.Errorf("persist status of %s: %w", path, err)
	}
	return next, nil
}
