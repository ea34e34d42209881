package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/specmark/specmark/internal/application"
	"github.com/specmark/specmark/pkg/domain/checkbox"
	"github.com/specmark/specmark/pkg/domain/document"
	"github.com/specmark/specmark/pkg/storage"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	repo := storage.NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := repo.SaveConfig(storage.DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	specDir := filepath.Join(root, "specs")
	if err := os.MkdirAll(specDir, 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "# Spec 1: Dash\nStatus: draft\n## Tasks\n- [ ] a\n- [x] b\n"
	if err := os.WriteFile(filepath.Join(specDir, "spec-1.md"), []byte(content), 0600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return NewServer(":0", application.NewTrackerService(repo))
}

func mux(s *Server) http.Handler {
	m := http.NewServeMux()
	m.HandleFunc("GET /health", s.handleHealth)
	m.HandleFunc("GET /api/specs", s.handleSpecs)
	m.HandleFunc("GET /api/specs/{id}", s.handleSpec)
	m.HandleFunc("GET /api/specs/{id}/items", s.handleItems)
	m.HandleFunc("GET /api/stats", s.handleStats)
	m.HandleFunc("POST /api/items/toggle", s.handleToggle)
	return m
}

func TestHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(mux(testServer(t)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestSpecsAndItemsEndpoints(t *testing.T) {
	srv := httptest.NewServer(mux(testServer(t)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/specs")
	if err != nil {
		t.Fatalf("GET /api/specs: %v", err)
	}
	defer resp.Body.Close()
	var entries []storage.SpecEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].SpecID != 1 {
		t.Fatalf("entries = %+v", entries)
	}

	resp, err = http.Get(srv.URL + "/api/specs/1/items")
	if err != nil {
		t.Fatalf("GET items: %v", err)
	}
	defer resp.Body.Close()
	var items []document.ChecklistItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 2 || items[0].Text != "a" || !items[1].Checked {
		t.Errorf("items = %+v", items)
	}

	resp, err = http.Get(srv.URL + "/api/specs/999")
	if err != nil {
		t.Fatalf("GET missing spec: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing spec status = %d, want 404", resp.StatusCode)
	}
}

func TestToggleEndpoint(t *testing.T) {
	srv := httptest.NewServer(mux(testServer(t)))
	defer srv.Close()

	body, _ := json.Marshal(map[string]string{"id": "1/Tasks/1"})
	resp, err := http.Post(srv.URL+"/api/items/toggle", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST toggle: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var change checkbox.Change
	if err := json.NewDecoder(resp.Body).Decode(&change); err != nil {
		t.Fatalf("decode change: %v", err)
	}
	if !change.NewState || change.Source != checkbox.SourceBoard {
		t.Errorf("change = %+v", change)
	}

	// Malformed ids are client errors.
	resp, err = http.Post(srv.URL+"/api/items/toggle", "application/json", bytes.NewReader([]byte(`{"id":"nonsense"}`)))
	if err != nil {
		t.Fatalf("POST bad toggle: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", resp.StatusCode)
	}
}
