package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func initWorkspace(t *testing.T, cfg *Config) (*FilesystemRepository, string) {
	t.Helper()
	root := t.TempDir()
	repo := NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := repo.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	return repo, root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDiscoverResolvesIDsFromFilenameAndContent(t *testing.T) {
	repo, root := initWorkspace(t, nil)

	writeFile(t, filepath.Join(root, "specs", "spec-3.md"), "# Spec 3: Parser\nStatus: draft\n## S\n")
	writeFile(t, filepath.Join(root, "specs", "07-tracker.md"), "# Tracker\nSpec ID: 7\n## S\n")
	writeFile(t, filepath.Join(root, "specs", "nested", "diffing.md"), "# Spec 12: Diffing\n## S\n")
	// No id anywhere: skipped.
	writeFile(t, filepath.Join(root, "specs", "notes.md"), "# Scratch Notes\n## S\n")
	// Not a spec document at all: skipped.
	writeFile(t, filepath.Join(root, "specs", "broken.md"), "no title here\n")

	entries, err := repo.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	want := map[int]string{3: "Spec 3: Parser", 7: "Tracker", 12: "Spec 12: Diffing"}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for _, e := range entries {
		if want[e.SpecID] != e.Title {
			t.Errorf("entry %d: title = %q, want %q", e.SpecID, e.Title, want[e.SpecID])
		}
	}
	// Ascending id order.
	for i := 1; i < len(entries); i++ {
		if entries[i-1].SpecID >= entries[i].SpecID {
			t.Errorf("entries not sorted: %+v", entries)
		}
	}
}

func TestDiscoverFilenameIDWinsOverContent(t *testing.T) {
	repo, root := initWorkspace(t, nil)
	writeFile(t, filepath.Join(root, "specs", "spec-4.md"), "# Spec 9: Mismatch\n## S\n")

	entries, err := repo.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(entries) != 1 || entries[0].SpecID != 4 {
		t.Errorf("entries = %+v, want filename id 4", entries)
	}
}

func TestDiscoverDuplicateIDsKeepFirst(t *testing.T) {
	repo, root := initWorkspace(t, nil)
	writeFile(t, filepath.Join(root, "specs", "spec-2-a.md"), "# Spec 2: First\n## S\n")
	writeFile(t, filepath.Join(root, "specs", "spec-2-b.md"), "# Spec 2: Second\n## S\n")

	entries, err := repo.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Title != "Spec 2: First" {
		t.Errorf("entries = %+v, want only the first match", entries)
	}
}

func TestLoadConfigDefaultsWhenAbsent(t *testing.T) {
	root := t.TempDir()
	repo := NewFilesystemRepository(root)
	cfg, err := repo.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.SpecGlobs) == 0 || cfg.DiffContext != 3 {
		t.Errorf("default config = %+v", cfg)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	repo, _ := initWorkspace(t, &Config{
		SpecGlobs:     []string{"docs/**/*.md"},
		DiffContext:   5,
		DashboardAddr: ":9000",
	})
	cfg, err := repo.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DiffContext != 5 || cfg.DashboardAddr != ":9000" || cfg.SpecGlobs[0] != "docs/**/*.md" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestResolvePathRejectsTraversal(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	for _, bad := range []string{"../escape.yaml", "a/b.yaml", ""} {
		if _, err := repo.ResolvePath(bad); err == nil {
			t.Errorf("ResolvePath(%q) accepted a bad path", bad)
		}
	}
	if _, err := repo.ResolvePath("config.yaml"); err != nil {
		t.Errorf("ResolvePath(config.yaml) error = %v", err)
	}
}
