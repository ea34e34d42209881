package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/specmark/specmark/pkg/domain/document"
)

// SpecEntry is one discovered (spec id, path) pair handed to the tracker.
type SpecEntry struct {
	SpecID int    `json:"spec_id"`
	Path   string `json:"path"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

var fileIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^spec[-_]?(\d+)`),
	regexp.MustCompile(`^(\d+)[-_.]`),
}

// Discover walks the configured glob patterns and resolves each match to a
// (spec_id, path) pair. The id comes from the filename when it carries one,
// otherwise from parsing the document (metadata block or title-embedded id).
// Files yielding no id are skipped; duplicated ids keep the first match.
func (r *FilesystemRepository) Discover() ([]SpecEntry, error) {
	cfg, err := r.LoadConfig()
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, pattern := range cfg.SpecGlobs {
		matches, err := doublestar.FilepathGlob(filepath.Join(r.root, pattern))
		if err != nil {
			return nil, fmt.Errorf("discover %q: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	var entries []SpecEntry
	seen := make(map[int]bool)
	for _, path := range paths {
		entry, ok := r.resolveEntry(path)
		if !ok || seen[entry.SpecID] {
			continue
		}
		seen[entry.SpecID] = true
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].SpecID < entries[j].SpecID })
	return entries, nil
}

func (r *FilesystemRepository) resolveEntry(path string) (SpecEntry, bool) {
	entry := SpecEntry{Path: path}
	entry.SpecID = filenameID(filepath.Base(path))

	content, err := r.ReadSpec(path)
	if err != nil {
		return SpecEntry{}, false
	}
	doc, err := document.Parse(content)
	if err != nil {
		// A file without a title is not a spec document.
		return SpecEntry{}, false
	}
	entry.Title = doc.Title
	entry.Status = string(doc.Metadata.Status)
	if entry.SpecID == 0 {
		entry.SpecID = doc.Metadata.SpecID
	}
	if entry.SpecID == 0 {
		return SpecEntry{}, false
	}
	return entry, true
}

func filenameID(name string) int {
	for _, re := range fileIDPatterns {
		if m := re.FindStringSubmatch(name); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return 0
}
