package document_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/specmark/specmark/pkg/domain/document"
)

func TestParseBasicDocument(t *testing.T) {
	content := "# Spec 1: Example\n" +
		"## Acceptance Criteria\n" +
		"- [ ] a\n" +
		"- [x] b\n"

	doc, err := document.Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.Title != "Spec 1: Example" {
		t.Errorf("Title = %q, want %q", doc.Title, "Spec 1: Example")
	}
	if doc.Metadata.SpecID != 1 {
		t.Errorf("SpecID = %d, want 1 (from title)", doc.Metadata.SpecID)
	}
	if len(doc.Checklist) != 2 {
		t.Fatalf("got %d checklist items, want 2", len(doc.Checklist))
	}

	first := doc.Checklist[0]
	wantID := document.ItemID{SpecID: 1, Section: "Acceptance Criteria", Ordinal: 1}
	if first.ID != wantID {
		t.Errorf("first item id = %v, want %v", first.ID, wantID)
	}
	if first.Checked || first.Text != "a" {
		t.Errorf("first item = %+v, want unchecked %q", first, "a")
	}

	second := doc.Checklist[1]
	wantID = document.ItemID{SpecID: 1, Section: "Acceptance Criteria", Ordinal: 2}
	if second.ID != wantID {
		t.Errorf("second item id = %v, want %v", second.ID, wantID)
	}
	if !second.Checked || second.Text != "b" {
		t.Errorf("second item = %+v, want checked %q", second, "b")
	}
}

func TestParseMissingTitle(t *testing.T) {
	for _, content := range []string{
		"## Section Before Title\n- [ ] item\n",
		"just some text\nno headings at all\n",
	} {
		if _, err := document.Parse(content); !errors.Is(err, document.ErrMissingTitle) {
			t.Errorf("Parse(%q) error = %v, want ErrMissingTitle", content, err)
		}
	}
}

func TestParseMetadataBlock(t *testing.T) {
	content := "# Spec 7: Metadata\n" +
		"\n" +
		"**Phase**: 2\n" +
		"- **Status**: in_progress\n" +
		"Dependencies: spec-3, spec-5\n" +
		"Estimated Context: 40k tokens\n" +
		"Reviewer: alex\n" +
		"\n" +
		"## Tasks\n" +
		"- [ ] one\n"

	doc, err := document.Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	md := doc.Metadata
	if md.Phase != 2 {
		t.Errorf("Phase = %d, want 2", md.Phase)
	}
	if md.SpecID != 7 {
		t.Errorf("SpecID = %d, want 7", md.SpecID)
	}
	if md.Status != document.StatusInProgress {
		t.Errorf("Status = %q, want in_progress", md.Status)
	}
	if len(md.Dependencies) != 2 || md.Dependencies[0] != "spec-3" || md.Dependencies[1] != "spec-5" {
		t.Errorf("Dependencies = %v, want [spec-3 spec-5]", md.Dependencies)
	}
	if md.EstimatedContext != "40k tokens" {
		t.Errorf("EstimatedContext = %q", md.EstimatedContext)
	}
	if md.Custom["Reviewer"] != "alex" {
		t.Errorf("Custom[Reviewer] = %q, want alex", md.Custom["Reviewer"])
	}
	if doc.Lines.MetadataStart < 0 {
		t.Errorf("MetadataStart = %d, want >= 0", doc.Lines.MetadataStart)
	}
}

func TestParseMetadataFieldSynonyms(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"Spec ID: 9", 9},
		{"spec_id: 9", 9},
		{"ID: 9", 9},
		{"spec-id: 9", 9},
	}
	for _, tt := range tests {
		doc, err := document.Parse("# Title\n" + tt.line + "\n## S\n")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if doc.Metadata.SpecID != tt.want {
			t.Errorf("line %q: SpecID = %d, want %d", tt.line, doc.Metadata.SpecID, tt.want)
		}
	}
}

func TestParseTitleMetadataConflict(t *testing.T) {
	content := "# Spec 3: Conflicted\nSpec ID: 8\n## S\n"
	doc, err := document.Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.Metadata.SpecID != 8 {
		t.Errorf("SpecID = %d, want 8 (metadata wins)", doc.Metadata.SpecID)
	}
	if !hasWarning(doc.Warnings, "conflicts") {
		t.Errorf("want a conflict warning, got %v", doc.Warnings)
	}
}

func TestParseMalformedMetadataValue(t *testing.T) {
	doc, err := document.Parse("# Spec 2: M\nPhase: soon\n## S\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.Metadata.Phase != 0 {
		t.Errorf("Phase = %d, want 0", doc.Metadata.Phase)
	}
	if doc.Metadata.Custom["Phase"] != "soon" {
		t.Errorf("raw value not preserved: Custom = %v", doc.Metadata.Custom)
	}
	if !hasWarning(doc.Warnings, "malformed phase") {
		t.Errorf("want malformed-phase warning, got %v", doc.Warnings)
	}
}

func TestParseDuplicateSectionsMerge(t *testing.T) {
	content := "# Spec 4: Dup\n" +
		"## Tasks\n" +
		"- [ ] first\n" +
		"## Notes\n" +
		"some notes\n" +
		"## Tasks\n" +
		"- [x] second\n"

	doc, err := document.Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("got %d sections, want 2 (duplicates merge)", len(doc.Sections))
	}
	if !hasWarning(doc.Warnings, "duplicate section") {
		t.Errorf("want duplicate-section warning, got %v", doc.Warnings)
	}

	// Ordinals keep counting across the duplicate occurrences.
	if doc.Checklist[1].ID.Section != "Tasks" || doc.Checklist[1].ID.Ordinal != 2 {
		t.Errorf("second Tasks item id = %v, want Tasks/2", doc.Checklist[1].ID)
	}
	tasks := doc.Section("Tasks")
	if tasks == nil || !strings.Contains(tasks.RawContent, "second") {
		t.Errorf("merged section body missing later content: %+v", tasks)
	}
}

func TestParseCodeBlocks(t *testing.T) {
	content := "# Spec 5: Code\n" +
		"## Impl\n" +
		"```go\n" +
		"- [ ] not an item\n" +
		"## not a section\n" +
		"```\n" +
		"- [ ] real item\n"

	doc, err := document.Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.CodeBlocks) != 1 {
		t.Fatalf("got %d code blocks, want 1", len(doc.CodeBlocks))
	}
	cb := doc.CodeBlocks[0]
	if cb.Language != "go" || cb.Section != "Impl" {
		t.Errorf("code block = %+v", cb)
	}
	if cb.Content != "- [ ] not an item\n## not a section" {
		t.Errorf("code block content = %q", cb.Content)
	}
	if cb.StartLine != 3 || cb.EndLine != 7 {
		t.Errorf("code block range = [%d,%d), want [3,7)", cb.StartLine, cb.EndLine)
	}

	// Fence content never produces checklist items or sections.
	if len(doc.Checklist) != 1 || doc.Checklist[0].Text != "real item" {
		t.Errorf("checklist = %v, want only the real item", doc.Checklist)
	}
	if len(doc.Sections) != 1 {
		t.Errorf("sections = %v, want only Impl", doc.Sections)
	}
}

func TestParseUnterminatedFence(t *testing.T) {
	content := "# Spec 6: Open Fence\n## S\n```python\nprint('hi')\n"
	doc, err := document.Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.CodeBlocks) != 1 {
		t.Fatalf("got %d code blocks, want 1 (implicit close)", len(doc.CodeBlocks))
	}
	cb := doc.CodeBlocks[0]
	// The trailing-newline phantom segment is not fence content.
	if cb.Content != "print('hi')" {
		t.Errorf("code block content = %q, want %q", cb.Content, "print('hi')")
	}
	if cb.StartLine != 3 || cb.EndLine != 5 {
		t.Errorf("code block range = [%d,%d), want [3,5)", cb.StartLine, cb.EndLine)
	}
	if !hasWarning(doc.Warnings, "unterminated") {
		t.Errorf("want unterminated-fence warning, got %v", doc.Warnings)
	}
}

func TestParseCrossReferences(t *testing.T) {
	content := "# Spec 10: Refs\n" +
		"## Body\n" +
		"Builds on Spec 4: storage layer. See also spec-7.md and spec#12.\n" +
		"Linked as [the parser](spec_3.md) too.\n"

	doc, err := document.Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got := make(map[int]document.RefFormat)
	for _, ref := range doc.References {
		got[ref.TargetSpecID] = ref.Format
	}
	want := map[int]document.RefFormat{
		4:  document.RefColonForm,
		7:  document.RefFilenameForm,
		12: document.RefHashForm,
		3:  document.RefMarkdownLink,
	}
	for id, format := range want {
		if got[id] != format {
			t.Errorf("ref %d: format = %q, want %q (all refs: %v)", id, got[id], format, doc.References)
		}
	}
	// The title's own "Spec 10:" is not a reference.
	if _, ok := got[10]; ok {
		t.Errorf("title id leaked into references: %v", doc.References)
	}
}

func TestParseChecklistMarkerVariants(t *testing.T) {
	content := "# Spec 11: Markers\n" +
		"## S\n" +
		"* [X] star upper\n" +
		"  - [ ] indented dash\n" +
		"-[ ] missing gap is text\n"

	doc, err := document.Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.Checklist) != 2 {
		t.Fatalf("got %d items, want 2: %v", len(doc.Checklist), doc.Checklist)
	}
	if !doc.Checklist[0].Checked {
		t.Errorf("'X' token should count as checked")
	}
}

func TestItemIDStringRoundTrip(t *testing.T) {
	id := document.ItemID{SpecID: 3, Section: "Acceptance Criteria", Ordinal: 2}
	s := id.String()
	parsed, err := document.ParseItemID(s)
	if err != nil {
		t.Fatalf("ParseItemID(%q) error = %v", s, err)
	}
	if parsed != id {
		t.Errorf("round trip = %v, want %v", parsed, id)
	}

	// Section names may contain slashes; first/last split must still work.
	id = document.ItemID{SpecID: 1, Section: "A/B", Ordinal: 4}
	parsed, err = document.ParseItemID(id.String())
	if err != nil {
		t.Fatalf("ParseItemID(%q) error = %v", id.String(), err)
	}
	if parsed != id {
		t.Errorf("round trip = %v, want %v", parsed, id)
	}
}

func hasWarning(warnings []document.Warning, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}
