package diffing_test

import (
	"strings"
	"testing"

	"github.com/specmark/specmark/pkg/domain/diffing"
	"github.com/specmark/specmark/pkg/domain/document"
)

func parse(t *testing.T, content string) *document.SpecDocument {
	t.Helper()
	doc, err := document.Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func TestDiffIdenticalDocuments(t *testing.T) {
	content := "# Spec 1: Same\n## Tasks\n- [ ] a\n"
	d := diffing.Diff(parse(t, content), parse(t, content))
	if !d.Empty() {
		t.Errorf("diff of identical documents not empty: %+v", d)
	}
}

func TestDiffSectionRenameIsRemoveAndAdd(t *testing.T) {
	oldDoc := parse(t, "# Spec 1: X\n## Testing\ntest content\n")
	newDoc := parse(t, "# Spec 1: X\n## Notes\ntest content\n")

	d := diffing.Diff(oldDoc, newDoc)

	var removed, added int
	for _, sc := range d.Sections {
		switch sc.Kind {
		case diffing.KindRemoved:
			removed++
			if sc.Name != "Testing" {
				t.Errorf("removed section = %q, want Testing", sc.Name)
			}
		case diffing.KindAdded:
			added++
			if sc.Name != "Notes" {
				t.Errorf("added section = %q, want Notes", sc.Name)
			}
		case diffing.KindModified:
			t.Errorf("unexpected modified section %q", sc.Name)
		}
	}
	if removed != 1 || added != 1 {
		t.Errorf("removed=%d added=%d, want 1 and 1", removed, added)
	}
	if d.Stats.SectionsRemoved != 1 || d.Stats.SectionsAdded != 1 {
		t.Errorf("stats = %+v", d.Stats)
	}
}

func TestDiffSymmetry(t *testing.T) {
	oldDoc := parse(t, "# Spec 1: X\nStatus: draft\n## A\nline one\nline two\n## B\n- [ ] item\n")
	newDoc := parse(t, "# Spec 1: X\nStatus: planned\n## A\nline one\nline changed\n## C\n- [x] item\n")

	fwd := diffing.Diff(oldDoc, newDoc)
	rev := diffing.Diff(newDoc, oldDoc)

	if fwd.Stats.SectionsAdded != rev.Stats.SectionsRemoved ||
		fwd.Stats.SectionsRemoved != rev.Stats.SectionsAdded {
		t.Errorf("section stats not mirrored: fwd=%+v rev=%+v", fwd.Stats, rev.Stats)
	}
	if fwd.Stats.ItemsAdded != rev.Stats.ItemsRemoved ||
		fwd.Stats.ItemsRemoved != rev.Stats.ItemsAdded {
		t.Errorf("item stats not mirrored: fwd=%+v rev=%+v", fwd.Stats, rev.Stats)
	}
	if fwd.Stats.LinesAdded != rev.Stats.LinesRemoved ||
		fwd.Stats.LinesRemoved != rev.Stats.LinesAdded {
		t.Errorf("line stats not mirrored: fwd=%+v rev=%+v", fwd.Stats, rev.Stats)
	}
}

func TestDiffItemStateChange(t *testing.T) {
	oldDoc := parse(t, "# Spec 1: X\n## Tasks\n- [ ] ship it\n")
	newDoc := parse(t, "# Spec 1: X\n## Tasks\n- [x] ship it\n")

	d := diffing.Diff(oldDoc, newDoc)
	if len(d.Items) != 1 {
		t.Fatalf("got %d item changes, want 1: %+v", len(d.Items), d.Items)
	}
	ic := d.Items[0]
	if ic.Kind != diffing.KindStateChanged || ic.OldChecked || !ic.NewChecked {
		t.Errorf("item change = %+v", ic)
	}
	if d.Stats.ItemsStateChanged != 1 {
		t.Errorf("stats = %+v", d.Stats)
	}
}

func TestDiffItemTextEditIsRemoveAndAdd(t *testing.T) {
	oldDoc := parse(t, "# Spec 1: X\n## Tasks\n- [ ] old wording\n")
	newDoc := parse(t, "# Spec 1: X\n## Tasks\n- [ ] new wording\n")

	d := diffing.Diff(oldDoc, newDoc)
	if d.Stats.ItemsRemoved != 1 || d.Stats.ItemsAdded != 1 || d.Stats.ItemsStateChanged != 0 {
		t.Errorf("stats = %+v, want one removal plus one addition", d.Stats)
	}
}

func TestDiffDependenciesAsSet(t *testing.T) {
	oldDoc := parse(t, "# Spec 1: X\nDependencies: a, b, c\n## S\n")
	reordered := parse(t, "# Spec 1: X\nDependencies: c, a, b\n## S\n")
	changed := parse(t, "# Spec 1: X\nDependencies: a, b, d\n## S\n")

	if d := diffing.Diff(oldDoc, reordered); d.Dependencies != nil {
		t.Errorf("reordering reported a change: %+v", d.Dependencies)
	}

	d := diffing.Diff(oldDoc, changed)
	if d.Dependencies == nil {
		t.Fatal("dependency change not reported")
	}
	if len(d.Dependencies.Added) != 1 || d.Dependencies.Added[0] != "d" {
		t.Errorf("added = %v, want [d]", d.Dependencies.Added)
	}
	if len(d.Dependencies.Removed) != 1 || d.Dependencies.Removed[0] != "c" {
		t.Errorf("removed = %v, want [c]", d.Dependencies.Removed)
	}
}

func TestDiffMetadataFields(t *testing.T) {
	oldDoc := parse(t, "# Spec 1: X\nStatus: draft\nPhase: 1\n## S\n")
	newDoc := parse(t, "# Spec 1: X\nStatus: in_progress\nPhase: 1\n## S\n")

	d := diffing.Diff(oldDoc, newDoc)
	if len(d.Metadata) != 1 {
		t.Fatalf("metadata changes = %+v, want exactly status", d.Metadata)
	}
	fc := d.Metadata[0]
	if fc.Field != "status" || fc.Old != "draft" || fc.New != "in_progress" {
		t.Errorf("field change = %+v", fc)
	}
}

func TestDiffSectionHunks(t *testing.T) {
	oldBody := "# Spec 1: X\n## Body\nl1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9\nl10\n"
	newBody := "# Spec 1: X\n## Body\nl1\nl2\nl3\nl4\nCHANGED\nl6\nl7\nl8\nl9\nl10\n"

	d := diffing.DiffWithOptions(parse(t, oldBody), parse(t, newBody), diffing.Options{Context: 2})
	if len(d.Sections) != 1 || d.Sections[0].Kind != diffing.KindModified {
		t.Fatalf("sections = %+v", d.Sections)
	}
	hunks := d.Sections[0].Hunks
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(hunks))
	}
	h := hunks[0]
	// 2 context + deletion + addition + 2 context.
	if len(h.Lines) != 6 {
		t.Errorf("hunk lines = %d, want 6: %+v", len(h.Lines), h.Lines)
	}
	if h.OldStart != 3 || h.NewStart != 3 {
		t.Errorf("hunk starts = %d/%d, want 3/3", h.OldStart, h.NewStart)
	}
	if d.Stats.LinesAdded != 1 || d.Stats.LinesRemoved != 1 {
		t.Errorf("line stats = %+v", d.Stats)
	}
}

func TestDiffCodeBlocks(t *testing.T) {
	oldDoc := parse(t, "# Spec 1: X\n## Impl\n```go\nold()\n```\n")
	newDoc := parse(t, "# Spec 1: X\n## Impl\n```go\nnew()\n```\n```sh\nrun\n```\n")

	d := diffing.Diff(oldDoc, newDoc)
	var modified, added int
	for _, cc := range d.CodeBlocks {
		switch cc.Kind {
		case diffing.KindModified:
			modified++
			if cc.Language != "go" {
				t.Errorf("modified block language = %q", cc.Language)
			}
		case diffing.KindAdded:
			added++
			if cc.Language != "sh" {
				t.Errorf("added block language = %q", cc.Language)
			}
		}
	}
	if modified != 1 || added != 1 {
		t.Errorf("code blocks: modified=%d added=%d, want 1 and 1", modified, added)
	}
}

func TestUnifiedRendering(t *testing.T) {
	oldDoc := parse(t, "# Spec 1: X\n## Body\nkeep\ndrop\n")
	newDoc := parse(t, "# Spec 1: X\n## Body\nkeep\ngain\n")

	out := diffing.Diff(oldDoc, newDoc).Unified("a.md", "b.md")
	for _, want := range []string{"--- a.md", "+++ b.md", "@@ -", "-drop", "+gain", " keep"} {
		if !strings.Contains(out, want) {
			t.Errorf("unified output missing %q:\n%s", want, out)
		}
	}
}

func TestTextRenderingSummary(t *testing.T) {
	oldDoc := parse(t, "# Spec 1: X\n## Testing\nbody\n")
	newDoc := parse(t, "# Spec 1: X\n## Notes\nbody\n")

	out := diffing.Diff(oldDoc, newDoc).Text(false)
	if !strings.Contains(out, `- section "Testing"`) || !strings.Contains(out, `+ section "Notes"`) {
		t.Errorf("text output:\n%s", out)
	}
	if !strings.Contains(out, "sections +1 -1") {
		t.Errorf("stats line missing:\n%s", out)
	}

	empty := diffing.Diff(oldDoc, oldDoc).Text(false)
	if !strings.Contains(empty, "no structural changes") {
		t.Errorf("empty diff text = %q", empty)
	}
}
