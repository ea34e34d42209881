// Package diffing computes structural differences between two parsed spec
// documents. Diffing is a total function: any two well-formed documents
// produce a SpecDiff without error.
package diffing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/specmark/specmark/pkg/domain/document"
)

// DefaultContext is the context window around each changed run.
const DefaultContext = 3

// ChangeKind tags added/removed/modified entries.
type ChangeKind string

const (
	KindAdded        ChangeKind = "added"
	KindRemoved      ChangeKind = "removed"
	KindModified     ChangeKind = "modified"
	KindStateChanged ChangeKind = "state_changed"
)

// StringChange is an old/new pair for scalar values.
type StringChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// FieldChange reports one metadata field that differs.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// DependencyChange is the set difference of the dependency lists. Reordering
// alone reports nothing.
type DependencyChange struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// SectionChange reports one added, removed or modified section. Modified
// sections carry line-level hunks.
type SectionChange struct {
	Kind  ChangeKind `json:"kind"`
	Name  string     `json:"name"`
	Hunks []Hunk     `json:"hunks,omitempty"`
}

// ItemChange reports one checklist item difference. Items are matched by
// exact text within the same section — the two snapshots share no live
// identity space, so positional ids do not apply here. A text edit therefore
// surfaces as one removal plus one addition.
type ItemChange struct {
	Kind       ChangeKind `json:"kind"`
	Section    string     `json:"section"`
	Text       string     `json:"text"`
	OldChecked bool       `json:"old_checked,omitempty"`
	NewChecked bool       `json:"new_checked,omitempty"`
}

// CodeBlockChange reports one code block difference, keyed by
// (section, language).
type CodeBlockChange struct {
	Kind     ChangeKind `json:"kind"`
	Section  string     `json:"section"`
	Language string     `json:"language"`
	Hunks    []Hunk     `json:"hunks,omitempty"`
}

// Stats aggregates counts across all categories for quick summarization.
type Stats struct {
	SectionsAdded      int `json:"sections_added"`
	SectionsRemoved    int `json:"sections_removed"`
	SectionsModified   int `json:"sections_modified"`
	ItemsAdded         int `json:"items_added"`
	ItemsRemoved       int `json:"items_removed"`
	ItemsStateChanged  int `json:"items_state_changed"`
	MetadataChanged    int `json:"metadata_changed"`
	CodeBlocksAdded    int `json:"code_blocks_added"`
	CodeBlocksRemoved  int `json:"code_blocks_removed"`
	CodeBlocksModified int `json:"code_blocks_modified"`
	LinesAdded         int `json:"lines_added"`
	LinesRemoved       int `json:"lines_removed"`
}

// SpecDiff is the structural difference between two document snapshots.
type SpecDiff struct {
	Title        *StringChange     `json:"title,omitempty"`
	Metadata     []FieldChange     `json:"metadata,omitempty"`
	Dependencies *DependencyChange `json:"dependencies,omitempty"`
	Sections     []SectionChange   `json:"sections,omitempty"`
	Items        []ItemChange      `json:"items,omitempty"`
	CodeBlocks   []CodeBlockChange `json:"code_blocks,omitempty"`
	Stats        Stats             `json:"stats"`
}

// Empty reports whether the two documents were structurally identical.
func (d *SpecDiff) Empty() bool {
	return d.Title == nil && len(d.Metadata) == 0 && d.Dependencies == nil &&
		len(d.Sections) == 0 && len(d.Items) == 0 && len(d.CodeBlocks) == 0
}

// Options tune the comparison.
type Options struct {
	// Context is the number of unchanged lines kept around each changed run.
	Context int
}

// Diff compares two snapshots with the default context window.
func Diff(oldDoc, newDoc *document.SpecDocument) *SpecDiff {
	return DiffWithOptions(oldDoc, newDoc, Options{Context: DefaultContext})
}

// DiffWithOptions compares two snapshots.
func DiffWithOptions(oldDoc, newDoc *document.SpecDocument, opts Options) *SpecDiff {
	if opts.Context < 0 {
		opts.Context = DefaultContext
	}
	d := &SpecDiff{}

	if oldDoc.Title != newDoc.Title {
		d.Title = &StringChange{Old: oldDoc.Title, New: newDoc.Title}
	}
	diffMetadata(d, oldDoc.Metadata, newDoc.Metadata)
	diffSections(d, oldDoc.Sections, newDoc.Sections, opts.Context)
	diffItems(d, oldDoc.Checklist, newDoc.Checklist)
	diffCodeBlocks(d, oldDoc.CodeBlocks, newDoc.CodeBlocks, opts.Context)

	for _, sc := range d.Sections {
		countHunkLines(&d.Stats, sc.Hunks)
	}
	for _, cc := range d.CodeBlocks {
		countHunkLines(&d.Stats, cc.Hunks)
	}
	return d
}

func diffMetadata(d *SpecDiff, oldMD, newMD document.Metadata) {
	addField := func(field, oldV, newV string) {
		if oldV != newV {
			d.Metadata = append(d.Metadata, FieldChange{Field: field, Old: oldV, New: newV})
		}
	}
	addField("phase", fmt.Sprintf("%d", oldMD.Phase), fmt.Sprintf("%d", newMD.Phase))
	addField("spec_id", fmt.Sprintf("%d", oldMD.SpecID), fmt.Sprintf("%d", newMD.SpecID))
	addField("status", string(oldMD.Status), string(newMD.Status))
	addField("estimated_context", oldMD.EstimatedContext, newMD.EstimatedContext)

	customKeys := make(map[string]bool)
	for k := range oldMD.Custom {
		customKeys[k] = true
	}
	for k := range newMD.Custom {
		customKeys[k] = true
	}
	sorted := make([]string, 0, len(customKeys))
	for k := range customKeys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)
	for _, k := range sorted {
		addField("custom."+k, oldMD.Custom[k], newMD.Custom[k])
	}
	d.Stats.MetadataChanged = len(d.Metadata)

	added, removed := setDifference(oldMD.Dependencies, newMD.Dependencies)
	if len(added) > 0 || len(removed) > 0 {
		d.Dependencies = &DependencyChange{Added: added, Removed: removed}
	}
}

// setDifference is order-independent: it reports additions and removals but
// never a reordering-only change.
func setDifference(oldList, newList []string) (added, removed []string) {
	oldSet := make(map[string]bool, len(oldList))
	for _, s := range oldList {
		oldSet[s] = true
	}
	newSet := make(map[string]bool, len(newList))
	for _, s := range newList {
		newSet[s] = true
	}
	for _, s := range newList {
		if !oldSet[s] {
			added = append(added, s)
		}
	}
	for _, s := range oldList {
		if !newSet[s] {
			removed = append(removed, s)
		}
	}
	return added, removed
}

func diffSections(d *SpecDiff, oldSecs, newSecs []document.Section, context int) {
	newByName := make(map[string]*document.Section, len(newSecs))
	for i := range newSecs {
		newByName[newSecs[i].Name] = &newSecs[i]
	}
	oldNames := make(map[string]bool, len(oldSecs))

	for i := range oldSecs {
		oldSec := &oldSecs[i]
		oldNames[oldSec.Name] = true
		newSec, ok := newByName[oldSec.Name]
		if !ok {
			d.Sections = append(d.Sections, SectionChange{Kind: KindRemoved, Name: oldSec.Name})
			d.Stats.SectionsRemoved++
			continue
		}
		if oldSec.RawContent == newSec.RawContent {
			continue
		}
		hunks := diffLines(splitBody(oldSec.RawContent), splitBody(newSec.RawContent), context)
		d.Sections = append(d.Sections, SectionChange{Kind: KindModified, Name: oldSec.Name, Hunks: hunks})
		d.Stats.SectionsModified++
	}
	for i := range newSecs {
		if !oldNames[newSecs[i].Name] {
			d.Sections = append(d.Sections, SectionChange{Kind: KindAdded, Name: newSecs[i].Name})
			d.Stats.SectionsAdded++
		}
	}
}

func diffItems(d *SpecDiff, oldItems, newItems []document.ChecklistItem) {
	type key struct{ section, text string }
	matchedNew := make([]bool, len(newItems))

	for _, oldItem := range oldItems {
		matched := -1
		for j, newItem := range newItems {
			if matchedNew[j] {
				continue
			}
			if (key{newItem.Section, newItem.Text}) == (key{oldItem.Section, oldItem.Text}) {
				matched = j
				break
			}
		}
		if matched < 0 {
			d.Items = append(d.Items, ItemChange{Kind: KindRemoved, Section: oldItem.Section, Text: oldItem.Text, OldChecked: oldItem.Checked})
			d.Stats.ItemsRemoved++
			continue
		}
		matchedNew[matched] = true
		if oldItem.Checked != newItems[matched].Checked {
			d.Items = append(d.Items, ItemChange{
				Kind:       KindStateChanged,
				Section:    oldItem.Section,
				Text:       oldItem.Text,
				OldChecked: oldItem.Checked,
				NewChecked: newItems[matched].Checked,
			})
			d.Stats.ItemsStateChanged++
		}
	}
	for j, newItem := range newItems {
		if !matchedNew[j] {
			d.Items = append(d.Items, ItemChange{Kind: KindAdded, Section: newItem.Section, Text: newItem.Text, NewChecked: newItem.Checked})
			d.Stats.ItemsAdded++
		}
	}
}

func diffCodeBlocks(d *SpecDiff, oldBlocks, newBlocks []document.CodeBlock, context int) {
	type key struct{ section, language string }
	matchedNew := make([]bool, len(newBlocks))

	for _, oldBlock := range oldBlocks {
		matched := -1
		for j, newBlock := range newBlocks {
			if matchedNew[j] {
				continue
			}
			if (key{newBlock.Section, newBlock.Language}) == (key{oldBlock.Section, oldBlock.Language}) {
				matched = j
				break
			}
		}
		if matched < 0 {
			d.CodeBlocks = append(d.CodeBlocks, CodeBlockChange{Kind: KindRemoved, Section: oldBlock.Section, Language: oldBlock.Language})
			d.Stats.CodeBlocksRemoved++
			continue
		}
		matchedNew[matched] = true
		if oldBlock.Content == newBlocks[matched].Content {
			continue
		}
		hunks := diffLines(splitBody(oldBlock.Content), splitBody(newBlocks[matched].Content), context)
		d.CodeBlocks = append(d.CodeBlocks, CodeBlockChange{Kind: KindModified, Section: oldBlock.Section, Language: oldBlock.Language, Hunks: hunks})
		d.Stats.CodeBlocksModified++
	}
	for j, newBlock := range newBlocks {
		if !matchedNew[j] {
			d.CodeBlocks = append(d.CodeBlocks, CodeBlockChange{Kind: KindAdded, Section: newBlock.Section, Language: newBlock.Language})
			d.Stats.CodeBlocksAdded++
		}
	}
}

func countHunkLines(stats *Stats, hunks []Hunk) {
	for _, h := range hunks {
		for _, l := range h.Lines {
			switch l.Tag {
			case TagAddition:
				stats.LinesAdded++
			case TagDeletion:
				stats.LinesRemoved++
			}
		}
	}
}

func splitBody(body string) []string {
	if body == "" {
		return nil
	}
	return strings.Split(body, "\n")
}
