// Package document provides the lossless structural model for spec files:
// a line classifier, a structural parser, and a byte-preserving rewriter.
package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the lifecycle state recorded in a document's metadata block.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusComplete   Status = "complete"
	StatusBlocked    Status = "blocked"
	StatusDeprecated Status = "deprecated"
)

// ParseStatus normalizes a raw metadata value ("In Progress", "in-progress",
// "INPROGRESS") to a canonical Status. Returns false for unknown values.
func ParseStatus(raw string) (Status, bool) {
	key := strings.ToLower(raw)
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	switch key {
	case "draft":
		return StatusDraft, true
	case "planned":
		return StatusPlanned, true
	case "inprogress":
		return StatusInProgress, true
	case "review", "inreview":
		return StatusReview, true
	case "complete", "completed", "done":
		return StatusComplete, true
	case "blocked":
		return StatusBlocked, true
	case "deprecated":
		return StatusDeprecated, true
	}
	return "", false
}

// Metadata holds the recognized fields of a document's metadata block.
// Unrecognized fields are preserved verbatim in Custom.
type Metadata struct {
	Phase            int               `json:"phase" yaml:"phase"`
	SpecID           int               `json:"spec_id" yaml:"spec_id"`
	Status           Status            `json:"status" yaml:"status"`
	Dependencies     []string          `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	EstimatedContext string            `json:"estimated_context,omitempty" yaml:"estimated_context,omitempty"`
	Custom           map[string]string `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// Section is one second-level heading and its body.
type Section struct {
	Name       string `json:"name" yaml:"name"`
	RawContent string `json:"raw_content" yaml:"raw_content"`
	Ordinal    int    `json:"ordinal" yaml:"ordinal"`
}

// ItemID identifies a checklist item positionally. The ordinal counts only
// checklist lines within the section, 1-based, in document order. It is
// stable across re-parses as long as the count and relative order of
// checklist lines within the section is unchanged.
type ItemID struct {
	SpecID  int    `json:"spec_id" yaml:"spec_id"`
	Section string `json:"section" yaml:"section"`
	Ordinal int    `json:"ordinal" yaml:"ordinal"`
}

// String renders the id as "spec/section/ordinal".
func (id ItemID) String() string {
	return fmt.Sprintf("%d/%s/%d", id.SpecID, id.Section, id.Ordinal)
}

// ParseItemID parses the "spec/section/ordinal" form produced by String.
// The section name may itself contain slashes; the first and last separator
// win.
func ParseItemID(s string) (ItemID, error) {
	first := strings.Index(s, "/")
	last := strings.LastIndex(s, "/")
	if first < 0 || first == last {
		return ItemID{}, fmt.Errorf("invalid item id %q: want spec/section/ordinal", s)
	}
	specID, err := strconv.Atoi(s[:first])
	if err != nil {
		return ItemID{}, fmt.Errorf("invalid spec id in item id %q: %w", s, err)
	}
	ordinal, err := strconv.Atoi(s[last+1:])
	if err != nil {
		return ItemID{}, fmt.Errorf("invalid ordinal in item id %q: %w", s, err)
	}
	return ItemID{SpecID: specID, Section: s[first+1 : last], Ordinal: ordinal}, nil
}

// ChecklistItem is one actionable checkbox line.
type ChecklistItem struct {
	ID         ItemID `json:"id" yaml:"id"`
	Text       string `json:"text" yaml:"text"`
	Checked    bool   `json:"checked" yaml:"checked"`
	SourceLine int    `json:"source_line" yaml:"source_line"`
	Section    string `json:"section" yaml:"section"`
}

// CodeBlock is one fenced code block. LineRange is half-open: StartLine is
// the opening fence, EndLine is the line after the closing fence (1-based).
type CodeBlock struct {
	Language  string `json:"language,omitempty" yaml:"language,omitempty"`
	Content   string `json:"content" yaml:"content"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
	Section   string `json:"section" yaml:"section"`
}

// RefFormat describes how a cross-reference was written in the source.
type RefFormat string

const (
	RefColonForm    RefFormat = "colon"
	RefFilenameForm RefFormat = "filename"
	RefMarkdownLink RefFormat = "markdown_link"
	RefHashForm     RefFormat = "hash"
)

// CrossReference is a mention of another spec anywhere in the raw text.
type CrossReference struct {
	TargetSpecID int       `json:"target_spec_id" yaml:"target_spec_id"`
	Format       RefFormat `json:"format" yaml:"format"`
	SourceLine   int       `json:"source_line" yaml:"source_line"`
	MatchedText  string    `json:"matched_text" yaml:"matched_text"`
}

// Severity of a parse warning.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Warning is a non-fatal parse diagnostic.
type Warning struct {
	Message  string   `json:"message" yaml:"message"`
	Line     int      `json:"line" yaml:"line"`
	Severity Severity `json:"severity" yaml:"severity"`
}

// LineMap records where structures live in the source text. It exists for
// error reporting and targeted reconstruction, never for identity.
type LineMap struct {
	SectionStart  map[string]int `json:"section_start" yaml:"section_start"`
	MetadataStart int            `json:"metadata_start" yaml:"metadata_start"` // byte offset, -1 when absent
	MetadataEnd   int            `json:"metadata_end" yaml:"metadata_end"`     // byte offset, exclusive
	TotalLines    int            `json:"total_lines" yaml:"total_lines"`
}

// SpecDocument is the root value produced by one parse. It is immutable once
// produced; re-parse to refresh it.
type SpecDocument struct {
	Title      string           `json:"title" yaml:"title"`
	Metadata   Metadata         `json:"metadata" yaml:"metadata"`
	Sections   []Section        `json:"sections" yaml:"sections"`
	Checklist  []ChecklistItem  `json:"checklist_items" yaml:"checklist_items"`
	CodeBlocks []CodeBlock      `json:"code_blocks,omitempty" yaml:"code_blocks,omitempty"`
	References []CrossReference `json:"references,omitempty" yaml:"references,omitempty"`
	Warnings   []Warning        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Lines      LineMap          `json:"line_map" yaml:"line_map"`
}

// Section returns the named section, or nil.
func (d *SpecDocument) Section(name string) *Section {
	for i := range d.Sections {
		if d.Sections[i].Name == name {
			return &d.Sections[i]
		}
	}
	return nil
}

// Item returns the checklist item with the given id, or nil.
func (d *SpecDocument) Item(id ItemID) *ChecklistItem {
	for i := range d.Checklist {
		if d.Checklist[i].ID == id {
			return &d.Checklist[i]
		}
	}
	return nil
}
