package document

import (
	"fmt"
	"strings"
)

// lineWalker derives the (section, ordinal) identity of checklist lines the
// same way for every consumer. Parse and RewriteChecklist must never drift
// apart on this derivation, so both drive their loops through it.
type lineWalker struct {
	inFence  bool
	section  string
	ordinals map[string]int
}

func newLineWalker() *lineWalker {
	return &lineWalker{ordinals: make(map[string]int)}
}

// step classifies one line and advances the walker state. For checklist
// lines it returns the 1-based ordinal within the current section.
func (w *lineWalker) step(line string) (kind LineKind, ordinal int) {
	kind = ClassifyLine(line, w.inFence)
	switch kind {
	case LineFenceDelimiter:
		w.inFence = !w.inFence
	case LineSectionHeading:
		name, _ := parseSectionHeading(line)
		w.section = name
	case LineChecklistItem:
		w.ordinals[w.section]++
		ordinal = w.ordinals[w.section]
	}
	return kind, ordinal
}

// Parse builds a SpecDocument from UTF-8 text. It fails only when no
// top-level heading precedes the first second-level heading; every other
// irregularity is accumulated as a Warning so partially-malformed documents
// stay usable. The returned document is a pure value; Parse has no side
// effects.
func Parse(content string) (*SpecDocument, error) {
	lines := strings.Split(content, "\n")

	doc := &SpecDocument{
		Lines: LineMap{
			SectionStart:  make(map[string]int),
			MetadataStart: -1,
			MetadataEnd:   -1,
			TotalLines:    len(lines),
		},
	}

	var (
		walker      = newLineWalker()
		titleSeen   bool
		titleLine   int
		titleSpecID int
		metaOpen    bool

		sectionIdx = make(map[string]int) // name -> index in doc.Sections
		bodyStart  = -1                   // first body line of the open section
		openName   string
		hasOpen    bool

		fenceLang  string
		fenceStart int // 1-based opening fence line
		fenceBody  []int

		byteOffset int
	)

	closeSection := func(end int) {
		if !hasOpen {
			return
		}
		body := strings.TrimSpace(strings.Join(lines[bodyStart:end], "\n"))
		i := sectionIdx[openName]
		if doc.Sections[i].RawContent == "" {
			doc.Sections[i].RawContent = body
		} else if body != "" {
			doc.Sections[i].RawContent += "\n" + body
		}
		hasOpen = false
	}

	for i, line := range lines {
		lineNo := i + 1
		kind, ordinal := walker.step(line)

		switch kind {
		case LineTitle:
			if !titleSeen {
				title, _ := parseTitleHeading(line)
				doc.Title = title
				titleSeen = true
				titleLine = lineNo
				titleSpecID = titleEmbeddedID(title)
				metaOpen = true
			}
			// Later top-level headings are plain text content.

		case LineSectionHeading:
			if !titleSeen {
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrMissingTitle)
			}
			metaOpen = false
			closeSection(i)
			name := walker.section
			if _, dup := sectionIdx[name]; dup {
				doc.Warnings = append(doc.Warnings, Warning{
					Message:  fmt.Sprintf("duplicate section %q; content merged with line %d", name, doc.Lines.SectionStart[name]),
					Line:     lineNo,
					Severity: SeverityWarning,
				})
			} else {
				sectionIdx[name] = len(doc.Sections)
				doc.Sections = append(doc.Sections, Section{Name: name, Ordinal: len(doc.Sections) + 1})
				doc.Lines.SectionStart[name] = lineNo
			}
			openName = name
			hasOpen = true
			bodyStart = i + 1

		case LineMetadataField:
			if metaOpen {
				name, value, _ := parseMetadataLine(line)
				if warn := applyMetadataField(&doc.Metadata, name, value); warn != "" {
					doc.Warnings = append(doc.Warnings, Warning{Message: warn, Line: lineNo, Severity: SeverityWarning})
				}
				if doc.Lines.MetadataStart < 0 {
					doc.Lines.MetadataStart = byteOffset
				}
				doc.Lines.MetadataEnd = byteOffset + len(line)
			}

		case LineChecklistItem:
			parts, _ := parseChecklistLine(strings.TrimRight(line, "\r"))
			doc.Checklist = append(doc.Checklist, ChecklistItem{
				ID:         ItemID{Section: walker.section, Ordinal: ordinal},
				Text:       parts.text(),
				Checked:    parts.checked(),
				SourceLine: lineNo,
				Section:    walker.section,
			})
			metaOpen = false

		case LineFenceDelimiter:
			if walker.inFence {
				// Fence just opened.
				fenceLang, _ = parseFenceDelimiter(line)
				fenceStart = lineNo
				fenceBody = fenceBody[:0]
			} else {
				doc.CodeBlocks = append(doc.CodeBlocks, CodeBlock{
					Language:  fenceLang,
					Content:   joinLines(lines, fenceBody),
					StartLine: fenceStart,
					EndLine:   lineNo + 1,
					Section:   walker.section,
				})
			}
			metaOpen = false

		case LineCode:
			fenceBody = append(fenceBody, i)

		case LineText:
			if metaOpen && strings.TrimSpace(line) != "" {
				metaOpen = false
			}
		}

		byteOffset += len(line) + 1
	}

	if !titleSeen {
		return nil, ErrMissingTitle
	}
	closeSection(len(lines))

	if walker.inFence {
		// A trailing-newline file splits into a final empty segment; it is
		// not fence content, so the implicit close excludes it.
		last := len(lines)
		if last > 0 && lines[last-1] == "" {
			last--
			if n := len(fenceBody); n > 0 && fenceBody[n-1] == last {
				fenceBody = fenceBody[:n-1]
			}
		}
		doc.CodeBlocks = append(doc.CodeBlocks, CodeBlock{
			Language:  fenceLang,
			Content:   joinLines(lines, fenceBody),
			StartLine: fenceStart,
			EndLine:   last + 1,
			Section:   walker.section,
		})
		doc.Warnings = append(doc.Warnings, Warning{
			Message:  "unterminated code fence; closed implicitly at end of input",
			Line:     fenceStart,
			Severity: SeverityWarning,
		})
	}

	resolveSpecID(doc, titleSpecID, titleLine)
	for i := range doc.Checklist {
		doc.Checklist[i].ID.SpecID = doc.Metadata.SpecID
	}
	doc.References = extractReferences(lines, titleLine)

	return doc, nil
}

// resolveSpecID applies the title-embedded id as a fallback when the
// metadata block omits spec_id. Metadata wins on conflict.
func resolveSpecID(doc *SpecDocument, titleSpecID, titleLine int) {
	switch {
	case doc.Metadata.SpecID == 0 && titleSpecID != 0:
		doc.Metadata.SpecID = titleSpecID
	case doc.Metadata.SpecID != 0 && titleSpecID != 0 && doc.Metadata.SpecID != titleSpecID:
		doc.Warnings = append(doc.Warnings, Warning{
			Message:  fmt.Sprintf("title id %d conflicts with metadata spec id %d; metadata wins", titleSpecID, doc.Metadata.SpecID),
			Line:     titleLine,
			Severity: SeverityWarning,
		})
	}
	if doc.Metadata.SpecID == 0 {
		doc.Warnings = append(doc.Warnings, Warning{
			Message:  "missing or zero spec id",
			Line:     titleLine,
			Severity: SeverityWarning,
		})
	}
}

func joinLines(lines []string, idx []int) string {
	parts := make([]string, 0, len(idx))
	for _, i := range idx {
		parts = append(parts, lines[i])
	}
	return strings.Join(parts, "\n")
}
