package document

import (
	"fmt"
	"strings"
)

// RewriteChecklist walks content line by line, re-deriving each checklist
// line's (section, ordinal) identity exactly as Parse does, and asks decide
// for that position's state. When decide reports ok the single-character
// state token is rewritten; leading indentation, the marker character and the
// rest of the line are preserved byte-for-byte. Every other line passes
// through unchanged, so a walk where decide never reports ok reproduces the
// input exactly.
func RewriteChecklist(content string, decide func(section string, ordinal int) (checked, ok bool)) string {
	lines := strings.Split(content, "\n")
	walker := newLineWalker()

	for i, line := range lines {
		kind, ordinal := walker.step(line)
		if kind != LineChecklistItem {
			continue
		}
		checked, ok := decide(walker.section, ordinal)
		if !ok {
			continue
		}
		raw := strings.TrimRight(line, "\r")
		parts, matched := parseChecklistLine(raw)
		if !matched {
			continue
		}
		if parts.checked() == checked {
			// Never touch a line whose state already agrees; "X" stays "X".
			continue
		}
		if strings.HasSuffix(line, "\r") {
			parts.rest += "\r"
		}
		lines[i] = parts.render(checked)
	}

	return strings.Join(lines, "\n")
}

// RewriteStatus replaces the value of the status metadata field in place,
// preserving every other byte of the document. It returns an error when the
// metadata block carries no status field.
func RewriteStatus(content string, status Status) (string, error) {
	lines := strings.Split(content, "\n")
	walker := newLineWalker()
	titleSeen := false
	metaOpen := false

	for i, line := range lines {
		kind, _ := walker.step(line)
		switch kind {
		case LineTitle:
			if !titleSeen {
				titleSeen = true
				metaOpen = true
			}
		case LineSectionHeading:
			metaOpen = false
		case LineMetadataField:
			if !metaOpen {
				continue
			}
			name, _, _ := parseMetadataLine(line)
			if canonicalField[normalizeFieldName(name)] != "status" {
				continue
			}
			raw := strings.TrimRight(line, "\r")
			colon := strings.Index(raw, ":")
			prefix := raw[:colon+1]
			// Keep the separator whitespace that followed the colon.
			value := raw[colon+1:]
			sep := value[:len(value)-len(strings.TrimLeft(value, " \t"))]
			rebuilt := prefix + sep + string(status)
			if strings.HasSuffix(line, "\r") {
				rebuilt += "\r"
			}
			lines[i] = rebuilt
			return strings.Join(lines, "\n"), nil
		default:
			if metaOpen && kind == LineText && strings.TrimSpace(line) != "" {
				metaOpen = false
			}
		}
	}

	return "", fmt.Errorf("document has no status metadata field")
}
