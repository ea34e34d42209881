package document

import (
	"regexp"
	"strings"
)

// LineKind is the classification of one raw source line.
type LineKind int

const (
	LineText LineKind = iota
	LineTitle
	LineSectionHeading
	LineMetadataField
	LineChecklistItem
	LineFenceDelimiter
	LineCode
)

var (
	titleRe   = regexp.MustCompile(`^#\s+(\S.*)$`)
	sectionRe = regexp.MustCompile(`^##\s+(\S.*)$`)
	// indent, marker, gap, state token, remainder. The remainder keeps its
	// leading separator so the rewriter can reproduce the line byte-for-byte.
	checklistRe = regexp.MustCompile(`^([ \t]*)([-*])([ \t]+)\[([ xX])\](.*)$`)
	fenceRe     = regexp.MustCompile("^```(.*)$")
	// optional "- " bullet, optional ** emphasis, field name, colon, value.
	metadataRe = regexp.MustCompile(`^(?:-\s+)?(\*\*)?([A-Za-z][A-Za-z0-9 _-]{0,40}?)(\*\*)?\s*:\s*(.*?)\s*$`)
)

// ClassifyLine maps one raw line plus the current fence state to a line kind.
// Inside a code fence every line except the closing delimiter is code.
// Metadata recognition is positional (only between the title and the first
// section heading); the parser applies that constraint on top of the shape
// reported here.
func ClassifyLine(line string, inFence bool) LineKind {
	trimmed := strings.TrimRight(line, "\r")
	if inFence {
		if fenceRe.MatchString(trimmed) {
			return LineFenceDelimiter
		}
		return LineCode
	}
	switch {
	case fenceRe.MatchString(trimmed):
		return LineFenceDelimiter
	case sectionRe.MatchString(trimmed):
		return LineSectionHeading
	case titleRe.MatchString(trimmed) && !strings.HasPrefix(trimmed, "##"):
		return LineTitle
	case checklistRe.MatchString(trimmed):
		return LineChecklistItem
	case metadataRe.MatchString(trimmed):
		return LineMetadataField
	}
	return LineText
}

// checklistParts holds the byte-exact pieces of a recognized checklist line.
type checklistParts struct {
	indent string
	marker string
	gap    string
	token  string // " ", "x" or "X"
	rest   string // everything after "]", including any trailing "\r"
}

func (p checklistParts) checked() bool {
	return p.token == "x" || p.token == "X"
}

func (p checklistParts) text() string {
	return strings.TrimSpace(strings.TrimRight(p.rest, "\r"))
}

// render reassembles the line, substituting the state token. All other bytes
// are reproduced exactly as captured.
func (p checklistParts) render(checked bool) string {
	token := " "
	if checked {
		token = "x"
	}
	return p.indent + p.marker + p.gap + "[" + token + "]" + p.rest
}

func parseChecklistLine(line string) (checklistParts, bool) {
	m := checklistRe.FindStringSubmatch(line)
	if m == nil {
		return checklistParts{}, false
	}
	return checklistParts{indent: m[1], marker: m[2], gap: m[3], token: m[4], rest: m[5]}, true
}

func parseSectionHeading(line string) (string, bool) {
	m := sectionRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func parseTitleHeading(line string) (string, bool) {
	trimmed := strings.TrimRight(line, "\r")
	if strings.HasPrefix(trimmed, "##") {
		return "", false
	}
	m := titleRe.FindStringSubmatch(trimmed)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func parseFenceDelimiter(line string) (string, bool) {
	m := fenceRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func parseMetadataLine(line string) (name, value string, ok bool) {
	m := metadataRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return "", "", false
	}
	// Reject half-emphasized names like "**Phase:" — both markers or neither.
	if (m[1] == "") != (m[3] == "") {
		return "", "", false
	}
	return strings.TrimSpace(m[2]), m[4], true
}
