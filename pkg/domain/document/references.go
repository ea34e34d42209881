package document

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	titleIDRe  = regexp.MustCompile(`(?i)^spec\s+(\d+)\s*:`)
	colonRe    = regexp.MustCompile(`(?i)\bspec\s+(\d+)\s*:`)
	filenameRe = regexp.MustCompile(`(?i)\bspec[-_](\d+)\.md\b`)
	hashRe     = regexp.MustCompile(`(?i)\bspec#(\d+)`)
	mdLinkRe   = regexp.MustCompile(`\[[^\]]*\]\(([^)\s]+)\)`)
)

// titleEmbeddedID extracts the fallback spec id from a "Spec N: ..." title.
// Returns 0 when the title carries no id.
func titleEmbeddedID(title string) int {
	m := titleIDRe.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// extractReferences runs as a second pass over the full raw text because
// cross-references may appear anywhere, including prose outside any
// recognized section. The title line is skipped so a title-embedded id does
// not register as a self-reference.
func extractReferences(lines []string, titleLine int) []CrossReference {
	var refs []CrossReference
	for i, line := range lines {
		lineNo := i + 1
		if lineNo == titleLine {
			continue
		}

		// Markdown links first; spans they cover are excluded from the
		// bare-filename scan so one link yields one reference.
		var covered [][2]int
		for _, loc := range mdLinkRe.FindAllStringSubmatchIndex(line, -1) {
			target := line[loc[2]:loc[3]]
			fm := filenameRe.FindStringSubmatch(target)
			if fm == nil {
				continue
			}
			if id, err := strconv.Atoi(fm[1]); err == nil {
				refs = append(refs, CrossReference{
					TargetSpecID: id,
					Format:       RefMarkdownLink,
					SourceLine:   lineNo,
					MatchedText:  line[loc[0]:loc[1]],
				})
			}
			covered = append(covered, [2]int{loc[0], loc[1]})
		}

		refs = appendMatches(refs, line, lineNo, filenameRe, RefFilenameForm, covered)
		refs = appendMatches(refs, line, lineNo, colonRe, RefColonForm, covered)
		refs = appendMatches(refs, line, lineNo, hashRe, RefHashForm, covered)
	}
	return refs
}

func appendMatches(refs []CrossReference, line string, lineNo int, re *regexp.Regexp, format RefFormat, covered [][2]int) []CrossReference {
	for _, loc := range re.FindAllStringSubmatchIndex(line, -1) {
		if overlaps(loc[0], loc[1], covered) {
			continue
		}
		id, err := strconv.Atoi(line[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		refs = append(refs, CrossReference{
			TargetSpecID: id,
			Format:       format,
			SourceLine:   lineNo,
			MatchedText:  line[loc[0]:loc[1]],
		})
	}
	return refs
}

func overlaps(start, end int, spans [][2]int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}
