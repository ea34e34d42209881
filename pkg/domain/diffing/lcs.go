package diffing

// LineTag classifies one line of a line-level diff.
type LineTag string

const (
	TagContext  LineTag = "context"
	TagAddition LineTag = "addition"
	TagDeletion LineTag = "deletion"
)

// DiffLine is one tagged line. OldLine/NewLine are 1-based; a zero value
// means the line does not exist on that side.
type DiffLine struct {
	Tag     LineTag `json:"tag"`
	Text    string  `json:"text"`
	OldLine int     `json:"old_line,omitempty"`
	NewLine int     `json:"new_line,omitempty"`
}

// Hunk is a contiguous run of context/addition/deletion lines.
type Hunk struct {
	OldStart int        `json:"old_start"`
	OldCount int        `json:"old_count"`
	NewStart int        `json:"new_start"`
	NewCount int        `json:"new_count"`
	Lines    []DiffLine `json:"lines"`
}

// diffLines aligns two line slices with a longest-common-subsequence table
// and groups the edits into hunks with the given context window around each
// changed run.
func diffLines(oldLines, newLines []string, context int) []Hunk {
	ops := lcsOps(oldLines, newLines)
	return groupHunks(ops, context)
}

// lcsOps emits the full edit script: every line appears once, tagged.
func lcsOps(oldLines, newLines []string) []DiffLine {
	n, m := len(oldLines), len(newLines)
	// table[i][j] = LCS length of oldLines[i:] vs newLines[j:]
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if oldLines[i] == newLines[j] {
				table[i][j] = table[i+1][j+1] + 1
			} else if table[i+1][j] >= table[i][j+1] {
				table[i][j] = table[i+1][j]
			} else {
				table[i][j] = table[i][j+1]
			}
		}
	}

	ops := make([]DiffLine, 0, n+m)
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case oldLines[i] == newLines[j]:
			ops = append(ops, DiffLine{Tag: TagContext, Text: oldLines[i], OldLine: i + 1, NewLine: j + 1})
			i++
			j++
		case table[i+1][j] >= table[i][j+1]:
			ops = append(ops, DiffLine{Tag: TagDeletion, Text: oldLines[i], OldLine: i + 1})
			i++
		default:
			ops = append(ops, DiffLine{Tag: TagAddition, Text: newLines[j], NewLine: j + 1})
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, DiffLine{Tag: TagDeletion, Text: oldLines[i], OldLine: i + 1})
	}
	for ; j < m; j++ {
		ops = append(ops, DiffLine{Tag: TagAddition, Text: newLines[j], NewLine: j + 1})
	}
	return ops
}

func groupHunks(ops []DiffLine, context int) []Hunk {
	var hunks []Hunk
	var open []DiffLine
	trailing := 0 // context lines accumulated since the last change

	flush := func() {
		if len(open) == 0 {
			return
		}
		// Trim context beyond the window after the final change.
		if trailing > context {
			open = open[:len(open)-(trailing-context)]
		}
		hunks = append(hunks, makeHunk(open))
		open = nil
		trailing = 0
	}

	// recent is a rolling window of the last `context` context lines; it
	// seeds the leading context of each new hunk.
	recent := make([]DiffLine, 0, context)
	for _, op := range ops {
		if op.Tag == TagContext {
			if len(recent) == context && context > 0 {
				recent = recent[1:]
			}
			if context > 0 {
				recent = append(recent, op)
			}
			if len(open) > 0 {
				open = append(open, op)
				trailing++
				if trailing >= 2*context+1 {
					// Far enough from the last change to split hunks.
					flush()
				}
			}
			continue
		}
		if len(open) == 0 {
			open = append(open, recent...)
		}
		open = append(open, op)
		trailing = 0
	}
	flush()
	return hunks
}

func makeHunk(lines []DiffLine) Hunk {
	h := Hunk{Lines: append([]DiffLine(nil), lines...)}
	for _, l := range lines {
		if l.OldLine > 0 {
			if h.OldStart == 0 {
				h.OldStart = l.OldLine
			}
			h.OldCount++
		}
		if l.NewLine > 0 {
			if h.NewStart == 0 {
				h.NewStart = l.NewLine
			}
			h.NewCount++
		}
	}
	return h
}
