package checkbox

// historyLog is an append-only change log with a committed-boundary cursor.
// entries[:cursor] are committed; entries[cursor:] are redoable. A new
// mutation truncates the redoable tail. One log spans every loaded document,
// ordered by operation time.
type historyLog struct {
	entries []Change
	cursor  int
}

func (l *historyLog) record(c Change) {
	l.entries = append(l.entries[:l.cursor], c)
	l.cursor = len(l.entries)
}

func (l *historyLog) peekUndo() (Change, bool) {
	if l.cursor == 0 {
		return Change{}, false
	}
	return l.entries[l.cursor-1], true
}

func (l *historyLog) stepBack() {
	if l.cursor > 0 {
		l.cursor--
	}
}

func (l *historyLog) peekRedo() (Change, bool) {
	if l.cursor >= len(l.entries) {
		return Change{}, false
	}
	return l.entries[l.cursor], true
}

func (l *historyLog) stepForward() {
	if l.cursor < len(l.entries) {
		l.cursor++
	}
}

// dropSpec removes every entry touching the given spec id. Reloading or
// unloading a document supersedes its item identities, so history referring
// to them is invalidated rather than left to operate on stale positions.
func (l *historyLog) dropSpec(specID int) {
	kept := l.entries[:0]
	cursor := l.cursor
	for i, c := range l.entries {
		if c.Item.SpecID == specID {
			if i < l.cursor {
				cursor--
			}
			continue
		}
		kept = append(kept, c)
	}
	l.entries = kept
	l.cursor = cursor
}

func (l *historyLog) committed() []Change {
	out := make([]Change, l.cursor)
	copy(out, l.entries[:l.cursor])
	return out
}
