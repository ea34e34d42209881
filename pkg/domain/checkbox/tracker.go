package checkbox

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/specmark/specmark/pkg/domain/document"
)

const subscriberBuffer = 64

// trackedDoc is the live state for one loaded file. Its mutex serializes
// mutating operations (including the persistence write) per document;
// operations against different documents proceed in parallel.
type trackedDoc struct {
	mu    sync.Mutex
	path  string
	doc   *document.SpecDocument
	items map[document.ItemID]*document.ChecklistItem
	order []document.ItemID
}

// Tracker owns checklist state for loaded documents: it indexes items by
// stable id, serializes mutations back into the source files, keeps a global
// undo/redo log and broadcasts committed changes. Construct one per
// application lifecycle and pass it by handle; there is no ambient singleton.
type Tracker struct {
	mu      sync.RWMutex // guards docs, log, subs; never held across file I/O
	docs    map[int]*trackedDoc
	log     historyLog
	subs    map[int]chan Change
	nextSub int

	readFile  func(string) ([]byte, error)
	writeFile func(string, []byte, os.FileMode) error
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		docs:      make(map[int]*trackedDoc),
		subs:      make(map[int]chan Change),
		readFile:  os.ReadFile,
		writeFile: os.WriteFile,
	}
}

// Load parses the file at path and indexes its checklist items under specID.
// Re-loading an already-loaded id replaces its index entry (last-load-wins)
// and invalidates undo/redo history for that id. The given specID is
// authoritative for item identity even when the document's metadata carries
// a different one.
func (t *Tracker) Load(specID int, path string) (*document.SpecDocument, error) {
	data, err := t.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("load spec %d: %w", specID, err)
	}
	doc, err := document.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("load spec %d from %s: %w", specID, path, err)
	}

	d := &trackedDoc{
		path:  path,
		doc:   doc,
		items: make(map[document.ItemID]*document.ChecklistItem, len(doc.Checklist)),
	}
	// Normalize the snapshot too: ids surfaced through Document() must be the
	// same ids the tracker accepts.
	for i := range doc.Checklist {
		doc.Checklist[i].ID.SpecID = specID
		copied := doc.Checklist[i]
		d.items[copied.ID] = &copied
		d.order = append(d.order, copied.ID)
	}

	// Serialize against in-flight mutations on the superseded entry.
	t.mu.RLock()
	prev := t.docs[specID]
	t.mu.RUnlock()
	if prev != nil {
		prev.mu.Lock()
		defer prev.mu.Unlock()
	}

	t.mu.Lock()
	t.docs[specID] = d
	t.log.dropSpec(specID)
	t.mu.Unlock()

	return doc, nil
}

// Unload evicts a document from the tracker and invalidates its history.
func (t *Tracker) Unload(specID int) error {
	t.mu.RLock()
	d := t.docs[specID]
	t.mu.RUnlock()
	if d == nil {
		return fmt.Errorf("unload spec %d: %w", specID, ErrSpecNotLoaded)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	t.mu.Lock()
	delete(t.docs, specID)
	t.log.dropSpec(specID)
	t.mu.Unlock()
	return nil
}

// SetChecked sets one item's state and returns the recorded change. Setting
// the current state is a no-op: no history entry, no broadcast, no write, and
// a nil change.
func (t *Tracker) SetChecked(id document.ItemID, checked bool, source string) (*Change, error) {
	d, err := t.lookupDoc(id.SpecID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	t.mu.Lock()
	item, ok := d.items[id]
	if !ok {
		t.mu.Unlock()
		return nil, fmt.Errorf("set %s: %w", id, ErrNotFound)
	}
	if item.Checked == checked {
		t.mu.Unlock()
		return nil, nil
	}
	change := Change{
		ID:        uuid.NewString(),
		Item:      id,
		OldState:  item.Checked,
		NewState:  checked,
		Timestamp: time.Now().UTC(),
		Source:    source,
	}
	item.Checked = checked
	t.log.record(change)
	t.broadcast(change)
	snapshot := t.snapshotLocked(d)
	t.mu.Unlock()

	return &change, t.persist(id.SpecID, d, snapshot)
}

// Toggle flips one item and returns the recorded change.
func (t *Tracker) Toggle(id document.ItemID, source string) (*Change, error) {
	d, err := t.lookupDoc(id.SpecID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	t.mu.Lock()
	item, ok := d.items[id]
	if !ok {
		t.mu.Unlock()
		return nil, fmt.Errorf("toggle %s: %w", id, ErrNotFound)
	}
	checked := !item.Checked
	change := Change{
		ID:        uuid.NewString(),
		Item:      id,
		OldState:  item.Checked,
		NewState:  checked,
		Timestamp: time.Now().UTC(),
		Source:    source,
	}
	item.Checked = checked
	t.log.record(change)
	t.broadcast(change)
	snapshot := t.snapshotLocked(d)
	t.mu.Unlock()

	return &change, t.persist(id.SpecID, d, snapshot)
}

// BatchUpdate applies all updates to memory first, then persists once per
// affected file, not once per item. Validation happens before any state is
// touched, so a failed batch has no side effects. Returns the recorded
// changes; updates that matched the current state record nothing.
func (t *Tracker) BatchUpdate(updates []Update, source string) ([]Change, error) {
	if len(updates) == 0 {
		return nil, nil
	}

	// Resolve and lock affected documents in ascending spec-id order.
	specIDs := make([]int, 0, len(updates))
	seen := make(map[int]bool)
	for _, u := range updates {
		if !seen[u.ID.SpecID] {
			seen[u.ID.SpecID] = true
			specIDs = append(specIDs, u.ID.SpecID)
		}
	}
	sort.Ints(specIDs)

	docs := make(map[int]*trackedDoc, len(specIDs))
	for _, specID := range specIDs {
		d, err := t.lookupDoc(specID)
		if err != nil {
			return nil, err
		}
		docs[specID] = d
	}
	for _, specID := range specIDs {
		docs[specID].mu.Lock()
	}
	defer func() {
		for _, specID := range specIDs {
			docs[specID].mu.Unlock()
		}
	}()

	t.mu.Lock()
	for _, u := range updates {
		if _, ok := docs[u.ID.SpecID].items[u.ID]; !ok {
			t.mu.Unlock()
			return nil, fmt.Errorf("batch update %s: %w", u.ID, ErrNotFound)
		}
	}

	var changes []Change
	changed := make(map[int]bool)
	for _, u := range updates {
		item := docs[u.ID.SpecID].items[u.ID]
		if item.Checked == u.Checked {
			continue
		}
		change := Change{
			ID:        uuid.NewString(),
			Item:      u.ID,
			OldState:  item.Checked,
			NewState:  u.Checked,
			Timestamp: time.Now().UTC(),
			Source:    source,
		}
		item.Checked = u.Checked
		t.log.record(change)
		t.broadcast(change)
		changes = append(changes, change)
		changed[u.ID.SpecID] = true
	}
	snapshots := make(map[int]map[document.ItemID]bool, len(changed))
	for specID := range changed {
		snapshots[specID] = t.snapshotLocked(docs[specID])
	}
	t.mu.Unlock()

	var errs []error
	for _, specID := range specIDs {
		if !changed[specID] {
			continue
		}
		if err := t.persist(specID, docs[specID], snapshots[specID]); err != nil {
			errs = append(errs, err)
		}
	}
	return changes, errors.Join(errs...)
}

// Undo reverts the most recent committed change and returns the reversal, or
// nil when there is nothing to undo. The reversal is broadcast and persisted
// like any other mutation but does not itself enter the history.
func (t *Tracker) Undo() (*Change, error) {
	return t.traverse(true)
}

// Redo re-applies the most recently undone change, or returns nil when the
// redo side of the log is empty.
func (t *Tracker) Redo() (*Change, error) {
	return t.traverse(false)
}

func (t *Tracker) traverse(back bool) (*Change, error) {
	for {
		t.mu.Lock()
		var c Change
		var ok bool
		if back {
			c, ok = t.log.peekUndo()
		} else {
			c, ok = t.log.peekRedo()
		}
		if !ok {
			t.mu.Unlock()
			return nil, nil
		}
		d := t.docs[c.Item.SpecID]
		t.mu.Unlock()
		if d == nil {
			// History is dropped with its document; a nil entry here means a
			// racing unload won. Re-peek.
			continue
		}

		d.mu.Lock()
		t.mu.Lock()
		var cur Change
		if back {
			cur, ok = t.log.peekUndo()
		} else {
			cur, ok = t.log.peekRedo()
		}
		if !ok || cur.ID != c.ID || t.docs[c.Item.SpecID] != d {
			t.mu.Unlock()
			d.mu.Unlock()
			continue
		}

		item := d.items[c.Item]
		if item == nil {
			// dropSpec keeps the log consistent with loaded documents; an
			// entry for a missing item means the log invariant broke.
			t.mu.Unlock()
			d.mu.Unlock()
			return nil, fmt.Errorf("history %s: %w", c.Item, ErrNotFound)
		}
		target := c.OldState
		source := SourceUndo
		if back {
			t.log.stepBack()
		} else {
			target = c.NewState
			source = SourceRedo
			t.log.stepForward()
		}
		broadcasted := Change{
			ID:        uuid.NewString(),
			Item:      c.Item,
			OldState:  item.Checked,
			NewState:  target,
			Timestamp: time.Now().UTC(),
			Source:    source,
		}
		item.Checked = target
		t.broadcast(broadcasted)
		snapshot := t.snapshotLocked(d)
		t.mu.Unlock()

		err := t.persist(c.Item.SpecID, d, snapshot)
		d.mu.Unlock()
		return &broadcasted, err
	}
}

// Flush re-persists a document from in-memory state. Use it to retry after a
// PersistError without re-deriving any state.
func (t *Tracker) Flush(specID int) error {
	d, err := t.lookupDoc(specID)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	t.mu.RLock()
	snapshot := t.snapshotLocked(d)
	t.mu.RUnlock()
	return t.persist(specID, d, snapshot)
}

// persist rewrites the document's file. It walks the current on-disk lines,
// re-derives each checklist line's (section, ordinal) the same way the
// parser does, and rewrites only the state tokens of tracked items; every
// other byte passes through unchanged. Callers hold the document mutex.
func (t *Tracker) persist(specID int, d *trackedDoc, state map[document.ItemID]bool) error {
	data, err := t.readFile(d.path)
	if err != nil {
		return &PersistError{SpecID: specID, Path: d.path, Err: err}
	}
	rewritten := document.RewriteChecklist(string(data), func(section string, ordinal int) (bool, bool) {
		checked, ok := state[document.ItemID{SpecID: specID, Section: section, Ordinal: ordinal}]
		return checked, ok
	})
	if rewritten == string(data) {
		return nil
	}
	if err := t.writeFile(d.path, []byte(rewritten), 0600); err != nil {
		return &PersistError{SpecID: specID, Path: d.path, Err: err}
	}
	return nil
}

// snapshotLocked captures current item states. Callers hold t.mu.
func (t *Tracker) snapshotLocked(d *trackedDoc) map[document.ItemID]bool {
	state := make(map[document.ItemID]bool, len(d.items))
	for id, item := range d.items {
		state[id] = item.Checked
	}
	return state
}

func (t *Tracker) lookupDoc(specID int) (*trackedDoc, error) {
	t.mu.RLock()
	d := t.docs[specID]
	t.mu.RUnlock()
	if d == nil {
		return nil, fmt.Errorf("spec %d: %w", specID, ErrSpecNotLoaded)
	}
	return d, nil
}

// Get returns a copy of one tracked item.
func (t *Tracker) Get(id document.ItemID) (document.ChecklistItem, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d := t.docs[id.SpecID]
	if d == nil {
		return document.ChecklistItem{}, fmt.Errorf("spec %d: %w", id.SpecID, ErrSpecNotLoaded)
	}
	item, ok := d.items[id]
	if !ok {
		return document.ChecklistItem{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return *item, nil
}

// SpecCheckboxes returns copies of a document's items in document order,
// reflecting current in-memory state.
func (t *Tracker) SpecCheckboxes(specID int) ([]document.ChecklistItem, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d := t.docs[specID]
	if d == nil {
		return nil, fmt.Errorf("spec %d: %w", specID, ErrSpecNotLoaded)
	}
	items := make([]document.ChecklistItem, 0, len(d.order))
	for _, id := range d.order {
		items = append(items, *d.items[id])
	}
	return items, nil
}

// Stats tallies completion for one loaded document.
func (t *Tracker) Stats(specID int) (Stats, error) {
	items, err := t.SpecCheckboxes(specID)
	if err != nil {
		return Stats{}, err
	}
	return computeStats(items), nil
}

// Document returns the parse-time snapshot recorded at load. Checklist
// states inside it reflect load time; use SpecCheckboxes for live state.
func (t *Tracker) Document(specID int) (*document.SpecDocument, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d := t.docs[specID]
	if d == nil {
		return nil, fmt.Errorf("spec %d: %w", specID, ErrSpecNotLoaded)
	}
	return d.doc, nil
}

// Path returns the file the tracker owns for a loaded document.
func (t *Tracker) Path(specID int) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d := t.docs[specID]
	if d == nil {
		return "", fmt.Errorf("spec %d: %w", specID, ErrSpecNotLoaded)
	}
	return d.path, nil
}

// IsLoaded reports whether the tracker holds a document for specID.
func (t *Tracker) IsLoaded(specID int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.docs[specID] != nil
}

// Loaded returns the loaded spec ids in ascending order.
func (t *Tracker) Loaded() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]int, 0, len(t.docs))
	for id := range t.docs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// History returns the committed changes in operation order.
func (t *Tracker) History() []Change {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.log.committed()
}

// Subscribe registers an independent consumer of committed changes.
// Delivery is per-document FIFO, consistent with persistence order. The
// channel is buffered; when a subscriber lags, the oldest buffered change is
// dropped so mutation never blocks. The returned cancel function closes the
// channel.
func (t *Tracker) Subscribe() (<-chan Change, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextSub
	t.nextSub++
	ch := make(chan Change, subscriberBuffer)
	t.subs[id] = ch
	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// broadcast delivers one change to every subscriber. Callers hold t.mu, so
// sends are totally ordered. Slow subscribers lose their oldest entries.
func (t *Tracker) broadcast(c Change) {
	for _, ch := range t.subs {
		select {
		case ch <- c:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- c:
			default:
			}
		}
	}
}
