package checkbox

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an item id resolves to no tracked checklist
// item in a loaded document.
var ErrNotFound = errors.New("checklist item not found")

// ErrSpecNotLoaded is returned for operations against a spec id that was
// never loaded (or was unloaded).
var ErrSpecNotLoaded = errors.New("spec not loaded")

// PersistError reports a failed write-back. The in-memory state is NOT
// rolled back: memory and disk diverge until the caller retries persistence
// (see Tracker.Flush), so the error is surfaced as a distinct variant rather
// than silently repaired.
type PersistError struct {
	SpecID int
	Path   string
	Err    error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist spec %d to %s: %v (in-memory state retained; retry with Flush)", e.SpecID, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
