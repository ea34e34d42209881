package cli

import (
	"errors"
	"fmt"

	"github.com/specmark/specmark/pkg/domain/checkbox"
	"github.com/specmark/specmark/pkg/domain/document"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var persistErr *checkbox.PersistError
	if errors.As(err, &persistErr) {
		return NewCLIError(
			persistErr.Error(),
			fmt.Sprintf("The in-memory change is kept. Run 'specmark flush %d' to retry the write", persistErr.SpecID),
			err,
		)
	}

	switch {
	case errors.Is(err, checkbox.ErrNotFound):
		return NewCLIError("checklist item not found", "Run 'specmark show <spec-id>' to list item ids", err)
	case errors.Is(err, checkbox.ErrSpecNotLoaded):
		return NewCLIError("spec not loaded", "Run 'specmark list' to see discovered specs, and check the spec_globs in .specmark/config.yaml", err)
	case errors.Is(err, document.ErrMissingTitle):
		return NewCLIError("document has no title", "Add a top-level '# Title' heading before the first '##' section", err)
	}

	return err
}
