package document

import "errors"

// ErrMissingTitle is returned by Parse when no top-level heading is found
// before the first second-level heading. It is the only fatal parse error;
// everything else degrades to a Warning.
var ErrMissingTitle = errors.New("missing title: no top-level heading before the first section")
