package version

import (
	"errors"
	"fmt"
)

// ErrMergeUnsafe matches *MergeUnsafeError with errors.Is.
var ErrMergeUnsafe = errors.New("unsafe merge")

// MergeUnsafeError is returned when the destination was written by a dialect
// version the current reader does not support.
type MergeUnsafeError struct {
	Source      string // base name
	Destination string // base name
	Dialect     string // compact specifier, e.g. "py:percent"
	Recorded    string // empty when the document has metadata but no version
	Current     string
	MinReadable string
}

func (e *MergeUnsafeError) Error() string {
	recorded := e.Recorded
	if recorded == "" {
		recorded = "no version"
	}
	return fmt.Sprintf("file %s is in format %s version %s, but the current reader supports versions %s to %s; "+
		"merging it with %s could lose information\n"+
		"Hint: remove one of %s or %s, or disable the version guard",
		e.Source, e.Dialect, recorded, e.MinReadable, e.Current,
		e.Destination, e.Source, e.Destination)
}

// Is reports whether target is ErrMergeUnsafe.
func (e *MergeUnsafeError) Is(target error) bool {
	return target == ErrMergeUnsafe
}
