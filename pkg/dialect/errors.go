package dialect

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownExtension matches *UnknownExtensionError with errors.Is.
	ErrUnknownExtension = errors.New("unknown extension")
	// ErrAmbiguousFormatName matches *AmbiguousFormatNameError with errors.Is.
	ErrAmbiguousFormatName = errors.New("ambiguous format name")
)

// UnknownExtensionError is returned when no dialect is registered for an extension.
type UnknownExtensionError struct {
	Extension string
	Known     []string
}

func (e *UnknownExtensionError) Error() string {
	return fmt.Sprintf("no dialect associated to extension %q\nKnown extensions: %s",
		e.Extension, strings.Join(e.Known, ", "))
}

// Is reports whether target is ErrUnknownExtension.
func (e *UnknownExtensionError) Is(target error) bool {
	return target == ErrUnknownExtension
}

// AmbiguousFormatNameError is returned when the dialect for an extension cannot
// be determined: either no name was given and several dialects share the
// extension, or the given name is not one of them.
type AmbiguousFormatNameError struct {
	Extension  string
	Name       string // requested name, empty when none was given
	Candidates []string
}

func (e *AmbiguousFormatNameError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("dialect %q is not associated to extension %q\nPlease choose one of: %s",
			e.Name, e.Extension, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("extension %q has several dialects\nPlease choose one of: %s",
		e.Extension, strings.Join(e.Candidates, ", "))
}

// Is reports whether target is ErrAmbiguousFormatName.
func (e *AmbiguousFormatNameError) Is(target error) bool {
	return target == ErrAmbiguousFormatName
}
