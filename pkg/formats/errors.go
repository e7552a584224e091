package formats

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidFormatSpec matches *InvalidFormatSpecError with errors.Is.
	ErrInvalidFormatSpec = errors.New("invalid format specifier")
	// ErrInvalidFormatOption matches *InvalidFormatOptionError with errors.Is.
	ErrInvalidFormatOption = errors.New("invalid format option")
	// ErrUnresolvedAutoExtension matches *UnresolvedAutoExtensionError with errors.Is.
	ErrUnresolvedAutoExtension = errors.New("unresolved auto extension")
)

// InvalidFormatSpecError is returned for a compact specifier whose extension
// is not a notebook extension.
type InvalidFormatSpecError struct {
	Token      string
	Extension  string
	Extensions []string
	Prefixes   []string
}

func (e *InvalidFormatSpecError) Error() string {
	return fmt.Sprintf("invalid format %q: extension %q should be one of %s, with optional prefix among %s",
		e.Token, e.Extension, quoteJoin(e.Extensions), quoteJoin(e.Prefixes))
}

// Is reports whether target is ErrInvalidFormatSpec.
func (e *InvalidFormatSpecError) Is(target error) bool {
	return target == ErrInvalidFormatSpec
}

// InvalidFormatOptionError is returned when a structured spec has an unknown
// option, an option of the wrong type, or a bad extension.
type InvalidFormatOptionError struct {
	Option  string
	Value   any
	Reason  string
	Allowed []string
}

func (e *InvalidFormatOptionError) Error() string {
	msg := fmt.Sprintf("format option %q: %s", e.Option, e.Reason)
	if len(e.Allowed) > 0 {
		msg += fmt.Sprintf("\nShould be one of: %s", quoteJoin(e.Allowed))
	}
	return msg
}

// Is reports whether target is ErrInvalidFormatOption.
func (e *InvalidFormatOptionError) Is(target error) bool {
	return target == ErrInvalidFormatOption
}

// UnresolvedAutoExtensionError is returned when an "auto" extension is used
// on a notebook without kernel language information.
type UnresolvedAutoExtensionError struct {
	Spec string
}

func (e *UnresolvedAutoExtensionError) Error() string {
	return fmt.Sprintf("no kernel information found, cannot resolve the extension of %q\nHint: set language_info.file_extension or use an explicit extension", e.Spec)
}

// Is reports whether target is ErrUnresolvedAutoExtension.
func (e *UnresolvedAutoExtensionError) Is(target error) bool {
	return target == ErrUnresolvedAutoExtension
}

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return strings.Join(quoted, ", ")
}
