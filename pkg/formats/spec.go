// Package formats parses and renders format specifiers.
//
// A format specifier declares which dialect a paired file uses. The compact
// form is "ext[:dialect]" with an optional short tag before the extension
// ("pct.py:percent"), several of them comma-joined ("ipynb,py:percent").
// The long form is a validated Spec record that may also carry file name
// fragments and format options.
package formats

import "strings"

// AutoExtension is the sentinel extension replaced by the kernel's script
// extension before use.
const AutoExtension = ".auto"

// ExtensionPrefixes are the short tags allowed in front of an extension in
// the compact form.
var ExtensionPrefixes = []string{"lgt", "spx", "pct", "hyd", "nb"}

// Spec is one declared mapping of an extension to a dialect.
type Spec struct {
	Extension string // with leading dot, possibly AutoExtension
	Dialect   string // empty when not declared

	// File name fragments. Prefix also holds the compact-form short tag.
	Prefix string
	Suffix string

	CommentMagics  *bool
	SplitAtHeading *bool

	NotebookMetadataFilter string
	CellMetadataFilter     string
}

// IsAuto reports whether the extension still needs kernel information.
func (s Spec) IsAuto() bool {
	return s.Extension == AutoExtension
}

// String renders the spec literally, including its dialect name.
func (s Spec) String() string {
	return render(s.Prefix, s.Extension, s.Dialect)
}

// List is an ordered list of specs; the first matching entry wins.
type List []Spec

// String renders the list literally, comma-joined.
func (l List) String() string {
	parts := make([]string, len(l))
	for i, s := range l {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

// Extensions returns the extension of every entry, in order.
func (l List) Extensions() []string {
	out := make([]string, len(l))
	for i, s := range l {
		out[i] = s.Extension
	}
	return out
}

// SamePath reports whether two specs target the same file.
func SamePath(a, b Spec) bool {
	return a.Extension == b.Extension && a.Prefix == b.Prefix && a.Suffix == b.Suffix
}

func render(prefix, ext, dialect string) string {
	out := strings.TrimPrefix(ext, ".")
	if prefix != "" {
		out = prefix + "." + out
	}
	if dialect != "" {
		out += ":" + dialect
	}
	return out
}
