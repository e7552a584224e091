// Package dialect provides the catalog of text notebook dialects.
//
// A dialect is one textual convention for representing a notebook: a markup
// document (markdown, R markdown) or a script with cells marked by comments
// (light, percent, hydrogen, sphinx, spin). Each Descriptor binds a dialect
// name and a file extension to the version contract of its reader and
// exporter. Descriptors are collected in a Registry which is built once and
// only read afterwards, so it can be shared between goroutines without locks.
package dialect

import (
	"strings"
)

// NotebookExtension is the extension of the native (JSON) notebook container.
// It has no text dialect.
const NotebookExtension = ".ipynb"

// Descriptor describes one dialect for one extension.
type Descriptor struct {
	Name         string // dialect name, e.g. "percent"
	Extension    string // file extension with leading dot, e.g. ".py"
	HeaderPrefix string // comment prefix in front of the YAML header lines
	Language     string // script language tag ("python", "R", ...); empty for markup

	// Current is the format version written by the exporter ("major.minor").
	Current string
	// MinReadable is the oldest version the reader still understands.
	// Empty means Current.
	MinReadable string

	// Markup dialects are the only dialect for their extension and never
	// need a dialect name to be disambiguated.
	Markup bool
}

// MinReadableVersion returns the oldest readable version, defaulting to Current.
func (d *Descriptor) MinReadableVersion() string {
	if d.MinReadable == "" {
		return d.Current
	}
	return d.MinReadable
}

// String renders the descriptor as a compact specifier, e.g. "py:percent".
func (d *Descriptor) String() string {
	return strings.TrimPrefix(d.Extension, ".") + ":" + d.Name
}

// ScriptLanguage binds a script extension to its language and comment prefix.
type ScriptLanguage struct {
	Extension string
	Language  string
	Comment   string
}

// NormalizeExtension returns ".<ext>" where ext is the last dot-separated
// component of the input, so "py", ".py", "lgt.py" and "notebook.lgt.py"
// all normalize to ".py".
func NormalizeExtension(ext string) string {
	if ext == "" {
		return ""
	}
	if i := strings.LastIndex(ext, "."); i >= 0 {
		ext = ext[i+1:]
	}
	return "." + ext
}
