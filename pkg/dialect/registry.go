package dialect

import (
	"fmt"
	"sort"
)

// Registry is an immutable catalog of dialect descriptors.
//
// A Registry is only created through a Builder and has no mutating methods,
// which makes concurrent reads safe without locking.
type Registry struct {
	descriptors []*Descriptor
	byExt       map[string][]*Descriptor
	extensions  []string // order of first registration
	languages   map[string]ScriptLanguage
}

// Builder provides a fluent API for constructing a Registry.
type Builder struct {
	descriptors []Descriptor
	languages   []ScriptLanguage
}

// NewBuilder creates an empty registry builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Language declares a script extension with its language tag and comment prefix.
func (b *Builder) Language(ext, language, comment string) *Builder {
	b.languages = append(b.languages, ScriptLanguage{
		Extension: NormalizeExtension(ext),
		Language:  language,
		Comment:   comment,
	})
	return b
}

// Add appends descriptors. Registration order matters: the first dialect
// registered for an extension is its default.
func (b *Builder) Add(descs ...Descriptor) *Builder {
	b.descriptors = append(b.descriptors, descs...)
	return b
}

// Build validates the collected descriptors and returns the registry.
func (b *Builder) Build() (*Registry, error) {
	r := &Registry{
		byExt:     make(map[string][]*Descriptor),
		languages: make(map[string]ScriptLanguage, len(b.languages)),
	}

	for _, lang := range b.languages {
		r.languages[lang.Extension] = lang
	}

	for i := range b.descriptors {
		d := b.descriptors[i]
		if d.Name == "" {
			return nil, fmt.Errorf("dialect descriptor %d has no name", i)
		}
		if d.Extension == "" || d.Extension[0] != '.' {
			return nil, fmt.Errorf("dialect %q: extension %q must start with a dot", d.Name, d.Extension)
		}
		if d.Current == "" {
			return nil, fmt.Errorf("dialect %s: current version is required", d.String())
		}

		for _, existing := range r.byExt[d.Extension] {
			if existing.Name == d.Name {
				return nil, fmt.Errorf("dialect %s registered twice", d.String())
			}
		}

		desc := &d
		if _, seen := r.byExt[d.Extension]; !seen {
			r.extensions = append(r.extensions, d.Extension)
		}
		r.byExt[d.Extension] = append(r.byExt[d.Extension], desc)
		r.descriptors = append(r.descriptors, desc)
	}

	return r, nil
}

// MustBuild is like Build but panics on an invalid table.
func (b *Builder) MustBuild() *Registry {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the descriptor for an extension and an optional dialect name.
//
// The extension is normalized first, so "lgt.py" resolves like ".py". Without
// a name, the extension must have exactly one dialect.
func (r *Registry) Resolve(ext, name string) (*Descriptor, error) {
	ext = NormalizeExtension(ext)

	candidates := r.byExt[ext]
	if len(candidates) == 0 {
		return nil, &UnknownExtensionError{
			Extension: ext,
			Known:     r.Extensions(),
		}
	}

	if name != "" {
		for _, d := range candidates {
			if d.Name == name {
				return d, nil
			}
		}
		return nil, &AmbiguousFormatNameError{
			Extension:  ext,
			Name:       name,
			Candidates: names(candidates),
		}
	}

	if len(candidates) == 1 {
		return candidates[0], nil
	}
	return nil, &AmbiguousFormatNameError{
		Extension:  ext,
		Candidates: names(candidates),
	}
}

// Default returns the first registered dialect for an extension.
func (r *Registry) Default(ext string) (*Descriptor, error) {
	ext = NormalizeExtension(ext)
	candidates := r.byExt[ext]
	if len(candidates) == 0 {
		return nil, &UnknownExtensionError{
			Extension: ext,
			Known:     r.Extensions(),
		}
	}
	return candidates[0], nil
}

// Candidates returns the dialect names registered for an extension.
func (r *Registry) Candidates(ext string) []string {
	return names(r.byExt[NormalizeExtension(ext)])
}

// Extensions returns every text extension, in registration order.
func (r *Registry) Extensions() []string {
	out := make([]string, len(r.extensions))
	copy(out, r.extensions)
	return out
}

// NotebookExtensions returns the native notebook extension followed by every
// text extension.
func (r *Registry) NotebookExtensions() []string {
	return append([]string{NotebookExtension}, r.extensions...)
}

// IsNotebookExtension reports whether ext (not normalized) is the native
// container or one of the registered text extensions.
func (r *Registry) IsNotebookExtension(ext string) bool {
	if ext == NotebookExtension {
		return true
	}
	_, ok := r.byExt[ext]
	return ok
}

// IsMarkup reports whether every dialect of the extension is a markup dialect.
func (r *Registry) IsMarkup(ext string) bool {
	candidates := r.byExt[NormalizeExtension(ext)]
	if len(candidates) == 0 {
		return false
	}
	for _, d := range candidates {
		if !d.Markup {
			return false
		}
	}
	return true
}

// IsMarkupDialect reports whether name is a registered markup dialect.
func (r *Registry) IsMarkupDialect(name string) bool {
	for _, d := range r.descriptors {
		if d.Name == name {
			return d.Markup
		}
	}
	return false
}

// Script returns the script language registered for an extension.
func (r *Registry) Script(ext string) (ScriptLanguage, bool) {
	lang, ok := r.languages[NormalizeExtension(ext)]
	return lang, ok
}

// Comment returns the line comment prefix for an extension: the script
// comment for script extensions, "" for markup and unknown extensions.
func (r *Registry) Comment(ext string) string {
	if lang, ok := r.Script(ext); ok {
		return lang.Comment
	}
	return ""
}

// All returns every descriptor, in registration order.
func (r *Registry) All() []*Descriptor {
	out := make([]*Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Names returns every distinct dialect name (sorted).
func (r *Registry) Names() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range r.descriptors {
		if _, ok := seen[d.Name]; ok {
			continue
		}
		seen[d.Name] = struct{}{}
		out = append(out, d.Name)
	}
	sort.Strings(out)
	return out
}

func names(descs []*Descriptor) []string {
	out := make([]string, 0, len(descs))
	for _, d := range descs {
		out = append(out, d.Name)
	}
	return out
}
