package formats

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/leapstack-labs/textnb/pkg/dialect"
)

// Structured option keys, as written in notebook metadata.
const (
	OptExtension              = "extension"
	OptFormatName             = "format_name"
	OptSuffix                 = "suffix"
	OptPrefix                 = "prefix"
	OptCommentMagics          = "comment_magics"
	OptSplitAtHeading         = "split_at_heading"
	OptNotebookMetadataFilter = "notebook_metadata_filter"
	OptCellMetadataFilter     = "cell_metadata_filter"
)

// ValidOptions lists every key accepted in a structured spec.
var ValidOptions = []string{
	OptExtension, OptFormatName, OptSuffix, OptPrefix, OptCommentMagics,
	OptSplitAtHeading, OptNotebookMetadataFilter, OptCellMetadataFilter,
}

var boolOptions = map[string]bool{
	OptCommentMagics:  true,
	OptSplitAtHeading: true,
}

// Parser converts between compact specifiers and Specs, validating
// extensions against a dialect registry.
type Parser struct {
	reg *dialect.Registry
}

// NewParser creates a parser bound to a registry.
func NewParser(reg *dialect.Registry) *Parser {
	return &Parser{reg: reg}
}

// Registry returns the registry the parser validates against.
func (p *Parser) Registry() *dialect.Registry {
	return p.reg
}

// legitimateExtensions returns the notebook extensions plus the auto sentinel.
func (p *Parser) legitimateExtensions() []string {
	return append(p.reg.NotebookExtensions(), AutoExtension)
}

// ParseOne parses "ext[:dialect]" or "prefix.ext[:dialect]".
//
// Markup dialect names are dropped: a markup extension has a single dialect,
// and the rendered form never names it.
func (p *Parser) ParseOne(text string) (Spec, error) {
	token := strings.TrimSpace(text)
	ext, name, _ := strings.Cut(token, ":")
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	legitimate := p.legitimateExtensions()
	if slices.Contains(legitimate, ext) {
		return Spec{Extension: ext, Dialect: p.canonicalName(ext, name)}, nil
	}

	if i := strings.LastIndex(ext, "."); i > 0 {
		prefix, short := ext[1:i], ext[i:]
		if slices.Contains(legitimate, short) && slices.Contains(ExtensionPrefixes, prefix) {
			return Spec{Extension: short, Prefix: prefix, Dialect: p.canonicalName(short, name)}, nil
		}
	}

	return Spec{}, &InvalidFormatSpecError{
		Token:      token,
		Extension:  ext,
		Extensions: legitimate,
		Prefixes:   ExtensionPrefixes,
	}
}

// canonicalName drops a markup dialect name on a markup extension, where it
// is implied. On any other extension the name is kept, so that resolving it
// fails.
func (p *Parser) canonicalName(ext, name string) string {
	if p.reg.IsMarkup(ext) && p.reg.IsMarkupDialect(name) {
		return ""
	}
	return name
}

// ParseMany parses a comma-joined list of specifiers, preserving order.
// An empty string yields an empty list.
func (p *Parser) ParseMany(csv string) (List, error) {
	if strings.TrimSpace(csv) == "" {
		return List{}, nil
	}

	tokens := strings.Split(csv, ",")
	list := make(List, 0, len(tokens))
	for _, token := range tokens {
		spec, err := p.ParseOne(token)
		if err != nil {
			return nil, err
		}
		list = append(list, spec)
	}
	return list, nil
}

// Render is the inverse of ParseOne for an extension and a dialect name.
// Markup dialect names are never rendered.
func (p *Parser) Render(ext, name string) string {
	prefix := ""
	if spec, err := p.ParseOne(ext); err == nil {
		prefix, ext = spec.Prefix, spec.Extension
	}
	return render(prefix, ext, p.canonicalName(ext, name))
}

// Format renders a list to its compact form, applying the Render policy to
// every entry. ParseMany(Format(l)) == l for every list returned by ParseMany.
func (p *Parser) Format(l List) string {
	parts := make([]string, len(l))
	for i, s := range l {
		parts[i] = render(s.Prefix, s.Extension, p.canonicalName(s.Extension, s.Dialect))
	}
	return strings.Join(parts, ",")
}

// LongForm validates a spec given as a compact string, a Spec, or a
// structured record (map) and returns the Spec.
//
// Structured records are validated as a whole: any unknown key, any value of
// the wrong type, or a missing or unknown extension fails the call and no
// partial Spec is returned.
func (p *Parser) LongForm(v any) (Spec, error) {
	switch x := v.(type) {
	case string:
		return p.ParseOne(x)
	case Spec:
		if err := p.validateExtension(x.Extension); err != nil {
			return Spec{}, err
		}
		return x, nil
	case map[string]any:
		return p.fromRecord(x)
	default:
		return Spec{}, &InvalidFormatOptionError{
			Option: "",
			Value:  v,
			Reason: fmt.Sprintf("format should be a string or a mapping, not %T", v),
		}
	}
}

// LongFormList converts a compact list or a list of records to Specs.
func (p *Parser) LongFormList(v any) (List, error) {
	switch x := v.(type) {
	case nil:
		return List{}, nil
	case string:
		return p.ParseMany(x)
	case List:
		return p.longFormEach(len(x), func(i int) any { return x[i] })
	case []any:
		return p.longFormEach(len(x), func(i int) any { return x[i] })
	case []map[string]any:
		return p.longFormEach(len(x), func(i int) any { return x[i] })
	default:
		return nil, &InvalidFormatOptionError{
			Value:  v,
			Reason: fmt.Sprintf("formats should be a string or a list, not %T", v),
		}
	}
}

func (p *Parser) longFormEach(n int, item func(int) any) (List, error) {
	list := make(List, 0, n)
	for i := 0; i < n; i++ {
		spec, err := p.LongForm(item(i))
		if err != nil {
			return nil, err
		}
		list = append(list, spec)
	}
	return list, nil
}

func (p *Parser) fromRecord(rec map[string]any) (Spec, error) {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Validate everything before building anything.
	for _, key := range keys {
		value := rec[key]
		if !slices.Contains(ValidOptions, key) {
			return Spec{}, &InvalidFormatOptionError{
				Option:  key,
				Value:   value,
				Reason:  "unknown format option",
				Allowed: ValidOptions,
			}
		}
		if boolOptions[key] {
			if _, ok := value.(bool); !ok {
				return Spec{}, &InvalidFormatOptionError{
					Option: key,
					Value:  value,
					Reason: fmt.Sprintf("should be a bool, not %v", value),
				}
			}
			continue
		}
		if _, ok := value.(string); !ok {
			return Spec{}, &InvalidFormatOptionError{
				Option: key,
				Value:  value,
				Reason: fmt.Sprintf("should be a string, not %v", value),
			}
		}
	}

	ext, ok := rec[OptExtension].(string)
	if !ok {
		return Spec{}, &InvalidFormatOptionError{
			Option: OptExtension,
			Reason: "missing format extension",
		}
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if err := p.validateExtension(ext); err != nil {
		return Spec{}, err
	}

	spec := Spec{Extension: ext}
	spec.Dialect, _ = rec[OptFormatName].(string)
	spec.Prefix, _ = rec[OptPrefix].(string)
	spec.Suffix, _ = rec[OptSuffix].(string)
	spec.NotebookMetadataFilter, _ = rec[OptNotebookMetadataFilter].(string)
	spec.CellMetadataFilter, _ = rec[OptCellMetadataFilter].(string)
	if b, ok := rec[OptCommentMagics].(bool); ok {
		spec.CommentMagics = &b
	}
	if b, ok := rec[OptSplitAtHeading].(bool); ok {
		spec.SplitAtHeading = &b
	}
	return spec, nil
}

func (p *Parser) validateExtension(ext string) error {
	legitimate := p.legitimateExtensions()
	if slices.Contains(legitimate, ext) {
		return nil
	}
	return &InvalidFormatOptionError{
		Option:  OptExtension,
		Value:   ext,
		Reason:  fmt.Sprintf("%q is not a notebook extension", ext),
		Allowed: legitimate,
	}
}

// Record renders a spec as a structured record, omitting empty options.
func Record(s Spec) map[string]any {
	rec := map[string]any{OptExtension: s.Extension}
	for key, v := range map[string]string{
		OptFormatName:             s.Dialect,
		OptPrefix:                 s.Prefix,
		OptSuffix:                 s.Suffix,
		OptNotebookMetadataFilter: s.NotebookMetadataFilter,
		OptCellMetadataFilter:     s.CellMetadataFilter,
	} {
		if v != "" {
			rec[key] = v
		}
	}
	if s.CommentMagics != nil {
		rec[OptCommentMagics] = *s.CommentMagics
	}
	if s.SplitAtHeading != nil {
		rec[OptSplitAtHeading] = *s.SplitAtHeading
	}
	return rec
}
