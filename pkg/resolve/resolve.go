// Package resolve decides which dialect applies to an extension, from the
// metadata of a document and a list of default formats.
package resolve

import (
	"fmt"

	"github.com/leapstack-labs/textnb/pkg/dialect"
	"github.com/leapstack-labs/textnb/pkg/formats"
	"github.com/leapstack-labs/textnb/pkg/metadata"
)

// Resolver resolves dialect names against a registry.
type Resolver struct {
	reg    *dialect.Registry
	parser *formats.Parser
}

// New creates a resolver bound to a registry.
func New(reg *dialect.Registry) *Resolver {
	return &Resolver{reg: reg, parser: formats.NewParser(reg)}
}

// Parser returns the specifier parser used for formats lists.
func (r *Resolver) Parser() *formats.Parser {
	return r.parser
}

// ResolveDialect returns the dialect name for ext, or "" when none is
// declared. meta must already be migrated.
//
// In order:
//  1. the text representation recorded in meta, when it names ext and a dialect;
//  2. the first entry of the formats list of meta (defaults when meta has
//     none) whose extension is ext, or "auto" resolving to ext;
//  3. "" when requireExplicit is false;
//  4. the registry default for ext, except "" for markup extensions.
//
// With requireExplicit, entries of step 2 without a dialect name are skipped.
func (r *Resolver) ResolveDialect(meta map[string]any, ext string, defaults formats.List, requireExplicit bool) (string, error) {
	ext = dialect.NormalizeExtension(ext)
	block := metadata.RawBlock(meta)

	if repr, ok := block[metadata.KeyTextRepresentation].(map[string]any); ok {
		reprExt, _ := repr[metadata.KeyExtension].(string)
		name, _ := repr[metadata.KeyFormatName].(string)
		if reprExt != "" && dialect.NormalizeExtension(reprExt) == ext && name != "" {
			return name, nil
		}
	}

	list := defaults
	if declared := block[metadata.KeyFormats]; !isEmpty(declared) {
		parsed, err := r.parser.LongFormList(declared)
		if err != nil {
			return "", fmt.Errorf("failed to parse %s.%s: %w", metadata.Namespace, metadata.KeyFormats, err)
		}
		list = parsed
	}

	kernel := formats.KernelExtension(meta)
	for _, spec := range list {
		if spec.Extension != ext && !(spec.IsAuto() && kernel != "" && kernel == ext) {
			continue
		}
		if !requireExplicit || spec.Dialect != "" {
			return spec.Dialect, nil
		}
	}

	if !requireExplicit || r.reg.IsMarkup(ext) {
		return "", nil
	}

	d, err := r.reg.Default(ext)
	if err != nil {
		return "", err
	}
	return d.Name, nil
}

// Descriptor resolves ext to a descriptor, using the dialect declared in meta
// or defaults when there is one.
//
// Without a declared dialect the extension must have a single dialect,
// otherwise an *dialect.AmbiguousFormatNameError lists the candidates.
func (r *Resolver) Descriptor(meta map[string]any, ext string, defaults formats.List) (*dialect.Descriptor, error) {
	name, err := r.ResolveDialect(meta, ext, defaults, false)
	if err != nil {
		return nil, err
	}
	return r.reg.Resolve(ext, name)
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	}
	return false
}
