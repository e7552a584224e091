// Package metadata normalizes and decodes the text-representation metadata
// stored in a notebook.
//
// Notebook metadata is loosely typed (decoded YAML or JSON). Migrate rewrites
// legacy layouts into the current one and DecodeBlock turns the result into
// a strict Block, rejecting keys it does not know.
package metadata

import (
	"sort"
	"strings"
)

// Namespace is the notebook metadata key holding the text-representation block.
const Namespace = "jupytext"

// Block keys, as written in documents.
const (
	KeyFormats                = "formats"
	KeyTextRepresentation     = "text_representation"
	KeyNotebookMetadataFilter = "notebook_metadata_filter"
	KeyCellMetadataFilter     = "cell_metadata_filter"
	KeyMainLanguage           = "main_language"
	KeyEncoding               = "encoding"
	KeyExecutable             = "executable"
	KeyCommentMagics          = "comment_magics"
	KeySplitAtHeading         = "split_at_heading"

	KeyExtension       = "extension"
	KeyFormatName      = "format_name"
	KeyFormatVersion   = "format_version"
	KeyJupytextVersion = "jupytext_version"
)

const (
	legacyPrefix        = "nbrmd_"
	flatPrefix          = Namespace + "_"
	legacyFormats       = flatPrefix + "formats"
	legacyFormatVersion = flatPrefix + "format_version"
	legacyFilter        = "metadata_filter"
)

// Migrate returns a copy of meta with legacy layouts rewritten:
//
//   - nbrmd_* keys are renamed jupytext_*
//   - jupytext_formats, jupytext_format_version, main_language, encoding and
//     executable move into the jupytext block
//   - the metadata_filter{notebook, cells} record becomes
//     notebook_metadata_filter and cell_metadata_filter
//   - structured filters are flattened to their compact form
//
// The input is not modified. Migrate(Migrate(m)) equals Migrate(m).
func Migrate(meta map[string]any) map[string]any {
	out := copyMap(meta)
	if out == nil {
		out = make(map[string]any)
	}

	for _, key := range sortedKeys(out) {
		if strings.HasPrefix(key, legacyPrefix) {
			out[flatPrefix+strings.TrimPrefix(key, legacyPrefix)] = out[key]
			delete(out, key)
		}
	}

	block := make(map[string]any)
	if raw, present := out[Namespace]; present && raw == nil {
		// An empty "jupytext:" entry in YAML.
		delete(out, Namespace)
	} else if present {
		m, ok := asMap(raw)
		if !ok {
			// Not a mapping: leave it for DecodeBlock to report.
			return out
		}
		block = m
		delete(out, Namespace)
	}

	if v, ok := out[legacyFormats]; ok {
		block[KeyFormats] = v
		delete(out, legacyFormats)
	}
	if v, ok := out[legacyFormatVersion]; ok {
		repr, ok := asMap(block[KeyTextRepresentation])
		if !ok {
			repr = make(map[string]any)
		}
		repr[KeyFormatVersion] = v
		block[KeyTextRepresentation] = repr
		delete(out, legacyFormatVersion)
	}
	for _, key := range []string{KeyMainLanguage, KeyEncoding, KeyExecutable} {
		if v, ok := out[key]; ok {
			block[key] = v
			delete(out, key)
		}
	}

	if v, ok := block[legacyFilter]; ok {
		delete(block, legacyFilter)
		if filters, ok := asMap(v); ok {
			if nb, ok := filters["notebook"]; ok {
				block[KeyNotebookMetadataFilter] = nb
			}
			if cells, ok := filters["cells"]; ok {
				block[KeyCellMetadataFilter] = cells
			}
		}
	}

	for _, key := range []string{KeyNotebookMetadataFilter, KeyCellMetadataFilter} {
		v, ok := block[key]
		if !ok {
			continue
		}
		if _, structured := asMap(v); !structured {
			continue
		}
		// A malformed record is kept as is; DecodeBlock reports it.
		if flat, err := FlattenFilter(v); err == nil {
			block[key] = flat
		}
	}

	if len(block) > 0 {
		out[Namespace] = block
	}
	return out
}

// RawBlock returns the raw jupytext block of meta, or nil.
func RawBlock(meta map[string]any) map[string]any {
	block, _ := asMap(meta[Namespace])
	return block
}

// asMap accepts both decoded-JSON and decoded-YAML mappings.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// copyMap deep-copies nested mappings and lists.
func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	if m, ok := asMap(v); ok {
		return copyMap(m)
	}
	if list, ok := v.([]any); ok {
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = copyValue(item)
		}
		return out
	}
	return v
}

// Clone returns a deep copy of notebook metadata.
func Clone(meta map[string]any) map[string]any {
	return copyMap(meta)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
