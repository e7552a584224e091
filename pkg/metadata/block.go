package metadata

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ErrUnknownKey matches *UnknownKeyError with errors.Is.
var ErrUnknownKey = errors.New("unknown metadata key")

// TextRepresentation records which dialect and version last wrote a text file.
type TextRepresentation struct {
	Extension       string `mapstructure:"extension"`
	FormatName      string `mapstructure:"format_name"`
	FormatVersion   string `mapstructure:"format_version"`
	JupytextVersion string `mapstructure:"jupytext_version"`
}

// Block is the strict view of the jupytext metadata block.
// Unknown keys cause decode errors.
type Block struct {
	Formats                any                 `mapstructure:"formats"` // compact string or list of records
	TextRepresentation     *TextRepresentation `mapstructure:"text_representation"`
	NotebookMetadataFilter string              `mapstructure:"notebook_metadata_filter"`
	CellMetadataFilter     string              `mapstructure:"cell_metadata_filter"`
	MainLanguage           string              `mapstructure:"main_language"`
	Encoding               string              `mapstructure:"encoding"`
	Executable             string              `mapstructure:"executable"`
	CommentMagics          *bool               `mapstructure:"comment_magics"`
	SplitAtHeading         *bool               `mapstructure:"split_at_heading"`
}

var knownBlockKeys = map[string]bool{
	KeyFormats:                true,
	KeyTextRepresentation:     true,
	KeyNotebookMetadataFilter: true,
	KeyCellMetadataFilter:     true,
	KeyMainLanguage:           true,
	KeyEncoding:               true,
	KeyExecutable:             true,
	KeyCommentMagics:          true,
	KeySplitAtHeading:         true,
}

var knownTextRepresentationKeys = map[string]bool{
	KeyExtension:       true,
	KeyFormatName:      true,
	KeyFormatVersion:   true,
	KeyJupytextVersion: true,
}

// DecodeBlock decodes the jupytext block of (migrated) notebook metadata.
// It returns an empty Block when meta has no such block.
func DecodeBlock(meta map[string]any) (*Block, error) {
	raw, present := meta[Namespace]
	if !present || raw == nil {
		return &Block{}, nil
	}

	block, ok := asMap(raw)
	if !ok {
		return nil, fmt.Errorf("%s metadata should be a mapping, not %T", Namespace, raw)
	}

	if unknown := unknownKeys(block, knownBlockKeys); len(unknown) > 0 {
		return nil, &UnknownKeyError{Path: Namespace, Keys: unknown}
	}
	if repr, ok := asMap(block[KeyTextRepresentation]); ok {
		if unknown := unknownKeys(repr, knownTextRepresentationKeys); len(unknown) > 0 {
			return nil, &UnknownKeyError{Path: Namespace + "." + KeyTextRepresentation, Keys: unknown}
		}
	}

	var b Block
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &b,
		ErrorUnused: true,
		// Unquoted YAML versions (format_version: 1.2) decode as floats.
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(block); err != nil {
		return nil, fmt.Errorf("invalid %s metadata: %w", Namespace, err)
	}
	return &b, nil
}

// Map renders the block back into its metadata form, omitting empty fields.
func (b *Block) Map() map[string]any {
	out := make(map[string]any)
	setString := func(key, v string) {
		if v != "" {
			out[key] = v
		}
	}

	if b.Formats != nil && b.Formats != "" {
		out[KeyFormats] = b.Formats
	}
	if r := b.TextRepresentation; r != nil {
		repr := make(map[string]any)
		for key, v := range map[string]string{
			KeyExtension:       r.Extension,
			KeyFormatName:      r.FormatName,
			KeyFormatVersion:   r.FormatVersion,
			KeyJupytextVersion: r.JupytextVersion,
		} {
			if v != "" {
				repr[key] = v
			}
		}
		if len(repr) > 0 {
			out[KeyTextRepresentation] = repr
		}
	}
	setString(KeyNotebookMetadataFilter, b.NotebookMetadataFilter)
	setString(KeyCellMetadataFilter, b.CellMetadataFilter)
	setString(KeyMainLanguage, b.MainLanguage)
	setString(KeyEncoding, b.Encoding)
	setString(KeyExecutable, b.Executable)
	if b.CommentMagics != nil {
		out[KeyCommentMagics] = *b.CommentMagics
	}
	if b.SplitAtHeading != nil {
		out[KeySplitAtHeading] = *b.SplitAtHeading
	}
	return out
}

// FormatVersion returns the recorded format version, or "".
func (b *Block) FormatVersion() string {
	if b == nil || b.TextRepresentation == nil {
		return ""
	}
	return b.TextRepresentation.FormatVersion
}

// UnknownKeyError is returned when metadata carries keys outside the schema.
type UnknownKeyError struct {
	Path string
	Keys []string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown key(s) %s in %s metadata", strings.Join(quoteAll(e.Keys), ", "), e.Path)
}

// Is reports whether target is ErrUnknownKey.
func (e *UnknownKeyError) Is(target error) bool {
	return target == ErrUnknownKey
}

func unknownKeys(m map[string]any, known map[string]bool) []string {
	var out []string
	for k := range m {
		if !known[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func quoteAll(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprintf("%q", k)
	}
	return out
}
