package resolve

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/textnb/pkg/formats"
	"github.com/leapstack-labs/textnb/pkg/metadata"
)

// ErrNoMetadata is returned when there is no metadata map to write to.
var ErrNoMetadata = errors.New("no metadata to update")

// RecordDialect records in meta that ext is written with dialect name.
//
// The first formats entry for ext (same extension and prefix) gets the new
// dialect, keeping its place and options; later entries for ext are
// dropped. When there is none, an entry is appended. The list is written
// back in the shape it was read: compact string or list of records.
func (r *Resolver) RecordDialect(meta map[string]any, ext, name string) error {
	if meta == nil {
		return ErrNoMetadata
	}

	target, err := r.parser.ParseOne(ext)
	if err != nil {
		return err
	}
	target.Dialect = name

	block := metadata.RawBlock(meta)
	if block == nil {
		if existing, present := meta[metadata.Namespace]; present && existing != nil {
			return fmt.Errorf("%s metadata should be a mapping, not %T", metadata.Namespace, existing)
		}
		block = map[string]any{}
	}

	declared := block[metadata.KeyFormats]
	list, err := r.parser.LongFormList(declared)
	if err != nil {
		return fmt.Errorf("failed to parse %s.%s: %w", metadata.Namespace, metadata.KeyFormats, err)
	}

	updated := make(formats.List, 0, len(list)+1)
	found := false
	for _, spec := range list {
		if spec.Extension != target.Extension || spec.Prefix != target.Prefix {
			updated = append(updated, spec)
			continue
		}
		if found {
			continue
		}
		spec.Dialect = name
		updated = append(updated, spec)
		found = true
	}
	if !found {
		updated = append(updated, target)
	}

	if _, isList := declared.([]any); isList {
		records := make([]any, len(updated))
		for i, spec := range updated {
			records[i] = formats.Record(spec)
		}
		block[metadata.KeyFormats] = records
	} else {
		block[metadata.KeyFormats] = r.parser.Format(updated)
	}
	meta[metadata.Namespace] = block
	return nil
}
