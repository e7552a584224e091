package metadata

import (
	"fmt"
	"strings"
)

// All is the sentinel entry meaning "every key".
const All = "all"

// Filter selects metadata keys beyond the defaults (Additional) and keys
// to drop (Excluded). Either list may contain All.
//
// The compact form is a comma-joined list where excluded names carry a
// leading minus: "a,b,-c", "all,-c", "-all".
type Filter struct {
	Additional []string
	Excluded   []string
}

// ParseFilter parses the compact form of a metadata filter.
func ParseFilter(s string) Filter {
	var f Filter
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.HasPrefix(entry, "-") {
			f.Excluded = append(f.Excluded, entry[1:])
			continue
		}
		f.Additional = append(f.Additional, strings.TrimPrefix(entry, "+"))
	}
	return f
}

// String renders the compact form.
func (f Filter) String() string {
	entries := make([]string, 0, len(f.Additional)+len(f.Excluded))
	entries = append(entries, f.Additional...)
	for _, e := range f.Excluded {
		entries = append(entries, "-"+e)
	}
	return strings.Join(entries, ",")
}

// IsZero reports whether the filter has no entries.
func (f Filter) IsZero() bool {
	return len(f.Additional) == 0 && len(f.Excluded) == 0
}

// FlattenFilter converts a structured {additional, excluded} record into the
// compact form. Each side is either the string "all" or a list of names.
// Strings are returned as they are.
func FlattenFilter(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	}

	m, ok := asMap(v)
	if !ok {
		return "", fmt.Errorf("metadata filter should be a string or a mapping, not %T", v)
	}

	for key := range m {
		if key != "additional" && key != "excluded" {
			return "", &UnknownKeyError{Path: "metadata filter", Keys: []string{key}}
		}
	}

	additional, err := filterEntries(m["additional"])
	if err != nil {
		return "", fmt.Errorf("additional: %w", err)
	}
	excluded, err := filterEntries(m["excluded"])
	if err != nil {
		return "", fmt.Errorf("excluded: %w", err)
	}

	return Filter{Additional: additional, Excluded: excluded}.String(), nil
}

// filterEntries accepts the sentinel string or a list of names.
func filterEntries(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		if x == "" {
			return nil, nil
		}
		return []string{x}, nil
	case []string:
		return x, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("filter entry %v should be a string, not %T", item, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("filter entries should be %q or a list, not %T", All, v)
	}
}
