package engine

import (
	"reflect"
	"strings"

	"github.com/leapstack-labs/textnb/internal/header"
	"github.com/leapstack-labs/textnb/pkg/dialect"
	"github.com/leapstack-labs/textnb/pkg/metadata"
	"github.com/leapstack-labs/textnb/pkg/sniff"
)

// headerPrefix returns the comment prefix of the header of a document with
// extension ext.
func (e *Engine) headerPrefix(ext string) string {
	if e.reg.IsMarkup(ext) {
		return ""
	}
	if comment := e.reg.Comment(ext); comment != "" {
		return comment
	}
	return "#"
}

// MigrateHeader rewrites the YAML header of a text document so that its
// notebook metadata uses the current key layout. It reports whether the
// document changed. Documents without a header are returned unchanged.
func (e *Engine) MigrateHeader(text, ext string) (string, bool, error) {
	ext = dialect.NormalizeExtension(ext)
	if _, err := e.reg.Default(ext); err != nil {
		return "", false, err
	}

	lines := sniff.SplitLines(text)
	prefix := e.headerPrefix(ext)
	h, err := header.Extract(lines, prefix)
	if err != nil {
		return "", false, err
	}
	if !h.Found && (ext == ".R" || ext == ".r") {
		prefix = "#'"
		if h, err = header.Extract(lines, prefix); err != nil {
			return "", false, err
		}
	}
	if !h.Found {
		return text, false, nil
	}

	migrated := metadata.Migrate(h.Metadata)
	if reflect.DeepEqual(migrated, h.Metadata) {
		return text, false, nil
	}

	rendered, err := header.Render(migrated, h.Extra, prefix)
	if err != nil {
		return "", false, err
	}

	out := make([]string, 0, len(lines)+len(rendered))
	out = append(out, lines[:h.Start]...)
	out = append(out, rendered...)
	// the blank line after the closing delimiter, if any
	if last := lines[h.End-1]; strings.TrimSpace(header.Uncomment(last, prefix)) != "---" {
		out = append(out, last)
	}
	out = append(out, lines[h.End:]...)

	e.logger.Debug("migrated header", "ext", ext, "lines", len(rendered))
	return strings.Join(out, "\n") + "\n", true, nil
}
