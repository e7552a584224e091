// Package version guards merges of a notebook into an existing text file.
//
// A text file records the dialect version that wrote it. Merging notebook
// content into a file written by a version the current reader cannot fully
// understand may drop information, so such merges are refused.
package version

import (
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/leapstack-labs/textnb/pkg/dialect"
)

// Tag is the dialect and version recorded in a document's metadata.
type Tag struct {
	Dialect string
	Version string // "major.minor", empty when not recorded
}

// Guard checks recorded versions against a dialect's version contract.
type Guard struct {
	// Enabled turns the guard on. A disabled guard accepts everything.
	Enabled bool
	// AssumeCurrent treats a document that has metadata but no recorded
	// version as written by the current version.
	AssumeCurrent bool
}

// DefaultGuard returns an enabled guard that assumes unversioned documents
// are current.
func DefaultGuard() Guard {
	return Guard{Enabled: true, AssumeCurrent: true}
}

// Check accepts or refuses a merge from source into destination.
//
// hasMetadata reports whether the document carries any metadata at all; a
// document without metadata is freshly authored and treated as current.
// A refusal is a *MergeUnsafeError and must not be resolved automatically.
func (g Guard) Check(tag Tag, hasMetadata bool, desc *dialect.Descriptor, source, destination string) error {
	if !g.Enabled {
		return nil
	}
	if strings.HasSuffix(source, dialect.NotebookExtension) {
		return nil
	}
	if source == destination {
		return nil
	}

	current := desc.Current
	recorded := tag.Version
	if recorded == "" && (!hasMetadata || g.AssumeCurrent) {
		recorded = current
	}

	if recorded == current {
		return nil
	}
	if recorded != "" && Between(recorded, desc.MinReadableVersion(), current) {
		return nil
	}

	return &MergeUnsafeError{
		Source:      filepath.Base(source),
		Destination: filepath.Base(destination),
		Dialect:     desc.String(),
		Recorded:    tag.Version,
		Current:     current,
		MinReadable: desc.MinReadableVersion(),
	}
}

// Compare compares two "major.minor" versions numerically. It returns -1, 0
// or +1. An invalid version is smaller than every valid one.
func Compare(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

// Valid reports whether v is a numeric "major.minor" (or "major.minor.patch")
// version.
func Valid(v string) bool {
	return v != "" && semver.IsValid(canonical(v))
}

// Between reports whether lo <= v <= hi, all valid versions.
func Between(v, lo, hi string) bool {
	if !Valid(v) || !Valid(lo) || !Valid(hi) {
		return false
	}
	return Compare(lo, v) <= 0 && Compare(v, hi) <= 0
}

func canonical(v string) string {
	return "v" + strings.TrimPrefix(strings.TrimSpace(v), "v")
}
